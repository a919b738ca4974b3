package security

import (
	"log/slog"
	"strings"
	"sync"
)

// PermissionManager evaluates requests against the global scope or a
// per-actor override. An override fully replaces the global scope; the
// two are never merged. Every denial increments the actor's failure
// counter, which the engine reads for escalation.
type PermissionManager struct {
	scopeMu     sync.RWMutex
	globalScope Scope
	overrides   map[string]Scope

	failMu sync.RWMutex
	failed map[string]int

	log *slog.Logger
}

// NewPermissionManager creates a manager seeded with the default global
// scope.
func NewPermissionManager(log *slog.Logger) *PermissionManager {
	if log == nil {
		log = slog.Default()
	}
	return &PermissionManager{
		globalScope: DefaultScope(),
		overrides:   make(map[string]Scope),
		failed:      make(map[string]int),
		log:         log,
	}
}

// Check evaluates a request for an actor. Denials are a policy outcome,
// not an error; the only side effect of a denial is the actor's failure
// counter.
func (m *PermissionManager) Check(actorID string, req Request, explanation string) bool {
	scope := m.scopeFor(actorID)

	var granted bool
	switch r := req.(type) {
	case FileRead:
		granted = matchAnyPath(scope.FileSystem.ReadPaths, r.Path)
	case FileWrite:
		granted = matchAnyPath(scope.FileSystem.WritePaths, r.Path)
	case FileExecute:
		granted = matchAnyPath(scope.FileSystem.ExecutePaths, r.Path)
	case Command:
		granted = checkCommand(scope.Commands, r.Command)
	case NetworkAccess:
		granted = checkNetwork(scope.Network, r.URL, explanation)
	case ResourceIncrease:
		granted = checkResource(scope.Resources, r.Resource, r.Amount)
	}

	if granted {
		m.log.Debug("permission granted", "actor", actorID, "request", req.String())
	} else {
		m.log.Warn("permission denied", "actor", actorID, "request", req.String())
		m.trackFailure(actorID)
	}
	return granted
}

// checkCommand applies the blacklist veto first, then requires the
// command's binary to appear verbatim in the whitelist.
func checkCommand(scope CommandScope, command string) bool {
	for _, blocked := range scope.Blacklist {
		if strings.Contains(command, blocked) {
			return false
		}
	}
	binary := commandBinary(command)
	for _, allowed := range scope.Whitelist {
		if binary == allowed {
			return true
		}
	}
	return false
}

// checkNetwork requires the scope to permit traffic in some direction.
// A URL matching a require-approval pattern is only granted when the
// request carries a non-empty explanation.
func checkNetwork(scope NetworkScope, url, explanation string) bool {
	if !scope.Inbound && !scope.Outbound {
		return false
	}
	for _, pattern := range scope.RequireApproval {
		if matchURLPattern(pattern, url) && explanation == "" {
			return false
		}
	}
	return true
}

func matchURLPattern(pattern, url string) bool {
	if pattern == "*" {
		return true
	}
	if strings.HasPrefix(pattern, "*") && strings.HasSuffix(pattern, "*") {
		return strings.Contains(url, strings.Trim(pattern, "*"))
	}
	if strings.HasPrefix(pattern, "*") {
		return strings.HasSuffix(url, strings.TrimPrefix(pattern, "*"))
	}
	if strings.HasSuffix(pattern, "*") {
		return strings.HasPrefix(url, strings.TrimSuffix(pattern, "*"))
	}
	return pattern == url
}

func checkResource(limits ResourceLimits, resource string, requested float64) bool {
	switch resource {
	case "cpu":
		return requested <= limits.MaxCPUPercent
	case "memory":
		return requested <= limits.MaxMemoryGB
	case "disk":
		return requested <= limits.MaxDiskGB
	default:
		return false
	}
}

// scopeFor resolves the effective scope for an actor.
func (m *PermissionManager) scopeFor(actorID string) Scope {
	m.scopeMu.RLock()
	defer m.scopeMu.RUnlock()
	if scope, ok := m.overrides[actorID]; ok {
		return scope
	}
	return m.globalScope
}

// SetGlobalScope replaces the global scope.
func (m *PermissionManager) SetGlobalScope(scope Scope) {
	m.scopeMu.Lock()
	defer m.scopeMu.Unlock()
	m.globalScope = scope
}

// GlobalScope returns a copy of the global scope.
func (m *PermissionManager) GlobalScope() Scope {
	m.scopeMu.RLock()
	defer m.scopeMu.RUnlock()
	return m.globalScope
}

// SetActorScope installs an override scope for an actor.
func (m *PermissionManager) SetActorScope(actorID string, scope Scope) {
	m.scopeMu.Lock()
	defer m.scopeMu.Unlock()
	m.overrides[actorID] = scope
}

// RemoveActorScope drops an actor's override, restoring the global
// scope for its checks.
func (m *PermissionManager) RemoveActorScope(actorID string) {
	m.scopeMu.Lock()
	defer m.scopeMu.Unlock()
	delete(m.overrides, actorID)
}

func (m *PermissionManager) trackFailure(actorID string) {
	m.failMu.Lock()
	defer m.failMu.Unlock()
	m.failed[actorID]++
}

// FailedCount returns the actor's accumulated denial count.
func (m *PermissionManager) FailedCount(actorID string) int {
	m.failMu.RLock()
	defer m.failMu.RUnlock()
	return m.failed[actorID]
}

// ResetFailedCount clears the actor's denial count.
func (m *PermissionManager) ResetFailedCount(actorID string) {
	m.failMu.Lock()
	defer m.failMu.Unlock()
	delete(m.failed, actorID)
}
