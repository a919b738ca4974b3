package security

import (
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// failedThreshold is the denial count at which an actor escalates the
// whole system into lockdown.
const failedThreshold = 5

// Engine is the single policy-decision surface: permission checks,
// guardrail analysis, the audit trail and the lockdown state machine.
//
// The state swap happens inside a short exclusive section; the audit
// write that follows is deliberately outside it, so a release racing a
// fresh trigger resolves last-writer-wins.
type Engine struct {
	permissions *PermissionManager
	guardrails  *Guardrails
	audit       *AuditLog

	stateMu sync.RWMutex
	state   LockdownState

	// releaseHash, when set, is the bcrypt hash the release token must
	// match. Without it any non-empty token is accepted, which is only
	// suitable for development setups.
	releaseHash []byte

	log *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithReleaseTokenHash sets the bcrypt hash verified on lockdown
// release.
func WithReleaseTokenHash(hash []byte) Option {
	return func(e *Engine) { e.releaseHash = hash }
}

// WithLogger sets the diagnostic logger.
func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithAuditLog substitutes a pre-configured audit log (e.g. one with a
// JSONL sink attached).
func WithAuditLog(audit *AuditLog) Option {
	return func(e *Engine) { e.audit = audit }
}

// NewEngine creates an engine in the Normal state with default scopes
// and guardrail rules.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		guardrails: NewGuardrails(),
		audit:      NewAuditLog(),
		state:      StateNormal,
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.permissions = NewPermissionManager(e.log)
	return e
}

// Permissions exposes the permission manager for scope administration.
func (e *Engine) Permissions() *PermissionManager { return e.permissions }

// Guardrails exposes the rule engine for operator-added rules.
func (e *Engine) Guardrails() *Guardrails { return e.guardrails }

// Audit exposes the audit log for queries.
func (e *Engine) Audit() *AuditLog { return e.audit }

// CheckPermission evaluates one privileged action for an actor. When
// the system is Locked every request is refused without consulting
// scope rules; in ReadOnly only file reads reach the scope evaluation.
// Every decision is recorded in the audit log before this returns.
func (e *Engine) CheckPermission(actorID string, req Request, explanation string) bool {
	action := fmt.Sprintf("Permission request: %s", req)

	switch e.State() {
	case StateLocked:
		e.log.Warn("system locked, denying permission request", "actor", actorID)
		e.audit.Record(actorID, action, map[string]any{
			"explanation": explanation,
		}, false, "System is in lockdown")
		return false
	case StateReadOnly:
		if _, ok := req.(FileRead); !ok {
			e.audit.Record(actorID, action, map[string]any{
				"explanation": explanation,
			}, false, "System is read-only")
			return false
		}
	}

	granted := e.permissions.Check(actorID, req, explanation)

	reason := ""
	if !granted {
		reason = "Permission denied by policy"
	}
	e.audit.Record(actorID, action, map[string]any{
		"explanation": explanation,
		"granted":     granted,
	}, granted, reason)

	if !granted {
		if count := e.permissions.FailedCount(actorID); count >= failedThreshold {
			e.log.Warn("denial threshold reached, triggering lockdown",
				"actor", actorID, "failed_count", count)
			e.TriggerLockdown(MultipleFailedRequests{Count: count})
		}
	}

	return granted
}

// AnalyzeCommand runs the guardrails over a command and records the
// outcome. The analysis itself cannot fail.
func (e *Engine) AnalyzeCommand(command string) Analysis {
	analysis := e.guardrails.Analyze(command)

	reason := ""
	if !analysis.Safe {
		reason = fmt.Sprintf("Risk level: %s", analysis.Risk)
	}
	e.audit.Record("", "Command analysis", map[string]any{
		"command":    command,
		"risk_level": analysis.Risk.String(),
		"issues":     len(analysis.Issues),
	}, analysis.Safe, reason)

	return analysis
}

// TriggerLockdown unconditionally moves the system to Locked. The
// transition is idempotent but always audited.
func (e *Engine) TriggerLockdown(reason Reason) {
	e.log.Error("lockdown triggered", "reason", reason.String())
	e.setState(StateLocked)
	e.audit.Record("", "Lockdown triggered", map[string]any{
		"reason": reason.String(),
	}, false, fmt.Sprintf("Lockdown: %s", reason))
}

// TriggerReadOnly moves the system to the partial ReadOnly mode, where
// file reads still pass scope evaluation but nothing else does.
func (e *Engine) TriggerReadOnly(reason Reason) {
	e.log.Warn("read-only mode triggered", "reason", reason.String())
	e.setState(StateReadOnly)
	e.audit.Record("", "Read-only mode triggered", map[string]any{
		"reason": reason.String(),
	}, false, fmt.Sprintf("Read-only: %s", reason))
}

// ReleaseLockdown returns the system to Normal after verifying the
// token. With a configured hash the token must match it; otherwise any
// non-empty token is accepted.
func (e *Engine) ReleaseLockdown(token string) error {
	if token == "" {
		return fmt.Errorf("empty release token: %w", ErrAuthentication)
	}
	if len(e.releaseHash) > 0 {
		if err := bcrypt.CompareHashAndPassword(e.releaseHash, []byte(token)); err != nil {
			e.log.Warn("lockdown release rejected: token mismatch")
			return fmt.Errorf("release token mismatch: %w", ErrAuthentication)
		}
	}

	e.setState(StateNormal)
	e.audit.Record("", "Lockdown released", map[string]any{
		"authenticated": true,
	}, true, "Operator authenticated")
	e.log.Info("lockdown released, normal operations resumed")
	return nil
}

// State returns a snapshot of the current lockdown state.
func (e *Engine) State() LockdownState {
	e.stateMu.RLock()
	defer e.stateMu.RUnlock()
	return e.state
}

func (e *Engine) setState(s LockdownState) {
	e.stateMu.Lock()
	e.state = s
	e.stateMu.Unlock()
}
