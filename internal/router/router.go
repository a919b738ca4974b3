// Package router selects a backend for a task by capability-subset
// matching with a generality tie-break.
package router

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/gzhole/llmgate/internal/model"
)

// Router holds a read-only projection of registered backends, kept in
// sync with the pool via state-change events.
type Router struct {
	mu       sync.RWMutex
	backends map[string]model.BackendInstance

	log *slog.Logger
}

// New creates an empty router.
func New(log *slog.Logger) *Router {
	if log == nil {
		log = slog.Default()
	}
	return &Router{
		backends: make(map[string]model.BackendInstance),
		log:      log,
	}
}

// RegisterBackend adds or refreshes a backend in the projection.
func (r *Router) RegisterBackend(instance model.BackendInstance) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.log.Info("router: registering backend", "id", instance.ID,
		"capabilities", instance.Capabilities)
	r.backends[instance.ID] = instance
}

// UnregisterBackend drops a backend from the projection.
func (r *Router) UnregisterBackend(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.backends, id)
}

// SetLoaded updates the projection's loaded flag for a backend.
func (r *Router) SetLoaded(id string, loaded bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if inst, ok := r.backends[id]; ok {
		inst.Loaded = loaded
		r.backends[id] = inst
	}
}

// RouteTask picks the best loaded backend whose capability set covers
// the task's requirements. Candidates are ordered loaded-first, then by
// descending capability count so broader backends win ties.
func (r *Router) RouteTask(task model.TaskDescription) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var candidates []model.BackendInstance
	for _, inst := range r.backends {
		if inst.Loaded && inst.HasAllCapabilities(task.RequiredCapabilities) {
			candidates = append(candidates, inst)
		}
	}

	if len(candidates) == 0 {
		return "", fmt.Errorf("no backend for capabilities %v: %w",
			task.RequiredCapabilities, model.ErrNotFound)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Loaded != candidates[j].Loaded {
			return candidates[i].Loaded
		}
		return len(candidates[i].Capabilities) > len(candidates[j].Capabilities)
	})

	selected := candidates[0].ID
	r.log.Debug("routed task", "type", task.Type, "backend", selected)
	return selected, nil
}

// Get returns one backend from the projection.
func (r *Router) Get(id string) (model.BackendInstance, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inst, ok := r.backends[id]
	return inst, ok
}

// All returns every backend in the projection.
func (r *Router) All() []model.BackendInstance {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.BackendInstance, 0, len(r.backends))
	for _, inst := range r.backends {
		out = append(out, inst)
	}
	return out
}

// FindByCapability returns the backends declaring cap.
func (r *Router) FindByCapability(cap model.Capability) []model.BackendInstance {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []model.BackendInstance
	for _, inst := range r.backends {
		if inst.HasCapability(cap) {
			out = append(out, inst)
		}
	}
	return out
}
