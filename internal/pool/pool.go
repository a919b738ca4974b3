// Package pool tracks registered backend instances and their
// capability index, and drives provider load/unload transitions.
package pool

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gzhole/llmgate/internal/model"
)

// cell holds one backend's mutable record together with its provider.
// Storing instances behind a per-instance lock makes load/unload
// transitions visible to every subsequent read.
type cell struct {
	mu       sync.RWMutex
	instance model.BackendInstance
	provider model.Provider
}

func (c *cell) snapshot() model.BackendInstance {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.instance
}

func (c *cell) setLoaded(loaded bool) {
	c.mu.Lock()
	c.instance.Loaded = loaded
	c.mu.Unlock()
}

// Pool is the backend registry. Register/unregister are mutually
// exclusive with each other and with capability-index reads; index
// reads proceed concurrently with one another.
type Pool struct {
	mu       sync.RWMutex
	backends map[string]*cell
	byCap    map[model.Capability][]string

	log *slog.Logger
}

// New creates an empty pool.
func New(log *slog.Logger) *Pool {
	if log == nil {
		log = slog.Default()
	}
	return &Pool{
		backends: make(map[string]*cell),
		byCap:    make(map[model.Capability][]string),
		log:      log,
	}
}

// Register adds (or overwrites) a backend by id and indexes it under
// each declared capability.
func (p *Pool) Register(instance model.BackendInstance, provider model.Provider) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.backends[instance.ID]; exists {
		p.removeFromIndexLocked(instance.ID)
	}

	p.log.Info("registering backend", "id", instance.ID, "capabilities", instance.Capabilities)
	p.backends[instance.ID] = &cell{instance: instance, provider: provider}
	for _, cap := range instance.Capabilities {
		p.byCap[cap] = append(p.byCap[cap], instance.ID)
	}
}

// Unregister removes a backend from the primary map and from every
// capability index it appeared in.
func (p *Pool) Unregister(id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.backends[id]; !ok {
		return fmt.Errorf("backend %s: %w", id, model.ErrNotFound)
	}

	p.log.Info("unregistering backend", "id", id)
	p.removeFromIndexLocked(id)
	delete(p.backends, id)
	return nil
}

func (p *Pool) removeFromIndexLocked(id string) {
	for cap, ids := range p.byCap {
		kept := ids[:0]
		for _, existing := range ids {
			if existing != id {
				kept = append(kept, existing)
			}
		}
		p.byCap[cap] = kept
	}
}

// Get returns a snapshot of one backend.
func (p *Pool) Get(id string) (model.BackendInstance, error) {
	p.mu.RLock()
	c, ok := p.backends[id]
	p.mu.RUnlock()
	if !ok {
		return model.BackendInstance{}, fmt.Errorf("backend %s: %w", id, model.ErrNotFound)
	}
	return c.snapshot(), nil
}

// Provider returns the provider registered for a backend.
func (p *Pool) Provider(id string) (model.Provider, error) {
	p.mu.RLock()
	c, ok := p.backends[id]
	p.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("backend %s: %w", id, model.ErrNotFound)
	}
	return c.provider, nil
}

// FindByCapability returns snapshots of the backends indexed under cap.
func (p *Pool) FindByCapability(cap model.Capability) []model.BackendInstance {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var out []model.BackendInstance
	for _, id := range p.byCap[cap] {
		if c, ok := p.backends[id]; ok {
			out = append(out, c.snapshot())
		}
	}
	return out
}

// AllIDs returns every registered backend id.
func (p *Pool) AllIDs() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	ids := make([]string, 0, len(p.backends))
	for id := range p.backends {
		ids = append(ids, id)
	}
	return ids
}

// AllLoaded returns snapshots of the backends whose Loaded flag is set.
func (p *Pool) AllLoaded() []model.BackendInstance {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var out []model.BackendInstance
	for _, c := range p.backends {
		if inst := c.snapshot(); inst.Loaded {
			out = append(out, inst)
		}
	}
	return out
}

// Load marks a backend loaded and calls the provider's Load hook.
func (p *Pool) Load(ctx context.Context, id string) error {
	p.mu.RLock()
	c, ok := p.backends[id]
	p.mu.RUnlock()
	if !ok {
		return fmt.Errorf("backend %s: %w", id, model.ErrNotFound)
	}

	if c.provider != nil {
		if err := c.provider.Load(ctx); err != nil {
			return fmt.Errorf("loading backend %s: %w", id, err)
		}
	}
	c.setLoaded(true)
	p.log.Info("backend loaded", "id", id)
	return nil
}

// Unload marks a backend unloaded and calls the provider's Unload hook.
func (p *Pool) Unload(ctx context.Context, id string) error {
	p.mu.RLock()
	c, ok := p.backends[id]
	p.mu.RUnlock()
	if !ok {
		return fmt.Errorf("backend %s: %w", id, model.ErrNotFound)
	}

	if c.provider != nil {
		if err := c.provider.Unload(ctx); err != nil {
			return fmt.Errorf("unloading backend %s: %w", id, err)
		}
	}
	c.setLoaded(false)
	p.log.Info("backend unloaded", "id", id)
	return nil
}

// HealthCheckAll probes every registered provider.
func (p *Pool) HealthCheckAll(ctx context.Context) map[string]bool {
	p.mu.RLock()
	cells := make(map[string]*cell, len(p.backends))
	for id, c := range p.backends {
		cells[id] = c
	}
	p.mu.RUnlock()

	results := make(map[string]bool, len(cells))
	for id, c := range cells {
		if c.provider == nil {
			results[id] = false
			continue
		}
		results[id] = c.provider.HealthCheck(ctx)
	}
	return results
}

// Stats summarizes the pool.
type Stats struct {
	Total    int
	Loaded   int
	Unloaded int
}

// Stats returns registration counts.
func (p *Pool) Stats() Stats {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s := Stats{Total: len(p.backends)}
	for _, c := range p.backends {
		if c.snapshot().Loaded {
			s.Loaded++
		}
	}
	s.Unloaded = s.Total - s.Loaded
	return s
}
