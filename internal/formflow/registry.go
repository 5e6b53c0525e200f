package formflow

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Registry tracks the open form sessions of one module, keyed by session id.
type Registry struct {
	mu    sync.Mutex
	items map[uuid.UUID]*Controller
}

// NewRegistry creates an empty session registry.
func NewRegistry() *Registry {
	return &Registry{items: make(map[uuid.UUID]*Controller)}
}

// Add registers a controller and returns its session id.
func (r *Registry) Add(c *Controller) uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := uuid.New()
	r.items[id] = c
	return id
}

// Get returns the controller for a session id.
func (r *Registry) Get(id uuid.UUID) (*Controller, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.items[id]
	return c, ok
}

// Remove closes and drops a session.
func (r *Registry) Remove(id uuid.UUID) {
	r.mu.Lock()
	c, ok := r.items[id]
	if ok {
		delete(r.items, id)
	}
	r.mu.Unlock()

	if ok {
		c.Close()
	}
}

// Each calls fn for every open session. The controller's own lock guards any
// mutation fn performs.
func (r *Registry) Each(fn func(id uuid.UUID, c *Controller)) {
	r.mu.Lock()
	snapshot := make(map[uuid.UUID]*Controller, len(r.items))
	for id, c := range r.items {
		snapshot[id] = c
	}
	r.mu.Unlock()

	for id, c := range snapshot {
		fn(id, c)
	}
}

// Sweep closes sessions idle longer than maxIdle and returns the ids that
// were removed. Sessions with a submit in flight are left alone.
func (r *Registry) Sweep(maxIdle time.Duration) []uuid.UUID {
	cutoff := time.Now().Add(-maxIdle)

	var stale []uuid.UUID
	r.Each(func(id uuid.UUID, c *Controller) {
		if c.State() == StateEditing && c.LastActive().Before(cutoff) {
			stale = append(stale, id)
		}
	})

	for _, id := range stale {
		r.Remove(id)
	}
	return stale
}
