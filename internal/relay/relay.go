// Package relay provides the cross-form selection relay: a single shared slot
// carrying the service package a visitor picked on a pricing card over to the
// contact form. The slot is ephemeral and never persisted.
package relay

import "sync"

// Watcher is notified whenever the slot changes. An empty value means the
// slot was reset.
type Watcher func(value string)

// Cell is the shared single-value slot with explicit get/set/reset.
// Consumers must never overwrite user-entered input with the relayed value;
// that contract is enforced by the consumer (see the contact module).
type Cell struct {
	mu       sync.Mutex
	value    string
	watchers []Watcher
}

// NewCell creates an empty relay cell.
func NewCell() *Cell {
	return &Cell{}
}

// Set stores the selected package name and notifies watchers.
func (c *Cell) Set(value string) {
	c.mu.Lock()
	c.value = value
	watchers := c.watchersLocked()
	c.mu.Unlock()

	for _, w := range watchers {
		w(value)
	}
}

// Get returns the current slot value; empty when nothing is selected.
func (c *Cell) Get() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Reset clears the slot. Called after a successful contact submission or an
// explicit user reset.
func (c *Cell) Reset() {
	c.mu.Lock()
	if c.value == "" {
		c.mu.Unlock()
		return
	}
	c.value = ""
	watchers := c.watchersLocked()
	c.mu.Unlock()

	for _, w := range watchers {
		w("")
	}
}

// Watch registers a watcher for slot changes. Watchers run outside the cell
// lock and may call Get, but must not call Set or Reset re-entrantly.
func (c *Cell) Watch(w Watcher) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.watchers = append(c.watchers, w)
}

func (c *Cell) watchersLocked() []Watcher {
	out := make([]Watcher, len(c.watchers))
	copy(out, c.watchers)
	return out
}
