package feed

import "sync"

// Registry collects the stop functions of every live subscription owned
// by one server instance, so teardown can cancel them in one call. A stop
// function left running past logout would keep delivering callbacks
// against a dead session.
type Registry struct {
	mu    sync.Mutex
	stops []func()
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a subscription stop function.
func (r *Registry) Register(stop func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stops = append(r.stops, stop)
}

// ClearAll invokes every registered stop function once and empties the
// registry. Safe to call multiple times.
func (r *Registry) ClearAll() {
	r.mu.Lock()
	stops := r.stops
	r.stops = nil
	r.mu.Unlock()

	for _, stop := range stops {
		stop()
	}
}

// Len returns the number of outstanding subscriptions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stops)
}
