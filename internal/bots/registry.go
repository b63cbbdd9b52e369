// internal/bots/registry.go
package bots

import (
	"sort"
	"sync"

	"ufunda-bots/internal/common/errors"
)

// Registry is the closed table of known bot identifiers. Adding an
// institution means implementing an Adapter and registering it here; the
// dispatch core never branches on identifiers itself.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
}

func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]Adapter)}
}

// Register adds an adapter under its own ID, replacing any previous entry.
func (r *Registry) Register(a Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[a.ID()] = a
}

// Resolve returns the adapter for an identifier. Unknown identifiers yield
// an UNKNOWN_BOT StandardError; the caller records it as a per-bot error
// result and continues.
func (r *Registry) Resolve(id string) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[id]
	if !ok {
		return nil, errors.NewUnknownBotError(id)
	}
	return a, nil
}

// IDs returns all registered identifiers, sorted.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.adapters))
	for id := range r.adapters {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of registered adapters.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.adapters)
}
