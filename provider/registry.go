package provider

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
)

// Registry maps backend names to factories. Backends fill it from init, so
// it is safe for concurrent use.
type Registry[T Provider, C any] struct {
	mu        sync.RWMutex
	factories map[string]Factory[T, C]
}

func NewRegistry[T Provider, C any]() *Registry[T, C] {
	return &Registry[T, C]{factories: map[string]Factory[T, C]{}}
}

// RegisterFactory binds name to f. A later registration under the same name
// wins, which lets tests swap in fakes.
func (r *Registry[T, C]) RegisterFactory(name string, f Factory[T, C]) {
	r.mu.Lock()
	r.factories[name] = f
	r.mu.Unlock()
}

// Create builds the backend registered under name.
func (r *Registry[T, C]) Create(name string, cfg C) (T, error) {
	r.mu.RLock()
	f := r.factories[name]
	r.mu.RUnlock()
	if f == nil {
		var zero T
		return zero, fmt.Errorf("unknown provider %q (registered: %s)", name, strings.Join(r.List(), ", "))
	}
	return f(cfg)
}

// List returns the registered names in sorted order.
func (r *Registry[T, C]) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.factories))
}
