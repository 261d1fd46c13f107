package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"orquix-backend/pkg/llm"
)

// Registry holds the configured provider adapters keyed by name.
// Dispatch is by name, never by concrete type.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]llm.Adapter
}

func New() *Registry {
	return &Registry{
		adapters: make(map[string]llm.Adapter),
	}
}

func (r *Registry) Register(adapter llm.Adapter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := adapter.Name()
	if _, exists := r.adapters[name]; exists {
		return fmt.Errorf("adapter %q already registered", name)
	}
	r.adapters[name] = adapter
	return nil
}

func (r *Registry) Get(name string) (llm.Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[name]
	return a, ok
}

// All returns the registered adapters in stable name order.
func (r *Registry) All() []llm.Adapter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]llm.Adapter, 0, len(names))
	for _, name := range names {
		out = append(out, r.adapters[name])
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.adapters)
}

// Health probes every adapter and returns per-provider results.
func (r *Registry) Health(ctx context.Context) map[string]error {
	results := make(map[string]error)
	for _, adapter := range r.All() {
		results[adapter.Name()] = adapter.Health(ctx)
	}
	return results
}
