package query

import (
	"errors"
	"slices"
	"sync"
)

var ErrUnknownMutation = errors.New("mutation is not registered")

// Registry maps mutation names to the endpoints their success invalidates.
type Registry struct {
	mu      sync.RWMutex
	targets map[string][]string
}

func NewRegistry() *Registry {
	return &Registry{targets: make(map[string][]string)}
}

// Register declares name and the endpoints it invalidates. Registering a
// name again adds to its endpoints. A mutation that invalidates nothing is
// registered with no endpoints.
func (r *Registry) Register(name string, endpoints ...string) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur := r.targets[name]
	for _, ep := range endpoints {
		if !slices.Contains(cur, ep) {
			cur = append(cur, ep)
		}
	}
	if cur == nil {
		cur = []string{}
	}
	r.targets[name] = cur
	return r
}

// Targets returns the endpoints for name and whether name is registered.
func (r *Registry) Targets(name string) ([]string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.targets[name]
	return slices.Clone(t), ok
}
