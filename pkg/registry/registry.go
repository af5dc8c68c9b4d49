package registry

import (
	"fmt"
	"sync"

	"github.com/aretw0/tendril/pkg/domain"
)

// Registry holds the live components, keyed by label.
// Events resolved against a Registry hold direct references into it and are
// only valid while that Registry is the live one.
type Registry struct {
	mu         sync.RWMutex
	components map[string]domain.Component
	order      []domain.Component
}

// New creates a new empty registry.
func New() *Registry {
	return &Registry{
		components: make(map[string]domain.Component),
	}
}

// Add registers a component.
// Labels are unique: a second component with the same label is rejected.
func (r *Registry) Add(c domain.Component) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.components[c.Label()]; exists {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateLabel, c.Label())
	}
	r.components[c.Label()] = c
	r.order = append(r.order, c)
	return nil
}

// Lookup finds a component by label.
func (r *Registry) Lookup(label string) (domain.Component, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.components[label]
	return c, ok
}

// Components returns every component in registration order.
func (r *Registry) Components() []domain.Component {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Component, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered components.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Definitions returns the persisted form of every component, grouped by kind.
func (r *Registry) Definitions() domain.ComponentSet {
	set := make(domain.ComponentSet)
	for _, c := range r.Components() {
		set[c.Kind()] = append(set[c.Kind()], domain.ComponentDef{Label: c.Label(), Value: c.Config()})
	}
	return set
}

// Sample reads every physical input once. The engine calls it at the start
// of a pass.
func (r *Registry) Sample() {
	for _, c := range r.Components() {
		if s, ok := c.(domain.Sampler); ok {
			s.Sample()
		}
	}
}

// Feed returns the live display feed. It does not sample inputs.
func (r *Registry) Feed() domain.Feed {
	feed := make(domain.Feed)
	for _, c := range r.Components() {
		feed.Set(c.Kind(), c.Label(), c.Value())
	}
	return feed
}
