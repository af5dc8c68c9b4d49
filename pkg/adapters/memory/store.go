package memory

import (
	"context"
	"sync"

	"github.com/aretw0/tendril/pkg/domain"
)

// Store implements ports.DefinitionStore in memory.
// Safe for concurrent use.
type Store struct {
	def *domain.Definition
	mu  sync.RWMutex
}

// NewStore creates a new empty in-memory store.
func NewStore() *Store {
	return &Store{}
}

// Save keeps a copy of def.
func (s *Store) Save(ctx context.Context, def *domain.Definition) error {
	copied := def.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.def = copied
	return nil
}

// Load returns a copy of the saved definition.
func (s *Store) Load(ctx context.Context) (*domain.Definition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.def == nil {
		return nil, domain.ErrDefinitionNotFound
	}
	// Copy on read so callers can't mutate the stored definition.
	return s.def.Clone(), nil
}
