// Package file keeps definitions, client updates and snapshots as JSON files
// in a data directory.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/tendril/internal/dto"
	"github.com/aretw0/tendril/pkg/domain"
)

// File names inside the data directory.
const (
	DefinitionsFile   = "definitions.json"
	ClientUpdatesFile = "client_updates.json"
	ComponentsFile    = "current_components.json"
	EventsFile        = "current_events.json"
	FeedFile          = "live_feed.json"
)

// Store implements ports.DefinitionStore with definitions.json.
type Store struct {
	BasePath string
}

// NewStore creates a Store in basePath. An empty basePath means the working
// directory.
func NewStore(basePath string) *Store {
	if basePath == "" {
		basePath = "."
	}
	return &Store{BasePath: basePath}
}

// Save writes the definition atomically.
func (s *Store) Save(ctx context.Context, def *domain.Definition) error {
	data, err := json.MarshalIndent(def, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal definition: %w", err)
	}
	return writeAtomic(s.BasePath, DefinitionsFile, data)
}

// Load reads definitions.json. Integer literals are kept as json.Number.
func (s *Store) Load(ctx context.Context) (*domain.Definition, error) {
	data, err := os.ReadFile(filepath.Join(s.BasePath, DefinitionsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrDefinitionNotFound
		}
		return nil, fmt.Errorf("failed to read definitions: %w", err)
	}
	return dto.DecodeDefinitionJSON(data)
}
