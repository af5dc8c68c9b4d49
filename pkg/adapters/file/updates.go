package file

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/aretw0/tendril/internal/dto"
	"github.com/aretw0/tendril/pkg/domain"
)

// UpdateSource reads client_updates.json, written by the client application.
// The file is left in place; each distinct content is returned once.
type UpdateSource struct {
	BasePath string

	mu       sync.Mutex
	lastHash [sha256.Size]byte
	seen     bool
}

func NewUpdateSource(basePath string) *UpdateSource {
	if basePath == "" {
		basePath = "."
	}
	return &UpdateSource{BasePath: basePath}
}

// Poll returns the update document if its content changed since the last
// call, nil otherwise. A missing or empty file means nothing to apply.
func (u *UpdateSource) Poll(ctx context.Context) (*domain.Definition, error) {
	data, err := os.ReadFile(filepath.Join(u.BasePath, ClientUpdatesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read client updates: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	sum := sha256.Sum256(data)
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.seen && sum == u.lastHash {
		return nil, nil
	}

	def, err := dto.DecodeDefinitionJSON(data)
	// A broken document is reported once, not on every poll.
	u.lastHash, u.seen = sum, true
	if err != nil {
		return nil, err
	}
	return def, nil
}
