package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aretw0/tendril/internal/dto"
	"github.com/aretw0/tendril/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// UpdateSource pops client update documents from a Redis list. Clients
// RPUSH JSON documents onto prefix+"updates".
type UpdateSource struct {
	client *backend.Client
	key    string
}

func NewUpdateSource(client *backend.Client, prefix string) *UpdateSource {
	return &UpdateSource{client: client, key: prefix + "updates"}
}

// Poll pops the oldest document, or returns nil when the list is empty.
func (u *UpdateSource) Poll(ctx context.Context) (*domain.Definition, error) {
	data, err := u.client.LPop(ctx, u.key).Bytes()
	if errors.Is(err, backend.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to pop update: %w", err)
	}
	return dto.DecodeDefinitionJSON(data)
}

// Push enqueues an update document.
func (u *UpdateSource) Push(ctx context.Context, update *domain.Definition) error {
	data, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("failed to marshal update: %w", err)
	}
	return u.client.RPush(ctx, u.key, data).Err()
}
