// Package redis stores definitions, queues client updates and publishes
// snapshots in Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/tendril/internal/dto"
	"github.com/aretw0/tendril/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix is prepended to every key.
const DefaultPrefix = "tendril:"

// Store implements ports.DefinitionStore using Redis.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets the expiration of the saved definition. Zero keeps it forever.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// NewClient connects to a Redis server.
func NewClient(address, password string, db int) *backend.Client {
	return backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	return NewFromClient(NewClient(address, password, db), opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: DefaultPrefix,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *Store) definitionKey() string { return s.prefix + "definition" }
func (s *Store) revisionKey() string   { return s.prefix + "definition:revision" }

// Save writes the definition and bumps its revision in one transaction.
func (s *Store) Save(ctx context.Context, def *domain.Definition) error {
	data, err := json.Marshal(def)
	if err != nil {
		return fmt.Errorf("failed to marshal definition: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
		pipe.Set(ctx, s.definitionKey(), data, s.ttl)
		pipe.Incr(ctx, s.revisionKey())
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save definition to redis: %w", err)
	}
	return nil
}

// Load reads the definition.
func (s *Store) Load(ctx context.Context) (*domain.Definition, error) {
	data, err := s.client.Get(ctx, s.definitionKey()).Bytes()
	if errors.Is(err, backend.Nil) {
		return nil, domain.ErrDefinitionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load definition from redis: %w", err)
	}
	return dto.DecodeDefinitionJSON(data)
}

// Revision returns how many times the definition was saved.
func (s *Store) Revision(ctx context.Context) (int64, error) {
	n, err := s.client.Get(ctx, s.revisionKey()).Int64()
	if errors.Is(err, backend.Nil) {
		return 0, nil
	}
	return n, err
}

// Close closes the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}
