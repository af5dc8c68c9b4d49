package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/aretw0/tendril/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// Sink stores the latest snapshots under prefix+"components", "events" and
// "feed", and publishes each feed change as a FeedDiff on the prefix+"feed"
// channel.
type Sink struct {
	client *backend.Client
	prefix string

	mu   sync.Mutex
	last domain.Feed
}

func NewSink(client *backend.Client, prefix string) *Sink {
	return &Sink{client: client, prefix: prefix}
}

// FeedChannel is the pub/sub channel carrying feed diffs.
func (s *Sink) FeedChannel() string { return s.prefix + "feed" }

func (s *Sink) PublishComponents(ctx context.Context, components domain.ComponentSet) error {
	return s.set(ctx, "components", components)
}

func (s *Sink) PublishEvents(ctx context.Context, events []domain.EventDef) error {
	if events == nil {
		events = []domain.EventDef{}
	}
	return s.set(ctx, "events", events)
}

// PublishFeed stores the feed and publishes what changed since the last call.
func (s *Sink) PublishFeed(ctx context.Context, feed domain.Feed) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.set(ctx, "feed", feed); err != nil {
		return err
	}
	diff := domain.DiffFeed(s.last, feed)
	s.last = feed
	if diff == nil {
		return nil
	}
	data, err := json.Marshal(diff)
	if err != nil {
		return fmt.Errorf("failed to marshal feed diff: %w", err)
	}
	if err := s.client.Publish(ctx, s.FeedChannel(), data).Err(); err != nil {
		return fmt.Errorf("failed to publish feed diff: %w", err)
	}
	return nil
}

func (s *Sink) set(ctx context.Context, name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}
	if err := s.client.Set(ctx, s.prefix+name, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to store %s: %w", name, err)
	}
	return nil
}
