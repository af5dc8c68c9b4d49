package memory

import (
	"context"
	"sync"

	"github.com/aretw0/tendril/pkg/domain"
)

// Sink keeps the latest snapshot of each kind.
type Sink struct {
	mu         sync.RWMutex
	components domain.ComponentSet
	events     []domain.EventDef
	feed       domain.Feed
	feeds      int
}

func NewSink() *Sink {
	return &Sink{}
}

func (s *Sink) PublishComponents(ctx context.Context, components domain.ComponentSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.components = components
	return nil
}

func (s *Sink) PublishEvents(ctx context.Context, events []domain.EventDef) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = events
	return nil
}

func (s *Sink) PublishFeed(ctx context.Context, feed domain.Feed) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feed = feed
	s.feeds++
	return nil
}

// Components returns the last published component definitions.
func (s *Sink) Components() domain.ComponentSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.components
}

// Events returns the last published event definitions.
func (s *Sink) Events() []domain.EventDef {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.events
}

// Feed returns the last published feed and how many feeds were published.
func (s *Sink) Feed() (domain.Feed, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.feed, s.feeds
}
