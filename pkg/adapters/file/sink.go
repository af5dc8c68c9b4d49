package file

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aretw0/tendril/pkg/domain"
)

// Sink writes the client-facing snapshots next to the definitions.
type Sink struct {
	BasePath string
}

func NewSink(basePath string) *Sink {
	if basePath == "" {
		basePath = "."
	}
	return &Sink{BasePath: basePath}
}

func (s *Sink) PublishComponents(ctx context.Context, components domain.ComponentSet) error {
	return s.write(ComponentsFile, components)
}

func (s *Sink) PublishEvents(ctx context.Context, events []domain.EventDef) error {
	if events == nil {
		events = []domain.EventDef{}
	}
	return s.write(EventsFile, events)
}

func (s *Sink) PublishFeed(ctx context.Context, feed domain.Feed) error {
	return s.write(FeedFile, feed)
}

func (s *Sink) write(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}
	return writeAtomic(s.BasePath, name, data)
}
