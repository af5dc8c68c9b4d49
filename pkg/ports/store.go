package ports

import (
	"context"

	"github.com/aretw0/tendril/pkg/domain"
)

// DefinitionStore persists the full component/event definition.
type DefinitionStore interface {
	// Save replaces the persisted definition.
	Save(ctx context.Context, def *domain.Definition) error

	// Load retrieves the persisted definition.
	// Returns domain.ErrDefinitionNotFound if nothing was saved yet.
	Load(ctx context.Context) (*domain.Definition, error)
}

// UpdateSource supplies incremental update documents from the client application.
type UpdateSource interface {
	// Poll returns the next update, or nil when there is nothing new.
	Poll(ctx context.Context) (*domain.Definition, error)
}

// SnapshotSink receives the snapshots the controller emits between passes.
type SnapshotSink interface {
	// PublishComponents receives the current component definitions.
	PublishComponents(ctx context.Context, components domain.ComponentSet) error
	// PublishEvents receives the current event definitions.
	PublishEvents(ctx context.Context, events []domain.EventDef) error
	// PublishFeed receives the live display feed.
	PublishFeed(ctx context.Context, feed domain.Feed) error
}
