package tendril

import (
	"log/slog"
	"time"

	"github.com/aretw0/tendril/internal/component"
	"github.com/aretw0/tendril/pkg/domain"
	"github.com/aretw0/tendril/pkg/ports"
)

// Default loop cadences.
const (
	DefaultTickPeriod = 100 * time.Millisecond
	DefaultSyncPeriod = 2 * time.Second
	DefaultFeedPeriod = time.Second
)

// Drivers are the hardware and playback backends behind the built-in kinds.
// A nil driver only fails the kinds that need it.
type Drivers struct {
	GPIO  ports.GPIO
	ADC   ports.ADC
	Video ports.MediaBackend
	Audio ports.MediaBackend
}

// Option defines a functional option for configuring the Controller.
type Option func(*Controller)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithHooks registers observability hooks.
func WithHooks(hooks domain.Hooks) Option {
	return func(c *Controller) {
		c.hooks = hooks
	}
}

// WithClock sets the clock used by timers, player cooldowns and pass timing.
func WithClock(clock ports.Clock) Option {
	return func(c *Controller) {
		c.clock = clock
	}
}

// WithDrivers sets the backends the built-in kinds are created with.
// Video and audio backends are wrapped in one shared player each.
func WithDrivers(d Drivers) Option {
	return func(c *Controller) {
		c.drivers = d
	}
}

// WithFactory replaces the component factory, for example to register extra
// kinds. Drivers and clock given to the controller are then ignored for
// component construction.
func WithFactory(f *component.Factory) Option {
	return func(c *Controller) {
		c.factory = f
	}
}

// WithStore sets where the full definition is loaded from and saved to.
func WithStore(store ports.DefinitionStore) Option {
	return func(c *Controller) {
		c.store = store
	}
}

// WithUpdateSource adds a source of client update documents. Sources are
// polled in the order they were added.
func WithUpdateSource(src ports.UpdateSource) Option {
	return func(c *Controller) {
		c.sources = append(c.sources, src)
	}
}

// WithSnapshotSink adds a receiver of component, event and feed snapshots.
func WithSnapshotSink(sink ports.SnapshotSink) Option {
	return func(c *Controller) {
		c.sinks = append(c.sinks, sink)
	}
}

// WithLocker makes Run hold key for as long as it runs.
func WithLocker(locker ports.DistributedLocker, key string, ttl time.Duration) Option {
	return func(c *Controller) {
		c.locker = locker
		c.lockKey = key
		c.lockTTL = ttl
	}
}

// WithTickPeriod sets the evaluation cadence.
func WithTickPeriod(d time.Duration) Option {
	return func(c *Controller) {
		c.tickPeriod = d
	}
}

// WithSyncPeriod sets how often update sources are polled and snapshots saved.
func WithSyncPeriod(d time.Duration) Option {
	return func(c *Controller) {
		c.syncPeriod = d
	}
}

// WithFeedPeriod sets how often the display feed is published.
func WithFeedPeriod(d time.Duration) Option {
	return func(c *Controller) {
		c.feedPeriod = d
	}
}
