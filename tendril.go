package tendril

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/tendril/internal/component"
	"github.com/aretw0/tendril/internal/logging"
	"github.com/aretw0/tendril/internal/runtime"
	"github.com/aretw0/tendril/pkg/domain"
	"github.com/aretw0/tendril/pkg/ports"
	"github.com/aretw0/tendril/pkg/registry"
)

// Controller owns the live components and events and drives them.
// Its methods are safe for concurrent use; a pass never overlaps an update.
type Controller struct {
	mu       sync.Mutex
	registry *registry.Registry
	engine   *runtime.Engine
	resolver *runtime.Resolver
	factory  *component.Factory
	drivers  Drivers

	store   ports.DefinitionStore
	sources []ports.UpdateSource
	sinks   []ports.SnapshotSink
	locker  ports.DistributedLocker
	lockKey string
	lockTTL time.Duration

	tickPeriod time.Duration
	syncPeriod time.Duration
	feedPeriod time.Duration

	hooks  domain.Hooks
	logger *slog.Logger
	clock  ports.Clock

	// dirty is set when the live set changed since the last snapshot.
	dirty bool
}

// New initializes a Controller with no components and no events.
func New(opts ...Option) (*Controller, error) {
	c := &Controller{
		tickPeriod: DefaultTickPeriod,
		syncPeriod: DefaultSyncPeriod,
		feedPeriod: DefaultFeedPeriod,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.tickPeriod <= 0 || c.syncPeriod <= 0 || c.feedPeriod <= 0 {
		return nil, fmt.Errorf("loop periods must be positive")
	}
	if c.locker != nil && c.lockKey == "" {
		return nil, fmt.Errorf("lock key is required when a locker is set")
	}
	if c.logger == nil {
		c.logger = logging.NewNop()
	}
	if c.clock == nil {
		c.clock = ports.SystemClock{}
	}

	if c.factory == nil {
		deps := component.Deps{
			GPIO:    c.drivers.GPIO,
			ADC:     c.drivers.ADC,
			Clock:   c.clock,
			Logger:  c.logger,
			OnError: c.hooks.ComponentError,
		}
		if c.drivers.Video != nil {
			deps.Video = component.NewPlayer(c.drivers.Video, component.VideoCooldown,
				component.WithPlayerClock(c.clock), component.WithPlayerLogger(c.logger.With("player", "video")))
		}
		if c.drivers.Audio != nil {
			deps.Audio = component.NewPlayer(c.drivers.Audio, component.AudioCooldown,
				component.WithPlayerClock(c.clock), component.WithPlayerLogger(c.logger.With("player", "audio")))
		}
		c.factory = component.NewFactory(deps)
	}

	c.resolver = runtime.NewResolver(c.factory)
	c.registry = registry.New()
	c.engine = runtime.NewEngine(
		runtime.WithHooks(c.hooks),
		runtime.WithLogger(c.logger),
		runtime.WithClock(c.clock),
	)
	return c, nil
}

// Load replaces the live set with the persisted definition. A store with
// nothing persisted yet leaves the controller with no rules active.
func (c *Controller) Load(ctx context.Context) error {
	if c.store == nil {
		return nil
	}
	def, err := c.store.Load(ctx)
	if errors.Is(err, domain.ErrDefinitionNotFound) {
		c.logger.Info("No definition persisted, no rules active")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load definition: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.apply(def); err != nil {
		return fmt.Errorf("failed to resolve persisted definition: %w", err)
	}
	// Freshly loaded state matches the store.
	c.dirty = false
	c.logger.Info("Definition loaded", "components", c.registry.Len(), "events", len(c.engine.Events()))
	return nil
}

// Apply resolves update and swaps it in. COMPONENTS and EVENTS are optional;
// an absent section keeps the live one. When only components change, the
// live event definitions are re-resolved against the new components. On
// error nothing changes.
func (c *Controller) Apply(ctx context.Context, update *domain.Definition) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.apply(update)
}

func (c *Controller) apply(update *domain.Definition) error {
	if update.IsEmpty() {
		return nil
	}

	reg := c.registry
	if update.Components != nil {
		next, err := c.resolver.Components(update.Components)
		if err != nil {
			return err
		}
		reg = next
	}

	defs := update.Events
	keepStates := defs == nil
	if keepStates {
		defs = c.engine.Definitions()
	}
	events, err := c.resolver.Events(reg, defs)
	if err != nil {
		return err
	}

	if keepStates {
		states := make(map[string]domain.EventState, len(events))
		for _, ev := range c.engine.Events() {
			states[ev.Label()] = ev.State()
		}
		for _, ev := range events {
			if s, ok := states[ev.Label()]; ok {
				ev.SetState(s)
			}
		}
	}

	c.registry = reg
	c.engine.SetEvents(events)
	c.dirty = true
	c.logger.Info("Definition applied",
		"components", reg.Len(),
		"events", len(events),
		"components_updated", update.Components != nil,
		"events_updated", update.Events != nil,
	)
	return nil
}

// Tick samples every physical input once, then runs one evaluation pass
// over every event against that sample.
func (c *Controller) Tick(ctx context.Context) domain.PassReport {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.registry.Sample()
	return c.engine.Pass(ctx)
}

// Sync polls every update source and applies what they return, then
// publishes and saves the definition if anything changed. A failing source
// or update does not stop the others; all failures are returned joined.
func (c *Controller) Sync(ctx context.Context) error {
	var errs []error

	for _, src := range c.sources {
		update, err := src.Poll(ctx)
		if err != nil {
			c.logger.Warn("Update source failed", "err", err)
			errs = append(errs, err)
			continue
		}
		if update == nil {
			continue
		}
		if err := c.Apply(ctx, update); err != nil {
			c.logger.Error("Rejected update", "err", err)
			errs = append(errs, fmt.Errorf("rejected update: %w", err))
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dirty {
		if err := c.snapshot(ctx, true); err != nil {
			errs = append(errs, err)
		} else {
			c.dirty = false
		}
	}
	return errors.Join(errs...)
}

// snapshot publishes component and event definitions and, with save, writes
// the full definition to the store. Caller holds mu.
func (c *Controller) snapshot(ctx context.Context, save bool) error {
	def := c.definition()
	var errs []error
	for _, sink := range c.sinks {
		if err := sink.PublishComponents(ctx, def.Components); err != nil {
			errs = append(errs, fmt.Errorf("publish components: %w", err))
		}
		if err := sink.PublishEvents(ctx, def.Events); err != nil {
			errs = append(errs, fmt.Errorf("publish events: %w", err))
		}
	}
	if save && c.store != nil {
		if err := c.store.Save(ctx, def); err != nil {
			errs = append(errs, fmt.Errorf("save definition: %w", err))
		}
	}
	return errors.Join(errs...)
}

// PublishFeed publishes the display feed built from the last sampled values.
func (c *Controller) PublishFeed(ctx context.Context) error {
	c.mu.Lock()
	feed := c.registry.Feed()
	c.mu.Unlock()

	var errs []error
	for _, sink := range c.sinks {
		if err := sink.PublishFeed(ctx, feed); err != nil {
			errs = append(errs, fmt.Errorf("publish feed: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Definition returns the persisted form of the live set.
func (c *Controller) Definition() *domain.Definition {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.definition()
}

func (c *Controller) definition() *domain.Definition {
	return &domain.Definition{
		Components: c.registry.Definitions(),
		Events:     c.engine.Definitions(),
	}
}

// Feed returns the display feed. It never samples inputs.
func (c *Controller) Feed() domain.Feed {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.registry.Feed()
}

// Component returns the live component with label.
func (c *Controller) Component(label string) (domain.Component, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.registry.Lookup(label)
}

// EventStates returns the activation state of every event, by label.
func (c *Controller) EventStates() map[string]domain.EventState {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]domain.EventState, len(c.engine.Events()))
	for _, ev := range c.engine.Events() {
		out[ev.Label()] = ev.State()
	}
	return out
}

// Run takes the lock if one is configured, loads the persisted definition,
// publishes the initial snapshots and then drives the loop until ctx is
// cancelled. Sync and feed publication run between passes on their own
// cadences.
func (c *Controller) Run(ctx context.Context) error {
	if c.locker != nil {
		c.logger.Info("Acquiring controller lock", "key", c.lockKey)
		unlock, err := c.locker.Lock(ctx, c.lockKey, c.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire lock %s: %w", c.lockKey, err)
		}
		defer func() {
			if err := unlock(context.Background()); err != nil {
				c.logger.Warn("Failed to release lock", "key", c.lockKey, "err", err)
			}
		}()
	}

	if err := c.Load(ctx); err != nil {
		return err
	}

	c.mu.Lock()
	if err := c.snapshot(ctx, false); err != nil {
		c.logger.Warn("Initial snapshot failed", "err", err)
	}
	c.mu.Unlock()
	if err := c.PublishFeed(ctx); err != nil {
		c.logger.Warn("Feed publish failed", "err", err)
	}

	tick := time.NewTicker(c.tickPeriod)
	defer tick.Stop()
	syncT := time.NewTicker(c.syncPeriod)
	defer syncT.Stop()
	feedT := time.NewTicker(c.feedPeriod)
	defer feedT.Stop()

	c.logger.Info("Controller running", "tick", c.tickPeriod, "sync", c.syncPeriod, "feed", c.feedPeriod)
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("Controller stopped")
			return nil
		case <-tick.C:
			c.Tick(ctx)
		case <-syncT.C:
			if err := c.Sync(ctx); err != nil {
				c.logger.Warn("Sync finished with errors", "err", err)
			}
		case <-feedT.C:
			if err := c.PublishFeed(ctx); err != nil {
				c.logger.Warn("Feed publish failed", "err", err)
			}
		}
	}
}
