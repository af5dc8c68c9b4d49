package runtime

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/tendril/internal/logging"
	"github.com/aretw0/tendril/pkg/domain"
	"github.com/aretw0/tendril/pkg/ports"
)

// Engine evaluates an ordered list of events, one pass at a time.
// It is not safe for concurrent use; the controller owns it.
type Engine struct {
	events []*Event
	hooks  domain.Hooks
	logger *slog.Logger
	clock  ports.Clock
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithHooks sets the lifecycle observers.
func WithHooks(h domain.Hooks) EngineOption {
	return func(e *Engine) { e.hooks = h }
}

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithClock sets the clock used to time passes.
func WithClock(c ports.Clock) EngineOption {
	return func(e *Engine) {
		if c != nil {
			e.clock = c
		}
	}
}

// NewEngine creates an engine with no events.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		logger: logging.NewNop(),
		clock:  ports.SystemClock{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetEvents replaces the event list. Call it between passes only.
func (e *Engine) SetEvents(events []*Event) {
	e.events = events
}

// Events returns the live event list in evaluation order.
func (e *Engine) Events() []*Event {
	return e.events
}

// Definitions re-emits the persisted form of every event, in order.
func (e *Engine) Definitions() []domain.EventDef {
	defs := make([]domain.EventDef, 0, len(e.events))
	for _, ev := range e.events {
		defs = append(defs, ev.Definition())
	}
	return defs
}

// Pass evaluates every event once, in order. A failure or panic inside one
// event is logged and reported, then evaluation moves on to the next event.
// The context is checked between events; a cancelled pass stops early.
func (e *Engine) Pass(ctx context.Context) domain.PassReport {
	start := e.clock.Now()
	var report domain.PassReport

	for _, ev := range e.events {
		if ctx.Err() != nil {
			break
		}
		report.Evaluated++

		out, err := e.evaluate(ev)
		if out.Fired {
			report.Fired = append(report.Fired, ev.Label())
			e.hooks.Fired(ev.Label())
		}
		if out.Transition != nil {
			report.Transitions++
			e.logger.Debug("Event transition", "event", ev.Label(), "from", out.Transition.From, "to", out.Transition.To)
			e.hooks.Transition(*out.Transition)
		}
		if err != nil {
			report.Failed = append(report.Failed, ev.Label())
			e.logger.Warn("Event evaluation failed", "event", ev.Label(), "err", err)
			e.hooks.Error(ev.Label(), err)
		}
	}

	report.Duration = e.clock.Now().Sub(start)
	e.hooks.Pass(report)
	return report
}

func (e *Engine) evaluate(ev *Event) (out Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in event %s: %v", ev.Label(), r)
		}
	}()
	return ev.Evaluate()
}
