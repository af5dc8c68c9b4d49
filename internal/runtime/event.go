package runtime

import (
	"errors"

	"github.com/aretw0/tendril/pkg/domain"
)

// Event is a trigger Condition and its Effect, gated by an ACTIVE/DEACTIVATED
// state. The optional activate and deactivate Conditions move the state; an
// Event without them stays ACTIVE.
type Event struct {
	label      string
	trigger    *Condition
	effect     *Effect
	activate   *Condition
	deactivate *Condition
	state      domain.EventState
}

// NewEvent creates an ACTIVE event. activate and deactivate may be nil.
func NewEvent(label string, trigger *Condition, effect *Effect, activate, deactivate *Condition) *Event {
	return &Event{
		label:      label,
		trigger:    trigger,
		effect:     effect,
		activate:   activate,
		deactivate: deactivate,
		state:      domain.EventActive,
	}
}

// Outcome reports what one evaluation of an Event did.
type Outcome struct {
	Fired      bool
	Transition *domain.TransitionEvent
}

func (e *Event) Label() string                { return e.label }
func (e *Event) State() domain.EventState     { return e.state }
func (e *Event) SetState(s domain.EventState) { e.state = s }

// Evaluate runs one tick of the event:
//
//  1. if ACTIVE and the trigger holds, perform the effect;
//  2. if ACTIVE and the deactivate condition holds, become DEACTIVATED;
//     otherwise if DEACTIVATED and the activate condition holds, become ACTIVE.
//
// Step 2 sees the state left by step 1, so at most one transition happens
// per tick. Errors from either step are joined; a failing condition counts
// as false.
func (e *Event) Evaluate() (Outcome, error) {
	var (
		out  Outcome
		errs []error
	)

	if e.state == domain.EventActive {
		ok, err := e.trigger.Evaluate()
		if err != nil {
			errs = append(errs, err)
		}
		if ok {
			out.Fired = true
			if err := e.effect.Perform(); err != nil {
				errs = append(errs, err)
			}
		}
	}

	from := e.state
	switch {
	case e.state == domain.EventActive && e.deactivate != nil:
		ok, err := e.deactivate.Evaluate()
		if err != nil {
			errs = append(errs, err)
		}
		if ok {
			e.state = domain.EventDeactivated
		}
	case e.state == domain.EventDeactivated && e.activate != nil:
		ok, err := e.activate.Evaluate()
		if err != nil {
			errs = append(errs, err)
		}
		if ok {
			e.state = domain.EventActive
		}
	}
	if e.state != from {
		out.Transition = &domain.TransitionEvent{Event: e.label, From: from, To: e.state}
	}

	return out, errors.Join(errs...)
}

// Definition re-emits the persisted form of the event.
func (e *Event) Definition() domain.EventDef {
	def := domain.EventDef{
		Label:      e.label,
		Conditions: e.trigger.Definitions(),
		Effects:    e.effect.Definitions(),
	}
	if def.Conditions == nil {
		def.Conditions = []domain.CheckDef{}
	}
	if def.Effects == nil {
		def.Effects = []domain.ActionDef{}
	}
	if e.activate != nil {
		def.Activate = e.activate.Definitions()
	}
	if e.deactivate != nil {
		def.Deactivate = e.deactivate.Definitions()
	}
	return def
}
