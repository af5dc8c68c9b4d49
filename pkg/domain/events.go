package domain

import "time"

// PassReport summarises one ordered evaluation of every event.
type PassReport struct {
	Evaluated   int
	Fired       []string
	Failed      []string
	Transitions int
	Duration    time.Duration
}

// TransitionEvent records an activation state change of an event.
type TransitionEvent struct {
	Event string
	From  EventState
	To    EventState
}

// Hooks defines callbacks for engine observability.
// Every field is optional.
type Hooks struct {
	OnPass            func(PassReport)
	OnEventFired      func(event string)
	OnEventError      func(event string, err error)
	OnEventTransition func(TransitionEvent)
	OnComponentError  func(label string, err error)
}

// Pass reports a finished pass.
func (h Hooks) Pass(r PassReport) {
	if h.OnPass != nil {
		h.OnPass(r)
	}
}

// Fired reports a trigger effect that ran.
func (h Hooks) Fired(event string) {
	if h.OnEventFired != nil {
		h.OnEventFired(event)
	}
}

// Error reports a failure isolated to one event.
func (h Hooks) Error(event string, err error) {
	if h.OnEventError != nil {
		h.OnEventError(event, err)
	}
}

// Transition reports an activation state change.
func (h Hooks) Transition(e TransitionEvent) {
	if h.OnEventTransition != nil {
		h.OnEventTransition(e)
	}
}

// ComponentError reports a driver failure caught at the component boundary.
func (h Hooks) ComponentError(label string, err error) {
	if h.OnComponentError != nil {
		h.OnComponentError(label, err)
	}
}

// Merge returns hooks that call h first and then other.
func (h Hooks) Merge(other Hooks) Hooks {
	return Hooks{
		OnPass:            func(r PassReport) { h.Pass(r); other.Pass(r) },
		OnEventFired:      func(e string) { h.Fired(e); other.Fired(e) },
		OnEventError:      func(e string, err error) { h.Error(e, err); other.Error(e, err) },
		OnEventTransition: func(t TransitionEvent) { h.Transition(t); other.Transition(t) },
		OnComponentError:  func(l string, err error) { h.ComponentError(l, err); other.ComponentError(l, err) },
	}
}
