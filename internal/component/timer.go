package component

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/aretw0/tendril/pkg/domain"
	"github.com/aretw0/tendril/pkg/ports"
)

var timerCaps = numericCaps.Extend(
	[]domain.Predicate{domain.PredicateGetState},
	[]domain.Action{domain.ActionSetState},
)

// Timer measures elapsed seconds while RUNNING, holds its value while PAUSED
// and reads zero once STOPPED. A timer starts PAUSED at its configured value.
type Timer struct {
	base
	clock ports.Clock
	state string
	start time.Time
}

// NewTimer creates a paused timer holding the configured number of seconds.
func NewTimer(label string, config any, deps Deps) (domain.Component, error) {
	v, err := domain.Coerce(config, domain.TypeFloat)
	if err != nil {
		return nil, fmt.Errorf("%w: timer %s: %v", domain.ErrInvalidConfig, label, err)
	}
	if v.IsNone() {
		v = domain.FloatValue(0)
	}
	clock := deps.Clock
	if clock == nil {
		clock = ports.SystemClock{}
	}
	t := &Timer{
		base:  newBase(label, domain.KindTimer, domain.TypeFloat, config, timerCaps, deps),
		clock: clock,
		state: domain.TimerPaused,
	}
	t.value = v
	t.start = clock.Now().Add(-seconds(v.AsFloat()))
	return t, nil
}

// State returns STOPPED, PAUSED or RUNNING.
func (t *Timer) State() string { return t.state }

func (t *Timer) refresh() {
	if t.state == domain.TimerRunning {
		t.value = domain.FloatValue(t.clock.Now().Sub(t.start).Seconds())
	}
}

func (t *Timer) Value() domain.Value {
	t.refresh()
	return t.value
}

func (t *Timer) String() string {
	return fmt.Sprintf("%s | %s | %s | %s", t.kind, t.label, t.Value(), t.state)
}

func (t *Timer) Evaluate(p domain.Predicate, arg domain.Value) (bool, error) {
	t.refresh()
	switch p {
	case domain.PredicateEqualTo:
		want, err := coerceArg(arg, domain.TypeFloat)
		if err != nil {
			return false, err
		}
		return tenths(t.value.AsFloat()) == tenths(want.AsFloat()), nil
	case domain.PredicateGreaterThan, domain.PredicateLessThan:
		return compare(p, t.value, arg)
	case domain.PredicateGetState:
		want, err := t.ParseState(arg.AsString())
		if err != nil {
			return false, err
		}
		return t.state == want, nil
	}
	return false, t.unknownPredicate(p)
}

func (t *Timer) Perform(a domain.Action, arg domain.Value) error {
	switch a {
	case domain.ActionSetValue:
		v, err := coerceArg(arg, domain.TypeFloat)
		if err != nil {
			return err
		}
		t.start = t.clock.Now().Add(-seconds(v.AsFloat()))
		t.value = v
		return nil
	case domain.ActionSetState:
		next, err := t.ParseState(arg.AsString())
		if err != nil {
			return err
		}
		t.setState(next)
		return nil
	}
	return t.unknownAction(a)
}

func (t *Timer) setState(next string) {
	t.refresh()
	prev := t.state
	t.state = next
	switch next {
	case domain.TimerRunning:
		if prev != domain.TimerRunning {
			t.start = t.clock.Now().Add(-seconds(t.value.AsFloat()))
		}
	case domain.TimerStopped:
		t.value = domain.FloatValue(0)
		t.start = t.clock.Now()
	}
}

// ParseState accepts RUN, PAUSE and STOP with or without the -ED/-ING suffix.
func (t *Timer) ParseState(name string) (string, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "RUN", "RUNNING", "START", "STARTED":
		return domain.TimerRunning, nil
	case "PAUSE", "PAUSED":
		return domain.TimerPaused, nil
	case "STOP", "STOPPED":
		return domain.TimerStopped, nil
	}
	return "", fmt.Errorf("%w: timer state %q", domain.ErrTypeCoercion, name)
}

func tenths(f float64) float64 { return math.Round(f*10) / 10 }

func seconds(f float64) time.Duration { return time.Duration(f * float64(time.Second)) }
