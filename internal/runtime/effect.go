package runtime

import (
	"errors"
	"fmt"

	"github.com/aretw0/tendril/pkg/domain"
)

// Step is one resolved action call.
type Step struct {
	Component domain.Component
	Action    domain.Action
	Method    string
	Raw       any
	Arg       domain.Value
}

// Effect is an ordered list of actions.
type Effect struct {
	Steps []Step
}

// Perform runs every step in order. A failing step does not stop the
// remaining ones; all failures are returned joined.
func (e *Effect) Perform() error {
	if e == nil {
		return nil
	}
	var errs []error
	for i, s := range e.Steps {
		if err := s.Component.Perform(s.Action, s.Arg); err != nil {
			errs = append(errs, fmt.Errorf("step %d %s.%s: %w", i, s.Component.Label(), s.Action, err))
		}
	}
	return errors.Join(errs...)
}

// Len returns the number of steps.
func (e *Effect) Len() int {
	if e == nil {
		return 0
	}
	return len(e.Steps)
}

// Definitions re-emits the persisted form of the steps.
func (e *Effect) Definitions() []domain.ActionDef {
	if e == nil {
		return nil
	}
	defs := make([]domain.ActionDef, 0, len(e.Steps))
	for _, s := range e.Steps {
		defs = append(defs, domain.ActionDef{
			Label:  s.Component.Label(),
			Method: s.Method,
			Arg:    s.Raw,
		})
	}
	return defs
}
