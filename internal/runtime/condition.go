package runtime

import (
	"fmt"

	"github.com/aretw0/tendril/pkg/domain"
)

// Check is one resolved predicate call.
type Check struct {
	Component domain.Component
	Predicate domain.Predicate
	// Method is the name as written in the definition, kept for round-trips.
	Method string
	// Raw is the literal as written in the definition.
	Raw   any
	Value domain.Value
}

// Condition is a conjunction of checks evaluated in declared order.
type Condition struct {
	Checks []Check
}

// Evaluate ANDs the checks, stopping at the first false one.
// A condition without checks is true. A failing check stops evaluation and
// the condition counts as false.
func (c *Condition) Evaluate() (bool, error) {
	if c == nil {
		return true, nil
	}
	for i, chk := range c.Checks {
		ok, err := chk.Component.Evaluate(chk.Predicate, chk.Value)
		if err != nil {
			return false, fmt.Errorf("check %d %s.%s: %w", i, chk.Component.Label(), chk.Predicate, err)
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// Len returns the number of checks.
func (c *Condition) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Checks)
}

// Definitions re-emits the persisted form of the checks.
func (c *Condition) Definitions() []domain.CheckDef {
	if c == nil {
		return nil
	}
	defs := make([]domain.CheckDef, 0, len(c.Checks))
	for _, chk := range c.Checks {
		defs = append(defs, domain.CheckDef{
			Label:  chk.Component.Label(),
			Method: chk.Method,
			Value:  chk.Raw,
		})
	}
	return defs
}
