package component

import (
	"fmt"

	"github.com/aretw0/tendril/pkg/domain"
)

var counterCaps = numericCaps.Extend(nil, []domain.Action{domain.ActionIncrease, domain.ActionDecrease})

// Counter is an integer tally.
type Counter struct {
	base
}

// NewCounter creates a counter starting at the configured value.
func NewCounter(label string, config any, deps Deps) (domain.Component, error) {
	v, err := domain.Coerce(config, domain.TypeInt)
	if err != nil {
		return nil, fmt.Errorf("%w: counter %s: %v", domain.ErrInvalidConfig, label, err)
	}
	if v.IsNone() {
		v = domain.IntValue(0)
	}
	c := &Counter{base: newBase(label, domain.KindCounter, domain.TypeInt, config, counterCaps, deps)}
	c.value = v
	return c, nil
}

func (c *Counter) Value() domain.Value { return c.value }

func (c *Counter) Evaluate(p domain.Predicate, arg domain.Value) (bool, error) {
	if !c.caps.HasPredicate(p) {
		return false, c.unknownPredicate(p)
	}
	return compare(p, c.value, arg)
}

func (c *Counter) Perform(a domain.Action, arg domain.Value) error {
	switch a {
	case domain.ActionSetValue:
		v, err := coerceArg(arg, domain.TypeInt)
		if err != nil {
			return err
		}
		c.value = v
	case domain.ActionIncrease, domain.ActionDecrease:
		n, err := coerceArg(arg, domain.TypeInt)
		if err != nil {
			return err
		}
		if a == domain.ActionDecrease {
			c.value = domain.IntValue(c.value.AsInt() - n.AsInt())
		} else {
			c.value = domain.IntValue(c.value.AsInt() + n.AsInt())
		}
	default:
		return c.unknownAction(a)
	}
	return nil
}
