package runtime

import (
	"errors"
	"fmt"

	"github.com/aretw0/tendril/internal/component"
	"github.com/aretw0/tendril/pkg/domain"
	"github.com/aretw0/tendril/pkg/registry"
)

// Definition sections, as named in the persisted format.
const (
	SectionConditions = "CONDITIONS"
	SectionEffects    = "EFFECTS"
	SectionActivate   = "ACTIVATE"
	SectionDeactivate = "DEACTIVATE"
)

// Resolver binds definitions to live components.
type Resolver struct {
	factory *component.Factory
}

// NewResolver creates a resolver building components with factory.
func NewResolver(factory *component.Factory) *Resolver {
	return &Resolver{factory: factory}
}

// Components creates every component of set in a new registry. Kinds are
// created in sorted order and labels in declared order. All failures are
// returned joined and no registry is returned.
func (r *Resolver) Components(set domain.ComponentSet) (*registry.Registry, error) {
	reg := registry.New()
	var errs []error
	for _, kind := range set.Kinds() {
		for _, def := range set[kind] {
			c, err := r.factory.Create(kind, def.Label, def.Value)
			if err != nil {
				errs = append(errs, fmt.Errorf("component %q: %w", def.Label, err))
				continue
			}
			if err := reg.Add(c); err != nil {
				errs = append(errs, err)
			}
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return reg, nil
}

// Events resolves every event definition against reg. A rule that names an
// unknown label, an unsupported method or an uncoercible literal is rejected
// with a *domain.ResolveError; all failures are returned joined and no events
// are returned.
func (r *Resolver) Events(reg *registry.Registry, defs []domain.EventDef) ([]*Event, error) {
	events := make([]*Event, 0, len(defs))
	seen := make(map[string]bool, len(defs))
	var errs []error

	for _, def := range defs {
		if seen[def.Label] {
			errs = append(errs, fmt.Errorf("%w: %s", domain.ErrDuplicateEvent, def.Label))
			continue
		}
		seen[def.Label] = true

		ev, err := resolveEvent(reg, def)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		events = append(events, ev)
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return events, nil
}

// Resolve builds both components and events of a full definition.
func (r *Resolver) Resolve(def *domain.Definition) (*registry.Registry, []*Event, error) {
	if def == nil {
		def = &domain.Definition{}
	}
	reg, err := r.Components(def.Components)
	if err != nil {
		return nil, nil, err
	}
	events, err := r.Events(reg, def.Events)
	if err != nil {
		return nil, nil, err
	}
	return reg, events, nil
}

func resolveEvent(reg *registry.Registry, def domain.EventDef) (*Event, error) {
	var errs []error

	trigger, err := resolveCondition(reg, def.Label, SectionConditions, def.Conditions)
	errs = append(errs, err)
	effect, err := resolveEffect(reg, def.Label, def.Effects)
	errs = append(errs, err)

	var activate, deactivate *Condition
	if len(def.Activate) > 0 {
		activate, err = resolveCondition(reg, def.Label, SectionActivate, def.Activate)
		errs = append(errs, err)
	}
	if len(def.Deactivate) > 0 {
		deactivate, err = resolveCondition(reg, def.Label, SectionDeactivate, def.Deactivate)
		errs = append(errs, err)
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return NewEvent(def.Label, trigger, effect, activate, deactivate), nil
}

func resolveCondition(reg *registry.Registry, event, section string, defs []domain.CheckDef) (*Condition, error) {
	cond := &Condition{Checks: make([]Check, 0, len(defs))}
	var errs []error

	for i, def := range defs {
		fail := func(err error) {
			errs = append(errs, &domain.ResolveError{
				Event: event, Section: section, Index: i, Label: def.Label, Method: def.Method, Err: err,
			})
		}

		c, ok := reg.Lookup(def.Label)
		if !ok {
			fail(domain.ErrUnresolvedReference)
			continue
		}
		p, ok := domain.ParsePredicate(def.Method)
		if !ok || !c.Capabilities().HasPredicate(p) {
			fail(fmt.Errorf("%w: %s on %s", domain.ErrUnknownCapability, def.Method, c.Kind()))
			continue
		}
		v, err := bindArg(c, p.Arg(), def.Value)
		if err != nil {
			fail(err)
			continue
		}
		cond.Checks = append(cond.Checks, Check{Component: c, Predicate: p, Method: def.Method, Raw: def.Value, Value: v})
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cond, nil
}

func resolveEffect(reg *registry.Registry, event string, defs []domain.ActionDef) (*Effect, error) {
	eff := &Effect{Steps: make([]Step, 0, len(defs))}
	var errs []error

	for i, def := range defs {
		fail := func(err error) {
			errs = append(errs, &domain.ResolveError{
				Event: event, Section: SectionEffects, Index: i, Label: def.Label, Method: def.Method, Err: err,
			})
		}

		c, ok := reg.Lookup(def.Label)
		if !ok {
			fail(domain.ErrUnresolvedReference)
			continue
		}
		a, ok := domain.ParseAction(def.Method)
		if !ok || !c.Capabilities().HasAction(a) {
			fail(fmt.Errorf("%w: %s on %s", domain.ErrUnknownCapability, def.Method, c.Kind()))
			continue
		}
		v, err := bindArg(c, a.Arg(), def.Arg)
		if err != nil {
			fail(err)
			continue
		}
		eff.Steps = append(eff.Steps, Step{Component: c, Action: a, Method: def.Method, Raw: def.Arg, Arg: v})
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return eff, nil
}

// bindArg coerces a literal to the shape the method expects. Literals for
// string-valued kinds with enumerated states must name one of those states.
func bindArg(c domain.Component, kind domain.ArgKind, raw any) (domain.Value, error) {
	switch kind {
	case domain.ArgNone:
		return domain.NoValue(), nil
	case domain.ArgState:
		s, ok := raw.(string)
		if !ok {
			return domain.NoValue(), fmt.Errorf("%w: state must be a string, got %T", domain.ErrTypeCoercion, raw)
		}
		return parseState(c, s)
	}

	v, err := domain.Coerce(raw, c.ValueType())
	switch {
	case err != nil:
		return domain.NoValue(), err
	case v.IsNone() && kind == domain.ArgOptional:
		return v, nil
	case v.IsNone():
		return v, fmt.Errorf("%w: missing argument", domain.ErrTypeCoercion)
	}
	if _, ok := c.(domain.StateParser); ok && c.ValueType() == domain.TypeString {
		return parseState(c, v.AsString())
	}
	return v, nil
}

func parseState(c domain.Component, s string) (domain.Value, error) {
	if sp, ok := c.(domain.StateParser); ok {
		parsed, err := sp.ParseState(s)
		if err != nil {
			return domain.NoValue(), err
		}
		s = parsed
	}
	return domain.StringValue(s), nil
}
