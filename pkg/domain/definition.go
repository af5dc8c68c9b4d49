package domain

import "sort"

// Definition is the persisted form of a rule set:
//
//	{"COMPONENTS": {"<KIND>": [{"LABEL": .., "VALUE": ..}]}, "EVENTS": [...]}
//
// Client update documents use the same shape; there a nil Components or
// Events means the key was absent and that part is left untouched.
type Definition struct {
	Components ComponentSet `json:"COMPONENTS" yaml:"COMPONENTS" mapstructure:"COMPONENTS"`
	Events     []EventDef   `json:"EVENTS" yaml:"EVENTS" mapstructure:"EVENTS"`
}

// ComponentSet groups component definitions by kind.
type ComponentSet map[Kind][]ComponentDef

// Kinds returns the kinds of the set in a stable (sorted) order.
func (s ComponentSet) Kinds() []Kind {
	kinds := make([]Kind, 0, len(s))
	for k := range s {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Len counts the component definitions across all kinds.
func (s ComponentSet) Len() int {
	n := 0
	for _, defs := range s {
		n += len(defs)
	}
	return n
}

// ComponentDef creates one component. VALUE is kind-specific configuration:
// an initial count or time, a pin number, a track path.
type ComponentDef struct {
	Label string `json:"LABEL" yaml:"LABEL" mapstructure:"LABEL"`
	Value any    `json:"VALUE" yaml:"VALUE" mapstructure:"VALUE"`
}

// EventDef is one rule. ACTIVATE and DEACTIVATE are optional.
type EventDef struct {
	Label      string      `json:"LABEL" yaml:"LABEL" mapstructure:"LABEL"`
	Conditions []CheckDef  `json:"CONDITIONS" yaml:"CONDITIONS" mapstructure:"CONDITIONS"`
	Effects    []ActionDef `json:"EFFECTS" yaml:"EFFECTS" mapstructure:"EFFECTS"`
	Activate   []CheckDef  `json:"ACTIVATE,omitempty" yaml:"ACTIVATE,omitempty" mapstructure:"ACTIVATE"`
	Deactivate []CheckDef  `json:"DEACTIVATE,omitempty" yaml:"DEACTIVATE,omitempty" mapstructure:"DEACTIVATE"`
}

// CheckDef references a predicate of a component by label and method name.
type CheckDef struct {
	Label  string `json:"LABEL" yaml:"LABEL" mapstructure:"LABEL"`
	Method string `json:"METHOD" yaml:"METHOD" mapstructure:"METHOD"`
	Value  any    `json:"VALUE" yaml:"VALUE" mapstructure:"VALUE"`
}

// ActionDef references an action of a component by label and method name.
type ActionDef struct {
	Label  string `json:"LABEL" yaml:"LABEL" mapstructure:"LABEL"`
	Method string `json:"METHOD" yaml:"METHOD" mapstructure:"METHOD"`
	Arg    any    `json:"ARG" yaml:"ARG" mapstructure:"ARG"`
}

// IsEmpty reports whether the definition carries neither components nor events.
func (d *Definition) IsEmpty() bool {
	return d == nil || (d.Components == nil && d.Events == nil)
}

// Clone copies the definition so the copy can be mutated independently.
// Literal values are shared; they are scalars in practice.
func (d *Definition) Clone() *Definition {
	if d == nil {
		return nil
	}
	out := &Definition{}
	if d.Components != nil {
		out.Components = make(ComponentSet, len(d.Components))
		for k, defs := range d.Components {
			out.Components[k] = append([]ComponentDef(nil), defs...)
		}
	}
	if d.Events != nil {
		out.Events = make([]EventDef, len(d.Events))
		for i, ev := range d.Events {
			out.Events[i] = ev.clone()
		}
	}
	return out
}

func (e EventDef) clone() EventDef {
	e.Conditions = cloneSlice(e.Conditions)
	e.Effects = cloneSlice(e.Effects)
	e.Activate = cloneSlice(e.Activate)
	e.Deactivate = cloneSlice(e.Deactivate)
	return e
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append(make([]T, 0, len(s)), s...)
}
