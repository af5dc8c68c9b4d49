package domain

import (
	"slices"
	"strings"
)

// ArgKind describes what a predicate or action expects as its argument.
type ArgKind int

const (
	// ArgNone means the method takes no argument; any literal is ignored.
	ArgNone ArgKind = iota
	// ArgValue literals are coerced to the component's value type.
	ArgValue
	// ArgState literals name an enumerated state of the component.
	ArgState
	// ArgOptional is ArgValue where a missing literal is allowed.
	ArgOptional
)

// Predicate identifies a boolean check a component can answer.
type Predicate int

const (
	PredicateEqualTo Predicate = iota + 1
	PredicateGreaterThan
	PredicateLessThan
	PredicateGetState
)

// Action identifies a side effect a component can perform.
type Action int

const (
	ActionSetValue Action = iota + 1
	ActionIncrease
	ActionDecrease
	ActionSetState
	ActionToggle
	ActionStart
	ActionStop
	ActionPlay
)

var predicateNames = map[Predicate]string{
	PredicateEqualTo:     "equal_to",
	PredicateGreaterThan: "greater_than",
	PredicateLessThan:    "less_than",
	PredicateGetState:    "get_state",
}

var actionNames = map[Action]string{
	ActionSetValue: "set_value",
	ActionIncrease: "increase_value",
	ActionDecrease: "decrease_value",
	ActionSetState: "set_state",
	ActionToggle:   "toggle",
	ActionStart:    "start",
	ActionStop:     "stop",
	ActionPlay:     "play",
}

// Spellings accepted on top of the canonical names, already normalised.
var predicateAliases = map[string]Predicate{
	"equals": PredicateEqualTo,
	"state":  PredicateGetState,
}

var actionAliases = map[string]Action{
	"increase":      ActionIncrease,
	"increasecount": ActionIncrease,
	"decrease":      ActionDecrease,
	"decreasecount": ActionDecrease,
	"togglevalue":   ActionToggle,
}

func (p Predicate) String() string {
	if n, ok := predicateNames[p]; ok {
		return n
	}
	return "unknown_predicate"
}

// Arg reports the argument shape of the predicate.
func (p Predicate) Arg() ArgKind {
	if p == PredicateGetState {
		return ArgState
	}
	return ArgValue
}

func (a Action) String() string {
	if n, ok := actionNames[a]; ok {
		return n
	}
	return "unknown_action"
}

// Arg reports the argument shape of the action.
func (a Action) Arg() ArgKind {
	switch a {
	case ActionSetValue, ActionIncrease, ActionDecrease:
		return ArgValue
	case ActionStart:
		return ArgOptional
	case ActionSetState:
		return ArgState
	default:
		return ArgNone
	}
}

// normalizeMethod folds "Equal To", "equal_to", "equalTo" and "EQUAL-TO" to "equalto".
func normalizeMethod(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '_', '-', ' ':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(name)))
}

// ParsePredicate resolves a method name written in a rule definition.
func ParsePredicate(name string) (Predicate, bool) {
	key := normalizeMethod(name)
	for p, n := range predicateNames {
		if normalizeMethod(n) == key {
			return p, true
		}
	}
	p, ok := predicateAliases[key]
	return p, ok
}

// ParseAction resolves a method name written in a rule definition.
func ParseAction(name string) (Action, bool) {
	key := normalizeMethod(name)
	for a, n := range actionNames {
		if normalizeMethod(n) == key {
			return a, true
		}
	}
	a, ok := actionAliases[key]
	return a, ok
}

// Capabilities is the fixed capability table of a component kind.
type Capabilities struct {
	Predicates []Predicate
	Actions    []Action
}

// HasPredicate reports whether the kind answers p.
func (c Capabilities) HasPredicate(p Predicate) bool {
	return slices.Contains(c.Predicates, p)
}

// HasAction reports whether the kind performs a.
func (c Capabilities) HasAction(a Action) bool {
	return slices.Contains(c.Actions, a)
}

// Extend returns a copy of c with extra predicates and actions appended.
func (c Capabilities) Extend(preds []Predicate, acts []Action) Capabilities {
	return Capabilities{
		Predicates: append(slices.Clone(c.Predicates), preds...),
		Actions:    append(slices.Clone(c.Actions), acts...),
	}
}

// BaseCapabilities are present on every kind.
var BaseCapabilities = Capabilities{
	Predicates: []Predicate{PredicateEqualTo},
	Actions:    []Action{ActionSetValue},
}
