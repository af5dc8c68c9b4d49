package domain

import (
	"errors"
	"fmt"
)

// ErrUnknownCapability is returned when a rule names a predicate or action the
// referenced component's kind does not register.
var ErrUnknownCapability = errors.New("unknown capability")

// ErrUnresolvedReference is returned when a rule names a component label absent
// from the registry.
var ErrUnresolvedReference = errors.New("unresolved component reference")

// ErrTypeCoercion is returned when a literal cannot be coerced to the value
// type of the component it refers to.
var ErrTypeCoercion = errors.New("type coercion failed")

// ErrPhysicalIO is returned when a driver call fails.
var ErrPhysicalIO = errors.New("physical i/o error")

// ErrUnknownKind is returned when a definition names an unregistered kind.
var ErrUnknownKind = errors.New("unknown component kind")

// ErrDuplicateLabel is returned when two components share a label.
var ErrDuplicateLabel = errors.New("duplicate component label")

// ErrDuplicateEvent is returned when two events share a label.
var ErrDuplicateEvent = errors.New("duplicate event label")

// ErrInvalidConfig is returned when a component's VALUE is not a usable configuration.
var ErrInvalidConfig = errors.New("invalid component configuration")

// ErrDefinitionNotFound is returned by stores when nothing has been persisted yet.
var ErrDefinitionNotFound = errors.New("definition not found")

// ResolveError locates a failure inside a rule definition.
type ResolveError struct {
	Event   string // event label
	Section string // CONDITIONS, EFFECTS, ACTIVATE or DEACTIVATE
	Index   int    // position inside the section
	Label   string // component label referenced by the entry
	Method  string // method name referenced by the entry
	Err     error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("event %q: %s[%d] %s.%s: %v", e.Event, e.Section, e.Index, e.Label, e.Method, e.Err)
}

func (e *ResolveError) Unwrap() error { return e.Err }
