package domain

// Component is a named, typed, mutable state cell, optionally backed by
// physical I/O. Every kind answers a fixed set of predicates and performs a
// fixed set of actions, declared by Capabilities and dispatched by id.
type Component interface {
	// Label is the unique, stable name of the component.
	Label() string
	// Kind is the type tag the component was created from.
	Kind() Kind
	// ValueType is the type rule literals are coerced to.
	ValueType() ValueType
	// Value returns the current value. Physical inputs return what the last
	// Sample read; derived state such as elapsed time is computed on demand.
	Value() Value
	// Config is the VALUE literal the component was created with.
	Config() any
	// Capabilities lists the predicates and actions of this kind.
	Capabilities() Capabilities
	// Evaluate answers predicate p against arg.
	// It fails with ErrUnknownCapability when p is not in Capabilities.
	Evaluate(p Predicate, arg Value) (bool, error)
	// Perform runs action a with arg.
	// It fails with ErrUnknownCapability when a is not in Capabilities.
	Perform(a Action, arg Value) error
}

// StateParser is implemented by state-valued kinds so state literals can be
// validated when a rule is built rather than when it fires.
type StateParser interface {
	ParseState(name string) (string, error)
}

// Sampler is implemented by kinds backed by a physical input. Sample reads
// the input once and advances the cached state; it is called once per pass
// so every rule in the pass sees the same reading.
type Sampler interface {
	Sample()
}
