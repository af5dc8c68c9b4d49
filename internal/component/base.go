package component

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/tendril/internal/logging"
	"github.com/aretw0/tendril/pkg/domain"
)

// base carries the state shared by every kind.
type base struct {
	label  string
	kind   domain.Kind
	vtype  domain.ValueType
	config any
	value  domain.Value
	caps   domain.Capabilities
	logger *slog.Logger
	onErr  func(label string, err error)
}

func newBase(label string, kind domain.Kind, vtype domain.ValueType, config any, caps domain.Capabilities, deps Deps) base {
	logger := deps.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return base{
		label:  label,
		kind:   kind,
		vtype:  vtype,
		config: config,
		caps:   caps,
		logger: logger.With("component", label, "kind", string(kind)),
		onErr:  deps.OnError,
	}
}

func (b *base) Label() string                     { return b.label }
func (b *base) Kind() domain.Kind                 { return b.kind }
func (b *base) ValueType() domain.ValueType       { return b.vtype }
func (b *base) Config() any                       { return b.config }
func (b *base) Capabilities() domain.Capabilities { return b.caps }

func (b *base) String() string {
	return fmt.Sprintf("%s | %s | %s", b.kind, b.label, b.value)
}

// ioFailed logs a driver failure caught at the component boundary.
// The caller leaves its value unchanged for this tick.
func (b *base) ioFailed(op string, err error) error {
	wrapped := fmt.Errorf("%s %s: %w: %v", b.label, op, domain.ErrPhysicalIO, err)
	b.logger.Warn("Driver call failed", "op", op, "err", err)
	if b.onErr != nil {
		b.onErr(b.label, wrapped)
	}
	return wrapped
}

func (b *base) unknownPredicate(p domain.Predicate) error {
	return fmt.Errorf("%w: %s has no predicate %s", domain.ErrUnknownCapability, b.kind, p)
}

func (b *base) unknownAction(a domain.Action) error {
	return fmt.Errorf("%w: %s has no action %s", domain.ErrUnknownCapability, b.kind, a)
}

// compare applies an ordering predicate to cur and arg.
func compare(p domain.Predicate, cur, arg domain.Value) (bool, error) {
	switch p {
	case domain.PredicateEqualTo:
		return domain.Equal(cur, arg), nil
	case domain.PredicateGreaterThan, domain.PredicateLessThan:
		c, err := domain.Compare(cur, arg)
		if err != nil {
			return false, err
		}
		if p == domain.PredicateGreaterThan {
			return c > 0, nil
		}
		return c < 0, nil
	}
	return false, fmt.Errorf("%w: %s", domain.ErrUnknownCapability, p)
}

// numericCaps is the capability table of number-valued kinds.
var numericCaps = domain.BaseCapabilities.Extend(
	[]domain.Predicate{domain.PredicateGreaterThan, domain.PredicateLessThan},
	nil,
)

// coerceArg converts arg to t and rejects a missing argument.
func coerceArg(arg domain.Value, t domain.ValueType) (domain.Value, error) {
	if arg.IsNone() {
		return arg, fmt.Errorf("%w: missing argument", domain.ErrTypeCoercion)
	}
	return domain.Coerce(arg, t)
}

// configInt reads an integer configuration literal such as a pin or channel.
func configInt(label string, config any) (int, error) {
	v, err := coerceArg(mustValue(config), domain.TypeInt)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", domain.ErrInvalidConfig, label, err)
	}
	return int(v.AsInt()), nil
}

// mustValue turns a literal into a Value, mapping unsupported literals to none.
func mustValue(raw any) domain.Value {
	v, err := domain.ValueOf(raw)
	if err != nil {
		return domain.NoValue()
	}
	return v
}
