package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ValueType identifies which variant a Value holds.
type ValueType int

const (
	TypeNone ValueType = iota
	TypeInt
	TypeFloat
	TypeString
)

func (t ValueType) String() string {
	switch t {
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeString:
		return "string"
	default:
		return "none"
	}
}

// Value is the current value of a component, or a literal bound into a rule.
// The zero Value is "none" and is used for absent arguments.
type Value struct {
	typ ValueType
	i   int64
	f   float64
	s   string
}

// NoValue returns the absent value.
func NoValue() Value { return Value{} }

// IntValue wraps an integer.
func IntValue(v int64) Value { return Value{typ: TypeInt, i: v} }

// FloatValue wraps a float.
func FloatValue(v float64) Value { return Value{typ: TypeFloat, f: v} }

// StringValue wraps a string (enumerated states, paths).
func StringValue(v string) Value { return Value{typ: TypeString, s: v} }

// Type reports the held variant.
func (v Value) Type() ValueType { return v.typ }

// IsNone reports whether v carries no value.
func (v Value) IsNone() bool { return v.typ == TypeNone }

// IsNumeric reports whether v is an int or a float.
func (v Value) IsNumeric() bool { return v.typ == TypeInt || v.typ == TypeFloat }

// AsInt returns the value as an integer. Floats are truncated.
func (v Value) AsInt() int64 {
	switch v.typ {
	case TypeInt:
		return v.i
	case TypeFloat:
		return int64(v.f)
	default:
		return 0
	}
}

// AsFloat returns the value as a float.
func (v Value) AsFloat() float64 {
	switch v.typ {
	case TypeInt:
		return float64(v.i)
	case TypeFloat:
		return v.f
	default:
		return 0
	}
}

// AsString returns the string form of the value.
func (v Value) AsString() string {
	switch v.typ {
	case TypeString:
		return v.s
	case TypeInt:
		return strconv.FormatInt(v.i, 10)
	case TypeFloat:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	default:
		return ""
	}
}

// Raw returns the plain Go literal (nil, int64, float64 or string).
func (v Value) Raw() any {
	switch v.typ {
	case TypeInt:
		return v.i
	case TypeFloat:
		return v.f
	case TypeString:
		return v.s
	default:
		return nil
	}
}

func (v Value) String() string {
	if v.IsNone() {
		return "<none>"
	}
	return v.AsString()
}

// MarshalJSON encodes the value as its plain literal.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Raw())
}

// UnmarshalJSON decodes a plain JSON literal. Numbers without a fraction
// or exponent become ints.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	parsed, err := ValueOf(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// ValueOf converts a decoded literal into a Value without coercion.
func ValueOf(raw any) (Value, error) {
	switch x := raw.(type) {
	case nil:
		return NoValue(), nil
	case Value:
		return x, nil
	case string:
		return StringValue(x), nil
	case int:
		return IntValue(int64(x)), nil
	case int32:
		return IntValue(int64(x)), nil
	case int64:
		return IntValue(x), nil
	case uint:
		return uintValue(uint64(x))
	case uint64:
		return uintValue(x)
	case float32:
		return FloatValue(float64(x)), nil
	case float64:
		return FloatValue(x), nil
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return IntValue(i), nil
		}
		f, err := x.Float64()
		if err != nil {
			return NoValue(), fmt.Errorf("%w: %q is not a number", ErrTypeCoercion, x.String())
		}
		return FloatValue(f), nil
	default:
		return NoValue(), fmt.Errorf("%w: unsupported literal %T", ErrTypeCoercion, raw)
	}
}

func uintValue(x uint64) (Value, error) {
	if x > math.MaxInt64 {
		return NoValue(), fmt.Errorf("%w: %d overflows int64", ErrTypeCoercion, x)
	}
	return IntValue(int64(x)), nil
}

// Coerce converts a definition literal into the value type of the component it
// is compared against or passed to.
func Coerce(raw any, t ValueType) (Value, error) {
	v, err := ValueOf(raw)
	if err != nil {
		return NoValue(), err
	}
	if v.IsNone() {
		return v, nil
	}

	switch t {
	case TypeInt:
		return coerceInt(v)
	case TypeFloat:
		return coerceFloat(v)
	default:
		return v, nil
	}
}

func coerceInt(v Value) (Value, error) {
	switch v.typ {
	case TypeInt:
		return v, nil
	case TypeFloat:
		if v.f != math.Trunc(v.f) {
			return NoValue(), fmt.Errorf("%w: %v is not an integer", ErrTypeCoercion, v.f)
		}
		return IntValue(int64(v.f)), nil
	default:
		s := strings.TrimSpace(v.s)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return IntValue(i), nil
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil && f == math.Trunc(f) {
			return IntValue(int64(f)), nil
		}
		return NoValue(), fmt.Errorf("%w: %q is not an integer", ErrTypeCoercion, v.s)
	}
}

func coerceFloat(v Value) (Value, error) {
	switch v.typ {
	case TypeInt:
		return FloatValue(float64(v.i)), nil
	case TypeFloat:
		return v, nil
	default:
		s := strings.TrimSpace(v.s)
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return FloatValue(f), nil
		}
		if d, err := time.ParseDuration(s); err == nil {
			return FloatValue(d.Seconds()), nil
		}
		if secs, ok := parseClock(s); ok {
			return FloatValue(secs), nil
		}
		return NoValue(), fmt.Errorf("%w: %q is not a number", ErrTypeCoercion, v.s)
	}
}

// parseClock reads "HH:MM:SS", "MM:SS" (seconds may carry a fraction).
func parseClock(s string) (float64, bool) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, false
	}
	var total float64
	for i, p := range parts {
		last := i == len(parts)-1
		if last {
			f, err := strconv.ParseFloat(p, 64)
			if err != nil || f < 0 {
				return 0, false
			}
			total = total*60 + f
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, false
		}
		total = total*60 + float64(n)
	}
	return total, true
}

// Equal compares two values. Numeric variants compare by magnitude,
// strings compare exactly.
func Equal(a, b Value) bool {
	if a.IsNumeric() && b.IsNumeric() {
		if a.typ == TypeInt && b.typ == TypeInt {
			return a.i == b.i
		}
		return a.AsFloat() == b.AsFloat()
	}
	if a.typ != b.typ {
		return false
	}
	return a.s == b.s
}

// Compare orders two numeric values: -1, 0 or +1.
func Compare(a, b Value) (int, error) {
	if !a.IsNumeric() || !b.IsNumeric() {
		return 0, fmt.Errorf("%w: cannot order %s and %s", ErrTypeCoercion, a.typ, b.typ)
	}
	if a.typ == TypeInt && b.typ == TypeInt {
		switch {
		case a.i < b.i:
			return -1, nil
		case a.i > b.i:
			return 1, nil
		}
		return 0, nil
	}
	af, bf := a.AsFloat(), b.AsFloat()
	switch {
	case af < bf:
		return -1, nil
	case af > bf:
		return 1, nil
	}
	return 0, nil
}
