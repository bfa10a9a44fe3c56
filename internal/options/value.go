package options

import (
	"slices"
	"strconv"
	"strings"
)

// Value is a typed option value. The zero Value is unset.
type Value struct {
	kind Kind
	set  bool
	text string
	num  int
	real float64
	flag bool
}

// StringValue returns a set String value.
func StringValue(s string) Value { return Value{kind: String, set: true, text: s} }

// PathValue returns a set Path value. The path is kept verbatim.
func PathValue(p string) Value { return Value{kind: Path, set: true, text: p} }

// EnumValue returns a set Enum value.
func EnumValue(s string) Value { return Value{kind: Enum, set: true, text: s} }

// IntValue returns a set Integer value.
func IntValue(n int) Value { return Value{kind: Integer, set: true, num: n} }

// FloatValue returns a set Float value.
func FloatValue(f float64) Value { return Value{kind: Float, set: true, real: f} }

// BoolValue returns a set Boolean value.
func BoolValue(b bool) Value { return Value{kind: Boolean, set: true, flag: b} }

// IsSet reports whether the value holds anything.
func (v Value) IsSet() bool { return v.set }

// Kind returns the variant of v.
func (v Value) Kind() Kind { return v.kind }

// Int returns the integer payload (0 for other kinds).
func (v Value) Int() int { return v.num }

// Float returns the float payload (0 for other kinds).
func (v Value) Float() float64 { return v.real }

// Bool returns the boolean payload (false for other kinds).
func (v Value) Bool() bool { return v.flag }

// String renders v deterministically: numbers in their shortest decimal
// form, booleans as true/false, everything else verbatim. Unset values render as "".
func (v Value) String() string {
	if !v.set {
		return ""
	}
	switch v.kind {
	case Integer:
		return strconv.Itoa(v.num)
	case Float:
		return strconv.FormatFloat(v.real, 'g', -1, 64)
	case Boolean:
		return strconv.FormatBool(v.flag)
	default:
		return v.text
	}
}

// Coerce converts a raw string to the spec's type. Only the literal tokens
// "true" and "false" are booleans; enum tokens match case-sensitively.
func Coerce(sp Spec, raw string) (Value, error) {
	switch sp.Kind {
	case String:
		return StringValue(raw), nil
	case Path:
		return PathValue(raw), nil
	case Integer:
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return Value{}, NewInvalidValueError(sp, raw, Source{})
		}
		return IntValue(n), nil
	case Float:
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return Value{}, NewInvalidValueError(sp, raw, Source{})
		}
		return FloatValue(f), nil
	case Boolean:
		switch raw {
		case "true":
			return BoolValue(true), nil
		case "false":
			return BoolValue(false), nil
		}
		return Value{}, NewInvalidValueError(sp, raw, Source{})
	case Enum:
		if slices.Contains(sp.Choices, raw) {
			return EnumValue(raw), nil
		}
		return Value{}, NewInvalidValueError(sp, raw, Source{})
	}
	return Value{}, NewInvalidValueError(sp, raw, Source{})
}
