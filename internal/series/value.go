package series

import (
	"strconv"
	"strings"

	"github.com/paveg/dscribe/internal/schema"
)

// Value is a single nullable cell: an integer, a float or a text value.
type Value struct {
	typ   schema.Type
	valid bool
	i     int64
	f     float64
	s     string
}

// Null returns a null value of the given type.
func Null(typ schema.Type) Value {
	return Value{typ: typ}
}

// Int returns a valid Integer value.
func Int(v int64) Value {
	return Value{typ: schema.Integer, valid: true, i: v}
}

// Float returns a valid Float value.
func Float(v float64) Value {
	return Value{typ: schema.Float, valid: true, f: v}
}

// Text returns a valid Text value.
func Text(v string) Value {
	return Value{typ: schema.Text, valid: true, s: v}
}

// Type returns the value's type.
func (v Value) Type() schema.Type { return v.typ }

// IsNull reports whether the value is missing.
func (v Value) IsNull() bool { return !v.valid }

// Int64 returns the integer payload. Floats are truncated.
func (v Value) Int64() int64 {
	if v.typ == schema.Float {
		return int64(v.f)
	}
	return v.i
}

// Float64 returns the numeric payload promoted to float64.
func (v Value) Float64() float64 {
	if v.typ == schema.Integer {
		return float64(v.i)
	}
	return v.f
}

// Str returns the text payload.
func (v Value) Str() string { return v.s }

// Interface returns the payload as int64, float64 or string, or nil when null.
func (v Value) Interface() any {
	if !v.valid {
		return nil
	}
	switch v.typ {
	case schema.Integer:
		return v.i
	case schema.Float:
		return v.f
	default:
		return v.s
	}
}

// Format renders the value with a locale-independent decimal format.
// Floats always carry a fractional part ("3.0"); nulls render as nullToken.
func (v Value) Format(nullToken string) string {
	if !v.valid {
		return nullToken
	}
	switch v.typ {
	case schema.Integer:
		return strconv.FormatInt(v.i, 10)
	case schema.Float:
		s := strconv.FormatFloat(v.f, 'f', -1, 64)
		if !strings.ContainsRune(s, '.') {
			s += ".0"
		}
		return s
	default:
		return v.s
	}
}

// String renders the value with "null" for missing cells.
func (v Value) String() string {
	return v.Format("null")
}
