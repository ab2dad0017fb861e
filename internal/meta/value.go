package meta

import (
	"fmt"
	"strconv"
	"strings"
)

// Value is the value of a header key: the whitespace separated tokens that
// follow the key-path on its line. Values are immutable.
type Value struct {
	fields []string
}

// String returns a single-token value.
func String(s string) Value {
	return Value{fields: []string{s}}
}

// Fields returns a value made of the given tokens.
func Fields(fs ...string) Value {
	return Value{fields: append([]string(nil), fs...)}
}

// Ints returns a value holding the decimal form of each integer.
func Ints(vs ...int) Value {
	fs := make([]string, len(vs))
	for i, v := range vs {
		fs[i] = strconv.Itoa(v)
	}
	return Value{fields: fs}
}

// Floats returns a value holding the shortest exact form of each float.
func Floats(vs ...float64) Value {
	fs := make([]string, len(vs))
	for i, v := range vs {
		fs[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return Value{fields: fs}
}

// String joins the tokens with single spaces.
func (v Value) String() string {
	return strings.Join(v.fields, " ")
}

// Fields returns a copy of the tokens.
func (v Value) Fields() []string {
	return append([]string(nil), v.fields...)
}

// Len returns the number of tokens.
func (v Value) Len() int {
	return len(v.fields)
}

// IsZero reports whether v has no tokens.
func (v Value) IsZero() bool {
	return len(v.fields) == 0
}

// Field returns token i, or "" when out of range.
func (v Value) Field(i int) string {
	if i < 0 || i >= len(v.fields) {
		return ""
	}
	return v.fields[i]
}

// Int parses the first token as an integer.
func (v Value) Int() (int, error) {
	if len(v.fields) == 0 {
		return 0, fmt.Errorf("empty value")
	}
	return strconv.Atoi(v.fields[0])
}

// Ints parses every token as an integer.
func (v Value) Ints() ([]int, error) {
	out := make([]int, len(v.fields))
	for i, f := range v.fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("field %d: %w", i, err)
		}
		out[i] = n
	}
	return out, nil
}

// Int64 parses the first token as a 64-bit integer.
func (v Value) Int64() (int64, error) {
	if len(v.fields) == 0 {
		return 0, fmt.Errorf("empty value")
	}
	return strconv.ParseInt(v.fields[0], 10, 64)
}

// Float parses the first token as a float.
func (v Value) Float() (float64, error) {
	if len(v.fields) == 0 {
		return 0, fmt.Errorf("empty value")
	}
	return strconv.ParseFloat(v.fields[0], 64)
}

// Floats parses every token as a float.
func (v Value) Floats() ([]float64, error) {
	out := make([]float64, len(v.fields))
	for i, f := range v.fields {
		x, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("field %d: %w", i, err)
		}
		out[i] = x
	}
	return out, nil
}

// Equal reports whether v and o hold the same tokens.
func (v Value) Equal(o Value) bool {
	if len(v.fields) != len(o.fields) {
		return false
	}
	for i := range v.fields {
		if v.fields[i] != o.fields[i] {
			return false
		}
	}
	return true
}
