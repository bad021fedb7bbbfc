package dispatch

import (
	"fmt"
	"strings"
)

// Field is one argument of an outbound message.
//
// The set of implementations is closed: Int8, Float32 and String.
type Field interface {
	// Value returns the field as a plain Go value (int8, float32 or string).
	Value() any

	isField()
}

// Int8 is a signed byte argument.
type Int8 int8

// Float32 is a single-precision argument.
type Float32 float32

// String is a text argument.
type String string

func (Int8) isField()    {}
func (Float32) isField() {}
func (String) isField()  {}

func (f Int8) Value() any    { return int8(f) }
func (f Float32) Value() any { return float32(f) }
func (f String) Value() any  { return string(f) }

// Message is an addressed list of fields ready for a transport.
type Message struct {
	Address string  `json:"address"`
	Fields  []Field `json:"-"`
}

// Values returns the fields as plain Go values, in order.
func (m Message) Values() []any {
	out := make([]any, len(m.Fields))
	for i, f := range m.Fields {
		out[i] = f.Value()
	}
	return out
}

// Floats returns the numeric fields as float64, skipping strings.
func (m Message) Floats() []float64 {
	out := make([]float64, 0, len(m.Fields))
	for _, f := range m.Fields {
		switch v := f.(type) {
		case Int8:
			out = append(out, float64(v))
		case Float32:
			out = append(out, float64(v))
		}
	}
	return out
}

// FormatTrace renders m as one human-readable line: the address left
// justified in 20 columns, then each field right justified in 10 columns
// (floats with two decimals).
func FormatTrace(m Message) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-20s", m.Address+":")
	for _, f := range m.Fields {
		switch v := f.(type) {
		case Int8:
			fmt.Fprintf(&b, "  %10d", int8(v))
		case Float32:
			fmt.Fprintf(&b, "  %10.2f", float32(v))
		case String:
			fmt.Fprintf(&b, "  %s", string(v))
		}
	}
	return b.String()
}
