package channel

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Value is a configuration value as read from a JSON or YAML document.
//
// It is a closed sum type: Null, Bool, Number, Text, List and Object are the
// only implementations. Consumers resolve it with a type switch.
type Value interface {
	// String renders the value in JSON-like notation for error messages.
	String() string

	isValue()
}

// Null is an explicit null or an absent key.
type Null struct{}

// Bool is a boolean value.
type Bool bool

// Number is any numeric value.
type Number float64

// Text is a string value.
type Text string

// List is an ordered sequence of values.
type List []Value

// Object is a mapping of keys to values.
type Object map[string]Value

func (Null) isValue()   {}
func (Bool) isValue()   {}
func (Number) isValue() {}
func (Text) isValue()   {}
func (List) isValue()   {}
func (Object) isValue() {}

func (Null) String() string { return "null" }

func (b Bool) String() string { return strconv.FormatBool(bool(b)) }

func (n Number) String() string { return strconv.FormatFloat(float64(n), 'g', -1, 64) }

func (t Text) String() string { return strconv.Quote(string(t)) }

func (l List) String() string {
	parts := make([]string, len(l))
	for i, v := range l {
		parts[i] = v.String()
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func (o Object) String() string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = strconv.Quote(k) + ":" + o[k].String()
	}
	return "{" + strings.Join(parts, ",") + "}"
}

// Get returns the value stored under key, or Null when the key is absent.
func (o Object) Get(key string) Value {
	if v, ok := o[key]; ok && v != nil {
		return v
	}
	return Null{}
}

// Has reports whether key is present with a non-null value.
func (o Object) Has(key string) bool {
	_, isNull := o.Get(key).(Null)
	return !isNull
}

// IsNull reports whether v is absent or null.
func IsNull(v Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(Null)
	return ok
}

// FromNode converts a yaml.v3 node tree into a Value.
//
// JSON documents parse through yaml.v3 as well, so this serves both formats.
// Aliases are resolved; anchors, tags other than the core schema, and
// non-string mapping keys are rejected.
func FromNode(node *yaml.Node) (Value, error) {
	if node == nil {
		return Null{}, nil
	}

	switch node.Kind {
	case 0:
		// Zero node: yaml.Unmarshal of an empty input.
		return Null{}, nil

	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return Null{}, nil
		}
		return FromNode(node.Content[0])

	case yaml.AliasNode:
		return FromNode(node.Alias)

	case yaml.ScalarNode:
		return scalarFromNode(node)

	case yaml.SequenceNode:
		out := make(List, 0, len(node.Content))
		for _, child := range node.Content {
			v, err := FromNode(child)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil

	case yaml.MappingNode:
		out := make(Object, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			keyNode, valNode := node.Content[i], node.Content[i+1]
			if keyNode.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("%w: line %d: mapping keys must be strings", ErrInvalidConfig, keyNode.Line)
			}
			v, err := FromNode(valNode)
			if err != nil {
				return nil, err
			}
			out[keyNode.Value] = v
		}
		return out, nil

	default:
		return nil, fmt.Errorf("%w: line %d: unsupported node kind %d", ErrInvalidConfig, node.Line, node.Kind)
	}
}

func scalarFromNode(node *yaml.Node) (Value, error) {
	switch node.ShortTag() {
	case "!!null":
		return Null{}, nil
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrInvalidConfig, node.Line, err)
		}
		return Bool(b), nil
	case "!!int", "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrInvalidConfig, node.Line, err)
		}
		return Number(f), nil
	case "!!str":
		return Text(node.Value), nil
	default:
		return nil, fmt.Errorf("%w: line %d: unsupported tag %s", ErrInvalidConfig, node.Line, node.ShortTag())
	}
}

// Of converts a decoded Go value (as produced by encoding/json or yaml.v3
// into `any`) into a Value.
func Of(v any) (Value, error) {
	switch t := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return t, nil
	case bool:
		return Bool(t), nil
	case string:
		return Text(t), nil
	case int:
		return Number(t), nil
	case int64:
		return Number(t), nil
	case float32:
		return Number(t), nil
	case float64:
		return Number(t), nil
	case []any:
		out := make(List, len(t))
		for i, e := range t {
			ev, err := Of(e)
			if err != nil {
				return nil, err
			}
			out[i] = ev
		}
		return out, nil
	case map[string]any:
		out := make(Object, len(t))
		for k, e := range t {
			ev, err := Of(e)
			if err != nil {
				return nil, err
			}
			out[k] = ev
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: unsupported value type %T", ErrInvalidConfig, v)
	}
}

// MustOf is like Of but panics on unsupported input. Intended for tests and
// static tables.
func MustOf(v any) Value {
	out, err := Of(v)
	if err != nil {
		panic(err)
	}
	return out
}

// AsInt returns n as an int when it is integral and finite.
func (n Number) AsInt() (int, bool) {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f < math.MinInt32 || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}
