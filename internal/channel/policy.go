package channel

import (
	"fmt"
	"strings"
)

// Policy decides whether a channel is sent, where it is sent, and how its
// numbers are scaled on the way.
type Policy struct {
	Enabled bool    `json:"enabled" yaml:"enabled"`
	Address string  `json:"address" yaml:"address"`
	Scaling Scaling `json:"scale" yaml:"scale"`
	In      Range   `json:"in" yaml:"in"`
	Out     Range   `json:"out" yaml:"out"`
}

// DefaultPolicy returns the disabled policy for kind: default address, no
// scaling, unit ranges.
func DefaultPolicy(kind Kind) Policy {
	return Policy{
		Enabled: false,
		Address: kind.DefaultAddress(),
		Scaling: ScalingNone,
		In:      DefaultRange(),
		Out:     DefaultRange(),
	}
}

// EnabledPolicy returns the default policy for kind with Enabled set.
func EnabledPolicy(kind Kind) Policy {
	p := DefaultPolicy(kind)
	p.Enabled = true
	return p
}

// String renders the policy for the startup summary.
func (p Policy) String() string {
	if !p.Enabled {
		return "off"
	}
	var b strings.Builder
	b.WriteString(p.Address)
	if p.Scaling != ScalingNone {
		fmt.Fprintf(&b, " (%s %s -> %s)", p.Scaling, p.In, p.Out)
	}
	return b.String()
}

// ParsePolicy interprets a configuration value for one channel.
//
// Accepted shapes:
//   - null or absent: disabled with the default address
//   - boolean: enabled or disabled with the default address
//   - string: enabled with that address, an empty string disables
//   - object: keys enabled, path/address, in, out and scale
//
// Numbers and lists are rejected with ErrInvalidConfig.
func ParsePolicy(kind Kind, v Value) (Policy, error) {
	p := DefaultPolicy(kind)

	switch t := v.(type) {
	case nil, Null:
		return p, nil

	case Bool:
		p.Enabled = bool(t)
		return p, nil

	case Text:
		if t == "" {
			return p, nil
		}
		p.Enabled = true
		p.Address = string(t)
		return p, nil

	case Object:
		return parseObject(kind, p, t)

	default:
		return Policy{}, invalid(kind, "", v, "expected null, boolean, string or object")
	}
}

func parseObject(kind Kind, p Policy, obj Object) (Policy, error) {
	p.Enabled = true

	switch en := obj.Get("enabled").(type) {
	case Null:
	case Bool:
		p.Enabled = bool(en)
	default:
		return Policy{}, invalid(kind, "enabled", en, "expected boolean")
	}

	address, err := parseAddress(kind, obj)
	if err != nil {
		return Policy{}, err
	}
	if address != nil {
		if *address == "" {
			p.Enabled = false
		} else {
			p.Address = *address
		}
	}

	hasRange := false
	if obj.Has("in") {
		r, err := parseRange(kind, "in", obj.Get("in"))
		if err != nil {
			return Policy{}, err
		}
		p.In = r
		hasRange = true
	}
	if obj.Has("out") {
		r, err := parseRange(kind, "out", obj.Get("out"))
		if err != nil {
			return Policy{}, err
		}
		p.Out = r
		hasRange = true
	}
	if hasRange {
		p.Scaling = ScalingLinear
	}

	if obj.Has("scale") {
		s, err := parseScaleValue(kind, obj.Get("scale"))
		if err != nil {
			return Policy{}, err
		}
		p.Scaling = s
	}

	return p, nil
}

// parseAddress returns nil when neither path nor address is set.
func parseAddress(kind Kind, obj Object) (*string, error) {
	var found []string
	for _, key := range []string{"path", "address"} {
		raw := obj.Get(key)
		switch t := raw.(type) {
		case Null:
		case Text:
			found = append(found, string(t))
		default:
			return nil, invalid(kind, key, raw, "expected string")
		}
	}

	switch len(found) {
	case 0:
		return nil, nil
	case 2:
		if found[0] != found[1] {
			return nil, fmt.Errorf("%w: %s: path %q and address %q disagree",
				ErrInvalidConfig, kind.Key(), found[0], found[1])
		}
	}
	return &found[0], nil
}

func parseRange(kind Kind, key string, v Value) (Range, error) {
	switch t := v.(type) {
	case List:
		if len(t) != 2 {
			return Range{}, invalid(kind, key, v, "expected exactly two numbers")
		}
		lo, okLo := t[0].(Number)
		hi, okHi := t[1].(Number)
		if !okLo || !okHi {
			return Range{}, invalid(kind, key, v, "expected exactly two numbers")
		}
		return Range{Min: float64(lo), Max: float64(hi)}, nil

	case Object:
		lo, okLo := t.Get("min").(Number)
		hi, okHi := t.Get("max").(Number)
		if !okLo || !okHi {
			return Range{}, invalid(kind, key, v, "expected numeric min and max")
		}
		return Range{Min: float64(lo), Max: float64(hi)}, nil

	default:
		return Range{}, invalid(kind, key, v, "expected [min, max] or {min, max}")
	}
}

func parseScaleValue(kind Kind, v Value) (Scaling, error) {
	switch t := v.(type) {
	case Text:
		s, err := ParseScaling(string(t))
		if err != nil {
			return ScalingNone, fmt.Errorf("%s.scale: %w", kind.Key(), err)
		}
		return s, nil

	case Number:
		code, ok := t.AsInt()
		if !ok || code < int(ScalingNone) || code > int(ScalingClamp) {
			return ScalingNone, invalid(kind, "scale", v, "expected 0, 1 or 2")
		}
		return Scaling(code), nil

	default:
		return ScalingNone, invalid(kind, "scale", v, "expected none, scale or clamp")
	}
}

func invalid(kind Kind, key string, v Value, reason string) error {
	name := kind.Key()
	if key != "" {
		name += "." + key
	}
	return fmt.Errorf("%w: %s: %s, got %s", ErrInvalidConfig, name, reason, v)
}
