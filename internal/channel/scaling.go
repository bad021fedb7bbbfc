package channel

import (
	"fmt"
	"math"
)

// Range is a numeric interval. Min may exceed Max to express an inverted mapping.
type Range struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// DefaultRange returns the unit interval used when a range is not configured.
func DefaultRange() Range {
	return Range{Min: 0, Max: 1}
}

// Lower returns the numerically smaller endpoint.
func (r Range) Lower() float64 {
	return math.Min(r.Min, r.Max)
}

// Upper returns the numerically larger endpoint.
func (r Range) Upper() float64 {
	return math.Max(r.Min, r.Max)
}

// String implements fmt.Stringer.
func (r Range) String() string {
	return fmt.Sprintf("[%g, %g]", r.Min, r.Max)
}

// Scaling selects the numeric transform applied before a value is sent.
type Scaling int

const (
	// ScalingNone passes values through unchanged.
	ScalingNone Scaling = iota

	// ScalingLinear maps the input range onto the output range without bounds.
	ScalingLinear

	// ScalingClamp maps like ScalingLinear and then clamps into the output range.
	ScalingClamp
)

// String returns the configuration keyword for the scaling mode.
func (s Scaling) String() string {
	switch s {
	case ScalingNone:
		return "none"
	case ScalingLinear:
		return "scale"
	case ScalingClamp:
		return "clamp"
	default:
		return fmt.Sprintf("scaling(%d)", int(s))
	}
}

// ParseScaling resolves a scaling keyword. "linear" is accepted as an alias of "scale".
func ParseScaling(keyword string) (Scaling, error) {
	switch keyword {
	case "none":
		return ScalingNone, nil
	case "scale", "linear":
		return ScalingLinear, nil
	case "clamp":
		return ScalingClamp, nil
	default:
		return ScalingNone, fmt.Errorf("%w: unknown scaling %q (use none, scale or clamp)", ErrInvalidConfig, keyword)
	}
}

// Scale applies the policy's transform to a single value.
//
// Returns ErrDivisionByZero when scaling is enabled and the input range is degenerate.
func (p Policy) Scale(v float64) (float64, error) {
	switch p.Scaling {
	case ScalingNone:
		return v, nil
	case ScalingLinear:
		return p.linear(v)
	case ScalingClamp:
		out, err := p.linear(v)
		if err != nil {
			return 0, err
		}
		return clamp(out, p.Out.Lower(), p.Out.Upper()), nil
	default:
		return 0, fmt.Errorf("%w: unknown scaling mode %d", ErrInvalidConfig, int(p.Scaling))
	}
}

// ScaleFloat32 scales a float32 component. The transform runs in float64.
func (p Policy) ScaleFloat32(v float32) (float32, error) {
	if p.Scaling == ScalingNone {
		return v, nil
	}
	out, err := p.Scale(float64(v))
	if err != nil {
		return 0, err
	}
	return float32(out), nil
}

// ScaleByte scales an 8-bit signed value.
//
// With ScalingNone the byte is returned untouched. Otherwise the transform
// runs in floating point, the result is truncated toward zero and saturated
// into [-128, 127].
func (p Policy) ScaleByte(v int8) (int8, error) {
	if p.Scaling == ScalingNone {
		return v, nil
	}
	out, err := p.Scale(float64(v))
	if err != nil {
		return 0, err
	}
	return saturateInt8(out), nil
}

// ScaleBytes scales each element of a byte array in order.
func (p Policy) ScaleBytes(vs []int8) ([]int8, error) {
	out := make([]int8, len(vs))
	for i, v := range vs {
		s, err := p.ScaleByte(v)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

// ScaleFloat32s scales each component of a vector or quaternion in order.
func (p Policy) ScaleFloat32s(vs ...float32) ([]float32, error) {
	out := make([]float32, len(vs))
	for i, v := range vs {
		s, err := p.ScaleFloat32(v)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

func (p Policy) linear(v float64) (float64, error) {
	span := p.In.Max - p.In.Min
	if span == 0 {
		return 0, fmt.Errorf("%w: input range %s", ErrDivisionByZero, p.In)
	}
	return (v-p.In.Min)/span*(p.Out.Max-p.Out.Min) + p.Out.Min, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// saturateInt8 truncates toward zero and pins into the int8 range.
// NaN maps to zero.
func saturateInt8(v float64) int8 {
	if math.IsNaN(v) {
		return 0
	}
	t := math.Trunc(v)
	if t < math.MinInt8 {
		return math.MinInt8
	}
	if t > math.MaxInt8 {
		return math.MaxInt8
	}
	return int8(t)
}
