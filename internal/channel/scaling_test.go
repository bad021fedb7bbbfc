package channel

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scaled(s Scaling, in, out Range) Policy {
	return Policy{Enabled: true, Address: "/t", Scaling: s, In: in, Out: out}
}

func TestScale_NoneIsIdentity(t *testing.T) {
	p := scaled(ScalingNone, Range{Min: 5, Max: 5}, Range{Min: 0, Max: 0})
	for _, v := range []float64{0, -1.5, 3.25, math.MaxFloat64, math.SmallestNonzeroFloat64} {
		got, err := p.Scale(v)
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}

	for b := math.MinInt8; b <= math.MaxInt8; b++ {
		got, err := p.ScaleByte(int8(b))
		require.NoError(t, err)
		assert.Equal(t, int8(b), got)
	}

	f, err := p.ScaleFloat32(0.1)
	require.NoError(t, err)
	assert.Equal(t, float32(0.1), f)
}

func TestScale_LinearEndpoints(t *testing.T) {
	ranges := []struct{ in, out Range }{
		{Range{Min: -2, Max: 2}, Range{Min: -1, Max: 1}},
		{Range{Min: 0, Max: 1}, Range{Min: 0, Max: 127}},
		{Range{Min: 10, Max: -10}, Range{Min: 0, Max: 1}},
		{Range{Min: -math.Pi, Max: math.Pi}, Range{Min: 1, Max: 0}},
	}
	for _, r := range ranges {
		p := scaled(ScalingLinear, r.in, r.out)

		lo, err := p.Scale(r.in.Min)
		require.NoError(t, err)
		assert.InDelta(t, r.out.Min, lo, 1e-12)

		hi, err := p.Scale(r.in.Max)
		require.NoError(t, err)
		assert.InDelta(t, r.out.Max, hi, 1e-12)
	}
}

func TestScale_LinearIsUnbounded(t *testing.T) {
	p := scaled(ScalingLinear, Range{Min: -2, Max: 2}, Range{Min: -1, Max: 1})
	got, err := p.Scale(4)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, got, 1e-12)
}

func TestScale_ClampToNearerBound(t *testing.T) {
	tests := []struct {
		name  string
		out   Range
		value float64
		want  float64
	}{
		{"above ascending", Range{Min: -1, Max: 1}, 4, 1},
		{"below ascending", Range{Min: -1, Max: 1}, -4, -1},
		{"inside", Range{Min: -1, Max: 1}, 1, 0.5},
		{"above descending", Range{Min: 1, Max: -1}, 4, -1},
		{"below descending", Range{Min: 1, Max: -1}, -4, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := scaled(ScalingClamp, Range{Min: -2, Max: 2}, tt.out)
			got, err := p.Scale(tt.value)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestScale_DegenerateInput(t *testing.T) {
	for _, s := range []Scaling{ScalingLinear, ScalingClamp} {
		p := scaled(s, Range{Min: 3, Max: 3}, DefaultRange())

		_, err := p.Scale(1)
		assert.ErrorIs(t, err, ErrDivisionByZero)

		_, err = p.ScaleByte(1)
		assert.ErrorIs(t, err, ErrDivisionByZero)

		_, err = p.ScaleFloat32s(1, 2, 3)
		assert.ErrorIs(t, err, ErrDivisionByZero)
	}
}

func TestScaleByte_TruncatesAndSaturates(t *testing.T) {
	// [-128,127] -> [0,1] collapses everything below 127 to zero.
	p := scaled(ScalingLinear, Range{Min: -128, Max: 127}, Range{Min: 0, Max: 1})
	got, err := p.ScaleByte(100)
	require.NoError(t, err)
	assert.Equal(t, int8(0), got)

	got, err = p.ScaleByte(127)
	require.NoError(t, err)
	assert.Equal(t, int8(1), got)

	double := scaled(ScalingLinear, Range{Min: 0, Max: 1}, Range{Min: 0, Max: 2})
	got, err = double.ScaleByte(100)
	require.NoError(t, err)
	assert.Equal(t, int8(127), got)

	got, err = double.ScaleByte(-100)
	require.NoError(t, err)
	assert.Equal(t, int8(-128), got)

	negative := scaled(ScalingLinear, Range{Min: 0, Max: 2}, Range{Min: 0, Max: 1})
	got, err = negative.ScaleByte(-3)
	require.NoError(t, err)
	assert.Equal(t, int8(-1), got, "-1.5 truncates toward zero")
}

func TestScaleBytesKeepsOrder(t *testing.T) {
	p := scaled(ScalingLinear, Range{Min: 0, Max: 1}, Range{Min: 0, Max: 2})
	got, err := p.ScaleBytes([]int8{1, -2, 3, 0, 5, -6, 7, 60})
	require.NoError(t, err)
	assert.Equal(t, []int8{2, -4, 6, 0, 10, -12, 14, 120}, got)
}

func TestParseScaling(t *testing.T) {
	for keyword, want := range map[string]Scaling{
		"none":   ScalingNone,
		"scale":  ScalingLinear,
		"linear": ScalingLinear,
		"clamp":  ScalingClamp,
	} {
		got, err := ParseScaling(keyword)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseScaling("Clamp")
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Equal(t, "scale", ScalingLinear.String())
}
