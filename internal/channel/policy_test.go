package channel

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func parseYAML(t *testing.T, src string) Value {
	t.Helper()
	var node yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(src), &node))
	v, err := FromNode(&node)
	require.NoError(t, err)
	return v
}

func TestParsePolicy_Null(t *testing.T) {
	for _, k := range Kinds() {
		p, err := ParsePolicy(k, Null{})
		require.NoError(t, err)
		assert.False(t, p.Enabled, k.Key())
		assert.Equal(t, k.DefaultAddress(), p.Address)
		assert.Equal(t, ScalingNone, p.Scaling)

		p, err = ParsePolicy(k, nil)
		require.NoError(t, err)
		assert.Equal(t, DefaultPolicy(k), p)
	}
}

func TestParsePolicy_Bool(t *testing.T) {
	for _, k := range Kinds() {
		for _, b := range []bool{true, false} {
			p, err := ParsePolicy(k, Bool(b))
			require.NoError(t, err)
			assert.Equal(t, b, p.Enabled)
			assert.Equal(t, k.DefaultAddress(), p.Address)
			assert.Equal(t, ScalingNone, p.Scaling)
		}
	}
}

func TestParsePolicy_Text(t *testing.T) {
	for _, k := range Kinds() {
		p, err := ParsePolicy(k, Text("/custom/path"))
		require.NoError(t, err)
		assert.True(t, p.Enabled)
		assert.Equal(t, "/custom/path", p.Address)
		assert.Equal(t, ScalingNone, p.Scaling)

		p, err = ParsePolicy(k, Text(""))
		require.NoError(t, err)
		assert.False(t, p.Enabled)
	}
}

func TestParsePolicy_Object(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want Policy
	}{
		{
			name: "empty object enables",
			src:  `{}`,
			want: Policy{Enabled: true, Address: "/myo/accel", In: DefaultRange(), Out: DefaultRange()},
		},
		{
			name: "explicit disable keeps path",
			src:  `{enabled: false, path: /a/x}`,
			want: Policy{Enabled: false, Address: "/a/x", In: DefaultRange(), Out: DefaultRange()},
		},
		{
			name: "address alias",
			src:  `{address: /a/y}`,
			want: Policy{Enabled: true, Address: "/a/y", In: DefaultRange(), Out: DefaultRange()},
		},
		{
			name: "matching path and address",
			src:  `{path: /a/z, address: /a/z}`,
			want: Policy{Enabled: true, Address: "/a/z", In: DefaultRange(), Out: DefaultRange()},
		},
		{
			name: "empty path disables",
			src:  `{path: ""}`,
			want: Policy{Enabled: false, Address: "/myo/accel", In: DefaultRange(), Out: DefaultRange()},
		},
		{
			name: "ranges imply linear",
			src:  `{in: [-2, 2], out: [0, 127]}`,
			want: Policy{Enabled: true, Address: "/myo/accel", Scaling: ScalingLinear,
				In: Range{Min: -2, Max: 2}, Out: Range{Min: 0, Max: 127}},
		},
		{
			name: "range object form",
			src:  `{out: {min: 1, max: -1}}`,
			want: Policy{Enabled: true, Address: "/myo/accel", Scaling: ScalingLinear,
				In: DefaultRange(), Out: Range{Min: 1, Max: -1}},
		},
		{
			name: "scale overrides implied linear",
			src:  `{in: [-2, 2], scale: none}`,
			want: Policy{Enabled: true, Address: "/myo/accel", Scaling: ScalingNone,
				In: Range{Min: -2, Max: 2}, Out: DefaultRange()},
		},
		{
			name: "integer scale code",
			src:  `{in: [-2, 2], scale: 2}`,
			want: Policy{Enabled: true, Address: "/myo/accel", Scaling: ScalingClamp,
				In: Range{Min: -2, Max: 2}, Out: DefaultRange()},
		},
		{
			name: "scale without ranges",
			src:  `{scale: linear}`,
			want: Policy{Enabled: true, Address: "/myo/accel", Scaling: ScalingLinear,
				In: DefaultRange(), Out: DefaultRange()},
		},
		{
			name: "unknown keys ignored",
			src:  `{path: /a/x, colour: red}`,
			want: Policy{Enabled: true, Address: "/a/x", In: DefaultRange(), Out: DefaultRange()},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePolicy(Accel, parseYAML(t, tt.src))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePolicy_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		mention string
	}{
		{"number", `42`, "gyro"},
		{"list", `[1, 2]`, "gyro"},
		{"enabled not bool", `{enabled: "yes"}`, "gyro.enabled"},
		{"path not string", `{path: 3}`, "gyro.path"},
		{"path and address differ", `{path: /a, address: /b}`, "disagree"},
		{"range arity", `{in: [1, 2, 3]}`, "gyro.in"},
		{"range single", `{out: [1]}`, "gyro.out"},
		{"range not numeric", `{in: [a, 2]}`, "gyro.in"},
		{"range object missing max", `{in: {min: 0}}`, "gyro.in"},
		{"range scalar", `{in: 5}`, "gyro.in"},
		{"unknown scale keyword", `{scale: cubic}`, "cubic"},
		{"scale code out of range", `{scale: 3}`, "gyro.scale"},
		{"scale code fractional", `{scale: 1.5}`, "gyro.scale"},
		{"scale wrong type", `{scale: true}`, "gyro.scale"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePolicy(Gyro, parseYAML(t, tt.src))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig), "got %v", err)
			assert.Contains(t, err.Error(), tt.mention)
		})
	}
}

func TestPolicyString(t *testing.T) {
	assert.Equal(t, "off", DefaultPolicy(Pose).String())
	assert.Equal(t, "/myo/pose", EnabledPolicy(Pose).String())

	p := EnabledPolicy(Accel)
	p.Scaling = ScalingClamp
	p.In = Range{Min: -2, Max: 2}
	assert.Equal(t, "/myo/accel (clamp [-2, 2] -> [0, 1])", p.String())
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds() {
		got, err := ParseKind(k.Key())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}

	_, err := ParseKind("battery")
	assert.ErrorIs(t, err, ErrUnknownKind)
	assert.False(t, Kind(KindCount).Valid())
	assert.Equal(t, "orientationQuat", OrientationQuat.String())
}
