package channel

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromNode_JSONAndYAMLAgree(t *testing.T) {
	fromJSON := parseYAML(t, `{"accel": {"path": "/a/x", "in": [-2, 2], "out": [-1, 1], "scale": "clamp"}, "pose": true, "emg": null}`)
	fromYAML := parseYAML(t, `
accel:
  path: /a/x
  in: [-2, 2]
  out: [-1, 1]
  scale: clamp
pose: true
emg: ~
`)
	assert.Equal(t, fromJSON, fromYAML)

	obj, ok := fromYAML.(Object)
	require.True(t, ok)
	assert.Equal(t, Bool(true), obj.Get("pose"))
	assert.Equal(t, Null{}, obj.Get("emg"))
	assert.Equal(t, Null{}, obj.Get("missing"))
	assert.False(t, obj.Has("emg"))
	assert.True(t, obj.Has("accel"))
}

func TestFromNode_Scalars(t *testing.T) {
	obj := parseYAML(t, `{n: 3, f: -1.5, s: "3", b: false, q: "true"}`).(Object)
	assert.Equal(t, Number(3), obj["n"])
	assert.Equal(t, Number(-1.5), obj["f"])
	assert.Equal(t, Text("3"), obj["s"])
	assert.Equal(t, Bool(false), obj["b"])
	assert.Equal(t, Text("true"), obj["q"])
}

func TestFromNode_EmptyDocument(t *testing.T) {
	v, err := FromNode(nil)
	require.NoError(t, err)
	assert.True(t, IsNull(v))
}

func TestOf_DecodedJSON(t *testing.T) {
	var raw any
	require.NoError(t, json.Unmarshal([]byte(`{"a": [1, "x", true, null], "b": {"c": 2.5}}`), &raw))

	v, err := Of(raw)
	require.NoError(t, err)
	assert.Equal(t, Object{
		"a": List{Number(1), Text("x"), Bool(true), Null{}},
		"b": Object{"c": Number(2.5)},
	}, v)

	_, err = Of(struct{}{})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestValueString(t *testing.T) {
	v := MustOf(map[string]any{"b": []any{1, "x"}, "a": nil})
	assert.Equal(t, `{"a":null,"b":[1,"x"]}`, v.String())
}

func TestNumberAsInt(t *testing.T) {
	n, ok := Number(2).AsInt()
	assert.True(t, ok)
	assert.Equal(t, 2, n)

	_, ok = Number(2.5).AsInt()
	assert.False(t, ok)
}
