package transport

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerrad567/myo-osc/internal/dispatch"
	"github.com/nerrad567/myo-osc/internal/infrastructure/mqtt"
)

type published struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

type mockPublisher struct {
	got []published
	err error
}

func (p *mockPublisher) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if p.err != nil {
		return p.err
	}
	p.got = append(p.got, published{topic, payload, qos, retained})
	return nil
}

type pointCall struct {
	address string
	fields  map[string]interface{}
	ts      time.Time
}

type mockPointWriter struct {
	calls []pointCall
}

func (w *mockPointWriter) WriteMessage(address string, fields map[string]interface{}, ts time.Time) {
	w.calls = append(w.calls, pointCall{address, fields, ts})
}

var poseMessage = dispatch.Message{Address: "/myo/pose", Fields: []dispatch.Field{dispatch.String("fist")}}

func TestMQTT_JSON(t *testing.T) {
	pub := &mockPublisher{}
	sink, err := NewMQTT(pub, mqtt.Topics{Prefix: "studio/"}, 1, "json")
	require.NoError(t, err)

	require.NoError(t, sink.Send(dispatch.Message{
		Address: "/myo/accel",
		Fields:  []dispatch.Field{dispatch.Float32(0.5), dispatch.Int8(-3)},
	}))

	require.Len(t, pub.got, 1)
	assert.Equal(t, "studio/myo/accel", pub.got[0].topic)
	assert.Equal(t, byte(1), pub.got[0].qos)
	assert.False(t, pub.got[0].retained)

	var decoded Payload
	require.NoError(t, json.Unmarshal(pub.got[0].payload, &decoded))
	assert.Equal(t, "/myo/accel", decoded.Address)
	assert.Equal(t, []any{0.5, -3.0}, decoded.Args)
}

func TestMQTT_CBOR(t *testing.T) {
	pub := &mockPublisher{}
	sink, err := NewMQTT(pub, mqtt.Topics{}, 0, "cbor")
	require.NoError(t, err)

	require.NoError(t, sink.Send(poseMessage))
	require.Len(t, pub.got, 1)
	assert.Equal(t, "myo/myo/pose", pub.got[0].topic)

	var decoded Payload
	require.NoError(t, cbor.Unmarshal(pub.got[0].payload, &decoded))
	assert.Equal(t, Payload{Address: "/myo/pose", Args: []any{"fist"}}, decoded)
}

func TestMQTT_PublishError(t *testing.T) {
	boom := errors.New("not connected")
	sink, err := NewMQTT(&mockPublisher{err: boom}, mqtt.Topics{}, 0, "json")
	require.NoError(t, err)
	assert.ErrorIs(t, sink.Send(poseMessage), boom)
}

func TestNewMQTT_UnknownCodec(t *testing.T) {
	_, err := NewMQTT(&mockPublisher{}, mqtt.Topics{}, 0, "xml")
	assert.ErrorIs(t, err, ErrUnknownCodec)
}

func TestFields(t *testing.T) {
	got := Fields(dispatch.Message{
		Address: "/myo/mixed",
		Fields:  []dispatch.Field{dispatch.Float32(1.5), dispatch.String("fist"), dispatch.Int8(-7)},
	})
	assert.Equal(t, map[string]interface{}{"v0": 1.5, "label": "fist", "v1": int64(-7)}, got)
}

func TestInflux_Send(t *testing.T) {
	w := &mockPointWriter{}
	sink := NewInflux(w)
	at := time.Unix(1700000000, 0)
	sink.now = func() time.Time { return at }

	require.NoError(t, sink.Send(poseMessage))
	require.Len(t, w.calls, 1)
	assert.Equal(t, "/myo/pose", w.calls[0].address)
	assert.Equal(t, map[string]interface{}{"label": "fist"}, w.calls[0].fields)
	assert.Equal(t, at, w.calls[0].ts)
}

func TestFanout(t *testing.T) {
	var first, third []dispatch.Message
	failA := errors.New("a")
	failB := errors.New("b")

	f := Fanout{
		dispatch.SinkFunc(func(m dispatch.Message) error { first = append(first, m); return nil }),
		dispatch.SinkFunc(func(dispatch.Message) error { return failA }),
		dispatch.SinkFunc(func(m dispatch.Message) error { third = append(third, m); return failB }),
	}

	err := f.Send(poseMessage)
	assert.ErrorIs(t, err, failA)
	assert.ErrorIs(t, err, failB)
	assert.Len(t, first, 1)
	assert.Len(t, third, 1)

	assert.NoError(t, Fanout{}.Send(poseMessage))
}
