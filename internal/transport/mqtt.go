package transport

import (
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/nerrad567/myo-osc/internal/dispatch"
	"github.com/nerrad567/myo-osc/internal/infrastructure/config"
	"github.com/nerrad567/myo-osc/internal/infrastructure/mqtt"
)

// Publisher is the broker surface the MQTT sink needs.
// Implemented by *mqtt.Client.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// Payload is the mirrored form of a message.
type Payload struct {
	Address string `json:"address" cbor:"address"`
	Args    []any  `json:"args" cbor:"args"`
}

// PayloadOf converts m to its mirrored form.
func PayloadOf(m dispatch.Message) Payload {
	return Payload{Address: m.Address, Args: m.Values()}
}

// Encoder serialises a Payload.
type Encoder func(p Payload) ([]byte, error)

// EncoderFor returns the encoder for a codec name: "json" or "cbor".
func EncoderFor(codec string) (Encoder, error) {
	switch codec {
	case config.CodecJSON, "":
		return func(p Payload) ([]byte, error) { return json.Marshal(p) }, nil
	case config.CodecCBOR:
		return func(p Payload) ([]byte, error) { return cbor.Marshal(p) }, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, codec)
	}
}

// MQTT mirrors messages to a broker: one topic per OSC address, never retained.
type MQTT struct {
	pub    Publisher
	topics mqtt.Topics
	qos    byte
	encode Encoder
}

// NewMQTT creates a broker mirror.
//
// Parameters:
//   - pub: Connected broker client
//   - topics: Topic builder carrying the configured prefix
//   - qos: Publish QoS
//   - codec: "json" or "cbor"
//
// Returns:
//   - *MQTT: Ready to send
//   - error: ErrUnknownCodec for any other codec
func NewMQTT(pub Publisher, topics mqtt.Topics, qos byte, codec string) (*MQTT, error) {
	encode, err := EncoderFor(codec)
	if err != nil {
		return nil, err
	}
	return &MQTT{pub: pub, topics: topics, qos: qos, encode: encode}, nil
}

// Send publishes m on the topic for its address.
func (s *MQTT) Send(m dispatch.Message) error {
	data, err := s.encode(PayloadOf(m))
	if err != nil {
		return fmt.Errorf("encoding %s: %w", m.Address, err)
	}
	return s.pub.Publish(s.topics.Message(m.Address), data, s.qos, false)
}
