package mqtt

import "fmt"

// maxPayloadSize bounds one publish. Mirrored messages are under 100
// bytes, so anything near this is a bug upstream.
const maxPayloadSize = 64 << 10

// Publish sends payload to topic and waits for the broker at QoS 1 and 2,
// or for the write at QoS 0.
//
// Only the status topic is retained; mirrored messages and haptic
// commands are not.
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if err := checkRequest(topic, qos); err != nil {
		return err
	}
	if len(payload) > maxPayloadSize {
		return fmt.Errorf("%w: %s: %d byte payload exceeds %d", ErrPublishFailed, topic, len(payload), maxPayloadSize)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}
	return await(c.client.Publish(topic, qos, retained, payload), ErrPublishFailed)
}
