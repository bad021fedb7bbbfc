package mqtt

import (
	"fmt"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

// route is a subscription replayed after every reconnect. In practice the
// bridge holds one: the gateway's device event topic.
type route struct {
	qos     byte
	handler MessageHandler
}

// Subscribe routes messages on topic to handler and keeps the route
// across reconnects.
//
// paho calls handlers one at a time in arrival order, so a handler that
// blocks stalls every route. MQTTSource only queues the event.
func (c *Client) Subscribe(topic string, qos byte, handler MessageHandler) error {
	if err := checkRequest(topic, qos); err != nil {
		return err
	}
	if handler == nil {
		return fmt.Errorf("%w: %s: nil handler", ErrSubscribeFailed, topic)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}

	if err := await(c.client.Subscribe(topic, qos, c.wrapHandler(handler)), ErrSubscribeFailed); err != nil {
		return err
	}

	c.routesMu.Lock()
	c.routes[topic] = route{qos: qos, handler: handler}
	c.routesMu.Unlock()
	return nil
}

// Unsubscribe drops the route for topic.
func (c *Client) Unsubscribe(topic string) error {
	if topic == "" {
		return ErrInvalidTopic
	}

	c.routesMu.Lock()
	delete(c.routes, topic)
	c.routesMu.Unlock()

	if !c.IsConnected() {
		return ErrNotConnected
	}
	return await(c.client.Unsubscribe(topic), ErrSubscribeFailed)
}

// resubscribe replays every route after a reconnect. The clean session
// means the broker forgot them.
func (c *Client) resubscribe() {
	c.routesMu.RLock()
	defer c.routesMu.RUnlock()

	for topic, r := range c.routes {
		token := c.client.Subscribe(topic, r.qos, c.wrapHandler(r.handler))
		go func(topic string) {
			if err := await(token, ErrSubscribeFailed); err != nil {
				if logger := c.getLogger(); logger != nil {
					logger.Error("MQTT resubscribe failed", "topic", topic, "error", err)
				}
			}
		}(topic)
	}
}

func checkRequest(topic string, qos byte) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return fmt.Errorf("%w: %d", ErrInvalidQoS, qos)
	}
	return nil
}

// await waits up to ackTimeout for token and wraps any failure in kind.
func await(token pahomqtt.Token, kind error) error {
	if !token.WaitTimeout(ackTimeout) {
		return fmt.Errorf("%w: no acknowledgement within %v", kind, ackTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", kind, err)
	}
	return nil
}
