package device

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

// MQTT source defaults.
const (
	defaultEventBuffer = 256
)

// MQTTClient is the subset of the MQTT client used by MQTTSource.
// Satisfied by *mqtt.Client from the infrastructure package.
type MQTTClient interface {
	// Subscribe registers a handler for a topic pattern.
	Subscribe(topic string, qos byte, handler func(topic string, payload []byte) error) error

	// Unsubscribe removes a subscription.
	Unsubscribe(topic string) error

	// Publish sends a message to a topic.
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// MQTTSourceOptions configures an MQTTSource.
type MQTTSourceOptions struct {
	// EventTopic is subscribed for JSON events.
	EventTopic string

	// CommandTopic receives haptic commands. Empty disables feedback.
	CommandTopic string

	// QoS for the subscription and commands.
	QoS byte

	// Buffer is the number of events queued between the MQTT callback
	// goroutine and the listener. Zero means 256.
	Buffer int
}

// HapticCommand is published on the command topic.
type HapticCommand struct {
	Command  string `json:"command"`
	Duration string `json:"duration"`
}

// MQTTSource is a Source fed by an armband gateway publishing events over
// MQTT. Events arrive on the client's callback goroutines and are
// serialised onto the goroutine running Run.
//
// MQTTSource also implements Feedback by publishing a HapticCommand.
type MQTTSource struct {
	client MQTTClient
	opts   MQTTSourceOptions
	logger Logger
	events chan Event
}

// NewMQTTSource creates an MQTTSource.
func NewMQTTSource(client MQTTClient, opts MQTTSourceOptions, logger Logger) *MQTTSource {
	if opts.Buffer <= 0 {
		opts.Buffer = defaultEventBuffer
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &MQTTSource{
		client: client,
		opts:   opts,
		logger: logger,
		events: make(chan Event, opts.Buffer),
	}
}

// Run subscribes to the event topic and delivers events to l until ctx is
// cancelled.
func (s *MQTTSource) Run(ctx context.Context, l Listener) error {
	if err := s.client.Subscribe(s.opts.EventTopic, s.opts.QoS, s.handle); err != nil {
		return fmt.Errorf("subscribing to %s: %w", s.opts.EventTopic, err)
	}
	defer func() {
		if err := s.client.Unsubscribe(s.opts.EventTopic); err != nil {
			s.logger.Warn("unsubscribing device events", "topic", s.opts.EventTopic, "error", err)
		}
	}()

	s.logger.Info("listening for device events", "topic", s.opts.EventTopic)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-s.events:
			if err := ev.Deliver(l); err != nil {
				s.logger.Warn("dropping device event", "type", ev.Type, "error", err)
			}
		}
	}
}

// handle runs on the MQTT client's goroutine.
func (s *MQTTSource) handle(topic string, payload []byte) error {
	ev, err := ParseEvent(payload)
	if err != nil {
		return fmt.Errorf("topic %s: %w", topic, err)
	}

	select {
	case s.events <- ev:
		return nil
	default:
		s.logger.Warn("device event queue full, dropping event", "type", ev.Type)
		return nil
	}
}

// TriggerShortHapticPulse publishes a short vibrate command.
func (s *MQTTSource) TriggerShortHapticPulse() {
	if s.opts.CommandTopic == "" {
		return
	}
	payload, err := json.Marshal(HapticCommand{Command: "vibrate", Duration: "short"})
	if err != nil {
		s.logger.Error("encoding haptic command", "error", err)
		return
	}
	if err := s.client.Publish(s.opts.CommandTopic, payload, s.opts.QoS, false); err != nil {
		s.logger.Warn("publishing haptic command", "topic", s.opts.CommandTopic, "error", err)
	}
}
