package device

import "errors"

// Domain errors for the device boundary.
var (
	// ErrInvalidEvent is returned when an event cannot be decoded or has the wrong shape.
	ErrInvalidEvent = errors.New("device: invalid event")

	// ErrUnknownEventType is returned for an event type this bridge does not handle.
	ErrUnknownEventType = errors.New("device: unknown event type")
)
