package channel

import "errors"

// Domain errors for channel policy parsing and scaling.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrInvalidConfig is returned when a configuration value has an
	// unexpected shape, a range does not have exactly two numeric components,
	// or a scaling keyword is unknown.
	ErrInvalidConfig = errors.New("channel: invalid config")

	// ErrDivisionByZero is returned when scaling with an input range whose
	// endpoints are equal.
	ErrDivisionByZero = errors.New("channel: degenerate input range")

	// ErrUnknownKind is returned when a channel key does not name a known channel.
	ErrUnknownKind = errors.New("channel: unknown channel")
)
