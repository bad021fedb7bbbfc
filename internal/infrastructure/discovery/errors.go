package discovery

import "errors"

var (
	// ErrNotFound is returned when no matching service answered in time.
	ErrNotFound = errors.New("discovery: no service found")

	// ErrDisabled is returned when discovery is off in the configuration.
	ErrDisabled = errors.New("discovery: disabled in configuration")
)
