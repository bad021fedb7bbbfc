package influxdb

import "errors"

var (
	// ErrDisabled is returned by Connect when recording is switched off.
	ErrDisabled = errors.New("influxdb: recording disabled")

	// ErrConnectionFailed wraps the reason the server could not be reached.
	ErrConnectionFailed = errors.New("influxdb: server unreachable")

	// ErrNotConnected is returned by HealthCheck on a closed client.
	ErrNotConnected = errors.New("influxdb: client closed")

	// ErrWriteFailed is returned by HealthCheck after a batch was rejected.
	ErrWriteFailed = errors.New("influxdb: batch write failed")
)
