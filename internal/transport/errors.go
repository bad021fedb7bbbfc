package transport

import "errors"

var (
	// ErrClosed is returned when sending on a closed sink.
	ErrClosed = errors.New("transport: sink closed")

	// ErrUnknownCodec is returned for a payload codec other than json or cbor.
	ErrUnknownCodec = errors.New("transport: unknown codec")
)
