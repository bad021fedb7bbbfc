package dispatch

import (
	"errors"

	"github.com/nerrad567/myo-osc/internal/channel"
)

var (
	// ErrUnsupportedSample is returned by Encode for a nil or unknown sample type.
	ErrUnsupportedSample = errors.New("dispatch: unsupported sample")

	// ErrDivisionByZero is returned when a scaled channel has a degenerate input range.
	ErrDivisionByZero = channel.ErrDivisionByZero
)
