package settings

import (
	"errors"

	"github.com/nerrad567/myo-osc/internal/channel"
)

// ErrInvalidConfig is returned when the channel document is malformed.
// It is the same sentinel the channel package uses so callers need a
// single errors.Is check.
var ErrInvalidConfig = channel.ErrInvalidConfig

// ErrInvalidArguments is returned for malformed flag combinations or
// positional arguments.
var ErrInvalidArguments = errors.New("settings: invalid arguments")
