package transport

import (
	"errors"

	"github.com/nerrad567/myo-osc/internal/dispatch"
)

// Fanout sends every message to each sink in order.
type Fanout []dispatch.Sink

// Send delivers m to all sinks, even after a failure, and joins the errors.
func (f Fanout) Send(m dispatch.Message) error {
	var errs []error
	for _, s := range f {
		if err := s.Send(m); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
