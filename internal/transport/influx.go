package transport

import (
	"time"

	"github.com/nerrad567/myo-osc/internal/dispatch"
	"github.com/nerrad567/myo-osc/internal/infrastructure/influxdb"
)

// PointWriter records one message. Implemented by *influxdb.Client.
type PointWriter interface {
	WriteMessage(address string, fields map[string]interface{}, ts time.Time)
}

// Influx records messages as time-series points.
type Influx struct {
	w   PointWriter
	now func() time.Time
}

// NewInflux creates a recording sink.
func NewInflux(w PointWriter) *Influx {
	return &Influx{w: w, now: time.Now}
}

// Send records m. Writes are asynchronous, so it never fails; write errors
// surface through the client's error callback.
func (s *Influx) Send(m dispatch.Message) error {
	s.w.WriteMessage(m.Address, Fields(m), s.now())
	return nil
}

// Fields maps the arguments of m to point fields. Numeric arguments are
// numbered in order (v0, v1, ...); a text argument is stored as "label".
func Fields(m dispatch.Message) map[string]interface{} {
	fields := make(map[string]interface{}, len(m.Fields))
	n := 0
	for _, f := range m.Fields {
		switch v := f.(type) {
		case dispatch.Int8:
			fields[influxdb.FieldName(n)] = int64(v)
			n++
		case dispatch.Float32:
			fields[influxdb.FieldName(n)] = float64(v)
			n++
		case dispatch.String:
			fields["label"] = string(v)
		}
	}
	return fields
}
