package influxdb

import (
	"strconv"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// FieldName returns the field key for the i-th numeric argument: v0, v1, ...
func FieldName(i int) string {
	return "v" + strconv.Itoa(i)
}

// WriteMessage records one outbound message.
//
// The write is non-blocking; data is batched and sent asynchronously.
// Nothing is written while the client is disconnected.
//
// Parameters:
//   - address: OSC address, stored as the "address" tag
//   - fields: Field values keyed by FieldName, plus "label" for text
//   - ts: Time the message was sent
//
// Example:
//
//	client.WriteMessage("/myo/accel",
//	    map[string]interface{}{"v0": 0.1, "v1": -0.2, "v2": 0.98}, time.Now())
func (c *Client) WriteMessage(address string, fields map[string]interface{}, ts time.Time) {
	if !c.IsConnected() || len(fields) == 0 {
		return
	}
	c.writeAPI.WritePoint(messagePoint(c.cfg.Measurement, address, fields, ts))
}

// messagePoint builds the point for one message.
func messagePoint(measurement, address string, fields map[string]interface{}, ts time.Time) *write.Point {
	return write.NewPoint(
		measurement,
		map[string]string{
			"address": address,
		},
		fields,
		ts,
	)
}
