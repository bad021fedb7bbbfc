// Package influxdb records outbound messages in InfluxDB.
//
// It wraps the official influxdb-client-go v2 library. Writes are batched
// and non-blocking, timestamps keep microsecond precision so 200 Hz EMG
// samples stay distinct, and points held for retry during an outage are
// capped.
//
// # Data Model
//
// One point per message:
//
//	measurement: cfg.Measurement (default "myo")
//	tag address: the OSC address, e.g. /myo/accel
//	fields:      v0, v1, ... for numeric arguments, label for text
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if errors.Is(err, influxdb.ErrDisabled) {
//	    // recording off
//	}
//	defer client.Close()
//
//	client.WriteMessage("/myo/pose", map[string]interface{}{"label": "fist"}, time.Now())
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
//
// # Error Handling
//
// Write errors arrive asynchronously through SetOnError. A failed batch
// also makes HealthCheck return ErrWriteFailed for a few seconds, which
// the relay's /health route reports.
package influxdb
