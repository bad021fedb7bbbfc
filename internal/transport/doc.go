// Package transport delivers dispatch messages to their destinations.
//
// Every type here implements dispatch.Sink:
//
//   - OSC sends each message as one OSC packet over UDP. This is the
//     primary output and the only one the channel document configures.
//   - MQTT mirrors messages to a broker, one topic per address, encoded
//     as JSON or CBOR.
//   - Influx records numeric arguments as InfluxDB points.
//   - Fanout sends to several sinks and joins their errors.
//
// Delivery is fire-and-forget throughout. A failed send returns an error
// for the dispatcher to count; nothing is queued or retried.
package transport
