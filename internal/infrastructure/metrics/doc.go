// Package metrics exposes dispatch counters in Prometheus format.
//
// Metrics implements dispatch.Recorder, so handing it to the dispatcher is
// enough to count every sent, dropped and failed message per channel. The
// relay serves Handler() on /metrics.
//
// Exported series (namespace "myoosc"):
//
//	myoosc_messages_sent_total{channel}
//	myoosc_messages_dropped_total{channel,reason}
//	myoosc_sink_failures_total{channel}
//	myoosc_relay_clients
package metrics
