package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nerrad567/myo-osc/internal/channel"
)

const namespace = "myoosc"

// Metrics holds the bridge's Prometheus collectors on a private registry.
//
// Thread Safety: All methods are safe for concurrent use.
type Metrics struct {
	registry *prometheus.Registry

	sent         *prometheus.CounterVec // By channel
	dropped      *prometheus.CounterVec // By channel and reason
	sinkFailures *prometheus.CounterVec // By channel
	relayClients prometheus.Gauge
}

// New creates and registers the collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		sent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_sent_total",
			Help:      "Messages handed to the transports",
		}, []string{"channel"}),

		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_dropped_total",
			Help:      "Messages that could not be encoded",
		}, []string{"channel", "reason"}), // reason: division_by_zero, encode_error

		sinkFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sink_failures_total",
			Help:      "Messages a transport failed to deliver",
		}, []string{"channel"}),

		relayClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "relay_clients",
			Help:      "Connected WebSocket relay clients",
		}),
	}

	m.registry.MustRegister(m.sent, m.dropped, m.sinkFailures, m.relayClients)
	return m
}

// MessageSent counts a delivered message.
func (m *Metrics) MessageSent(kind channel.Kind) {
	m.sent.WithLabelValues(kind.Key()).Inc()
}

// MessageDropped counts a message dropped before sending.
func (m *Metrics) MessageDropped(kind channel.Kind, reason string) {
	m.dropped.WithLabelValues(kind.Key(), reason).Inc()
}

// SinkFailed counts a failed delivery.
func (m *Metrics) SinkFailed(kind channel.Kind) {
	m.sinkFailures.WithLabelValues(kind.Key()).Inc()
}

// SetRelayClients records the number of relay clients.
func (m *Metrics) SetRelayClients(n int) {
	m.relayClients.Set(float64(n))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
