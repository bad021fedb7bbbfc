package mqtt

import (
	"crypto/tls"
	"encoding/json"
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/myo-osc/internal/infrastructure/config"
)

const (
	connectTimeout = 10 * time.Second

	// ackTimeout bounds every publish, subscribe and unsubscribe.
	ackTimeout = 5 * time.Second

	// quiesceMillis lets the offline status leave before disconnecting.
	quiesceMillis = 250

	// keepAlive is short so a dead gateway link shows up on /health quickly.
	keepAlive = 20 * time.Second

	maxQoS = 2
)

// Presence states published on the status topic.
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// Status is the retained presence message on Topics.Status.
type Status struct {
	State     string `json:"status"`
	ClientID  string `json:"client_id"`
	Reason    string `json:"reason,omitempty"`
	Timestamp string `json:"timestamp"`
}

// statusPayload encodes a presence message stamped with the current time.
func statusPayload(state, clientID, reason string) []byte {
	data, _ := json.Marshal(Status{
		State:     state,
		ClientID:  clientID,
		Reason:    reason,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	return data
}

// brokerURL returns tcp://host:port, or ssl:// when TLS is on.
func brokerURL(b config.MQTTBrokerConfig) string {
	scheme := "tcp"
	if b.TLS {
		scheme = "ssl"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, b.Host, b.Port)
}

// clientOptions builds the paho options for one bridge instance.
//
// The session is clean because the bridge resubscribes itself after a
// reconnect. The will marks the bridge offline on the status topic when
// it vanishes without Close.
func clientOptions(cfg config.MQTTConfig, topics Topics) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions().
		AddBroker(brokerURL(cfg.Broker)).
		SetClientID(cfg.Broker.ClientID).
		SetCleanSession(true).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(time.Duration(cfg.Reconnect.InitialDelay) * time.Second).
		SetMaxReconnectInterval(time.Duration(cfg.Reconnect.MaxDelay) * time.Second).
		SetConnectTimeout(connectTimeout).
		SetKeepAlive(keepAlive).
		SetWill(topics.Status(), string(statusPayload(StatusOffline, cfg.Broker.ClientID, "connection_lost")), 1, true)

	if cfg.Auth.Username != "" {
		opts.SetUsername(cfg.Auth.Username)
		opts.SetPassword(cfg.Auth.Password)
	}
	if cfg.Broker.TLS {
		opts.SetTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12})
	}
	return opts
}
