package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Source types accepted by SourceConfig.Type.
const (
	SourceSimulator = "simulator"
	SourceReplay    = "replay"
	SourceMQTT      = "mqtt"
)

// Payload codecs accepted by MQTTConfig.Codec.
const (
	CodecJSON = "json"
	CodecCBOR = "cbor"
)

// EnvServiceConfig names the environment variable holding the service config path.
const EnvServiceConfig = "MYOOSC_SERVICE_CONFIG"

// Config is the root service configuration for the bridge.
//
// It covers everything around the channel document: where events come
// from, which transports receive messages, and how the process logs.
// Channel policies and the OSC target live in the channel document.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging"`
	Source    SourceConfig    `yaml:"source"`
	OSC       OSCConfig       `yaml:"osc"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Relay     RelayConfig     `yaml:"relay"`
	Discovery DiscoveryConfig `yaml:"discovery"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// SourceConfig selects the device event source.
type SourceConfig struct {
	// Type is one of "simulator", "replay" or "mqtt".
	Type string `yaml:"type"`

	// File is the JSON-lines recording read by the replay source.
	// "-" reads standard input.
	File string `yaml:"file"`

	// Realtime paces replayed events by their timestamps.
	Realtime bool `yaml:"realtime"`

	// Speed multiplies replay pace when Realtime is set.
	Speed float64 `yaml:"speed"`

	// SkipInvalid logs and skips malformed replay lines instead of stopping.
	SkipInvalid bool `yaml:"skip_invalid"`

	// Interval is the simulator tick in milliseconds.
	Interval int `yaml:"interval"`

	// Steps stops the simulator after this many ticks. 0 runs until cancelled.
	Steps int `yaml:"steps"`

	// Arm is the arm the simulator syncs to: "left" or "right".
	Arm string `yaml:"arm"`
}

// OSCConfig contains settings for the UDP OSC transport.
type OSCConfig struct {
	Enabled bool `yaml:"enabled"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`

	// Prefix is prepended to topics built by the mqtt package.
	Prefix string `yaml:"prefix"`

	// Publish mirrors every outbound message to the broker.
	Publish bool `yaml:"publish"`

	// Codec encodes mirrored messages: "json" or "cbor".
	Codec string `yaml:"codec"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	Measurement   string `yaml:"measurement"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// RelayConfig contains the WebSocket relay server settings.
type RelayConfig struct {
	Enabled        bool   `yaml:"enabled"`
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	Path           string `yaml:"path"`
	MaxMessageSize int    `yaml:"max_message_size"`
	PingInterval   int    `yaml:"ping_interval"`
	PongTimeout    int    `yaml:"pong_timeout"`
}

// DiscoveryConfig contains mDNS discovery settings for the OSC target.
type DiscoveryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Service string `yaml:"service"`
	Domain  string `yaml:"domain"`

	// Instance restricts discovery to one advertised instance name.
	Instance string `yaml:"instance"`

	// Timeout is how long to browse, in seconds.
	Timeout int `yaml:"timeout"`
}

// Load reads the service configuration and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values, when path is not empty
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: MYOOSC_SECTION_KEY
// For example: MYOOSC_MQTT_HOST, MYOOSC_SOURCE_TYPE
//
// Parameters:
//   - path: Path to the YAML service file, or "" for defaults only
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading service config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing service config: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating service config: %w", err)
	}

	return cfg, nil
}

// Default returns the configuration used when no service file is given:
// simulated device, OSC over UDP, every other transport off.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Source: SourceConfig{
			Type:     SourceSimulator,
			Speed:    1,
			Interval: 20,
			Arm:      "right",
		},
		OSC: OSCConfig{
			Enabled: true,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "myoosc",
			},
			QoS: 0,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
			Prefix: "myo/",
			Codec:  CodecJSON,
		},
		InfluxDB: InfluxDBConfig{
			URL:           "http://localhost:8086",
			Bucket:        "myo",
			Measurement:   "myo",
			BatchSize:     500,
			FlushInterval: 1,
		},
		Relay: RelayConfig{
			Host:           "127.0.0.1",
			Port:           8090,
			Path:           "/ws",
			MaxMessageSize: 4096,
			PingInterval:   30,
			PongTimeout:    10,
		},
		Discovery: DiscoveryConfig{
			Service: "_osc._udp",
			Domain:  "local.",
			Timeout: 3,
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	// Logging
	if v := os.Getenv("MYOOSC_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("MYOOSC_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}

	// Source
	if v := os.Getenv("MYOOSC_SOURCE_TYPE"); v != "" {
		cfg.Source.Type = v
	}
	if v := os.Getenv("MYOOSC_SOURCE_FILE"); v != "" {
		cfg.Source.File = v
	}

	// MQTT
	if v := os.Getenv("MYOOSC_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("MYOOSC_MQTT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.MQTT.Broker.Port = port
		}
	}
	if v := os.Getenv("MYOOSC_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("MYOOSC_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// InfluxDB
	if v := os.Getenv("MYOOSC_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of every validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	switch c.Source.Type {
	case SourceSimulator:
		if c.Source.Interval < 1 {
			errs = append(errs, "source.interval must be at least 1")
		}
		if c.Source.Arm != "left" && c.Source.Arm != "right" {
			errs = append(errs, "source.arm must be left or right")
		}
	case SourceReplay:
		if c.Source.File == "" {
			errs = append(errs, "source.file is required for the replay source")
		}
		if c.Source.Speed <= 0 {
			errs = append(errs, "source.speed must be positive")
		}
	case SourceMQTT:
		if !c.MQTT.Enabled {
			errs = append(errs, "mqtt.enabled is required for the mqtt source")
		}
	default:
		errs = append(errs, "source.type must be simulator, replay or mqtt")
	}

	if c.MQTT.Enabled {
		if c.MQTT.Broker.Host == "" {
			errs = append(errs, "mqtt.broker.host is required")
		}
		if c.MQTT.Broker.Port < 1 || c.MQTT.Broker.Port > 65535 {
			errs = append(errs, "mqtt.broker.port must be between 1 and 65535")
		}
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.Codec != CodecJSON && c.MQTT.Codec != CodecCBOR {
		errs = append(errs, "mqtt.codec must be json or cbor")
	}
	if c.MQTT.Publish && !c.MQTT.Enabled {
		errs = append(errs, "mqtt.publish requires mqtt.enabled")
	}

	if c.InfluxDB.Enabled {
		if c.InfluxDB.URL == "" {
			errs = append(errs, "influxdb.url is required")
		}
		if c.InfluxDB.Bucket == "" {
			errs = append(errs, "influxdb.bucket is required")
		}
		if c.InfluxDB.Measurement == "" {
			errs = append(errs, "influxdb.measurement is required")
		}
	}

	if c.Relay.Enabled {
		if c.Relay.Port < 1 || c.Relay.Port > 65535 {
			errs = append(errs, "relay.port must be between 1 and 65535")
		}
		if !strings.HasPrefix(c.Relay.Path, "/") {
			errs = append(errs, "relay.path must start with /")
		}
	}

	if c.Discovery.Enabled {
		if c.Discovery.Service == "" {
			errs = append(errs, "discovery.service is required")
		}
		if c.Discovery.Timeout < 1 {
			errs = append(errs, "discovery.timeout must be at least 1")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// SimulatorInterval returns the simulator tick as a Duration.
func (c *Config) SimulatorInterval() time.Duration {
	return time.Duration(c.Source.Interval) * time.Millisecond
}

// DiscoveryTimeout returns the discovery browse window as a Duration.
func (c *Config) DiscoveryTimeout() time.Duration {
	return time.Duration(c.Discovery.Timeout) * time.Second
}

// RelayAddr returns the relay listen address.
func (c *Config) RelayAddr() string {
	return fmt.Sprintf("%s:%d", c.Relay.Host, c.Relay.Port)
}

// PingInterval returns the relay WebSocket ping interval as a Duration.
func (c *Config) PingInterval() time.Duration {
	return time.Duration(c.Relay.PingInterval) * time.Second
}

// PongTimeout returns the relay WebSocket pong timeout as a Duration.
func (c *Config) PongTimeout() time.Duration {
	return time.Duration(c.Relay.PongTimeout) * time.Second
}
