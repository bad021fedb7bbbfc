package mqtt

import "strings"

// DefaultPrefix is the topic prefix used when none is configured.
const DefaultPrefix = "myo/"

// Topics provides builders for the bridge's MQTT topics.
// Using these helpers keeps topic naming consistent between the device
// source, the message mirror and the status announcements.
//
//	topics := mqtt.Topics{Prefix: "studio/"}
//	topics.Message("/myo/accel")
//	// Returns: "studio/myo/accel"
type Topics struct {
	// Prefix is prepended to every topic. Empty means DefaultPrefix.
	Prefix string
}

// base returns the prefix without its trailing slash.
func (t Topics) base() string {
	p := t.Prefix
	if p == "" {
		p = DefaultPrefix
	}
	return strings.TrimSuffix(p, "/")
}

// DeviceEvents returns the topic carrying JSON device events.
//
// Example: myo/device/events
func (t Topics) DeviceEvents() string {
	return t.base() + "/device/events"
}

// DeviceCommand returns the topic receiving haptic commands for the armband.
//
// Example: myo/device/command
func (t Topics) DeviceCommand() string {
	return t.base() + "/device/command"
}

// Message returns the topic mirroring an OSC address.
// The address keeps its own slashes, so /myo/accel maps to myo/myo/accel.
//
// Example: myo/myo/accel
func (t Topics) Message(address string) string {
	if !strings.HasPrefix(address, "/") {
		address = "/" + address
	}
	return t.base() + address
}

// Status returns the retained bridge status topic.
//
// Example: myo/status
func (t Topics) Status() string {
	return t.base() + "/status"
}
