// Package device defines the boundary between an armband event source and
// the rest of the bridge.
//
// A Source delivers typed events to a Listener, one at a time on a single
// goroutine. Listener has one method per event kind; embed NopListener to
// implement only the events you care about. The Feedback hook lets a
// consumer ask the armband for a short haptic pulse.
//
// Three sources are provided:
//
//   - Simulator: synthetic motion for demos and testing without hardware
//   - Replay: plays back a JSON-lines recording made by EventWriter
//   - MQTTSource: consumes events published by an armband gateway over MQTT
//
// Event wire format (one JSON object per line or MQTT message):
//
//	{"t": 1200, "type": "accelerometer", "data": [0.01, -0.98, 0.12]}
//	{"t": 1210, "type": "orientation", "data": [0, 0, 0, 1]}
//	{"t": 1220, "type": "pose", "pose": "fist"}
//	{"t": 1230, "type": "emg", "data": [1, -2, 3, 0, 5, -6, 7, 8]}
//	{"t": 1240, "type": "arm-sync", "arm": "left", "direction": "towardWrist"}
//	{"t": 1250, "type": "arm-unsync"}
//	{"t": 1260, "type": "signal-strength", "rssi": -61}
package device
