// Package mqtt provides MQTT client connectivity for the bridge.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Publishing mirrored messages and haptic commands
//   - Subscribing to device events, restored after reconnection
//   - Last Will and Testament (LWT) on the status topic
//
// # Architecture
//
// The broker is optional. When enabled it can feed device events in
// (the mqtt event source) and receive a copy of every outbound message
// (the mqtt transport sink):
//
//	armband gateway → myo/device/events → bridge → myo/<osc address>
//	bridge → myo/device/command → armband gateway
//
// # Security Considerations
//
//   - Use TLS (cfg.Broker.TLS=true) when the broker is off the local host
//   - Credentials should come from MYOOSC_MQTT_USERNAME / MYOOSC_MQTT_PASSWORD
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.Subscribe(client.Topics().DeviceEvents(), 0,
//	    func(topic string, payload []byte) error {
//	        return handleEvent(payload)
//	    })
package mqtt
