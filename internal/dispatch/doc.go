// Package dispatch turns device events into outbound OSC messages.
//
// Encode is the pure core: given a channel, its policy and one sample it
// returns the message to send, or nothing when the channel is disabled.
// Dispatcher wraps Encode as a device.Listener and adds the side effects:
// handing messages to a Sink, writing trace lines, triggering haptic
// feedback on a fist pose and recording counters.
//
// Field shapes per sample:
//
//	device.Byte        one Int8
//	device.EMG         eight Int8, electrode order
//	device.Scalar      one Float32
//	device.Vector3     x, y, z
//	device.Quaternion  x, y, z, w (roll, pitch, yaw on the orientation channel)
//	device.Label       one String, never scaled
//
// A Dispatcher is driven by a single Source goroutine and is not safe for
// concurrent use.
package dispatch
