// Package channel describes per-channel output policy for the myo-osc bridge.
//
// A channel is one independently configurable sensor or event stream coming
// off the armband (accelerometer, gyroscope, orientation, pose, EMG, arm
// sync, signal strength). Each channel carries a Policy:
//
//   - Enabled: whether anything is sent at all
//   - Address: the OSC-style path the message is sent to (e.g. "/myo/accel")
//   - Scaling: optional range transform applied to numeric payloads
//
// # Configuration Shapes
//
// Policies are parsed from relaxed configuration values. Every channel accepts
// the same shapes:
//
//	accel: true                     # enabled, default address
//	gyro: "/hand/gyro"              # enabled, custom address
//	emg: null                       # disabled
//	orientation:
//	  path: "/hand/ypr"
//	  in: [-3.1416, 3.1416]
//	  out: {min: 0, max: 1}
//	  scale: clamp                  # none, scale or clamp (or 0, 1, 2)
//
// # Scaling
//
// Linear scaling maps the input range onto the output range without bounds.
// Clamp scaling additionally pins the result into the output range, whichever
// way round the output range is written. A degenerate input range
// (in.min == in.max) yields ErrDivisionByZero rather than a made-up value.
package channel
