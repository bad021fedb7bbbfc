package device

import "context"

// Listener receives device events. A Source calls at most one method at a
// time and never concurrently.
type Listener interface {
	OnAccelerometer(ts Timestamp, accel Vector3)
	OnGyroscope(ts Timestamp, gyro Vector3)
	OnOrientation(ts Timestamp, rotation Quaternion)
	OnPose(ts Timestamp, pose Pose)
	OnEMG(ts Timestamp, emg EMG)
	OnArmSync(ts Timestamp, arm Arm, direction XDirection)
	OnArmUnsync(ts Timestamp)
	OnRSSI(ts Timestamp, rssi int8)
}

// NopListener ignores every event. Embed it to implement a subset of Listener.
type NopListener struct{}

func (NopListener) OnAccelerometer(Timestamp, Vector3)   {}
func (NopListener) OnGyroscope(Timestamp, Vector3)       {}
func (NopListener) OnOrientation(Timestamp, Quaternion)  {}
func (NopListener) OnPose(Timestamp, Pose)               {}
func (NopListener) OnEMG(Timestamp, EMG)                 {}
func (NopListener) OnArmSync(Timestamp, Arm, XDirection) {}
func (NopListener) OnArmUnsync(Timestamp)                {}
func (NopListener) OnRSSI(Timestamp, int8)               {}

// Listeners fans each event out to every member in order.
type Listeners []Listener

func (ls Listeners) OnAccelerometer(ts Timestamp, accel Vector3) {
	for _, l := range ls {
		l.OnAccelerometer(ts, accel)
	}
}

func (ls Listeners) OnGyroscope(ts Timestamp, gyro Vector3) {
	for _, l := range ls {
		l.OnGyroscope(ts, gyro)
	}
}

func (ls Listeners) OnOrientation(ts Timestamp, rotation Quaternion) {
	for _, l := range ls {
		l.OnOrientation(ts, rotation)
	}
}

func (ls Listeners) OnPose(ts Timestamp, pose Pose) {
	for _, l := range ls {
		l.OnPose(ts, pose)
	}
}

func (ls Listeners) OnEMG(ts Timestamp, emg EMG) {
	for _, l := range ls {
		l.OnEMG(ts, emg)
	}
}

func (ls Listeners) OnArmSync(ts Timestamp, arm Arm, direction XDirection) {
	for _, l := range ls {
		l.OnArmSync(ts, arm, direction)
	}
}

func (ls Listeners) OnArmUnsync(ts Timestamp) {
	for _, l := range ls {
		l.OnArmUnsync(ts)
	}
}

func (ls Listeners) OnRSSI(ts Timestamp, rssi int8) {
	for _, l := range ls {
		l.OnRSSI(ts, rssi)
	}
}

// Feedback lets a consumer drive the armband's vibration motor.
type Feedback interface {
	TriggerShortHapticPulse()
}

// FeedbackFunc adapts a function to Feedback.
type FeedbackFunc func()

// TriggerShortHapticPulse calls f.
func (f FeedbackFunc) TriggerShortHapticPulse() { f() }

// Source produces device events.
//
// Run delivers events to l until ctx is cancelled, the source is exhausted
// or an unrecoverable error occurs. Exhaustion and cancellation return nil.
type Source interface {
	Run(ctx context.Context, l Listener) error
}

// Logger is the logging surface used by sources.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}
