package dispatch

import (
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/nerrad567/myo-osc/internal/channel"
	"github.com/nerrad567/myo-osc/internal/device"
	"github.com/nerrad567/myo-osc/internal/settings"
)

// Unsync is sent on the sync channel when the armband leaves the arm.
const Unsync = "-"

// Sink receives outbound messages. Delivery is fire-and-forget; an error
// is counted and logged but never retried.
type Sink interface {
	Send(m Message) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(m Message) error

// Send calls f.
func (f SinkFunc) Send(m Message) error { return f(m) }

// TraceSink receives human-readable trace lines.
type TraceSink interface {
	WriteLine(line string)
}

// WriterTrace writes trace lines to an io.Writer, one per line.
//
// Thread Safety: All methods are safe for concurrent use.
type WriterTrace struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterTrace creates a TraceSink writing to w.
func NewWriterTrace(w io.Writer) *WriterTrace {
	return &WriterTrace{w: w}
}

// WriteLine writes line followed by a newline. Write errors are ignored.
func (t *WriterTrace) WriteLine(line string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, _ = io.WriteString(t.w, line+"\n")
}

// Drop reasons reported to the Recorder.
const (
	DropDivisionByZero = "division_by_zero"
	DropEncodeError    = "encode_error"
)

// Recorder collects dispatch counters. Implemented by the metrics package.
type Recorder interface {
	MessageSent(kind channel.Kind)
	MessageDropped(kind channel.Kind, reason string)
	SinkFailed(kind channel.Kind)
}

// Logger is the logging surface used by the Dispatcher.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Options holds the optional collaborators of a Dispatcher.
type Options struct {
	// Trace receives a line per message when Settings.Trace is set.
	Trace TraceSink

	// Feedback is pulsed when a fist pose is sent.
	Feedback device.Feedback

	// Recorder receives counters.
	Recorder Recorder

	// Logger receives drop and sink-failure reports.
	Logger Logger
}

// Dispatcher is a device.Listener that encodes each event with the
// configured channel policies and sends the result to a Sink.
type Dispatcher struct {
	settings *settings.Settings
	sink     Sink
	trace    TraceSink
	feedback device.Feedback
	recorder Recorder
	logger   Logger

	// degenerate marks channels whose degenerate range was already reported.
	degenerate [channel.KindCount]bool

	// failing marks channels whose last send failed. Logged on transition only.
	failing [channel.KindCount]bool
}

var _ device.Listener = (*Dispatcher)(nil)

// New creates a Dispatcher. s is shared, not copied, and must not be
// modified afterwards.
//
// Parameters:
//   - s: Read-only settings
//   - sink: Destination for messages
//   - opts: Optional collaborators
//
// Returns:
//   - *Dispatcher: Ready to be passed to a device.Source
func New(s *settings.Settings, sink Sink, opts Options) *Dispatcher {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Dispatcher{
		settings: s,
		sink:     sink,
		trace:    opts.Trace,
		feedback: opts.Feedback,
		recorder: opts.Recorder,
		logger:   logger,
	}
}

// Dispatch encodes sample for kind and sends it. It returns the message and
// whether one was sent to the sink.
func (d *Dispatcher) Dispatch(kind channel.Kind, sample device.Sample) (Message, bool) {
	msg, ok, err := Encode(kind, d.settings.Policy(kind), sample)
	if err != nil {
		d.drop(kind, err)
		return Message{}, false
	}
	if !ok {
		return Message{}, false
	}

	if d.settings.Trace && d.trace != nil {
		d.trace.WriteLine(FormatTrace(msg))
	}

	if err := d.sink.Send(msg); err != nil {
		if d.recorder != nil {
			d.recorder.SinkFailed(kind)
		}
		if !d.failing[kind] {
			d.failing[kind] = true
			d.logger.Warn("sending message failed", "channel", kind.Key(), "address", msg.Address, "error", err)
		}
		return msg, true
	}

	if d.failing[kind] {
		d.failing[kind] = false
		d.logger.Info("sending message recovered", "channel", kind.Key())
	}
	if d.recorder != nil {
		d.recorder.MessageSent(kind)
	}
	return msg, true
}

func (d *Dispatcher) drop(kind channel.Kind, err error) {
	reason := DropEncodeError
	if errors.Is(err, ErrDivisionByZero) {
		reason = DropDivisionByZero
	}
	if d.recorder != nil {
		d.recorder.MessageDropped(kind, reason)
	}

	if reason != DropDivisionByZero {
		d.logger.Error("encoding message failed", "channel", kind.Key(), "error", err)
		return
	}
	if d.degenerate[kind] {
		return
	}
	d.degenerate[kind] = true

	d.logger.Warn("dropping messages for channel with empty input range",
		"channel", kind.Key(), "in", d.settings.Policy(kind).In.String())
	if d.settings.Trace && d.trace != nil {
		d.trace.WriteLine(FormatTrace(Message{
			Address: d.settings.Policy(kind).Address,
			Fields:  []Field{String("dropped: " + err.Error())},
		}))
	}
}

// OnAccelerometer sends the accelerometer vector.
func (d *Dispatcher) OnAccelerometer(_ device.Timestamp, accel device.Vector3) {
	d.Dispatch(channel.Accel, accel)
}

// OnGyroscope sends the gyroscope vector.
func (d *Dispatcher) OnGyroscope(_ device.Timestamp, gyro device.Vector3) {
	d.Dispatch(channel.Gyro, gyro)
}

// OnOrientation sends the raw quaternion and then the derived Euler angles.
func (d *Dispatcher) OnOrientation(_ device.Timestamp, rotation device.Quaternion) {
	d.Dispatch(channel.OrientationQuat, rotation)
	d.Dispatch(channel.Orientation, rotation)
}

// OnPose sends the pose name and pulses the armband on a fist.
func (d *Dispatcher) OnPose(_ device.Timestamp, pose device.Pose) {
	if !d.settings.Policy(channel.Pose).Enabled {
		return
	}
	d.Dispatch(channel.Pose, device.Label(pose.String()))

	if pose == device.PoseFist && d.feedback != nil {
		d.feedback.TriggerShortHapticPulse()
	}
}

// OnEMG sends the eight electrode readings.
func (d *Dispatcher) OnEMG(_ device.Timestamp, emg device.EMG) {
	d.Dispatch(channel.EMG, emg)
}

// OnArmSync sends "L" for the left arm and "R" otherwise.
func (d *Dispatcher) OnArmSync(_ device.Timestamp, arm device.Arm, _ device.XDirection) {
	letter := "R"
	if arm == device.ArmLeft {
		letter = "L"
	}
	d.Dispatch(channel.Sync, device.Label(letter))
}

// OnArmUnsync sends "-".
func (d *Dispatcher) OnArmUnsync(_ device.Timestamp) {
	d.Dispatch(channel.Sync, device.Label(Unsync))
}

// OnRSSI sends the signal strength.
func (d *Dispatcher) OnRSSI(_ device.Timestamp, rssi int8) {
	d.Dispatch(channel.RSSI, device.Byte(rssi))
}
