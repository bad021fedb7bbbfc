package device

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sync"
)

// EventType names a device event on the wire.
type EventType string

// Event types.
const (
	EventAccelerometer  EventType = "accelerometer"
	EventGyroscope      EventType = "gyroscope"
	EventOrientation    EventType = "orientation"
	EventPose           EventType = "pose"
	EventEMG            EventType = "emg"
	EventArmSync        EventType = "arm-sync"
	EventArmUnsync      EventType = "arm-unsync"
	EventSignalStrength EventType = "signal-strength"
)

// Event is the serialised form of one device event.
// Used by Replay, EventWriter and MQTTSource.
type Event struct {
	// Time is the device timestamp in microseconds.
	Time Timestamp `json:"t"`

	// Type selects which of the remaining fields are meaningful.
	Type EventType `json:"type"`

	// Data carries vectors (x, y, z), quaternions (x, y, z, w) and EMG
	// readings (eight integers).
	Data []float64 `json:"data,omitempty"`

	// Pose is set for pose events.
	Pose string `json:"pose,omitempty"`

	// Arm and Direction are set for arm-sync events.
	Arm       string `json:"arm,omitempty"`
	Direction string `json:"direction,omitempty"`

	// RSSI is set for signal-strength events.
	RSSI *int8 `json:"rssi,omitempty"`
}

// ParseEvent decodes a JSON event.
func ParseEvent(data []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return Event{}, fmt.Errorf("%w: %w", ErrInvalidEvent, err)
	}
	if ev.Type == "" {
		return Event{}, fmt.Errorf("%w: missing type", ErrInvalidEvent)
	}
	return ev, nil
}

// Deliver validates the event and calls the matching Listener method.
func (e Event) Deliver(l Listener) error {
	switch e.Type {
	case EventAccelerometer, EventGyroscope:
		if err := e.wantData(3); err != nil {
			return err
		}
		v := Vector3{X: float32(e.Data[0]), Y: float32(e.Data[1]), Z: float32(e.Data[2])}
		if e.Type == EventAccelerometer {
			l.OnAccelerometer(e.Time, v)
		} else {
			l.OnGyroscope(e.Time, v)
		}

	case EventOrientation:
		if err := e.wantData(4); err != nil {
			return err
		}
		l.OnOrientation(e.Time, Quaternion{
			X: float32(e.Data[0]), Y: float32(e.Data[1]), Z: float32(e.Data[2]), W: float32(e.Data[3]),
		})

	case EventPose:
		pose, err := ParsePose(e.Pose)
		if err != nil {
			return err
		}
		l.OnPose(e.Time, pose)

	case EventEMG:
		if err := e.wantData(EMGChannels); err != nil {
			return err
		}
		var emg EMG
		for i, v := range e.Data {
			b, ok := asInt8(v)
			if !ok {
				return fmt.Errorf("%w: emg[%d] = %g is not an 8-bit integer", ErrInvalidEvent, i, v)
			}
			emg[i] = b
		}
		l.OnEMG(e.Time, emg)

	case EventArmSync:
		arm, err := ParseArm(e.Arm)
		if err != nil {
			return err
		}
		dir, err := ParseXDirection(e.Direction)
		if err != nil {
			return err
		}
		l.OnArmSync(e.Time, arm, dir)

	case EventArmUnsync:
		l.OnArmUnsync(e.Time)

	case EventSignalStrength:
		if e.RSSI == nil {
			return fmt.Errorf("%w: signal-strength without rssi", ErrInvalidEvent)
		}
		l.OnRSSI(e.Time, *e.RSSI)

	default:
		return fmt.Errorf("%w: %q", ErrUnknownEventType, e.Type)
	}
	return nil
}

func (e Event) wantData(n int) error {
	if len(e.Data) != n {
		return fmt.Errorf("%w: %s needs %d data values, got %d", ErrInvalidEvent, e.Type, n, len(e.Data))
	}
	return nil
}

func asInt8(v float64) (int8, bool) {
	if v != math.Trunc(v) || v < math.MinInt8 || v > math.MaxInt8 {
		return 0, false
	}
	return int8(v), true
}

// EventWriter records every event it receives as one JSON line.
// The output can be played back with Replay.
//
// Thread Safety: All methods are safe for concurrent use.
type EventWriter struct {
	mu  sync.Mutex
	enc *json.Encoder
	err error
}

// NewEventWriter returns a Listener that writes events to w.
func NewEventWriter(w io.Writer) *EventWriter {
	return &EventWriter{enc: json.NewEncoder(w)}
}

// Err returns the first write error, if any. Writing stops after an error.
func (w *EventWriter) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

func (w *EventWriter) write(ev Event) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return
	}
	w.err = w.enc.Encode(ev)
}

func (w *EventWriter) OnAccelerometer(ts Timestamp, accel Vector3) {
	w.write(Event{Time: ts, Type: EventAccelerometer, Data: vectorData(accel)})
}

func (w *EventWriter) OnGyroscope(ts Timestamp, gyro Vector3) {
	w.write(Event{Time: ts, Type: EventGyroscope, Data: vectorData(gyro)})
}

func (w *EventWriter) OnOrientation(ts Timestamp, q Quaternion) {
	w.write(Event{Time: ts, Type: EventOrientation,
		Data: []float64{float64(q.X), float64(q.Y), float64(q.Z), float64(q.W)}})
}

func (w *EventWriter) OnPose(ts Timestamp, pose Pose) {
	w.write(Event{Time: ts, Type: EventPose, Pose: pose.String()})
}

func (w *EventWriter) OnEMG(ts Timestamp, emg EMG) {
	data := make([]float64, len(emg))
	for i, v := range emg {
		data[i] = float64(v)
	}
	w.write(Event{Time: ts, Type: EventEMG, Data: data})
}

func (w *EventWriter) OnArmSync(ts Timestamp, arm Arm, direction XDirection) {
	w.write(Event{Time: ts, Type: EventArmSync, Arm: arm.String(), Direction: direction.String()})
}

func (w *EventWriter) OnArmUnsync(ts Timestamp) {
	w.write(Event{Time: ts, Type: EventArmUnsync})
}

func (w *EventWriter) OnRSSI(ts Timestamp, rssi int8) {
	w.write(Event{Time: ts, Type: EventSignalStrength, RSSI: &rssi})
}

func vectorData(v Vector3) []float64 {
	return []float64{float64(v.X), float64(v.Y), float64(v.Z)}
}
