package channel

import "fmt"

// Kind identifies one output channel.
type Kind int

// Channel kinds in their canonical order.
const (
	// Accel carries accelerometer vectors (units of g).
	Accel Kind = iota

	// Gyro carries gyroscope vectors (deg/s).
	Gyro

	// Orientation carries Euler angles (roll, pitch, yaw) derived from the
	// orientation quaternion.
	Orientation

	// OrientationQuat carries the raw orientation quaternion (x, y, z, w).
	OrientationQuat

	// Pose carries the recognised pose name.
	Pose

	// EMG carries the eight electrode readings.
	EMG

	// Sync carries arm sync ("L" or "R") and unsync ("-") notifications.
	Sync

	// RSSI carries received signal strength.
	RSSI

	// KindCount is the number of channel kinds.
	KindCount int = iota
)

type kindInfo struct {
	key     string
	address string
	flag    string
	short   string
	label   string
}

// kinds is indexed by Kind.
var kinds = [KindCount]kindInfo{
	Accel:           {key: "accel", address: "/myo/accel", flag: "accel", short: "a", label: "accelerometer"},
	Gyro:            {key: "gyro", address: "/myo/gyro", flag: "gyro", short: "g", label: "gyroscope"},
	Orientation:     {key: "orientation", address: "/myo/orientation", flag: "orient", short: "o", label: "orientation (euler)"},
	OrientationQuat: {key: "orientationQuat", address: "/myo/orientation/quat", flag: "quat", short: "q", label: "orientation (quaternion)"},
	Pose:            {key: "pose", address: "/myo/pose", flag: "pose", short: "p", label: "pose"},
	EMG:             {key: "emg", address: "/myo/emg", flag: "emg", short: "e", label: "EMG"},
	Sync:            {key: "sync", address: "/myo/sync", flag: "sync", short: "s", label: "sync/unsync"},
	RSSI:            {key: "rssi", address: "/myo/rssi", flag: "rssi", short: "r", label: "signal strength"},
}

// Kinds returns every channel kind in canonical order.
func Kinds() []Kind {
	out := make([]Kind, KindCount)
	for i := range out {
		out[i] = Kind(i)
	}
	return out
}

// Valid reports whether k names a known channel.
func (k Kind) Valid() bool {
	return k >= 0 && int(k) < KindCount
}

// Key returns the configuration document key for the channel (e.g. "accel").
func (k Kind) Key() string {
	if !k.Valid() {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kinds[k].key
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	return k.Key()
}

// DefaultAddress returns the address used when configuration does not name one.
func (k Kind) DefaultAddress() string {
	if !k.Valid() {
		return ""
	}
	return kinds[k].address
}

// FlagName returns the long command-line flag enabling the channel.
// The disabling flag is the same name prefixed with "no".
func (k Kind) FlagName() string {
	if !k.Valid() {
		return ""
	}
	return kinds[k].flag
}

// Shorthand returns the single-letter enable flag. The upper-case letter disables.
func (k Kind) Shorthand() string {
	if !k.Valid() {
		return ""
	}
	return kinds[k].short
}

// Label returns a human-readable description used in usage text.
func (k Kind) Label() string {
	if !k.Valid() {
		return ""
	}
	return kinds[k].label
}

// ParseKind resolves a configuration key to a Kind.
func ParseKind(key string) (Kind, error) {
	for i, info := range kinds {
		if info.key == key {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, key)
}
