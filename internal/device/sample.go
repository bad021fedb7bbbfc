package device

import (
	"fmt"
	"math"
)

// Timestamp is a monotonic event time in microseconds.
type Timestamp uint64

// Sample is the payload of one device event.
//
// The set of implementations is closed: Byte, EMG, Scalar, Vector3,
// Quaternion and Label.
type Sample interface {
	isSample()
}

// Byte is a signed 8-bit reading such as signal strength.
type Byte int8

// EMGChannels is the number of electrodes on the armband.
const EMGChannels = 8

// EMG is one reading per electrode, in electrode order.
type EMG [EMGChannels]int8

// Scalar is a single floating-point reading.
type Scalar float32

// Vector3 is a three-axis reading.
type Vector3 struct {
	X, Y, Z float32
}

// Quaternion is an orientation in x, y, z, w order.
type Quaternion struct {
	X, Y, Z, W float32
}

// Label is a textual reading such as a pose name or arm letter.
type Label string

func (Byte) isSample()       {}
func (EMG) isSample()        {}
func (Scalar) isSample()     {}
func (Vector3) isSample()    {}
func (Quaternion) isSample() {}
func (Label) isSample()      {}

// Identity is the quaternion with no rotation.
var Identity = Quaternion{W: 1}

// Euler converts q to roll, pitch and yaw in radians.
//
//	roll  = atan2(2(wx+yz), 1-2(x²+y²))
//	pitch = asin(2(wy-zx))
//	yaw   = atan2(2(wz+xy), 1-2(y²+z²))
//
// The asin argument is clamped to [-1, 1] so slightly denormalised
// quaternions near gimbal lock still yield ±π/2.
func (q Quaternion) Euler() (roll, pitch, yaw float64) {
	x, y, z, w := float64(q.X), float64(q.Y), float64(q.Z), float64(q.W)

	roll = math.Atan2(2*(w*x+y*z), 1-2*(x*x+y*y))
	pitch = math.Asin(math.Max(-1, math.Min(1, 2*(w*y-z*x))))
	yaw = math.Atan2(2*(w*z+x*y), 1-2*(y*y+z*z))
	return roll, pitch, yaw
}

// Pose is a gesture recognised by the armband.
type Pose int

// Recognised poses.
const (
	PoseRest Pose = iota
	PoseFist
	PoseWaveIn
	PoseWaveOut
	PoseFingersSpread
	PoseDoubleTap
	PoseUnknown
)

var poseNames = [...]string{
	PoseRest:          "rest",
	PoseFist:          "fist",
	PoseWaveIn:        "waveIn",
	PoseWaveOut:       "waveOut",
	PoseFingersSpread: "fingersSpread",
	PoseDoubleTap:     "doubleTap",
	PoseUnknown:       "unknown",
}

// String returns the armband's name for the pose.
func (p Pose) String() string {
	if p < 0 || int(p) >= len(poseNames) {
		return poseNames[PoseUnknown]
	}
	return poseNames[p]
}

// ParsePose resolves a pose name. Unrecognised names fail with ErrInvalidEvent.
func ParsePose(name string) (Pose, error) {
	for i, n := range poseNames {
		if n == name {
			return Pose(i), nil
		}
	}
	return PoseUnknown, fmt.Errorf("%w: unknown pose %q", ErrInvalidEvent, name)
}

// Arm is the arm the armband is synced on.
type Arm int

// Arms.
const (
	ArmUnknown Arm = iota
	ArmLeft
	ArmRight
)

// String returns "left", "right" or "unknown".
func (a Arm) String() string {
	switch a {
	case ArmLeft:
		return "left"
	case ArmRight:
		return "right"
	default:
		return "unknown"
	}
}

// Letter returns the single-letter arm code: "L", "R" or "?".
func (a Arm) Letter() string {
	switch a {
	case ArmLeft:
		return "L"
	case ArmRight:
		return "R"
	default:
		return "?"
	}
}

// ParseArm resolves "left" or "right".
func ParseArm(name string) (Arm, error) {
	switch name {
	case "left":
		return ArmLeft, nil
	case "right":
		return ArmRight, nil
	case "unknown", "":
		return ArmUnknown, nil
	default:
		return ArmUnknown, fmt.Errorf("%w: unknown arm %q", ErrInvalidEvent, name)
	}
}

// XDirection is the orientation of the armband's +x axis on the arm.
type XDirection int

// Directions.
const (
	DirectionUnknown XDirection = iota
	DirectionTowardWrist
	DirectionTowardElbow
)

// String returns "towardWrist", "towardElbow" or "unknown".
func (d XDirection) String() string {
	switch d {
	case DirectionTowardWrist:
		return "towardWrist"
	case DirectionTowardElbow:
		return "towardElbow"
	default:
		return "unknown"
	}
}

// ParseXDirection resolves "towardWrist" or "towardElbow".
func ParseXDirection(name string) (XDirection, error) {
	switch name {
	case "towardWrist":
		return DirectionTowardWrist, nil
	case "towardElbow":
		return DirectionTowardElbow, nil
	case "unknown", "":
		return DirectionUnknown, nil
	default:
		return DirectionUnknown, fmt.Errorf("%w: unknown direction %q", ErrInvalidEvent, name)
	}
}
