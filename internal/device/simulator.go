package device

import (
	"context"
	"log/slog"
	"math"
	"sync/atomic"
	"time"
)

// Simulator defaults.
const (
	DefaultSimulatorInterval = 20 * time.Millisecond

	// simPoseHold is how long each simulated pose is held.
	simPoseHold = 2 * time.Second

	// simRSSIEvery is how often signal strength is reported.
	simRSSIEvery = time.Second
)

// simulatedPoses is the pose cycle the simulator walks through.
var simulatedPoses = []Pose{
	PoseRest, PoseFist, PoseRest, PoseWaveIn, PoseWaveOut, PoseFingersSpread, PoseDoubleTap,
}

// SimulatorOptions configures a Simulator.
type SimulatorOptions struct {
	// Interval between motion samples. Zero means DefaultSimulatorInterval.
	Interval time.Duration

	// Arm reported in the initial arm-sync event. ArmUnknown means ArmRight.
	Arm Arm

	// Steps stops the simulator after this many motion samples. Zero runs
	// until the context is cancelled.
	Steps int
}

// Simulator is a Source producing smooth synthetic motion. It also
// implements Feedback and counts haptic pulses.
//
// Thread Safety: TriggerShortHapticPulse and Pulses are safe for concurrent use.
type Simulator struct {
	opts     SimulatorOptions
	logger   Logger
	pulses   atomic.Int64
	lastPose Pose
}

// NewSimulator creates a Simulator.
func NewSimulator(opts SimulatorOptions, logger Logger) *Simulator {
	if opts.Interval <= 0 {
		opts.Interval = DefaultSimulatorInterval
	}
	if opts.Arm == ArmUnknown {
		opts.Arm = ArmRight
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Simulator{opts: opts, logger: logger, lastPose: -1}
}

// TriggerShortHapticPulse records and logs the pulse.
func (s *Simulator) TriggerShortHapticPulse() {
	n := s.pulses.Add(1)
	s.logger.Debug("simulated haptic pulse", "count", n)
}

// Pulses returns the number of haptic pulses requested so far.
func (s *Simulator) Pulses() int64 {
	return s.pulses.Load()
}

// Run emits an arm-sync event, then one batch of motion events per
// interval, and an arm-unsync event when it stops.
func (s *Simulator) Run(ctx context.Context, l Listener) error {
	s.logger.Info("simulator started", "interval", s.opts.Interval, "arm", s.opts.Arm)

	l.OnArmSync(0, s.opts.Arm, DirectionTowardWrist)

	ticker := time.NewTicker(s.opts.Interval)
	defer ticker.Stop()

	step := 0
	for s.opts.Steps == 0 || step < s.opts.Steps {
		select {
		case <-ctx.Done():
			l.OnArmUnsync(s.timestamp(step))
			return nil
		case <-ticker.C:
		}
		s.Step(step, l)
		step++
	}

	l.OnArmUnsync(s.timestamp(step))
	s.logger.Info("simulator finished", "steps", step)
	return nil
}

// Step emits the events for motion sample n. It is deterministic in n.
func (s *Simulator) Step(n int, l Listener) {
	ts := s.timestamp(n)
	t := time.Duration(n) * s.opts.Interval
	sec := t.Seconds()

	roll := 0.6 * math.Sin(sec*0.9)
	pitch := 0.4 * math.Sin(sec*0.5)
	yaw := math.Mod(sec*0.4+math.Pi, 2*math.Pi) - math.Pi

	l.OnOrientation(ts, FromEuler(roll, pitch, yaw))
	l.OnAccelerometer(ts, Vector3{
		X: float32(-math.Sin(pitch)),
		Y: float32(math.Sin(roll) * math.Cos(pitch)),
		Z: float32(math.Cos(roll) * math.Cos(pitch)),
	})
	l.OnGyroscope(ts, Vector3{
		X: float32(0.6 * 0.9 * math.Cos(sec*0.9) * 180 / math.Pi),
		Y: float32(0.4 * 0.5 * math.Cos(sec*0.5) * 180 / math.Pi),
		Z: float32(0.4 * 180 / math.Pi),
	})

	var emg EMG
	for i := range emg {
		emg[i] = int8(40 * math.Sin(sec*7+float64(i)*math.Pi/4))
	}
	l.OnEMG(ts, emg)

	pose := simulatedPoses[int(t/simPoseHold)%len(simulatedPoses)]
	if pose != s.lastPose {
		s.lastPose = pose
		l.OnPose(ts, pose)
	}

	if t%simRSSIEvery < s.opts.Interval {
		l.OnRSSI(ts, int8(-55-5*math.Sin(sec/3)))
	}
}

func (s *Simulator) timestamp(n int) Timestamp {
	return Timestamp((time.Duration(n) * s.opts.Interval).Microseconds())
}

// FromEuler builds a quaternion from roll, pitch and yaw in radians.
// It is the inverse of Quaternion.Euler away from gimbal lock.
func FromEuler(roll, pitch, yaw float64) Quaternion {
	cr, sr := math.Cos(roll/2), math.Sin(roll/2)
	cp, sp := math.Cos(pitch/2), math.Sin(pitch/2)
	cy, sy := math.Cos(yaw/2), math.Sin(yaw/2)

	return Quaternion{
		X: float32(sr*cp*cy - cr*sp*sy),
		Y: float32(cr*sp*cy + sr*cp*sy),
		Z: float32(cr*cp*sy - sr*sp*cy),
		W: float32(cr*cp*cy + sr*sp*sy),
	}
}
