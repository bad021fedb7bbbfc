// Package console renders a single-line status display of the armband:
// three orientation bars, the synced arm and the current pose.
//
//	[*********         ][*********         ][*********         ][R][fist          ]
package console

import (
	"context"
	"io"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/nerrad567/myo-osc/internal/device"
)

// Layout and refresh constants.
const (
	// BarWidth is the width of each orientation bar.
	BarWidth = 18

	// PoseWidth is the width of the pose box.
	PoseWidth = 14

	// DefaultRefresh is the redraw interval.
	DefaultRefresh = 50 * time.Millisecond
)

// State is the session state shown on the status line.
type State struct {
	OnArm bool
	Arm   device.Arm
	Pose  device.Pose

	// RollW, PitchW and YawW are bar fill widths in [0, BarWidth].
	RollW, PitchW, YawW int
}

// Render formats s as one status line, without carriage return.
func (s State) Render() string {
	var b strings.Builder
	for _, w := range []int{s.RollW, s.PitchW, s.YawW} {
		w = max(0, min(BarWidth, w))
		b.WriteByte('[')
		b.WriteString(strings.Repeat("*", w))
		b.WriteString(strings.Repeat(" ", BarWidth-w))
		b.WriteByte(']')
	}

	if !s.OnArm {
		b.WriteString("[?][")
		b.WriteString(strings.Repeat(" ", PoseWidth))
		b.WriteByte(']')
		return b.String()
	}

	arm := "R"
	if s.Arm == device.ArmLeft {
		arm = "L"
	}
	pose := s.Pose.String()
	b.WriteString("[" + arm + "][" + pose)
	if pad := PoseWidth - len(pose); pad > 0 {
		b.WriteString(strings.Repeat(" ", pad))
	}
	b.WriteByte(']')
	return b.String()
}

// barWidth maps angle from [-half, +half] onto [0, BarWidth].
func barWidth(angle, half float64) int {
	w := int((angle + half) / (2 * half) * BarWidth)
	return max(0, min(BarWidth, w))
}

// Console tracks State from device events and redraws it periodically.
// It implements device.Listener.
//
// Thread Safety: All methods are safe for concurrent use.
type Console struct {
	device.NopListener

	mu    sync.Mutex
	state State

	out     io.Writer
	refresh time.Duration
}

var _ device.Listener = (*Console)(nil)

// New creates a Console drawing to out. A zero refresh uses DefaultRefresh.
func New(out io.Writer, refresh time.Duration) *Console {
	if refresh <= 0 {
		refresh = DefaultRefresh
	}
	return &Console{out: out, refresh: refresh}
}

// State returns a copy of the current state.
func (c *Console) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// OnOrientation updates the orientation bars.
func (c *Console) OnOrientation(_ device.Timestamp, rotation device.Quaternion) {
	roll, pitch, yaw := rotation.Euler()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.RollW = barWidth(roll, math.Pi)
	c.state.PitchW = barWidth(pitch, math.Pi/2)
	c.state.YawW = barWidth(yaw, math.Pi)
}

// OnPose records the current pose.
func (c *Console) OnPose(_ device.Timestamp, pose device.Pose) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Pose = pose
}

// OnArmSync records the synced arm.
func (c *Console) OnArmSync(_ device.Timestamp, arm device.Arm, _ device.XDirection) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.OnArm = true
	c.state.Arm = arm
}

// OnArmUnsync clears the synced arm.
func (c *Console) OnArmUnsync(_ device.Timestamp) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.OnArm = false
}

// Draw writes the status line once, returning the cursor to column zero first.
func (c *Console) Draw() error {
	_, err := io.WriteString(c.out, "\r"+c.State().Render())
	return err
}

// Run redraws until ctx is cancelled, then ends the line.
func (c *Console) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.refresh)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_, err := io.WriteString(c.out, "\n")
			return err
		case <-ticker.C:
			if err := c.Draw(); err != nil {
				return err
			}
		}
	}
}
