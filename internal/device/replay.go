package device

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// maxReplayLine bounds a single recorded event.
const maxReplayLine = 64 * 1024

// ReplayOptions configures a Replay.
type ReplayOptions struct {
	// Realtime paces delivery by the gaps between event timestamps.
	Realtime bool

	// Speed multiplies playback speed when Realtime is set. Zero means 1.
	Speed float64

	// SkipInvalid logs and skips malformed lines instead of failing.
	SkipInvalid bool
}

// Replay is a Source that plays back a JSON-lines recording.
// Blank lines and lines starting with '#' are ignored.
type Replay struct {
	r      io.Reader
	opts   ReplayOptions
	logger Logger
}

// NewReplay creates a Replay reading from r.
func NewReplay(r io.Reader, opts ReplayOptions, logger Logger) *Replay {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.Speed <= 0 {
		opts.Speed = 1
	}
	return &Replay{r: r, opts: opts, logger: logger}
}

// Run delivers every recorded event to l. It returns nil at end of input.
func (p *Replay) Run(ctx context.Context, l Listener) error {
	scanner := bufio.NewScanner(p.r)
	scanner.Buffer(make([]byte, 0, 4096), maxReplayLine)

	var (
		lineNo    int
		delivered int
		prev      Timestamp
		started   bool
	)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}

		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 || line[0] == '#' {
			continue
		}

		ev, err := ParseEvent(line)
		if err == nil && p.opts.Realtime && started && ev.Time > prev {
			if !p.wait(ctx, ev.Time-prev) {
				return nil
			}
		}
		if err == nil {
			err = ev.Deliver(l)
		}
		if err != nil {
			if p.opts.SkipInvalid {
				p.logger.Warn("skipping replay line", "line", lineNo, "error", err)
				continue
			}
			return fmt.Errorf("replay line %d: %w", lineNo, err)
		}

		prev, started = ev.Time, true
		delivered++
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading replay: %w", err)
	}

	p.logger.Info("replay finished", "events", delivered)
	return nil
}

// wait sleeps for the scaled gap. It returns false if ctx ends first.
func (p *Replay) wait(ctx context.Context, gap Timestamp) bool {
	d := time.Duration(float64(gap) / p.opts.Speed * float64(time.Microsecond))
	if d <= 0 {
		return true
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
