package sim

import (
	"context"
	"fmt"
	"time"
)

// HeadlessConfig controls the no-window runner.
type HeadlessConfig struct {
	Hz    int
	Ticks uint64
	// Step is the simulated time per tick. Zero means real time, 1/Hz.
	Step time.Duration
	// Start is the simulated clock at tick zero.
	Start time.Time
}

// Cycler is driven once per tick.
type Cycler interface {
	Cycle(now time.Time) (bool, error)
}

// RunHeadless cycles l on a ticker while script plays on the board. It stops
// after cfg.Ticks ticks, or when the script has played out if Ticks is zero,
// or when ctx is done.
func RunHeadless(ctx context.Context, b *Board, l Cycler, script *Script, cfg HeadlessConfig) error {
	if cfg.Hz <= 0 {
		cfg.Hz = 60
	}
	d := time.Second / time.Duration(cfg.Hz)
	if d <= 0 {
		return fmt.Errorf("invalid headless hz: %d", cfg.Hz)
	}
	if cfg.Step <= 0 {
		cfg.Step = d
	}
	now := cfg.Start
	if now.IsZero() {
		now = time.Now()
	}

	t := time.NewTicker(d)
	defer t.Stop()

	var tick uint64
	var elapsed time.Duration
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			if script != nil {
				script.Advance(b, elapsed)
			}
			l.Cycle(now.Add(elapsed))
			elapsed += cfg.Step
			tick++
			if cfg.Ticks > 0 && tick >= cfg.Ticks {
				return nil
			}
			if cfg.Ticks == 0 && script != nil && script.Done(elapsed) {
				return nil
			}
		}
	}
}
