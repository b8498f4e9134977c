package playback

import (
	"context"
	"time"
)

// Ticker is advanced by elapsed time. *Controller implements it.
type Ticker interface {
	Tick(delta time.Duration)
}

// DriverConfig holds tick driver configuration.
type DriverConfig struct {
	Interval time.Duration // How often Tick is called (default 100ms)
	Speed    float64       // Multiplier applied to measured time (default 1)
}

// Driver periodically feeds wall-clock time into a Ticker.
type Driver struct {
	target   Ticker
	interval time.Duration
	speed    float64
}

// NewDriver creates a driver for target.
func NewDriver(target Ticker, config DriverConfig) *Driver {
	interval := config.Interval
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	speed := config.Speed
	if speed <= 0 {
		speed = 1
	}
	return &Driver{
		target:   target,
		interval: interval,
		speed:    speed,
	}
}

// Run ticks the target until ctx is cancelled.
// Deltas are measured on the wall clock, so a slow tick never loses time.
func (d *Driver) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	last := toWallTime(time.Now())
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			now := toWallTime(time.Now())
			delta := now.Sub(last)
			last = now
			if delta <= 0 {
				// wall clock stepped backwards
				continue
			}
			d.target.Tick(time.Duration(float64(delta) * d.speed))
		}
	}
}

// toWallTime returns the time with monotonic clock stripped.
func toWallTime(t time.Time) time.Time {
	return time.Unix(t.Unix(), int64(t.Nanosecond()))
}
