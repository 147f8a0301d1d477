package race

import (
	"context"
	"time"
)

// Scheduler drives frames. frame is called once per tick until it returns
// false or the context is done.
type Scheduler interface {
	Run(ctx context.Context, frame func() bool) error
}

// TickerScheduler calls frame at a fixed rate.
type TickerScheduler struct {
	Rate int // Frames per second; defaults to 60
}

// Interval returns the time between frames.
func (s TickerScheduler) Interval() time.Duration {
	rate := s.Rate
	if rate <= 0 {
		rate = 60
	}
	return time.Second / time.Duration(rate)
}

// Run blocks until frame returns false (nil error) or ctx is done
// (ctx.Err()).
func (s TickerScheduler) Run(ctx context.Context, frame func() bool) error {
	ticker := time.NewTicker(s.Interval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if !frame() {
				return nil
			}
		}
	}
}

// StepScheduler calls frame back to back, without waiting. It is used by
// headless simulation.
type StepScheduler struct {
	MaxFrames int // Zero means unbounded
}

// Run calls frame until it returns false, MaxFrames is reached or ctx is done.
func (s StepScheduler) Run(ctx context.Context, frame func() bool) error {
	for n := 0; s.MaxFrames == 0 || n < s.MaxFrames; n++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !frame() {
			return nil
		}
	}
	return nil
}
