// Package clock provides an abstraction for time operations to improve testability.
// Instead of calling time.Now() or time.After() directly, code can use the Clock
// interface which can be replaced in tests to control time-dependent behavior,
// such as the pacing delay between tasks of a group run.
package clock

import (
	"context"
	"time"
)

// Clock is an interface for time operations.
// This allows code to be tested with mock clocks.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// After waits for the duration to elapse and then sends the current
	// time on the returned channel.
	After(d time.Duration) <-chan time.Time
}

// RealClock implements Clock using the actual system time.
type RealClock struct{}

// Now returns the current time from the system clock.
func (RealClock) Now() time.Time {
	return time.Now()
}

// After delegates to time.After.
func (RealClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

// Ensure RealClock implements Clock.
var _ Clock = RealClock{}

// Sleep suspends for d on the given clock, returning early with the context
// error if ctx is done first. A non-positive d returns immediately.
func Sleep(ctx context.Context, c Clock, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.After(d):
		return nil
	}
}
