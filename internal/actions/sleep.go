package actions

import (
	"context"
	"time"

	"github.com/mrz1836/clickplan/internal/clock"
	"github.com/mrz1836/clickplan/internal/errors"
	"github.com/mrz1836/clickplan/internal/task"
)

// SleepTask pauses for a fixed duration. Plans use it where a single step
// needs a longer wait than the group's pacing delay.
type SleepTask struct {
	*task.Base

	duration time.Duration
	clock    clock.Clock
}

var _ task.Task = (*SleepTask)(nil)

// NewSleepTask creates a SleepTask. The duration must not be negative.
func NewSleepTask(name string, d time.Duration, opts ...Option) (*SleepTask, error) {
	base, err := task.NewBase(name)
	if err != nil {
		return nil, err
	}
	if d < 0 {
		return nil, errors.Wrapf(errors.ErrInvalidArgument, "task %q: negative sleep %s", name, d)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &SleepTask{Base: base, duration: d, clock: o.clock}, nil
}

// Duration returns the pause length.
func (s *SleepTask) Duration() time.Duration {
	return s.duration
}

// Run waits for the duration. Cancellation fails the task.
func (s *SleepTask) Run(ctx context.Context) task.Result {
	if s.duration == 0 {
		return s.Succeed()
	}
	if err := clock.Sleep(ctx, s.clock, s.duration); err != nil {
		return s.Failf("sleep interrupted: %v", err)
	}
	return s.Succeed()
}
