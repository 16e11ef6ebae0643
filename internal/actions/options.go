// Package actions provides the concrete tasks a plan is made of: clicking a
// visual target and pausing.
//
// Import rules:
//   - CAN import: internal/clock, internal/domain, internal/errors, internal/locator, internal/task, std lib
//   - MUST NOT import: internal/plan, internal/cli
package actions

import (
	"math/rand/v2"

	"github.com/rs/zerolog"

	"github.com/mrz1836/clickplan/internal/clock"
)

type options struct {
	clock  clock.Clock
	rng    *rand.Rand
	logger zerolog.Logger
}

func defaultOptions() options {
	return options{
		clock:  clock.RealClock{},
		rng:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())), //nolint:gosec // click jitter, not security
		logger: zerolog.Nop(),
	}
}

// Option configures a task built by this package.
type Option func(*options)

// WithClock sets the clock used for retry intervals and sleeps.
func WithClock(c clock.Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithRand sets the random source used for click jitter.
func WithRand(rng *rand.Rand) Option {
	return func(o *options) {
		if rng != nil {
			o.rng = rng
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}
