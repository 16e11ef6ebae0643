package actions

import (
	"context"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mrz1836/clickplan/internal/clock"
	"github.com/mrz1836/clickplan/internal/domain"
	"github.com/mrz1836/clickplan/internal/errors"
	"github.com/mrz1836/clickplan/internal/locator"
	"github.com/mrz1836/clickplan/internal/task"
)

// TargetKey is the key a ClickTask registers its locator under.
const TargetKey = "target"

// Action is what a ClickTask does once its target is found.
type Action string

// Supported actions.
const (
	// ActionClick clicks the target once.
	ActionClick Action = "click"

	// ActionDoubleClick double-clicks the target.
	ActionDoubleClick Action = "double_click"

	// ActionWait only waits for the target to appear.
	ActionWait Action = "wait"
)

// ParseAction converts a case-insensitive name into an Action.
// An empty name selects ActionClick.
func ParseAction(s string) (Action, error) {
	if s == "" {
		return ActionClick, nil
	}
	a := Action(strings.ToLower(strings.TrimSpace(s)))
	switch a {
	case ActionClick, ActionDoubleClick, ActionWait:
		return a, nil
	default:
		return "", errors.Wrapf(errors.ErrInvalidArgument, "unknown action %q", s)
	}
}

// ClickConfig tunes a ClickTask.
type ClickConfig struct {
	Action Action
	Button domain.Button

	// Retries is the number of extra searches after the first miss.
	Retries int

	// RetryInterval is the wait between searches.
	RetryInterval time.Duration

	// Jitter clicks a random point inside the matched template's bounds,
	// shrunk by JitterMargins, instead of its centre.
	Jitter        bool
	JitterMargins domain.Margins
}

// ClickTask searches for a target and acts on it, retrying misses.
type ClickTask struct {
	*task.Base

	cfg    ClickConfig
	clock  clock.Clock
	logger zerolog.Logger

	rngMu sync.Mutex
	rng   *rand.Rand
}

var _ task.Task = (*ClickTask)(nil)

// NewClickTask creates a ClickTask that owns target.
func NewClickTask(name string, target *locator.Locator, cfg ClickConfig, opts ...Option) (*ClickTask, error) {
	base, err := task.NewBase(name)
	if err != nil {
		return nil, err
	}
	if cfg.Action == "" {
		cfg.Action = ActionClick
	}
	if cfg.Button == "" {
		cfg.Button = domain.ButtonLeft
	}
	if _, err := ParseAction(string(cfg.Action)); err != nil {
		return nil, errors.Wrapf(err, "task %q", name)
	}
	if !cfg.Button.Valid() {
		return nil, errors.Wrapf(errors.ErrInvalidArgument, "task %q: unknown button %q", name, cfg.Button)
	}
	if cfg.Retries < 0 || cfg.RetryInterval < 0 {
		return nil, errors.Wrapf(errors.ErrInvalidArgument, "task %q: retries and retry interval must not be negative", name)
	}
	if err := base.AddLocator(TargetKey, target); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return &ClickTask{
		Base:   base,
		cfg:    cfg,
		clock:  o.clock,
		logger: o.logger.With().Str("task", name).Logger(),
		rng:    o.rng,
	}, nil
}

// Config returns the task's configuration.
func (c *ClickTask) Config() ClickConfig {
	return c.cfg
}

// Run searches for the target up to Retries+1 times. A collaborator fault
// ends the run immediately as a failure.
func (c *ClickTask) Run(ctx context.Context) task.Result {
	target, ok := c.Locator(TargetKey)
	if !ok {
		return c.Fail("no target locator")
	}

	attempts := c.cfg.Retries + 1
	for attempt := 1; ; attempt++ {
		found, err := c.attempt(ctx, target)
		if err != nil {
			return c.Failf("%s %q: %v", c.cfg.Action, target.Name(), err)
		}
		if found {
			c.logger.Debug().
				Str("action", string(c.cfg.Action)).
				Int("attempt", attempt).
				Msg("target handled")
			return c.Succeed()
		}
		if attempt >= attempts {
			return c.Failf("target %q not found after %d attempt(s)", target.Name(), attempts)
		}

		c.logger.Debug().
			Int("attempt", attempt).
			Dur("retry_in", c.cfg.RetryInterval).
			Msg("target not found, retrying")
		if err := clock.Sleep(ctx, c.clock, c.cfg.RetryInterval); err != nil {
			return c.Failf("target %q: retry interrupted: %v", target.Name(), err)
		}
	}
}

func (c *ClickTask) attempt(ctx context.Context, target *locator.Locator) (bool, error) {
	double := c.cfg.Action == ActionDoubleClick

	switch {
	case c.cfg.Action == ActionWait:
		_, found, err := target.Search(ctx)
		return found, err
	case !c.cfg.Jitter:
		if double {
			return target.DoubleClick(ctx, c.cfg.Button)
		}
		return target.Click(ctx, c.cfg.Button)
	}

	hit, found, err := target.Locate(ctx)
	if err != nil || !found {
		return false, err
	}
	if err := target.Press(ctx, c.cfg.Button, c.jitter(hit), double); err != nil {
		return false, err
	}
	return true, nil
}

// jitter picks a point inside the matched bounds. Templates too small for
// the margins fall back to the match point.
func (c *ClickTask) jitter(hit locator.Target) domain.Point {
	c.rngMu.Lock()
	p, err := domain.RandomPoint(c.rng, hit.Bounds, c.cfg.JitterMargins)
	c.rngMu.Unlock()
	if err != nil {
		c.logger.Debug().Err(err).Msg("jitter skipped")
		return hit.Point
	}
	return p
}
