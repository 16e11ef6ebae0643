package plan

import (
	"fmt"
	"strings"
	"time"

	"github.com/mrz1836/clickplan/internal/actions"
	"github.com/mrz1836/clickplan/internal/config"
	"github.com/mrz1836/clickplan/internal/constants"
	"github.com/mrz1836/clickplan/internal/domain"
	"github.com/mrz1836/clickplan/internal/task"
)

// parseDuration parses an optional duration field. An empty value reports
// ok=false.
func parseDuration(field, s string) (d time.Duration, ok bool, err error) {
	if s == "" {
		return 0, false, nil
	}
	d, err = time.ParseDuration(s)
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", field, err)
	}
	if d < 0 {
		return 0, false, fmt.Errorf("%s cannot be negative, got %s", field, d)
	}
	return d, true, nil
}

// runOptions layers a group's settings over the run configuration.
func runOptions(cfg *config.Config, g *GroupSpec) (task.RunOptions, error) {
	opts := task.RunOptions{
		Delay:         cfg.Run.Delay,
		RandomOrder:   cfg.Run.RandomOrder,
		IgnoreFailure: cfg.Run.IgnoreFailure,
	}

	d, ok, err := parseDuration("delay", g.Delay)
	if err != nil {
		return opts, err
	}
	if ok {
		if d > constants.MaxPacingDelay {
			return opts, fmt.Errorf("delay must be at most %s, got %s", constants.MaxPacingDelay, d)
		}
		opts.Delay = d
	}
	if g.RandomOrder != nil {
		opts.RandomOrder = *g.RandomOrder
	}
	if g.IgnoreFailure != nil {
		opts.IgnoreFailure = *g.IgnoreFailure
	}
	return opts, nil
}

// matchArgs layers the plan-wide and task match overrides over the match
// configuration.
func matchArgs(cfg *config.Config, p *Plan, t *TaskSpec) (domain.MatchArgs, error) {
	m := cfg.Match
	for _, spec := range []*MatchSpec{p.Match, t.Match} {
		if spec == nil {
			continue
		}
		if spec.Ratio != nil {
			m.Ratio = *spec.Ratio
		}
		if spec.Consistency != nil {
			m.Consistency = *spec.Consistency
		}
	}
	if err := config.ValidateMatchConfig(&m); err != nil {
		return domain.MatchArgs{}, err
	}
	return domain.MatchArgs{Ratio: m.Ratio, Consistency: m.Consistency}, nil
}

// clickConfig layers a task's settings over the task configuration.
func clickConfig(cfg *config.Config, t *TaskSpec) (actions.ClickConfig, error) {
	action, err := actions.ParseAction(t.Action)
	if err != nil {
		return actions.ClickConfig{}, err
	}

	tc := cfg.Task
	if t.Button != "" {
		tc.Button = t.Button
	}
	if t.Retries != nil {
		tc.Retries = *t.Retries
	}
	d, ok, err := parseDuration("retry_interval", t.RetryInterval)
	if err != nil {
		return actions.ClickConfig{}, err
	}
	if ok {
		tc.RetryInterval = d
	}
	if t.Jitter != nil {
		tc.Jitter = *t.Jitter
	}
	if t.JitterMargin != nil {
		tc.JitterMargin = *t.JitterMargin
	}
	if err = config.ValidateTaskConfig(&tc); err != nil {
		return actions.ClickConfig{}, err
	}

	button, err := domain.ParseButton(tc.Button)
	if err != nil {
		return actions.ClickConfig{}, err
	}
	return actions.ClickConfig{
		Action:        action,
		Button:        button,
		Retries:       tc.Retries,
		RetryInterval: tc.RetryInterval,
		Jitter:        tc.Jitter,
		JitterMargins: domain.UniformMargins(tc.JitterMargin),
	}, nil
}

// sleepDuration returns the pause of a sleep task.
func sleepDuration(t *TaskSpec) (time.Duration, error) {
	d, ok, err := parseDuration("duration", t.Duration)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("sleep task needs a duration")
	}
	return d, nil
}

// IsSleep reports whether the task is a plain pause.
func (t *TaskSpec) IsSleep() bool {
	return strings.EqualFold(strings.TrimSpace(t.Action), ActionSleep)
}
