package task

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mrz1836/clickplan/internal/clock"
	"github.com/mrz1836/clickplan/internal/constants"
	"github.com/mrz1836/clickplan/internal/ctxutil"
	"github.com/mrz1836/clickplan/internal/errors"
)

// RunOptions parameterize one group run.
type RunOptions struct {
	// Delay is the pacing delay inserted between consecutive tasks.
	// Zero or negative means no delay. It is never inserted after the last task.
	Delay time.Duration

	// Hooks observe every task of the run.
	Hooks Hooks

	// RandomOrder runs the tasks in a fresh uniform random order.
	RandomOrder bool

	// IgnoreFailure attempts every task instead of stopping at the first failure.
	IgnoreFailure bool
}

// Policy returns the report name of the failure policy.
func (o RunOptions) Policy() string {
	if o.IgnoreFailure {
		return constants.PolicyIgnoreFailure
	}
	return constants.PolicyFailFast
}

// Group is a named, ordered collection of tasks. The order is fixed at
// construction; random orders are computed per run and never stored.
// A Group does not own its tasks and never releases them.
//
// Run is safe to call from several goroutines; the random source is
// guarded. Whether the collaborators behind the tasks tolerate that is up
// to them.
type Group struct {
	name    string
	tasks   []Task
	clock   clock.Clock
	logger  zerolog.Logger
	metrics Metrics

	rngMu sync.Mutex
	rng   *rand.Rand
}

// GroupOption configures a Group.
type GroupOption func(*Group)

// WithRand sets the random source used for random orders.
func WithRand(rng *rand.Rand) GroupOption {
	return func(g *Group) {
		if rng != nil {
			g.rng = rng
		}
	}
}

// WithClock sets the clock used for the pacing delay and durations.
func WithClock(c clock.Clock) GroupOption {
	return func(g *Group) {
		if c != nil {
			g.clock = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) GroupOption {
	return func(g *Group) {
		g.logger = logger
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m Metrics) GroupOption {
	return func(g *Group) {
		if m != nil {
			g.metrics = m
		}
	}
}

// NewGroup creates a group. The name must be non-empty and tasks must be
// non-nil with no nil elements; an empty list is allowed and always
// succeeds. The slice is copied.
func NewGroup(name string, tasks []Task, opts ...GroupOption) (*Group, error) {
	if name == "" {
		return nil, errors.Wrap(errors.ErrInvalidArgument, "group name is empty")
	}
	if tasks == nil {
		return nil, errors.Wrapf(errors.ErrInvalidArgument, "group %q has no task list", name)
	}
	for i, t := range tasks {
		if t == nil {
			return nil, errors.Wrapf(errors.ErrInvalidArgument, "group %q has a nil task at %d", name, i)
		}
	}

	g := &Group{
		name:    name,
		tasks:   append([]Task(nil), tasks...),
		clock:   clock.RealClock{},
		logger:  zerolog.Nop(),
		metrics: NoopMetrics{},
		rng:     rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())), //nolint:gosec // ordering, not security
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Name returns the group name.
func (g *Group) Name() string {
	return g.name
}

// Tasks returns a copy of the tasks in list order.
func (g *Group) Tasks() []Task {
	return append([]Task(nil), g.tasks...)
}

// Len returns the number of tasks.
func (g *Group) Len() int {
	return len(g.tasks)
}

// RunFailFast runs the group and stops at the first failed task.
func (g *Group) RunFailFast(ctx context.Context, delay time.Duration, randomOrder bool) Result {
	return g.Run(ctx, RunOptions{Delay: delay, RandomOrder: randomOrder})
}

// RunIgnoreFailure runs every task of the group and collects the failures.
func (g *Group) RunIgnoreFailure(ctx context.Context, delay time.Duration, randomOrder bool) Result {
	return g.Run(ctx, RunOptions{Delay: delay, RandomOrder: randomOrder, IgnoreFailure: true})
}

// Run executes the tasks one after another in list order, or in a fresh
// random order when opts.RandomOrder is set.
//
// Fail-fast (the default) returns at the first failure with that task as the
// only failed task and every later task of the chosen order as unenforced.
// With opts.IgnoreFailure every task is attempted and failures are listed in
// encounter order.
//
// Cancellation is checked between tasks and during the pacing delay, never
// inside a task: tasks run under a context the run's cancellation does not
// reach, so a task started before the cancel finishes normally. A canceled
// run returns a failed Result whose Err is the context error and whose
// unenforced tasks are those not yet attempted.
func (g *Group) Run(ctx context.Context, opts RunOptions) Result {
	order := g.order(opts.RandomOrder)
	taskCtx := context.WithoutCancel(ctx)
	start := g.clock.Now()
	log := g.logger.With().Str("group", g.name).Logger()

	g.metrics.GroupStarted(g.name, len(order))
	log.Info().
		Int("tasks", len(order)).
		Str("policy", opts.Policy()).
		Bool("random_order", opts.RandomOrder).
		Dur("delay", opts.Delay).
		Ints("order", order).
		Msg("group run started")

	var failed []Task
	for pos, idx := range order {
		if err := ctxutil.Canceled(ctx); err != nil {
			return g.finish(log, start, groupResult(failed, g.pick(order[pos:]), err))
		}

		t := g.tasks[idx]
		taskStart := g.clock.Now()
		result := RunInstrumented(taskCtx, t, opts.Hooks)
		elapsed := g.clock.Now().Sub(taskStart)
		g.metrics.TaskExecuted(g.name, t.Name(), elapsed, result.Success())

		event := log.Info()
		if !result.Success() {
			event = log.Warn().Str("last_error", t.LastError())
		}
		event.
			Str("task", t.Name()).
			Int("position", pos).
			Bool("success", result.Success()).
			Int64("duration_ms", elapsed.Milliseconds()).
			Msg("task finished")

		if !result.Success() {
			failed = append(failed, t)
			if !opts.IgnoreFailure {
				return g.finish(log, start, groupResult(failed, g.pick(order[pos+1:]), ctxutil.Canceled(ctx)))
			}
		}

		if pos < len(order)-1 && opts.Delay > 0 {
			if err := clock.Sleep(ctx, g.clock, opts.Delay); err != nil {
				return g.finish(log, start, groupResult(failed, g.pick(order[pos+1:]), err))
			}
		}
	}

	return g.finish(log, start, groupResult(failed, nil, nil))
}

func (g *Group) finish(log zerolog.Logger, start time.Time, result Result) Result {
	elapsed := g.clock.Now().Sub(start)
	g.metrics.GroupCompleted(g.name, elapsed, result.Success())

	event := log.Info()
	if !result.Success() {
		event = log.Warn()
	}
	if err := result.Err(); err != nil {
		event = event.AnErr("cause", err)
	}
	event.
		Bool("success", result.Success()).
		Strs("failed", Names(result.failed)).
		Strs("unenforced", Names(result.unenforced)).
		Int64("duration_ms", elapsed.Milliseconds()).
		Msg("group run finished")
	return result
}

func (g *Group) order(random bool) []int {
	if !random {
		return identity(len(g.tasks))
	}
	g.rngMu.Lock()
	defer g.rngMu.Unlock()
	return Shuffle(g.rng, len(g.tasks))
}

func (g *Group) pick(indices []int) []Task {
	tasks := make([]Task, len(indices))
	for i, idx := range indices {
		tasks[i] = g.tasks[idx]
	}
	return tasks
}
