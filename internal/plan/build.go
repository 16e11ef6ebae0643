package plan

import (
	"context"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/mrz1836/clickplan/internal/actions"
	"github.com/mrz1836/clickplan/internal/clock"
	"github.com/mrz1836/clickplan/internal/config"
	"github.com/mrz1836/clickplan/internal/domain"
	"github.com/mrz1836/clickplan/internal/errors"
	"github.com/mrz1836/clickplan/internal/locator"
	"github.com/mrz1836/clickplan/internal/task"
	"github.com/mrz1836/clickplan/internal/vision"
)

// WindowFinder resolves a process name to a window handle.
type WindowFinder interface {
	FindWindow(ctx context.Context, name string) (domain.WindowHandle, error)
}

// Env carries the collaborators a built plan runs against.
type Env struct {
	Services locator.Services

	// Windows resolves window.process entries. Plans that name a process
	// fail to build without it.
	Windows WindowFinder

	Clock   clock.Clock
	Logger  zerolog.Logger
	Metrics task.Metrics

	// Seed seeds every random source of the built plan. Group i draws from
	// stream i, task j from stream taskStreamBase+j.
	Seed uint64
}

const taskStreamBase = 1 << 32

// Group is a built task group with the run options its plan entry resolved to.
type Group struct {
	*task.Group

	Description string
	Options     task.RunOptions
}

// Runtime owns every task built from a plan.
type Runtime struct {
	name   string
	groups []*Group
	byName map[string]*Group
	tasks  []task.Task

	releaseOnce sync.Once
}

// Build validates p against cfg and constructs its groups. A nil cfg means
// the built-in defaults. On error everything built so far is released.
func Build(ctx context.Context, p *Plan, cfg *config.Config, env Env) (*Runtime, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := p.Validate(cfg); err != nil {
		return nil, err
	}
	if env.Clock == nil {
		env.Clock = clock.RealClock{}
	}
	if env.Metrics == nil {
		env.Metrics = task.NoopMetrics{}
	}

	rt := &Runtime{name: p.Name, byName: make(map[string]*Group, len(p.Groups))}
	b := &builder{plan: p, cfg: cfg, env: env, windows: make(map[string]domain.WindowHandle)}

	for gi := range p.Groups {
		spec := &p.Groups[gi]
		g, err := b.group(ctx, rt, uint64(gi), spec)
		if err != nil {
			rt.Release()
			return nil, errors.Wrapf(err, "group %q", spec.Name)
		}
		rt.groups = append(rt.groups, g)
		rt.byName[spec.Name] = g
	}

	env.Logger.Debug().
		Str("plan", p.Name).
		Int("groups", len(rt.groups)).
		Int("tasks", len(rt.tasks)).
		Msg("plan built")
	return rt, nil
}

type builder struct {
	plan    *Plan
	cfg     *config.Config
	env     Env
	nextRNG uint64

	// windows caches process lookups for the build.
	windows map[string]domain.WindowHandle
}

func (b *builder) group(ctx context.Context, rt *Runtime, stream uint64, spec *GroupSpec) (*Group, error) {
	opts, err := runOptions(b.cfg, spec)
	if err != nil {
		return nil, err
	}

	tasks := make([]task.Task, 0, len(spec.Tasks))
	for ti := range spec.Tasks {
		t, err := b.task(ctx, &spec.Tasks[ti])
		if err != nil {
			return nil, errors.Wrapf(err, "task %q", spec.Tasks[ti].Name)
		}
		tasks = append(tasks, t)
		rt.tasks = append(rt.tasks, t)
	}

	g, err := task.NewGroup(spec.Name, tasks,
		task.WithRand(rand.New(rand.NewPCG(b.env.Seed, stream))), //nolint:gosec // ordering, not security
		task.WithClock(b.env.Clock),
		task.WithLogger(b.env.Logger),
		task.WithMetrics(b.env.Metrics),
	)
	if err != nil {
		return nil, err
	}
	return &Group{Group: g, Description: spec.Description, Options: opts}, nil
}

func (b *builder) task(ctx context.Context, spec *TaskSpec) (task.Task, error) {
	if spec.IsSleep() {
		d, err := sleepDuration(spec)
		if err != nil {
			return nil, err
		}
		return actions.NewSleepTask(spec.Name, d, actions.WithClock(b.env.Clock))
	}

	cc, err := clickConfig(b.cfg, spec)
	if err != nil {
		return nil, err
	}
	args, err := matchArgs(b.cfg, b.plan, spec)
	if err != nil {
		return nil, err
	}
	window, err := b.window(ctx, spec.Window)
	if err != nil {
		return nil, err
	}

	paths := make([]string, len(spec.Templates))
	for i, path := range spec.Templates {
		paths[i] = b.plan.TemplatePath(path)
	}
	templates, err := vision.LoadTemplates(ctx, paths)
	if err != nil {
		return nil, err
	}

	target, err := locator.New(templates, b.env.Services,
		locator.WithName(spec.Name),
		locator.WithWindow(window),
		locator.WithMatchArgs(args),
		locator.WithLogger(b.env.Logger),
	)
	if err != nil {
		vision.ReleaseAll(templates)
		return nil, err
	}
	b.env.Logger.Debug().
		Str("task", spec.Name).
		Int("templates", target.TemplateCount()).
		Stringer("scope", target.Window()).
		Msg("target resolved")

	b.nextRNG++
	t, err := actions.NewClickTask(spec.Name, target, cc,
		actions.WithClock(b.env.Clock),
		actions.WithRand(rand.New(rand.NewPCG(b.env.Seed, taskStreamBase+b.nextRNG))), //nolint:gosec // click jitter
		actions.WithLogger(b.env.Logger),
	)
	if err != nil {
		target.Release()
		return nil, err
	}
	return t, nil
}

// window resolves a window entry. A nil entry is the whole screen.
func (b *builder) window(ctx context.Context, w *WindowSpec) (domain.WindowHandle, error) {
	if w == nil {
		return 0, nil
	}
	if w.PID != 0 {
		return domain.WindowHandle(w.PID), nil
	}

	name := strings.TrimSpace(w.Process)
	if h, ok := b.windows[name]; ok {
		return h, nil
	}
	if b.env.Windows == nil {
		return 0, errors.Wrapf(errors.ErrWindowNotFound, "no window lookup for process %q", name)
	}
	h, err := b.env.Windows.FindWindow(ctx, name)
	if err != nil {
		return 0, err
	}
	b.windows[name] = h
	return h, nil
}

// Name returns the plan name.
func (r *Runtime) Name() string {
	return r.name
}

// Groups returns the groups in plan order.
func (r *Runtime) Groups() []*Group {
	return append([]*Group(nil), r.groups...)
}

// Group returns the group called name.
func (r *Runtime) Group(name string) (*Group, error) {
	g, ok := r.byName[name]
	if !ok {
		return nil, errors.Wrapf(errors.ErrGroupNotFound, "%q", name)
	}
	return g, nil
}

// Select returns the named groups in the order given, or every group in
// plan order when names is empty.
func (r *Runtime) Select(names []string) ([]*Group, error) {
	if len(names) == 0 {
		return r.Groups(), nil
	}
	out := make([]*Group, 0, len(names))
	for _, name := range names {
		g, err := r.Group(name)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

// Release releases every task, and through them every locator and
// template. Further calls are no-ops.
func (r *Runtime) Release() {
	r.releaseOnce.Do(func() {
		for _, t := range r.tasks {
			t.Release()
		}
	})
}
