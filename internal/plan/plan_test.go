package plan

import (
	"context"
	"image"
	"image/png"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/clickplan/internal/actions"
	"github.com/mrz1836/clickplan/internal/config"
	"github.com/mrz1836/clickplan/internal/domain"
	"github.com/mrz1836/clickplan/internal/errors"
	"github.com/mrz1836/clickplan/internal/locator"
	"github.com/mrz1836/clickplan/internal/task"
	"github.com/mrz1836/clickplan/internal/testutil"
	"github.com/mrz1836/clickplan/internal/vision"
)

// scene is a noise frame with one template cut from it. The template's
// centre in the frame is (16, 10).
type scene struct {
	dir   string
	frame *image.Gray
}

func newScene(t *testing.T) *scene {
	t.Helper()
	rng := rand.New(rand.NewPCG(10, 10)) //nolint:gosec // test data
	frame := image.NewGray(image.Rect(0, 0, 40, 30))
	for i := range frame.Pix {
		frame.Pix[i] = uint8(rng.IntN(256))
	}

	s := &scene{dir: t.TempDir(), frame: frame}
	s.writePNG(t, "button.png", frame.SubImage(image.Rect(12, 7, 20, 13)))
	return s
}

func (s *scene) writePNG(t *testing.T, name string, img image.Image) {
	t.Helper()
	path := filepath.Join(s.dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	f, err := os.Create(path) //nolint:gosec // test file
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
}

func (s *scene) writePlan(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(s.dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

type rig struct {
	capturer *testutil.Capturer
	windows  *testutil.Windows
	pointer  *testutil.Pointer
	clock    *testutil.Clock
	finder   *finder
}

func newRig(s *scene) *rig {
	return &rig{
		capturer: testutil.NewCapturer(s.frame),
		windows:  testutil.NewWindows(),
		pointer:  &testutil.Pointer{},
		clock:    &testutil.Clock{},
		finder:   &finder{handles: map[string]domain.WindowHandle{}},
	}
}

func (r *rig) env() Env {
	return Env{
		Services: locator.Services{
			Capturer: r.capturer,
			Matcher:  vision.TemplateMatcher{},
			Windows:  r.windows,
			Pointer:  r.pointer,
		},
		Windows: r.finder,
		Clock:   r.clock,
		Logger:  zerolog.Nop(),
		Seed:    7,
	}
}

type finder struct {
	mu      sync.Mutex
	handles map[string]domain.WindowHandle
	calls   []string
}

func (f *finder) FindWindow(_ context.Context, name string) (domain.WindowHandle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	h, ok := f.handles[name]
	if !ok {
		return 0, errors.Wrapf(errors.ErrWindowNotFound, "process %q", name)
	}
	return h, nil
}

const basicPlan = `
name: demo
match:
  ratio: 0
groups:
  - name: login
    delay: 250ms
    tasks:
      - name: press
        templates: [button.png]
      - name: pause
        action: sleep
        duration: 1s
`

func TestLoad_YAML(t *testing.T) {
	s := newScene(t)
	path := s.writePlan(t, "plan.yaml", basicPlan)

	p, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "demo", p.Name)
	assert.True(t, filepath.IsAbs(p.Path()))
	assert.Equal(t, filepath.Dir(p.Path()), p.Dir())
	assert.Equal(t, []string{"login"}, p.GroupNames())
	require.Len(t, p.Groups[0].Tasks, 2)
	assert.Equal(t, []string{"button.png"}, p.Groups[0].Tasks[0].Templates)
	assert.True(t, p.Groups[0].Tasks[1].IsSleep())
	require.NotNil(t, p.Match)
	require.NotNil(t, p.Match.Ratio)
	assert.Zero(t, *p.Match.Ratio)
}

func TestLoad_JSON(t *testing.T) {
	s := newScene(t)
	path := s.writePlan(t, "plan.json", `{
  "name": "demo",
  "groups": [{"name": "g", "random_order": true, "tasks": [{"name": "a", "templates": ["button.png"], "retries": 2}]}]
}`)

	p, err := Load(path)
	require.NoError(t, err)
	require.Len(t, p.Groups, 1)
	require.NotNil(t, p.Groups[0].RandomOrder)
	assert.True(t, *p.Groups[0].RandomOrder)
	require.NotNil(t, p.Groups[0].Tasks[0].Retries)
	assert.Equal(t, 2, *p.Groups[0].Tasks[0].Retries)
}

func TestLoad_Errors(t *testing.T) {
	s := newScene(t)

	_, err := Load(filepath.Join(s.dir, "missing.yaml"))
	require.ErrorIs(t, err, errors.ErrPlanNotFound)

	_, err = Load(s.writePlan(t, "empty.yaml", ""))
	require.ErrorIs(t, err, errors.ErrPlanParseError)

	_, err = Load(s.writePlan(t, "unknown.yaml", "name: x\ncolour: red\n"))
	require.ErrorIs(t, err, errors.ErrPlanParseError)

	_, err = Load(s.writePlan(t, "unknown.json", `{"name": "x", "colour": "red"}`))
	require.ErrorIs(t, err, errors.ErrPlanParseError)

	_, err = Load(s.writePlan(t, "broken.yaml", "groups: [\n"))
	require.ErrorIs(t, err, errors.ErrPlanParseError)
	assert.Contains(t, err.Error(), "broken.yaml")
}

func TestProblems(t *testing.T) {
	s := newScene(t)

	tests := []struct {
		name string
		body string
		want []string
	}{
		{"no groups", "name: x\n", []string{"plan has no groups"}},
		{"group without name", "groups:\n  - tasks: []\n", []string{"groups[0]: name is required"}},
		{
			"duplicate names",
			"groups:\n  - name: g\n    tasks:\n      - {name: a, action: sleep, duration: 1s}\n      - {name: a, action: sleep, duration: 1s}\n  - name: g\n",
			[]string{`group "g" task "a": duplicate task name`, `group "g": duplicate group name`},
		},
		{
			"bad delay",
			"groups:\n  - name: g\n    delay: soon\n",
			[]string{`group "g": delay:`},
		},
		{
			"delay too long",
			"groups:\n  - name: g\n    delay: 1h\n",
			[]string{`group "g": delay must be at most`},
		},
		{
			"sleep without duration",
			"groups:\n  - name: g\n    tasks:\n      - {name: s, action: sleep}\n",
			[]string{`task "s": sleep task needs a duration`},
		},
		{
			"sleep with templates",
			"groups:\n  - name: g\n    tasks:\n      - {name: s, action: sleep, duration: 1s, templates: [button.png]}\n",
			[]string{"sleep task cannot have templates or a window"},
		},
		{
			"click without templates",
			"groups:\n  - name: g\n    tasks:\n      - {name: c}\n",
			[]string{"at least one template is required"},
		},
		{
			"missing template file",
			"groups:\n  - name: g\n    tasks:\n      - {name: c, templates: [nope.png]}\n",
			[]string{"template nope.png:"},
		},
		{
			"bad action and button",
			"groups:\n  - name: g\n    tasks:\n      - {name: c, action: drag, templates: [button.png]}\n      - {name: d, button: thumb, templates: [button.png]}\n",
			[]string{`unknown action "drag"`, `task.button must be left, right or middle, got "thumb"`},
		},
		{
			"bad match ratio",
			"groups:\n  - name: g\n    tasks:\n      - name: c\n        templates: [button.png]\n        match: {ratio: 1.5}\n",
			[]string{"match.ratio must be between 0 and 1"},
		},
		{
			"window with pid and process",
			"groups:\n  - name: g\n    tasks:\n      - name: c\n        templates: [button.png]\n        window: {pid: 4, process: app}\n",
			[]string{"window takes a pid or a process name, not both"},
		},
		{
			"empty window",
			"groups:\n  - name: g\n    tasks:\n      - name: c\n        templates: [button.png]\n        window: {}\n",
			[]string{"window needs a pid or a process name"},
		},
		{
			"duration on click",
			"groups:\n  - name: g\n    tasks:\n      - {name: c, templates: [button.png], duration: 1s}\n",
			[]string{"duration only applies to sleep tasks"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, err := Load(s.writePlan(t, "plan.yaml", tc.body))
			require.NoError(t, err)

			problems := p.Problems(nil)
			joined := strings.Join(problems, "\n")
			for _, want := range tc.want {
				assert.Contains(t, joined, want)
			}

			err = p.Validate(nil)
			require.ErrorIs(t, err, errors.ErrPlanInvalid)
		})
	}
}

func TestProblems_ValidPlan(t *testing.T) {
	s := newScene(t)
	p, err := Load(s.writePlan(t, "plan.yaml", basicPlan))
	require.NoError(t, err)

	assert.Empty(t, p.Problems(nil))
	require.NoError(t, p.Validate(config.DefaultConfig()))
}

func TestProblems_SentinelTextIsDropped(t *testing.T) {
	s := newScene(t)
	p, err := Load(s.writePlan(t, "plan.yaml",
		"groups:\n  - name: g\n    tasks:\n      - {name: c, retries: -1, templates: [button.png]}\n"))
	require.NoError(t, err)

	problems := p.Problems(nil)
	require.Len(t, problems, 1)
	assert.NotContains(t, problems[0], errors.ErrConfigInvalidTask.Error())
	assert.Contains(t, problems[0], "task.retries must be between 0 and")
}

func TestBuild_RunsGroup(t *testing.T) {
	s := newScene(t)
	r := newRig(s)
	p, err := Load(s.writePlan(t, "plan.yaml", basicPlan))
	require.NoError(t, err)

	rt, err := Build(context.Background(), p, nil, r.env())
	require.NoError(t, err)
	defer rt.Release()

	assert.Equal(t, "demo", rt.Name())
	g, err := rt.Group("login")
	require.NoError(t, err)
	assert.Equal(t, 2, g.Len())
	assert.Equal(t, 250*time.Millisecond, g.Options.Delay)
	assert.False(t, g.Options.RandomOrder)
	assert.False(t, g.Options.IgnoreFailure)

	res := g.Run(context.Background(), g.Options)
	require.True(t, res.Success())

	assert.Equal(t, []testutil.PointerCall{{Button: domain.ButtonLeft, Point: domain.Point{X: 16, Y: 10}}}, r.pointer.Calls())
	assert.Equal(t, []time.Duration{250 * time.Millisecond, time.Second}, r.clock.Delays())
	assert.Zero(t, r.capturer.Outstanding())
}

func TestBuild_LayersSettings(t *testing.T) {
	s := newScene(t)
	r := newRig(s)
	p, err := Load(s.writePlan(t, "plan.yaml", `
groups:
  - name: defaults
    tasks:
      - name: a
        templates: [button.png]
  - name: custom
    random_order: false
    ignore_failure: true
    tasks:
      - name: b
        action: double_click
        button: right
        retries: 3
        retry_interval: 2s
        jitter: true
        jitter_margin: 1
        templates: [button.png]
`))
	require.NoError(t, err)

	cfg := config.DefaultConfig()
	cfg.Run.Delay = time.Second
	cfg.Run.RandomOrder = true
	cfg.Task.Retries = 1

	rt, err := Build(context.Background(), p, cfg, r.env())
	require.NoError(t, err)
	defer rt.Release()

	groups := rt.Groups()
	require.Len(t, groups, 2)

	assert.Equal(t, task.RunOptions{Delay: time.Second, RandomOrder: true}, groups[0].Options)
	assert.Equal(t, task.RunOptions{Delay: time.Second, IgnoreFailure: true}, groups[1].Options)

	a, ok := groups[0].Tasks()[0].(*actions.ClickTask)
	require.True(t, ok)
	assert.Equal(t, actions.ClickConfig{
		Action:        actions.ActionClick,
		Button:        domain.ButtonLeft,
		Retries:       1,
		RetryInterval: 500 * time.Millisecond,
		JitterMargins: domain.UniformMargins(config.DefaultJitterMargin),
	}, a.Config())

	b, ok := groups[1].Tasks()[0].(*actions.ClickTask)
	require.True(t, ok)
	assert.Equal(t, actions.ClickConfig{
		Action:        actions.ActionDoubleClick,
		Button:        domain.ButtonRight,
		Retries:       3,
		RetryInterval: 2 * time.Second,
		Jitter:        true,
		JitterMargins: domain.UniformMargins(1),
	}, b.Config())
}

func TestBuild_MatchArgsLayering(t *testing.T) {
	s := newScene(t)
	p := &Plan{
		Match: &MatchSpec{Ratio: ptr(0.1)},
		Groups: []GroupSpec{{Name: "g", Tasks: []TaskSpec{
			{Name: "a", Templates: []string{"button.png"}},
			{Name: "b", Templates: []string{"button.png"}, Match: &MatchSpec{Consistency: ptr(5.0)}},
		}}},
		path: filepath.Join(s.dir, "plan.yaml"),
	}

	cfg := config.DefaultConfig()
	a, err := matchArgs(cfg, p, &p.Groups[0].Tasks[0])
	require.NoError(t, err)
	assert.Equal(t, domain.MatchArgs{Ratio: 0.1, Consistency: 2}, a)

	b, err := matchArgs(cfg, p, &p.Groups[0].Tasks[1])
	require.NoError(t, err)
	assert.Equal(t, domain.MatchArgs{Ratio: 0.1, Consistency: 5}, b)
}

func TestBuild_WindowScopes(t *testing.T) {
	s := newScene(t)
	r := newRig(s)
	r.windows.Set(42, domain.RectAt(100, 50, 40, 30))
	r.finder.handles["Editor"] = 42

	p, err := Load(s.writePlan(t, "plan.yaml", `
match: {ratio: 0}
groups:
  - name: g
    tasks:
      - name: by-pid
        templates: [button.png]
        window: {pid: 42}
      - name: by-process
        templates: [button.png]
        window: {process: Editor}
      - name: by-process-again
        templates: [button.png]
        window: {process: Editor}
`))
	require.NoError(t, err)

	rt, err := Build(context.Background(), p, nil, r.env())
	require.NoError(t, err)
	defer rt.Release()

	g, err := rt.Group("g")
	require.NoError(t, err)
	require.True(t, g.Run(context.Background(), g.Options).Success())

	assert.Equal(t, []string{"Editor"}, r.finder.calls, "process lookups are cached per build")
	assert.Equal(t, []domain.WindowHandle{42, 42, 42}, r.capturer.WindowCalls())
	for _, c := range r.pointer.Calls() {
		assert.Equal(t, domain.Point{X: 116, Y: 60}, c.Point)
	}
	assert.Len(t, r.pointer.Calls(), 3)

	for _, tk := range g.Tasks() {
		ct, ok := tk.(*actions.ClickTask)
		require.True(t, ok)
		target, ok := ct.Locator(actions.TargetKey)
		require.True(t, ok)
		assert.Equal(t, domain.WindowHandle(42), target.Window(), tk.Name())
	}
}

func TestBuild_WindowLookupFailures(t *testing.T) {
	s := newScene(t)
	path := s.writePlan(t, "plan.yaml", `
groups:
  - name: g
    tasks:
      - name: a
        templates: [button.png]
        window: {process: Missing}
`)
	p, err := Load(path)
	require.NoError(t, err)

	r := newRig(s)
	_, err = Build(context.Background(), p, nil, r.env())
	require.ErrorIs(t, err, errors.ErrWindowNotFound)
	assert.Contains(t, err.Error(), `group "g"`)
	assert.Contains(t, err.Error(), `task "a"`)

	env := r.env()
	env.Windows = nil
	_, err = Build(context.Background(), p, nil, env)
	require.ErrorIs(t, err, errors.ErrWindowNotFound)
}

func TestBuild_InvalidPlan(t *testing.T) {
	s := newScene(t)
	p, err := Load(s.writePlan(t, "plan.yaml", "name: x\n"))
	require.NoError(t, err)

	_, err = Build(context.Background(), p, nil, newRig(s).env())
	require.ErrorIs(t, err, errors.ErrPlanInvalid)
}

func TestBuild_UndecodableTemplate(t *testing.T) {
	s := newScene(t)
	require.NoError(t, os.WriteFile(filepath.Join(s.dir, "bad.png"), []byte("not a png"), 0o600))
	p, err := Load(s.writePlan(t, "plan.yaml", `
groups:
  - name: g
    tasks:
      - name: ok
        templates: [button.png]
      - name: bad
        templates: [bad.png]
`))
	require.NoError(t, err)

	_, err = Build(context.Background(), p, nil, newRig(s).env())
	require.ErrorIs(t, err, errors.ErrTemplateLoadFailed)
}

func TestBuild_TemplatesResolveAgainstPlanDir(t *testing.T) {
	s := newScene(t)
	s.writePNG(t, "img/nested.png", s.frame.SubImage(image.Rect(12, 7, 20, 13)))
	require.NoError(t, os.MkdirAll(filepath.Join(s.dir, "plans"), 0o750))
	p, err := Load(s.writePlan(t, "plans/plan.yaml", `
groups:
  - name: g
    tasks:
      - name: a
        templates: [../img/nested.png]
`))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(s.dir, "img", "nested.png"), p.TemplatePath("../img/nested.png"))
	assert.Equal(t, "/abs/x.png", p.TemplatePath("/abs/x.png"))
	assert.Empty(t, p.Problems(nil))
}

func TestRuntime_SelectAndRelease(t *testing.T) {
	s := newScene(t)
	p, err := Load(s.writePlan(t, "plan.yaml", `
groups:
  - name: first
    tasks:
      - {name: a, templates: [button.png]}
  - name: second
    tasks:
      - {name: b, action: sleep, duration: 10ms}
`))
	require.NoError(t, err)

	rt, err := Build(context.Background(), p, nil, newRig(s).env())
	require.NoError(t, err)

	all, err := rt.Select(nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "first", all[0].Name())

	picked, err := rt.Select([]string{"second", "first"})
	require.NoError(t, err)
	assert.Equal(t, "second", picked[0].Name())
	assert.Equal(t, "first", picked[1].Name())

	_, err = rt.Select([]string{"third"})
	require.ErrorIs(t, err, errors.ErrGroupNotFound)

	rt.Release()
	rt.Release()
	for _, g := range all {
		for _, tk := range g.Tasks() {
			rel, ok := tk.(task.Releasable)
			require.True(t, ok)
			assert.True(t, rel.Released(), tk.Name())
		}
	}
}

func TestParse_DefaultsToWorkingDirectory(t *testing.T) {
	p, err := Parse([]byte("name: inline\ngroups: []\n"), "yaml")
	require.NoError(t, err)
	assert.Empty(t, p.Path())
	assert.Equal(t, ".", p.Dir())
	assert.Equal(t, filepath.Join(".", "a.png"), p.TemplatePath("a.png"))
}

func ptr[T any](v T) *T {
	return &v
}
