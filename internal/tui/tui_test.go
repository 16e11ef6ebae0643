package tui

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/clickplan/internal/constants"
	"github.com/mrz1836/clickplan/internal/errors"
	"github.com/mrz1836/clickplan/internal/task"
)

type stubTask struct {
	*task.Base
	fail bool
}

func newStub(t *testing.T, name string, fail bool) *stubTask {
	t.Helper()
	b, err := task.NewBase(name)
	require.NoError(t, err)
	return &stubTask{Base: b, fail: fail}
}

func (s *stubTask) Run(context.Context) task.Result {
	if s.fail {
		return s.Failf("%s not found", s.Name())
	}
	return s.Succeed()
}

func runGroup(t *testing.T, opts task.RunOptions, tasks ...task.Task) (task.Result, *task.Group) {
	t.Helper()
	g, err := task.NewGroup("g", tasks)
	require.NoError(t, err)
	return g.Run(context.Background(), opts), g
}

func TestHasColorSupport(t *testing.T) {
	t.Setenv("TERM", "xterm-256color")
	t.Run("NO_COLOR set", func(t *testing.T) {
		t.Setenv("NO_COLOR", "")
		assert.False(t, HasColorSupport())
	})
	t.Run("dumb terminal", func(t *testing.T) {
		t.Setenv("TERM", "dumb")
		assert.False(t, HasColorSupport())
	})
}

func TestOutcomeIconAndLabel(t *testing.T) {
	tests := []struct {
		outcome constants.TaskOutcome
		icon    string
		label   string
	}{
		{constants.TaskSucceeded, "✓", "Succeeded"},
		{constants.TaskFailed, "✗", "Failed"},
		{constants.TaskNotRun, "○", "Not Run"},
		{constants.TaskOutcome("odd"), "?", "Odd"},
	}
	for _, tc := range tests {
		t.Run(string(tc.outcome), func(t *testing.T) {
			assert.Equal(t, tc.icon, OutcomeIcon(tc.outcome))
			assert.Equal(t, tc.label, OutcomeLabel(tc.outcome))
		})
	}
	assert.Equal(t, "Canceled", StatusLabel(constants.RunStatusCanceled))
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0s"},
		{-time.Second, "0s"},
		{500 * time.Microsecond, "<1ms"},
		{1500 * time.Microsecond, "2ms"},
		{250 * time.Millisecond, "250ms"},
		{1234 * time.Millisecond, "1.23s"},
		{90 * time.Second, "1m30s"},
	}
	for _, tc := range tests {
		t.Run(tc.want, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatDuration(tc.d))
		})
	}
}

func TestTTYOutput_Messages(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	var buf bytes.Buffer
	out := NewTTYOutput(&buf)

	out.Success("done")
	out.Warning("careful")
	out.Info("note")
	out.Error(errors.Wrap(errors.ErrGroupNotFound, `"x"`))

	text := buf.String()
	assert.Contains(t, text, "✓ done")
	assert.Contains(t, text, "⚠ careful")
	assert.Contains(t, text, "ℹ note")
	assert.Contains(t, text, `✗ "x": group not found`)
	assert.Contains(t, text, "The requested group does not exist in the plan.")
	assert.Contains(t, text, "▸ Try: Check the --group value")
}

func TestTTYOutput_ErrorWithoutAdvice(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	var buf bytes.Buffer
	NewTTYOutput(&buf).Error(fmt.Errorf("plain failure"))

	assert.Equal(t, "✗ plain failure\n", buf.String())
}

func TestTTYOutput_TableAlignsWideRunes(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	var buf bytes.Buffer
	NewTTYOutput(&buf).Table(
		[]string{"NAME", "VALUE"},
		[][]string{{"ボタン", "1"}, {"ok", "22"}, {"short"}},
	)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "NAME    VALUE", lines[0])
	assert.Equal(t, "ボタン  1", lines[1])
	assert.Equal(t, "ok      22", lines[2])
	assert.Equal(t, "short", lines[3])
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 5))
	assert.Equal(t, "ab…", Truncate("abcdef", 3))
	assert.Empty(t, Truncate("abc", 0))
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	out := NewOutput(&buf, constants.OutputFormatJSON)

	out.Success("ok")
	out.Error(errors.Wrap(errors.ErrPlanNotFound, "load"))
	out.Table([]string{"a", "b"}, [][]string{{"1"}})
	require.NoError(t, out.JSON(map[string]int{"n": 1}))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.JSONEq(t, `{"type":"success","message":"ok"}`, lines[0])
	assert.JSONEq(t, `{
		"type":"error",
		"message":"load: plan file not found",
		"details":"plan file not found",
		"suggestion":"Check the path passed to 'clickplan run'."
	}`, lines[1])
	assert.JSONEq(t, `[{"a":"1","b":""}]`, lines[2])
	assert.JSONEq(t, `{"n":1}`, lines[3])
}

func TestNewOutput_DefaultsToTTY(t *testing.T) {
	_, ok := NewOutput(&bytes.Buffer{}, constants.OutputFormatText).(*TTYOutput)
	assert.True(t, ok)
}

func TestNewGroupReport_FailFast(t *testing.T) {
	a := newStub(t, "a", false)
	b := newStub(t, "b", true)
	c := newStub(t, "c", false)
	opts := task.RunOptions{Delay: 0}
	res, _ := runGroup(t, opts, a, b, c)

	r := NewGroupReport("g", []task.Task{a, b, c}, opts, res, 1500*time.Millisecond)

	assert.Equal(t, constants.RunStatusFailed, r.Status)
	assert.Equal(t, constants.PolicyFailFast, r.Policy)
	assert.Equal(t, []string{"b"}, r.Failed)
	assert.Equal(t, []string{"c"}, r.Unenforced)
	assert.Equal(t, int64(1500), r.DurationMS)
	assert.Equal(t, []TaskReport{
		{Name: "a", Outcome: constants.TaskSucceeded},
		{Name: "b", Outcome: constants.TaskFailed, Error: "b not found"},
		{Name: "c", Outcome: constants.TaskNotRun},
	}, r.Tasks)
}

func TestNewGroupReport_IgnoreFailureAndSuccess(t *testing.T) {
	a := newStub(t, "a", true)
	b := newStub(t, "b", false)
	opts := task.RunOptions{IgnoreFailure: true, RandomOrder: true, Delay: -time.Second}
	res, _ := runGroup(t, task.RunOptions{IgnoreFailure: true}, a, b)

	r := NewGroupReport("g", []task.Task{a, b}, opts, res, 0)
	assert.Equal(t, constants.PolicyIgnoreFailure, r.Policy)
	assert.True(t, r.RandomOrder)
	assert.Zero(t, r.DelayMS)
	assert.Equal(t, []string{"a"}, r.Failed)
	assert.Empty(t, r.Unenforced)
	assert.NotNil(t, r.Unenforced)

	ok := newStub(t, "ok", false)
	res, _ = runGroup(t, task.RunOptions{}, ok)
	r = NewGroupReport("g", []task.Task{ok}, task.RunOptions{}, res, 0)
	assert.Equal(t, constants.RunStatusSucceeded, r.Status)
}

func TestNewGroupReport_Canceled(t *testing.T) {
	a := newStub(t, "a", false)
	g, err := task.NewGroup("g", []task.Task{a})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := g.Run(ctx, task.RunOptions{})

	r := NewGroupReport("g", g.Tasks(), task.RunOptions{}, res, 0)
	assert.Equal(t, constants.RunStatusCanceled, r.Status)
	assert.Equal(t, []string{"a"}, r.Unenforced)
	assert.Contains(t, r.Error, "canceled")
}

func TestRunReport_StatusAndJSON(t *testing.T) {
	r := NewRunReport("run-1", "demo", 9)
	assert.True(t, r.Succeeded())

	r.Add(GroupReport{Name: "a", Status: constants.RunStatusSucceeded})
	assert.True(t, r.Succeeded())
	r.Add(GroupReport{Name: "b", Status: constants.RunStatusFailed})
	assert.Equal(t, constants.RunStatusFailed, r.Status)
	r.Add(GroupReport{Name: "c", Status: constants.RunStatusCanceled})
	r.Add(GroupReport{Name: "d", Status: constants.RunStatusFailed})
	assert.Equal(t, constants.RunStatusCanceled, r.Status)
	r.Finish(2 * time.Second)

	data, err := json.Marshal(r)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "run-1", decoded["run_id"])
	assert.Equal(t, "canceled", decoded["status"])
	assert.InDelta(t, 2000, decoded["duration_ms"], 0)
	assert.Len(t, decoded["groups"], 4)
}

func TestRenderReport(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	a := newStub(t, "open menu", false)
	b := newStub(t, "save", true)
	opts := task.RunOptions{Delay: 250 * time.Millisecond}
	res, _ := runGroup(t, opts, a, b)

	r := NewRunReport("run-abc", "demo", 42)
	r.Add(NewGroupReport("editor", []task.Task{a, b}, opts, res, time.Second))
	r.Add(GroupReport{Name: "empty", Status: constants.RunStatusSucceeded, Policy: constants.PolicyFailFast})
	r.Finish(time.Second)

	var buf bytes.Buffer
	RenderReport(&buf, r)
	text := buf.String()

	assert.Contains(t, text, "Plan demo")
	assert.Contains(t, text, "run-abc  seed 42")
	assert.Contains(t, text, "editor  Failed  fail fast, in order, delay 250ms")
	assert.Contains(t, text, "open menu  ✓ Succeeded")
	assert.Contains(t, text, "save       ✗ Failed     save not found")
	assert.Contains(t, text, "(no tasks)")
	assert.Contains(t, text, "✗ Failed in 1s")
}
