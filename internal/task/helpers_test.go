package task_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mrz1836/clickplan/internal/task"
)

// recorder collects the names of tasks in the order they ran.
type recorder struct {
	mu     sync.Mutex
	visits []string
}

func (r *recorder) add(name string) {
	r.mu.Lock()
	r.visits = append(r.visits, name)
	r.mu.Unlock()
}

func (r *recorder) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.visits...)
}

func (r *recorder) reset() {
	r.mu.Lock()
	r.visits = nil
	r.mu.Unlock()
}

// scriptedTask succeeds or fails as told and records every run.
type scriptedTask struct {
	*task.Base

	fail     bool
	panicMsg string
	rec      *recorder
	runs     int
	mu       sync.Mutex
}

func (s *scriptedTask) Run(_ context.Context) task.Result {
	s.mu.Lock()
	s.runs++
	s.mu.Unlock()
	if s.rec != nil {
		s.rec.add(s.Name())
	}
	if s.panicMsg != "" {
		panic(s.panicMsg)
	}
	if s.fail {
		return s.Failf("%s could not find its target", s.Name())
	}
	return s.Succeed()
}

func (s *scriptedTask) Runs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs
}

func newTask(t *testing.T, name string, rec *recorder) *scriptedTask {
	t.Helper()
	base, err := task.NewBase(name)
	require.NoError(t, err)
	return &scriptedTask{Base: base, rec: rec}
}

func failingTask(t *testing.T, name string, rec *recorder) *scriptedTask {
	t.Helper()
	s := newTask(t, name, rec)
	s.fail = true
	return s
}

func asTasks(tasks ...*scriptedTask) []task.Task {
	out := make([]task.Task, len(tasks))
	for i, s := range tasks {
		out[i] = s
	}
	return out
}
