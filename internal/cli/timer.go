package cli

import (
	"sync"
	"time"

	"github.com/mrz1836/clickplan/internal/task"
	"github.com/mrz1836/clickplan/internal/tui"
)

// runTimer implements task.Metrics to time groups and tasks and to record
// the order tasks were attempted in.
type runTimer struct {
	mu        sync.Mutex
	groups    map[string]time.Duration
	tasks     map[string]map[string]time.Duration
	attempted map[string][]string
}

var _ task.Metrics = (*runTimer)(nil)

func newRunTimer() *runTimer {
	return &runTimer{
		groups:    make(map[string]time.Duration),
		tasks:     make(map[string]map[string]time.Duration),
		attempted: make(map[string][]string),
	}
}

// GroupStarted resets the group's records.
func (t *runTimer) GroupStarted(group string, _ int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tasks[group] = make(map[string]time.Duration)
	t.attempted[group] = nil
	delete(t.groups, group)
}

// GroupCompleted records the group's wall time.
func (t *runTimer) GroupCompleted(group string, d time.Duration, _ bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.groups[group] = d
}

// TaskExecuted records the task's wall time and attempt position.
func (t *runTimer) TaskExecuted(group, name string, d time.Duration, _ bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.tasks[group] == nil {
		t.tasks[group] = make(map[string]time.Duration)
	}
	t.tasks[group][name] = d
	t.attempted[group] = append(t.attempted[group], name)
}

func (t *runTimer) groupDuration(group string) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.groups[group]
}

// fill copies task durations and the attempt order into r.
func (t *runTimer) fill(group string, r *tui.GroupReport) {
	t.mu.Lock()
	defer t.mu.Unlock()
	r.Attempted = append([]string(nil), t.attempted[group]...)
	for i := range r.Tasks {
		if d, ok := t.tasks[group][r.Tasks[i].Name]; ok {
			r.Tasks[i].DurationMS = d.Milliseconds()
		}
	}
}
