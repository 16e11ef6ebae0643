package tui

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/muesli/termenv"

	"github.com/mrz1836/clickplan/internal/constants"
	"github.com/mrz1836/clickplan/internal/task"
)

// DefaultProgressWidth is the bar width used for group runs.
const DefaultProgressWidth = 20

// ProgressBar wraps the bubbles progress bar for static rendering.
// Supports NO_COLOR compatibility.
type ProgressBar struct {
	bar   progress.Model
	width int
}

// NewProgressBar creates a progress bar. Colored terminals get the primary
// gradient, others a solid fill without escape sequences.
func NewProgressBar(width int) *ProgressBar {
	var bar progress.Model
	if HasColorSupport() {
		bar = progress.New(
			progress.WithWidth(width),
			progress.WithoutPercentage(),
			progress.WithScaledGradient("#0087AF", "#00D7FF"),
		)
	} else {
		bar = progress.New(
			progress.WithWidth(width),
			progress.WithoutPercentage(),
			progress.WithSolidFill("#808080"),
			progress.WithColorProfile(termenv.Ascii),
		)
	}
	return &ProgressBar{bar: bar, width: width}
}

// Render returns the bar for percent, clamped to 0.0-1.0.
// Uses ViewAs for static rendering (no animation).
func (pb *ProgressBar) Render(percent float64) string {
	percent = min(max(percent, 0), 1)
	return pb.bar.ViewAs(percent)
}

// Width returns the bar width.
func (pb *ProgressBar) Width() int {
	return pb.width
}

// FormatStepCounter formats progress as "current/total" (e.g., "3/7").
func FormatStepCounter(current, total int) string {
	return fmt.Sprintf("%d/%d", current, total)
}

// GroupProgress writes one line per finished task of a group run:
// "login [██████░░░░]  50% 1/2 ✓ press".
type GroupProgress struct {
	w     io.Writer
	group string
	total int
	bar   *ProgressBar

	mu   sync.Mutex
	done int
}

// NewGroupProgress creates the progress writer of a group with total tasks.
func NewGroupProgress(w io.Writer, group string, total int) *GroupProgress {
	CheckNoColor()
	return &GroupProgress{
		w:     w,
		group: group,
		total: total,
		bar:   NewProgressBar(DefaultProgressWidth),
	}
}

// Hooks returns next with an OnEnd that also reports the finished task.
func (p *GroupProgress) Hooks(next task.Hooks) task.Hooks {
	onEnd := next.OnEnd
	next.OnEnd = func(t task.Task, r task.Result) {
		if onEnd != nil {
			onEnd(t, r)
		}
		p.Finished(t, r)
	}
	return next
}

// Finished records a finished task and writes its line.
func (p *GroupProgress) Finished(t task.Task, r task.Result) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done++
	var percent float64
	if p.total > 0 {
		percent = float64(p.done) / float64(p.total)
	}

	outcome := constants.TaskSucceeded
	if !r.Success() {
		outcome = constants.TaskFailed
	}
	mark := OutcomeStyle(outcome).Render(OutcomeIcon(outcome))

	_, _ = fmt.Fprintf(p.w, "%s [%s] %3d%% %s %s %s\n",
		StyleBold.Render(p.group), p.bar.Render(percent), int(percent*100),
		FormatStepCounter(p.done, p.total), mark, t.Name())
}
