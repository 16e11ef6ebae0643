package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mrz1836/clickplan/internal/constants"
	"github.com/mrz1836/clickplan/internal/task"
)

// TaskReport is one task's line in a group report.
type TaskReport struct {
	Name       string                `json:"name"`
	Outcome    constants.TaskOutcome `json:"outcome"`
	DurationMS int64                 `json:"duration_ms,omitempty"`
	Error      string                `json:"error,omitempty"`
}

// GroupReport summarizes one group run.
type GroupReport struct {
	Name        string              `json:"name"`
	Status      constants.RunStatus `json:"status"`
	Policy      string              `json:"policy"`
	RandomOrder bool                `json:"random_order"`
	DelayMS     int64               `json:"delay_ms"`
	DurationMS  int64               `json:"duration_ms"`
	Attempted   []string            `json:"attempted,omitempty"`
	Failed      []string            `json:"failed"`
	Unenforced  []string            `json:"unenforced"`
	Tasks       []TaskReport        `json:"tasks"`
	Error       string              `json:"error,omitempty"`

	duration time.Duration
	delay    time.Duration
}

// RunReport summarizes an invocation that ran one or more groups.
type RunReport struct {
	RunID      string              `json:"run_id"`
	Plan       string              `json:"plan"`
	Seed       uint64              `json:"seed"`
	Status     constants.RunStatus `json:"status"`
	DurationMS int64               `json:"duration_ms"`
	Groups     []GroupReport       `json:"groups"`

	duration time.Duration
}

// NewGroupReport builds the report of one run of a group whose tasks, in
// construction order, are tasks. Tasks are listed in that order whatever
// order the run used.
func NewGroupReport(name string, tasks []task.Task, opts task.RunOptions, res task.Result, took time.Duration) GroupReport {
	failed := res.FailedTasks()
	unenforced := res.UnenforcedTasks()

	outcome := make(map[task.Task]constants.TaskOutcome, len(failed)+len(unenforced))
	for _, t := range failed {
		outcome[t] = constants.TaskFailed
	}
	for _, t := range unenforced {
		outcome[t] = constants.TaskNotRun
	}

	r := GroupReport{
		Name:        name,
		Status:      groupStatus(res),
		Policy:      opts.Policy(),
		RandomOrder: opts.RandomOrder,
		DelayMS:     max(opts.Delay, 0).Milliseconds(),
		DurationMS:  took.Milliseconds(),
		Failed:      task.Names(failed),
		Unenforced:  task.Names(unenforced),
		Tasks:       make([]TaskReport, len(tasks)),
		duration:    took,
		delay:       max(opts.Delay, 0),
	}
	if err := res.Err(); err != nil {
		r.Error = err.Error()
	}

	for i, t := range tasks {
		tr := TaskReport{Name: t.Name(), Outcome: constants.TaskSucceeded}
		if o, ok := outcome[t]; ok {
			tr.Outcome = o
		}
		if tr.Outcome == constants.TaskFailed {
			tr.Error = t.LastError()
		}
		r.Tasks[i] = tr
	}
	return r
}

func groupStatus(res task.Result) constants.RunStatus {
	switch {
	case res.Canceled():
		return constants.RunStatusCanceled
	case res.Success():
		return constants.RunStatusSucceeded
	default:
		return constants.RunStatusFailed
	}
}

// NewRunReport starts an empty report.
func NewRunReport(runID, plan string, seed uint64) *RunReport {
	return &RunReport{RunID: runID, Plan: plan, Seed: seed, Status: constants.RunStatusSucceeded}
}

// Add appends a group report and updates the overall status: any canceled
// group makes the run canceled, otherwise any failed group makes it failed.
func (r *RunReport) Add(g GroupReport) {
	r.Groups = append(r.Groups, g)
	switch {
	case g.Status == constants.RunStatusCanceled:
		r.Status = constants.RunStatusCanceled
	case g.Status == constants.RunStatusFailed && r.Status != constants.RunStatusCanceled:
		r.Status = constants.RunStatusFailed
	}
}

// Finish records the total wall time.
func (r *RunReport) Finish(took time.Duration) {
	r.duration = took
	r.DurationMS = took.Milliseconds()
}

// Succeeded reports whether every group succeeded.
func (r *RunReport) Succeeded() bool {
	return r.Status == constants.RunStatusSucceeded
}

// OutcomeLabel returns the display label of an outcome, e.g. "Not Run".
func OutcomeLabel(o constants.TaskOutcome) string {
	return cases.Title(language.English).String(strings.ReplaceAll(string(o), "_", " "))
}

// StatusLabel returns the display label of a run status.
func StatusLabel(s constants.RunStatus) string {
	return cases.Title(language.English).String(string(s))
}

// RenderReport writes r for people.
func RenderReport(w io.Writer, r *RunReport) {
	CheckNoColor()
	styles := NewOutputStyles()
	table := NewTableStyles()

	header := StyleBold.Render("Plan "+r.Plan) + styles.Dim.Render(fmt.Sprintf("  %s  seed %d", r.RunID, r.Seed))
	_, _ = fmt.Fprintln(w, header)

	for _, g := range r.Groups {
		_, _ = fmt.Fprintln(w)
		renderGroup(w, &g, styles, table)
	}

	_, _ = fmt.Fprintln(w)
	summary := fmt.Sprintf("%s in %s", StatusLabel(r.Status), FormatDuration(r.duration))
	switch r.Status {
	case constants.RunStatusSucceeded:
		_, _ = fmt.Fprintln(w, styles.Success.Render("✓ "+summary))
	case constants.RunStatusCanceled:
		_, _ = fmt.Fprintln(w, styles.Warning.Render("⚠ "+summary))
	default:
		_, _ = fmt.Fprintln(w, styles.Error.Render("✗ "+summary))
	}
}

func renderGroup(w io.Writer, g *GroupReport, styles *OutputStyles, table *TableStyles) {
	order := "in order"
	if g.RandomOrder {
		order = "random order"
	}
	settings := fmt.Sprintf("%s, %s", g.Policy, order)
	if g.delay > 0 {
		settings += ", delay " + FormatDuration(g.delay)
	}

	title := StyleBold.Render(g.Name) + "  " + statusStyle(g.Status, styles).Render(StatusLabel(g.Status))
	_, _ = fmt.Fprintf(w, "%s  %s\n", title, styles.Dim.Render(settings+"  "+FormatDuration(g.duration)))
	if g.Error != "" {
		_, _ = fmt.Fprintln(w, styles.Dim.Render("  "+g.Error))
	}
	if len(g.Tasks) == 0 {
		_, _ = fmt.Fprintln(w, styles.Dim.Render("  (no tasks)"))
		return
	}

	headers := []string{"TASK", "OUTCOME", "DETAIL"}
	rows := make([][]string, len(g.Tasks))
	for i, t := range g.Tasks {
		rows[i] = []string{t.Name, OutcomeIcon(t.Outcome) + " " + OutcomeLabel(t.Outcome), t.Error}
	}
	widths := columnWidths(headers, rows)

	_, _ = fmt.Fprintf(w, "  %s  %s  %s\n",
		table.Header.Render(padRight(headers[0], widths[0])),
		table.Header.Render(padRight(headers[1], widths[1])),
		table.Header.Render(headers[2]))
	for i, t := range g.Tasks {
		line := fmt.Sprintf("  %s  %s",
			table.Cell.Render(padRight(rows[i][0], widths[0])),
			OutcomeStyle(t.Outcome).Render(padRight(rows[i][1], widths[1])))
		if t.Error != "" {
			line += "  " + table.Dim.Render(t.Error)
		}
		_, _ = fmt.Fprintln(w, line)
	}
}

func statusStyle(s constants.RunStatus, styles *OutputStyles) lipgloss.Style {
	switch s {
	case constants.RunStatusSucceeded:
		return styles.Success
	case constants.RunStatusCanceled:
		return styles.Warning
	default:
		return styles.Error
	}
}
