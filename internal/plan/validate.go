package plan

import (
	stderrors "errors"
	"fmt"
	"os"
	"strings"

	"github.com/mrz1836/clickplan/internal/config"
	"github.com/mrz1836/clickplan/internal/errors"
)

// Problems lists every validation problem of the plan against cfg, in
// document order. A nil cfg means the built-in defaults. Template files are
// checked for existence only; decoding happens in Build.
func (p *Plan) Problems(cfg *config.Config) []string {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if len(p.Groups) == 0 {
		add("plan has no groups")
	}

	groups := make(map[string]bool, len(p.Groups))
	for gi := range p.Groups {
		g := &p.Groups[gi]
		where := fmt.Sprintf("groups[%d]", gi)
		if g.Name == "" {
			add("%s: name is required", where)
		} else {
			where = fmt.Sprintf("group %q", g.Name)
			if groups[g.Name] {
				add("%s: duplicate group name", where)
			}
			groups[g.Name] = true
		}
		if _, err := runOptions(cfg, g); err != nil {
			add("%s: %v", where, err)
		}

		tasks := make(map[string]bool, len(g.Tasks))
		for ti := range g.Tasks {
			t := &g.Tasks[ti]
			twhere := fmt.Sprintf("%s tasks[%d]", where, ti)
			if t.Name == "" {
				add("%s: name is required", twhere)
			} else {
				twhere = fmt.Sprintf("%s task %q", where, t.Name)
				if tasks[t.Name] {
					add("%s: duplicate task name", twhere)
				}
				tasks[t.Name] = true
			}
			for _, msg := range p.taskProblems(cfg, t) {
				add("%s: %s", twhere, msg)
			}
		}
	}
	return problems
}

func (p *Plan) taskProblems(cfg *config.Config, t *TaskSpec) []string {
	var problems []string

	if t.IsSleep() {
		if _, err := sleepDuration(t); err != nil {
			problems = append(problems, err.Error())
		}
		if len(t.Templates) > 0 || t.Window != nil {
			problems = append(problems, "sleep task cannot have templates or a window")
		}
		return problems
	}

	if t.Duration != "" {
		problems = append(problems, "duration only applies to sleep tasks")
	}
	if _, err := clickConfig(cfg, t); err != nil {
		problems = append(problems, stripSentinel(err))
	}
	if _, err := matchArgs(cfg, p, t); err != nil {
		problems = append(problems, stripSentinel(err))
	}

	if len(t.Templates) == 0 {
		problems = append(problems, "at least one template is required")
	}
	for _, path := range t.Templates {
		if strings.TrimSpace(path) == "" {
			problems = append(problems, "template path is empty")
			continue
		}
		if _, err := os.Stat(p.TemplatePath(path)); err != nil {
			problems = append(problems, fmt.Sprintf("template %s: %v", path, errUnwrapPath(err)))
		}
	}

	if w := t.Window; w != nil {
		switch {
		case w.PID < 0:
			problems = append(problems, fmt.Sprintf("window pid cannot be negative, got %d", w.PID))
		case w.PID != 0 && w.Process != "":
			problems = append(problems, "window takes a pid or a process name, not both")
		case w.PID == 0 && strings.TrimSpace(w.Process) == "":
			problems = append(problems, "window needs a pid or a process name")
		}
	}
	return problems
}

// Validate returns nil for a valid plan, or an ErrPlanInvalid error
// listing every problem.
func (p *Plan) Validate(cfg *config.Config) error {
	problems := p.Problems(cfg)
	if len(problems) == 0 {
		return nil
	}
	errs := make([]error, len(problems))
	for i, msg := range problems {
		errs[i] = stderrors.New(msg)
	}
	return fmt.Errorf("%w:\n%w", errors.ErrPlanInvalid, stderrors.Join(errs...))
}

// stripSentinel drops the trailing sentinel text of a wrapped config error,
// which the plan context makes redundant.
func stripSentinel(err error) string {
	msg := err.Error()
	if i := strings.LastIndex(msg, ": "); i > 0 {
		for _, s := range []error{
			errors.ErrConfigInvalidTask, errors.ErrConfigInvalidMatch, errors.ErrInvalidArgument,
		} {
			if stderrors.Is(err, s) && strings.HasSuffix(msg, s.Error()) {
				return msg[:i]
			}
		}
	}
	return msg
}

func errUnwrapPath(err error) error {
	var pe *os.PathError
	if stderrors.As(err, &pe) {
		return pe.Err
	}
	return err
}
