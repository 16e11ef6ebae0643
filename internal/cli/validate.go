package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/mrz1836/clickplan/internal/actions"
	"github.com/mrz1836/clickplan/internal/config"
	"github.com/mrz1836/clickplan/internal/constants"
	"github.com/mrz1836/clickplan/internal/errors"
	"github.com/mrz1836/clickplan/internal/plan"
	"github.com/mrz1836/clickplan/internal/tui"
)

// validateReport is the JSON form of the validate command's result.
type validateReport struct {
	Plan        string          `json:"plan"`
	Description string          `json:"description,omitempty"`
	Path        string          `json:"path"`
	Valid       bool            `json:"valid"`
	Problems    []string        `json:"problems,omitempty"`
	Groups      []validateGroup `json:"groups,omitempty"`
}

type validateGroup struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Tasks       []validateTask `json:"tasks"`
}

type validateTask struct {
	Name      string   `json:"name"`
	Action    string   `json:"action"`
	Templates []string `json:"templates,omitempty"`
	Window    string   `json:"window,omitempty"`
	Duration  string   `json:"duration,omitempty"`
}

// AddValidateCommand adds the validate command to the root command.
func AddValidateCommand(root *cobra.Command) {
	root.AddCommand(&cobra.Command{
		Use:   "validate <plan>",
		Short: "Check a plan without running it",
		Long: `Parse a plan, apply the configuration, and list every problem found:
missing names, bad durations, out of range thresholds, missing template files.
Nothing is captured or clicked.

Examples:
  clickplan validate plan.yaml
  clickplan validate plan.json --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return validatePlan(cmd.Context(), cmd.Flag("output").Value.String(), cmd.OutOrStdout(), args[0])
		},
	})
}

func validatePlan(ctx context.Context, format string, w io.Writer, path string) error {
	out := tui.NewOutput(w, format)

	cfg, err := config.Load(ctx)
	if err != nil {
		return reportError(format, out, err)
	}

	p, err := plan.Load(path)
	if err != nil {
		return reportError(format, out, errors.NewExitCode2Error(err))
	}

	report := validateReport{Plan: planName(p, path), Description: p.Description, Path: p.Path()}
	report.Problems = p.Problems(cfg)
	report.Valid = len(report.Problems) == 0
	if report.Valid {
		report.Groups = describeGroups(p)
	}

	if format == constants.OutputFormatJSON {
		if err := out.JSON(report); err != nil {
			return err
		}
		if !report.Valid {
			return errors.NewExitCode2Error(fmt.Errorf("%w: %w", errors.ErrJSONErrorOutput, errors.ErrPlanInvalid))
		}
		return nil
	}

	if !report.Valid {
		for _, problem := range report.Problems {
			out.Warning(problem)
		}
		return errors.NewExitCode2Error(errors.Wrapf(errors.ErrPlanInvalid,
			"plan %s has %d problem(s)", report.Plan, len(report.Problems)))
	}

	renderDescriptions(w, &report)

	var rows [][]string
	tasks := 0
	for _, g := range report.Groups {
		for _, t := range g.Tasks {
			target := strings.Join(t.Templates, ", ")
			if t.Duration != "" {
				target = t.Duration
			}
			rows = append(rows, []string{g.Name, t.Name, t.Action, tui.Truncate(target, 48), t.Window})
			tasks++
		}
	}
	out.Table([]string{"GROUP", "TASK", "ACTION", "TARGET", "WINDOW"}, rows)
	out.Success(fmt.Sprintf("Plan %s is valid: %d group(s), %d task(s)", report.Plan, len(report.Groups), tasks))
	return nil
}

// describeGroups lists the groups and tasks of a valid plan.
func describeGroups(p *plan.Plan) []validateGroup {
	groups := make([]validateGroup, 0, len(p.Groups))
	for _, g := range p.Groups {
		vg := validateGroup{Name: g.Name, Description: g.Description, Tasks: make([]validateTask, 0, len(g.Tasks))}
		for _, t := range g.Tasks {
			vt := validateTask{Name: t.Name, Templates: t.Templates}
			if t.IsSleep() {
				vt.Action = plan.ActionSleep
				vt.Duration = t.Duration
			} else if a, err := actions.ParseAction(t.Action); err == nil {
				vt.Action = string(a)
			}
			vt.Window = describeWindow(t.Window)
			vg.Tasks = append(vg.Tasks, vt)
		}
		groups = append(groups, vg)
	}
	return groups
}

// renderDescriptions writes the plan and group descriptions as markdown.
func renderDescriptions(w io.Writer, report *validateReport) {
	titles := []string{report.Plan}
	descriptions := []string{report.Description}
	for _, g := range report.Groups {
		titles = append(titles, g.Name)
		descriptions = append(descriptions, g.Description)
	}

	var md *glamour.TermRenderer
	for i, description := range descriptions {
		if strings.TrimSpace(description) == "" {
			continue
		}
		if md == nil {
			tui.CheckNoColor()
			md = newMarkdownRenderer()
		}
		_, _ = fmt.Fprintln(w, tui.StyleBold.Render(titles[i]))
		renderDescription(w, md, description)
	}
}

func describeWindow(w *plan.WindowSpec) string {
	switch {
	case w == nil:
		return "screen"
	case w.Process != "":
		return w.Process
	default:
		return "pid " + strconv.Itoa(w.PID)
	}
}
