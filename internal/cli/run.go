package cli

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mrz1836/clickplan/internal/config"
	"github.com/mrz1836/clickplan/internal/constants"
	"github.com/mrz1836/clickplan/internal/desktop"
	"github.com/mrz1836/clickplan/internal/errors"
	"github.com/mrz1836/clickplan/internal/logging"
	"github.com/mrz1836/clickplan/internal/plan"
	"github.com/mrz1836/clickplan/internal/signal"
	"github.com/mrz1836/clickplan/internal/task"
	"github.com/mrz1836/clickplan/internal/tui"
	"github.com/mrz1836/clickplan/internal/vision"
)

// runFlags holds the flags of the run command. Run settings only apply
// when set on the command line; otherwise the plan and config decide.
type runFlags struct {
	groups        []string
	delay         time.Duration
	random        bool
	ignoreFailure bool
	seed          uint64
	yes           bool
}

// newRunEnv builds the desktop collaborators of a run. Tests replace it.
//
//nolint:gochecknoglobals // Test injection point
var newRunEnv = defaultRunEnv

func defaultRunEnv(logger zerolog.Logger) plan.Env {
	d := desktop.New(logger)
	return plan.Env{
		Services: d.Services(vision.TemplateMatcher{}),
		Windows:  d,
		Logger:   logger,
	}
}

// AddRunCommand adds the run command to the root command.
func AddRunCommand(root *cobra.Command) {
	root.AddCommand(newRunCmd())
}

func newRunCmd() *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run <plan>",
		Short: "Run the groups of a plan",
		Long: `Run every group of a plan, or only the groups named with --group, in the
order given. Each group reports which tasks failed and which never ran.

The run moves the real pointer. Unless run.confirm is false in the config or
--yes is passed, clickplan asks before starting. In text mode a progress
line is printed as each task finishes. Press Ctrl+C to stop after the
current task; press it again to exit immediately. Groups not reached are
reported as canceled.

Examples:
  clickplan run plan.yaml
  clickplan run plan.yaml --group login --group checkout
  clickplan run plan.yaml --random --delay 750ms --seed 42
  clickplan run plan.yaml --ignore-failure --yes --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cmd.Context(), cmd, cmd.OutOrStdout(), args[0], flags)
		},
	}

	cmd.Flags().StringSliceVarP(&flags.groups, "group", "g", nil, "run only these groups, in this order (repeatable)")
	cmd.Flags().DurationVar(&flags.delay, "delay", 0, "pacing delay between tasks, e.g. 500ms")
	cmd.Flags().BoolVar(&flags.random, "random", false, "run the tasks of each group in random order")
	cmd.Flags().BoolVar(&flags.ignoreFailure, "ignore-failure", false, "attempt every task instead of stopping at the first failure")
	cmd.Flags().Uint64Var(&flags.seed, "seed", 0, "seed for random order and click jitter (0 picks one)")
	cmd.Flags().BoolVarP(&flags.yes, "yes", "y", false, "do not ask for confirmation")

	return cmd
}

func runPlan(ctx context.Context, cmd *cobra.Command, w io.Writer, path string, flags *runFlags) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	format := cmd.Flag("output").Value.String()
	out := tui.NewOutput(w, format)
	runID := logging.NewRunID()
	logger := GetLogger().Hook(logging.RunHook{RunID: runID})

	if err := validateRunFlags(cmd, flags); err != nil {
		return reportError(format, out, err)
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		return reportError(format, out, err)
	}

	p, err := loadPlan(path, cfg)
	if err != nil {
		return reportError(format, out, err)
	}
	if err = checkGroups(p, flags.groups); err != nil {
		return reportError(format, out, err)
	}

	seed := cfg.Run.Seed
	if cmd.Flags().Changed("seed") {
		seed = flags.seed
	}
	if seed == 0 {
		seed = rand.Uint64() //nolint:gosec // ordering, not security
	}

	selected := flags.groups
	if len(selected) == 0 {
		selected = p.GroupNames()
	}
	if cfg.Run.Confirm && !flags.yes {
		confirmed, err := confirmRun(planName(p, path), selected)
		if err != nil {
			return reportError(format, out, err)
		}
		if !confirmed {
			out.Info("Run canceled")
			return nil
		}
	}

	h := signal.NewHandler(ctx)
	defer h.Stop()
	ctx = h.Context()
	stopWatch := h.OnInterrupt(func(sig os.Signal) {
		logger.Warn().Stringer("signal", sig).Msg("interrupt received, stopping after the current task")
	})
	defer stopWatch()

	timer := newRunTimer()
	env := newRunEnv(logger)
	env.Seed = seed
	env.Metrics = timer

	rt, err := plan.Build(ctx, p, cfg, env)
	if err != nil {
		return reportError(format, out, err)
	}
	defer rt.Release()

	groups, err := rt.Select(flags.groups)
	if err != nil {
		return reportError(format, out, errors.NewExitCode2Error(err))
	}

	logger.Info().
		Str("plan", planName(p, path)).
		Strs("groups", selected).
		Uint64("seed", seed).
		Msg("run started")

	report := tui.NewRunReport(runID, planName(p, path), seed)
	start := time.Now()
	// Groups after a cancel still run: they return at once with every
	// task unenforced, so the report accounts for each selected group.
	for _, g := range groups {
		opts := applyRunFlags(cmd, g.Options, flags)
		if format != constants.OutputFormatJSON {
			opts.Hooks = tui.NewGroupProgress(w, g.Name(), g.Len()).Hooks(opts.Hooks)
		}
		res := g.Run(ctx, opts)
		gr := tui.NewGroupReport(g.Name(), g.Tasks(), opts, res, timer.groupDuration(g.Name()))
		timer.fill(g.Name(), &gr)
		report.Add(gr)
	}
	report.Finish(time.Since(start))

	logger.Info().
		Str("status", report.Status.String()).
		Int64("duration_ms", report.DurationMS).
		Msg("run finished")

	if format == constants.OutputFormatJSON {
		if err := out.JSON(report); err != nil {
			return err
		}
	} else {
		tui.RenderReport(w, report)
	}

	if report.Succeeded() {
		return nil
	}
	failure := errors.Wrapf(errors.ErrRunFailed, "run %s", report.Status)
	if format == constants.OutputFormatJSON {
		return fmt.Errorf("%w: %w", errors.ErrJSONErrorOutput, failure)
	}
	return failure
}

// validateRunFlags rejects flag values the config layer would reject.
func validateRunFlags(cmd *cobra.Command, flags *runFlags) error {
	if cmd.Flags().Changed("delay") && (flags.delay < 0 || flags.delay > constants.MaxPacingDelay) {
		return errors.NewExitCode2Error(errors.Wrapf(errors.ErrConfigInvalidRun,
			"--delay must be between 0 and %s, got %s", constants.MaxPacingDelay, flags.delay))
	}
	for _, g := range flags.groups {
		if strings.TrimSpace(g) == "" {
			return errors.NewExitCode2Error(errors.Wrap(errors.ErrInvalidArgument, "--group cannot be empty"))
		}
	}
	return nil
}

// applyRunFlags overrides a group's resolved options with the run flags
// that were set explicitly.
func applyRunFlags(cmd *cobra.Command, opts task.RunOptions, flags *runFlags) task.RunOptions {
	if cmd.Flags().Changed("delay") {
		opts.Delay = flags.delay
	}
	if cmd.Flags().Changed("random") {
		opts.RandomOrder = flags.random
	}
	if cmd.Flags().Changed("ignore-failure") {
		opts.IgnoreFailure = flags.ignoreFailure
	}
	return opts
}

// loadPlan loads and validates a plan. Plan problems are input errors.
func loadPlan(path string, cfg *config.Config) (*plan.Plan, error) {
	p, err := plan.Load(path)
	if err != nil {
		return nil, errors.NewExitCode2Error(err)
	}
	if err := p.Validate(cfg); err != nil {
		return nil, errors.NewExitCode2Error(err)
	}
	return p, nil
}

// checkGroups verifies every requested group exists before anything is built.
func checkGroups(p *plan.Plan, names []string) error {
	known := p.GroupNames()
	for _, name := range names {
		found := false
		for _, k := range known {
			if k == name {
				found = true
				break
			}
		}
		if !found {
			return errors.NewExitCode2Error(errors.Wrapf(errors.ErrGroupNotFound,
				"%q (plan has: %s)", name, strings.Join(known, ", ")))
		}
	}
	return nil
}

// planName returns the plan's name, or its file name when unnamed.
func planName(p *plan.Plan, path string) string {
	if p.Name != "" {
		return p.Name
	}
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// reportError writes err as JSON when the output format is json and marks
// it as already reported; text errors are printed by Execute.
func reportError(format string, out tui.Output, err error) error {
	if format != constants.OutputFormatJSON {
		return err
	}
	out.Error(err)
	reported := fmt.Errorf("%w: %w", errors.ErrJSONErrorOutput, err)
	if errors.IsExitCode2Error(err) {
		return errors.NewExitCode2Error(reported)
	}
	return reported
}
