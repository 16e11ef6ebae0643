// Package cli provides the command-line interface for clickplan.
package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mrz1836/clickplan/internal/config"
	"github.com/mrz1836/clickplan/internal/errors"
	"github.com/mrz1836/clickplan/internal/logging"
	"github.com/mrz1836/clickplan/internal/tui"
)

// BuildInfo contains version information set at build time via ldflags.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// globalLogger is set in PersistentPreRunE and read through GetLogger.
var (
	globalLogger   zerolog.Logger //nolint:gochecknoglobals // CLI logger requires global access
	globalLoggerMu sync.RWMutex   //nolint:gochecknoglobals // Protects globalLogger
)

// GetLogger returns the logger initialized by the root command. Before
// PersistentPreRunE has run it returns a logger that discards everything.
func GetLogger() zerolog.Logger {
	globalLoggerMu.RLock()
	defer globalLoggerMu.RUnlock()
	return globalLogger
}

func setLogger(l zerolog.Logger) {
	globalLoggerMu.Lock()
	globalLogger = l
	globalLoggerMu.Unlock()
}

func newRootCmd(flags *GlobalFlags, info BuildInfo) *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "clickplan",
		Short: "clickplan - run scripted clicks against what is on screen",
		Long: `clickplan runs plans of visual click tasks. Each task finds a target on the
screen (or inside one window) by template image and clicks it. Tasks are
grouped; a group runs its tasks in order or in random order, stopping at the
first failure or attempting every task, with an optional delay in between.

Examples:
  clickplan validate plan.yaml
  clickplan run plan.yaml --group login --delay 500ms
  clickplan run plan.yaml --random --ignore-failure --yes --output json`,
		Version: formatVersion(info),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := BindGlobalFlags(v, cmd); err != nil {
				return fmt.Errorf("failed to bind flags: %w", err)
			}
			if !IsValidOutputFormat(flags.Output) {
				return errors.NewExitCode2Error(fmt.Errorf("%w: %q must be one of %v",
					errors.ErrInvalidOutputFormat, flags.Output, ValidOutputFormats()))
			}

			rotation := logging.DefaultRotation()
			if cfg, err := config.Load(cmd.Context()); err == nil {
				rotation = logging.Rotation{
					MaxSizeMB:  cfg.Log.MaxSizeMB,
					MaxBackups: cfg.Log.MaxBackups,
					MaxAgeDays: cfg.Log.MaxAgeDays,
					Compress:   cfg.Log.Compress,
				}
			}
			setLogger(InitLogger(flags.Verbose, flags.Quiet, rotation))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	AddGlobalFlags(cmd, flags)

	AddRunCommand(cmd)
	AddValidateCommand(cmd)
	AddConfigCommand(cmd)

	return cmd
}

func formatVersion(info BuildInfo) string {
	if info.Version == "" {
		info.Version = "dev"
	}
	if info.Commit == "" {
		info.Commit = "none"
	}
	if info.Date == "" {
		info.Date = "unknown"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", info.Version, info.Commit, info.Date)
}

// Execute runs the root command with the provided context and build info.
func Execute(ctx context.Context, info BuildInfo) error {
	flags := &GlobalFlags{}
	//nolint:contextcheck // cobra passes ctx through cmd.Context()
	cmd := newRootCmd(flags, info)
	defer CloseLogFile()

	err := cmd.ExecuteContext(ctx)
	if err != nil && !stderrors.Is(err, errors.ErrJSONErrorOutput) {
		printError(cmd.ErrOrStderr(), err)
	}
	return err
}

// printError writes err to w with a suggested fix when one is known.
func printError(w io.Writer, err error) {
	tui.NewTTYOutput(w).Error(err)
}
