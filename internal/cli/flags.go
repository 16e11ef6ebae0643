package cli

import (
	stderrors "errors"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mrz1836/clickplan/internal/constants"
	"github.com/mrz1836/clickplan/internal/errors"
)

// Exit codes for the CLI.
const (
	ExitSuccess = 0

	// ExitError covers failed runs and unexpected errors.
	ExitError = 1

	// ExitInvalidInput covers bad flags, missing or invalid plans, and
	// unknown groups.
	ExitInvalidInput = 2
)

// GlobalFlags holds flags available to all commands.
type GlobalFlags struct {
	Output  string
	Verbose bool
	Quiet   bool
}

// AddGlobalFlags adds the persistent flags shared by every subcommand.
func AddGlobalFlags(cmd *cobra.Command, flags *GlobalFlags) {
	cmd.PersistentFlags().StringVarP(&flags.Output, "output", "o", constants.OutputFormatText, "output format (text|json)")
	cmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "enable debug logging")
	cmd.PersistentFlags().BoolVarP(&flags.Quiet, "quiet", "q", false, "log warnings and errors only")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
}

// BindGlobalFlags binds the global flags to v and enables CLICKPLAN_*
// environment variables for them.
func BindGlobalFlags(v *viper.Viper, cmd *cobra.Command) error {
	rootFlags := cmd.Root().PersistentFlags()
	for _, name := range []string{"output", "verbose", "quiet"} {
		if err := v.BindPFlag(name, rootFlags.Lookup(name)); err != nil {
			return err
		}
	}
	v.SetEnvPrefix(constants.EnvPrefix)
	v.AutomaticEnv()
	return nil
}

// ValidOutputFormats returns the accepted --output values.
func ValidOutputFormats() []string {
	return []string{constants.OutputFormatText, constants.OutputFormatJSON}
}

// IsValidOutputFormat reports whether format is accepted by --output.
func IsValidOutputFormat(format string) bool {
	return slices.Contains(ValidOutputFormats(), format)
}

// ExitCodeForError maps an error returned by Execute to a process exit code.
func ExitCodeForError(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.IsExitCode2Error(err):
		return ExitInvalidInput
	case stderrors.Is(err, errors.ErrInvalidOutputFormat):
		return ExitInvalidInput
	case isInvalidInputError(err.Error()):
		return ExitInvalidInput
	default:
		return ExitError
	}
}

// isInvalidInputError recognizes cobra's flag and argument errors.
func isInvalidInputError(msg string) bool {
	patterns := []string{
		"unknown flag",
		"unknown shorthand flag",
		"flag needs an argument",
		"invalid argument",
		"if any flags in the group",
		"required flag",
		"unknown command",
		"accepts 1 arg(s)",
	}
	for _, p := range patterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}
