package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/mrz1836/clickplan/internal/errors"
)

// formRunner matches huh.Form's Run method.
type formRunner interface {
	Run() error
}

// createRunConfirmForm builds the confirmation form. Tests replace it.
//
//nolint:gochecknoglobals // Test injection point
var createRunConfirmForm = defaultCreateRunConfirmForm

// terminalCheck reports whether stdin is a terminal. Tests replace it.
//
//nolint:gochecknoglobals // Test injection point
var terminalCheck = isTerminal

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func defaultCreateRunConfirmForm(planName string, groups []string, confirm *bool) formRunner {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Run plan '%s'?", planName)).
				Description(fmt.Sprintf("Groups: %s\nclickplan will move and click the pointer until the run ends.",
					strings.Join(groups, ", "))).
				Affirmative("Yes, run").
				Negative("No, cancel").
				Value(confirm),
		),
	)
}

// confirmRun asks before a run takes over the pointer. Without a terminal
// it fails with ErrNonInteractiveMode.
func confirmRun(planName string, groups []string) (bool, error) {
	if !terminalCheck() {
		return false, errors.NewExitCode2Error(fmt.Errorf("cannot confirm run: %w", errors.ErrNonInteractiveMode))
	}

	var confirm bool
	if err := createRunConfirmForm(planName, groups, &confirm).Run(); err != nil {
		return false, fmt.Errorf("failed to get confirmation: %w", err)
	}
	return confirm, nil
}
