// Package tui renders clickplan output for terminals and for machines.
//
// Colors use lipgloss AdaptiveColor so they read on light and dark
// terminals. Call CheckNoColor before styled output to honor NO_COLOR and
// TERM=dumb.
package tui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/mrz1836/clickplan/internal/constants"
)

//nolint:gochecknoglobals // package-level style palette
var (
	// ColorPrimary is blue, used for headings and informational text.
	ColorPrimary = lipgloss.AdaptiveColor{Light: "#0087AF", Dark: "#00D7FF"}

	// ColorSuccess is green, used for succeeded tasks and groups.
	ColorSuccess = lipgloss.AdaptiveColor{Light: "#008700", Dark: "#00FF87"}

	// ColorWarning is yellow, used for tasks that never ran.
	ColorWarning = lipgloss.AdaptiveColor{Light: "#AF8700", Dark: "#FFD700"}

	// ColorError is red, used for failed tasks and groups.
	ColorError = lipgloss.AdaptiveColor{Light: "#AF0000", Dark: "#FF5F5F"}

	// ColorMuted is gray, used for secondary text.
	ColorMuted = lipgloss.AdaptiveColor{Light: "#585858", Dark: "#6C6C6C"}

	// StyleBold applies bold formatting.
	StyleBold = lipgloss.NewStyle().Bold(true)

	// StyleDim applies faint formatting.
	StyleDim = lipgloss.NewStyle().Faint(true)
)

// TableStyles holds lipgloss styles for table rendering.
type TableStyles struct {
	Header lipgloss.Style
	Cell   lipgloss.Style
	Dim    lipgloss.Style
}

// NewTableStyles creates styles for table rendering.
func NewTableStyles() *TableStyles {
	return &TableStyles{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#333333", Dark: "#DDDDDD"}),
		Cell: lipgloss.NewStyle(),
		Dim: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#888888"}),
	}
}

// OutputStyles holds common output styles.
type OutputStyles struct {
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style
	Dim     lipgloss.Style
}

// NewOutputStyles creates common output styles.
func NewOutputStyles() *OutputStyles {
	return &OutputStyles{
		Success: lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true),
		Error:   lipgloss.NewStyle().Foreground(ColorError).Bold(true),
		Warning: lipgloss.NewStyle().Foreground(ColorWarning),
		Info:    lipgloss.NewStyle().Foreground(ColorPrimary),
		Dim:     lipgloss.NewStyle().Foreground(ColorMuted),
	}
}

// CheckNoColor drops to the ASCII color profile when color is unwanted.
func CheckNoColor() {
	if !HasColorSupport() {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// HasColorSupport returns false when NO_COLOR is set (to any value,
// including empty) or TERM is dumb. See https://no-color.org/.
func HasColorSupport() bool {
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		return false
	}
	return os.Getenv("TERM") != "dumb"
}

// OutcomeIcon returns the status glyph of a task or group outcome.
func OutcomeIcon(o constants.TaskOutcome) string {
	switch o {
	case constants.TaskSucceeded:
		return "✓"
	case constants.TaskFailed:
		return "✗"
	case constants.TaskNotRun:
		return "○"
	default:
		return "?"
	}
}

// OutcomeStyle returns the color style of an outcome.
func OutcomeStyle(o constants.TaskOutcome) lipgloss.Style {
	switch o {
	case constants.TaskSucceeded:
		return lipgloss.NewStyle().Foreground(ColorSuccess)
	case constants.TaskFailed:
		return lipgloss.NewStyle().Foreground(ColorError)
	case constants.TaskNotRun:
		return lipgloss.NewStyle().Foreground(ColorWarning)
	default:
		return lipgloss.NewStyle()
	}
}
