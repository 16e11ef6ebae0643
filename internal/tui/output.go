package tui

import (
	"io"

	"github.com/mrz1836/clickplan/internal/constants"
)

// Output writes user-facing messages in one format.
type Output interface {
	Success(msg string)
	Error(err error)
	Warning(msg string)
	Info(msg string)

	// Table writes rows under headers.
	Table(headers []string, rows [][]string)

	// JSON writes v as a JSON document.
	JSON(v any) error
}

// NewOutput returns a JSONOutput for the json format and a TTYOutput
// otherwise.
func NewOutput(w io.Writer, format string) Output {
	if format == constants.OutputFormatJSON {
		return NewJSONOutput(w)
	}
	return NewTTYOutput(w)
}
