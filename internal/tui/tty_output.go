package tui

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/mrz1836/clickplan/internal/errors"
)

// TTYOutput writes styled output for people.
type TTYOutput struct {
	w      io.Writer
	styles *OutputStyles
	table  *TableStyles
}

// NewTTYOutput creates a TTYOutput. It honors NO_COLOR.
func NewTTYOutput(w io.Writer) *TTYOutput {
	CheckNoColor()
	return &TTYOutput{
		w:      w,
		styles: NewOutputStyles(),
		table:  NewTableStyles(),
	}
}

// Success writes a green ✓ line.
func (o *TTYOutput) Success(msg string) {
	_, _ = fmt.Fprintln(o.w, o.styles.Success.Render("✓ "+msg))
}

// Error writes a red ✗ line with the error, followed by the user-facing
// explanation and suggested action when the error has them.
func (o *TTYOutput) Error(err error) {
	_, _ = fmt.Fprintln(o.w, o.styles.Error.Render("✗ "+err.Error()))

	msg, action := errors.Actionable(err)
	if msg != "" && msg != err.Error() {
		_, _ = fmt.Fprintln(o.w, o.styles.Dim.Render("  "+msg))
	}
	if action != "" {
		_, _ = fmt.Fprintln(o.w, o.styles.Dim.Render("  ▸ Try: "+action))
	}
}

// Warning writes a yellow ⚠ line.
func (o *TTYOutput) Warning(msg string) {
	_, _ = fmt.Fprintln(o.w, o.styles.Warning.Render("⚠ "+msg))
}

// Info writes a blue ℹ line.
func (o *TTYOutput) Info(msg string) {
	_, _ = fmt.Fprintln(o.w, o.styles.Info.Render("ℹ "+msg))
}

// Table writes rows in columns aligned by display width.
func (o *TTYOutput) Table(headers []string, rows [][]string) {
	if len(headers) == 0 {
		return
	}

	widths := columnWidths(headers, rows)

	parts := make([]string, len(headers))
	for i, h := range headers {
		parts[i] = o.table.Header.Render(padRight(h, widths[i]))
	}
	_, _ = fmt.Fprintln(o.w, strings.TrimRight(strings.Join(parts, "  "), " "))

	for _, row := range rows {
		for i := range headers {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			parts[i] = o.table.Cell.Render(padRight(cell, widths[i]))
		}
		_, _ = fmt.Fprintln(o.w, strings.TrimRight(strings.Join(parts, "  "), " "))
	}
}

// JSON writes v as indented JSON.
func (o *TTYOutput) JSON(v any) error {
	encoder := json.NewEncoder(o.w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// columnWidths returns the widest display width of each column.
func columnWidths(headers []string, rows [][]string) []int {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], runewidth.StringWidth(cell))
			}
		}
	}
	return widths
}

// padRight pads s with spaces to width display columns.
func padRight(s string, width int) string {
	return runewidth.FillRight(s, width)
}

// Truncate shortens s to width display columns, ending in "…" when cut.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "…")
}
