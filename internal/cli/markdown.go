package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/muesli/termenv"

	"github.com/mrz1836/clickplan/internal/tui"
)

// descriptionWrap is the word wrap width of rendered descriptions.
const descriptionWrap = 80

// newMarkdownRenderer returns a renderer for plan and group descriptions,
// or nil if none can be built. NO_COLOR selects the plain style.
func newMarkdownRenderer() *glamour.TermRenderer {
	opts := []glamour.TermRendererOption{glamour.WithAutoStyle(), glamour.WithWordWrap(descriptionWrap)}
	if !tui.HasColorSupport() {
		opts = []glamour.TermRendererOption{
			glamour.WithStandardStyle(styles.NoTTYStyle),
			glamour.WithColorProfile(termenv.Ascii),
			glamour.WithWordWrap(descriptionWrap),
		}
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil
	}
	return r
}

// renderDescription writes a markdown description indented by two spaces.
func renderDescription(w io.Writer, r *glamour.TermRenderer, description string) {
	if r != nil {
		if rendered, err := r.Render(description); err == nil {
			for _, line := range strings.Split(strings.Trim(rendered, "\n"), "\n") {
				_, _ = fmt.Fprintf(w, "  %s\n", line)
			}
			return
		}
	}
	// Fallback to plain text
	_, _ = fmt.Fprintf(w, "  %s\n", description)
}
