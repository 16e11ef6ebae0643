package logging

import (
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RunIDField is the field name RunHook writes.
const RunIDField = "run_id"

// NewRunID returns a short unique identifier for one invocation of a plan,
// e.g. "run-1a2b3c4d".
func NewRunID() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "run-" + id[:8]
}

// RunHook stamps every event with the id of the current run so the lines of
// one run can be grepped out of the shared log file.
type RunHook struct {
	RunID string
}

// Run implements zerolog.Hook.
func (h RunHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	if h.RunID != "" {
		e.Str(RunIDField, h.RunID)
	}
}
