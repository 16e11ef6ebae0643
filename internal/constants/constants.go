// Package constants provides centralized constant values used throughout clickplan.
// This package is the single source of truth for all shared constants and MUST NOT
// import any other internal packages.
package constants

import "time"

// Directory names and paths used by clickplan for organizing data.
const (
	// AppHome is the hidden directory name where clickplan stores its data.
	// It is created in the user's home directory and, for project config,
	// in the working directory.
	AppHome = ".clickplan"

	// LogsDir is the directory name where log files are stored.
	LogsDir = "logs"

	// EnvPrefix is the prefix of environment variables read by the config layer.
	EnvPrefix = "CLICKPLAN"

	// HomeEnvVar overrides the location of AppHome.
	HomeEnvVar = "CLICKPLAN_HOME"
)

// Log rotation settings for the global CLI log file.
const (
	// LogMaxSizeMB is the size in megabytes at which the log file is rotated.
	LogMaxSizeMB = 10

	// LogMaxBackups is the number of rotated log files to keep.
	LogMaxBackups = 3

	// LogMaxAgeDays is the number of days to keep rotated log files.
	LogMaxAgeDays = 28

	// LogCompress controls gzip compression of rotated log files.
	LogCompress = true
)

// Match defaults forwarded to the visual matcher.
const (
	// DefaultMatchRatio is the default ratio threshold.
	DefaultMatchRatio = 0.2

	// DefaultMatchConsistency is the default geometric-consistency threshold.
	DefaultMatchConsistency = 2.0
)

// Task and run defaults.
const (
	// DefaultButton is the pointer button used when a task does not name one.
	DefaultButton = "left"

	// DefaultTaskRetries is the number of additional search attempts a click
	// task makes after its first miss.
	DefaultTaskRetries = 0

	// DefaultRetryInterval is the wait between search attempts of a click task.
	DefaultRetryInterval = 500 * time.Millisecond

	// DefaultPacingDelay is the wait inserted between tasks of a group run.
	DefaultPacingDelay = time.Duration(0)

	// MaxPacingDelay bounds the configurable pacing delay.
	MaxPacingDelay = 10 * time.Minute

	// MaxTaskRetries bounds the configurable retry count.
	MaxTaskRetries = 100
)
