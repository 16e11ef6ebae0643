// Package logging provides the zerolog plumbing shared by clickplan commands:
// a size-rotated log file and a hook that stamps every event of a run with
// its run id.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/mrz1836/clickplan/internal/constants"
)

// Rotation holds the rotation settings of the log file.
type Rotation struct {
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// DefaultRotation returns the built-in rotation settings.
func DefaultRotation() Rotation {
	return Rotation{
		MaxSizeMB:  constants.LogMaxSizeMB,
		MaxBackups: constants.LogMaxBackups,
		MaxAgeDays: constants.LogMaxAgeDays,
		Compress:   constants.LogCompress,
	}
}

// FilePath returns the path of the log file inside dir.
func FilePath(dir string) string {
	return filepath.Join(dir, constants.CLILogFileName)
}

// NewRotatingWriter creates dir if needed and returns a writer appending to
// the log file inside it, rotating by size. Zero settings fall back to the
// defaults.
func NewRotatingWriter(dir string, r Rotation) (io.WriteCloser, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	d := DefaultRotation()
	if r.MaxSizeMB == 0 {
		r.MaxSizeMB = d.MaxSizeMB
	}
	if r.MaxBackups == 0 {
		r.MaxBackups = d.MaxBackups
	}
	if r.MaxAgeDays == 0 {
		r.MaxAgeDays = d.MaxAgeDays
	}

	return &lumberjack.Logger{
		Filename:   FilePath(dir),
		MaxSize:    r.MaxSizeMB,
		MaxBackups: r.MaxBackups,
		MaxAge:     r.MaxAgeDays,
		Compress:   r.Compress,
	}, nil
}
