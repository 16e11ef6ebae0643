// Package config provides configuration management for clickplan with layered precedence.
//
// Configuration sources are loaded in the following order (highest precedence first):
//  1. CLI flags (passed via LoadWithOverrides)
//  2. Environment variables (CLICKPLAN_* prefix)
//  3. Project config (.clickplan/config.yaml)
//  4. Global config (~/.clickplan/config.yaml, or $CLICKPLAN_HOME/config.yaml)
//  5. Built-in defaults
//
// Each higher level completely overrides the lower level for the same key.
// Plan files can override the run, match and task sections per group or task.
//
// IMPORTANT: This package may import internal/constants and internal/errors,
// but MUST NOT import internal/domain or other internal packages.
package config

import "time"

// Config is the root configuration structure for clickplan.
type Config struct {
	// Run contains the default policy of group runs.
	Run RunConfig `yaml:"run" mapstructure:"run" json:"run"`

	// Match contains the arguments forwarded to the visual matcher.
	Match MatchConfig `yaml:"match" mapstructure:"match" json:"match"`

	// Task contains defaults for click tasks.
	Task TaskConfig `yaml:"task" mapstructure:"task" json:"task"`

	// Log contains settings for the rotating log file.
	Log LogConfig `yaml:"log" mapstructure:"log" json:"log"`
}

// RunConfig controls how a group runs.
type RunConfig struct {
	// Delay is the pacing delay inserted between consecutive tasks.
	// Default: 0 (no delay)
	Delay time.Duration `yaml:"delay" mapstructure:"delay" json:"delay"`

	// RandomOrder runs tasks in a fresh random order on every run.
	// Default: false
	RandomOrder bool `yaml:"random_order" mapstructure:"random_order" json:"random_order"`

	// IgnoreFailure attempts every task instead of stopping at the first failure.
	// Default: false (fail fast)
	IgnoreFailure bool `yaml:"ignore_failure" mapstructure:"ignore_failure" json:"ignore_failure"`

	// Seed seeds the random source for random orders and click jitter.
	// Zero picks a random seed per invocation.
	Seed uint64 `yaml:"seed" mapstructure:"seed" json:"seed"`

	// Confirm asks before a run takes over the pointer.
	// Default: true
	Confirm bool `yaml:"confirm" mapstructure:"confirm" json:"confirm"`
}

// MatchConfig holds the matcher thresholds.
type MatchConfig struct {
	// Ratio is the match strictness threshold, in [0, 1].
	// Default: 0.2
	Ratio float64 `yaml:"ratio" mapstructure:"ratio" json:"ratio"`

	// Consistency is the geometric-consistency threshold in pixels.
	// Default: 2
	Consistency float64 `yaml:"consistency" mapstructure:"consistency" json:"consistency"`
}

// TaskConfig holds click task defaults.
type TaskConfig struct {
	// Button is the pointer button: left, right or middle.
	// Default: "left"
	Button string `yaml:"button" mapstructure:"button" json:"button"`

	// Retries is the number of extra searches after a miss.
	// Default: 0
	Retries int `yaml:"retries" mapstructure:"retries" json:"retries"`

	// RetryInterval is the wait between searches.
	// Default: 500ms
	RetryInterval time.Duration `yaml:"retry_interval" mapstructure:"retry_interval" json:"retry_interval"`

	// Jitter clicks a random point inside the matched template instead of its centre.
	// Default: false
	Jitter bool `yaml:"jitter" mapstructure:"jitter" json:"jitter"`

	// JitterMargin keeps jittered clicks this many pixels inside the template edges.
	// Default: 2
	JitterMargin int `yaml:"jitter_margin" mapstructure:"jitter_margin" json:"jitter_margin"`
}

// LogConfig holds log file rotation settings.
type LogConfig struct {
	// MaxSizeMB is the size at which the log file is rotated.
	MaxSizeMB int `yaml:"max_size_mb" mapstructure:"max_size_mb" json:"max_size_mb"`

	// MaxBackups is the number of rotated files kept.
	MaxBackups int `yaml:"max_backups" mapstructure:"max_backups" json:"max_backups"`

	// MaxAgeDays is the number of days rotated files are kept.
	MaxAgeDays int `yaml:"max_age_days" mapstructure:"max_age_days" json:"max_age_days"`

	// Compress gzips rotated files.
	Compress bool `yaml:"compress" mapstructure:"compress" json:"compress"`
}
