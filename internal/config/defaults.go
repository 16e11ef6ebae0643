package config

import "github.com/mrz1836/clickplan/internal/constants"

// DefaultJitterMargin is the default inset of jittered clicks, in pixels.
const DefaultJitterMargin = 2

// DefaultConfig returns a new Config with the built-in default values.
// These defaults are the base layer that config files, environment
// variables, and CLI flags override.
func DefaultConfig() *Config {
	return &Config{
		Run: RunConfig{
			Delay:         constants.DefaultPacingDelay,
			RandomOrder:   false,
			IgnoreFailure: false,
			Seed:          0,

			// Confirm: a run moves the real pointer, so ask first.
			Confirm: true,
		},
		Match: MatchConfig{
			Ratio:       constants.DefaultMatchRatio,
			Consistency: constants.DefaultMatchConsistency,
		},
		Task: TaskConfig{
			Button:        constants.DefaultButton,
			Retries:       constants.DefaultTaskRetries,
			RetryInterval: constants.DefaultRetryInterval,
			Jitter:        false,
			JitterMargin:  DefaultJitterMargin,
		},
		Log: LogConfig{
			MaxSizeMB:  constants.LogMaxSizeMB,
			MaxBackups: constants.LogMaxBackups,
			MaxAgeDays: constants.LogMaxAgeDays,
			Compress:   constants.LogCompress,
		},
	}
}
