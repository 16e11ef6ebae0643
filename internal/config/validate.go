package config

import (
	"strings"

	"github.com/mrz1836/clickplan/internal/constants"
	"github.com/mrz1836/clickplan/internal/errors"
)

// Validate checks the configuration for invalid or inconsistent values.
// It returns an error describing the first validation failure found.
//
// Validation rules:
//   - run.delay must be between 0 and 10 minutes
//   - match.ratio must be in [0, 1]; match.consistency must not be negative
//   - task.button must be left, right or middle
//   - task.retries must be between 0 and 100; task.retry_interval and task.jitter_margin must not be negative
//   - log sizes and counts must not be negative
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.ErrConfigNil
	}
	if err := validateRunConfig(&cfg.Run); err != nil {
		return err
	}
	if err := validateMatchConfig(&cfg.Match); err != nil {
		return err
	}
	if err := ValidateTaskConfig(&cfg.Task); err != nil {
		return err
	}
	return validateLogConfig(&cfg.Log)
}

func validateRunConfig(cfg *RunConfig) error {
	if cfg.Delay < 0 || cfg.Delay > constants.MaxPacingDelay {
		return errors.Wrapf(errors.ErrConfigInvalidRun,
			"run.delay must be between 0 and %s, got %s", constants.MaxPacingDelay, cfg.Delay)
	}
	return nil
}

// ValidateMatchConfig checks matcher thresholds. Plan files reuse it for
// their per-task overrides.
func ValidateMatchConfig(cfg *MatchConfig) error {
	return validateMatchConfig(cfg)
}

func validateMatchConfig(cfg *MatchConfig) error {
	if cfg.Ratio < 0 || cfg.Ratio > 1 {
		return errors.Wrapf(errors.ErrConfigInvalidMatch,
			"match.ratio must be between 0 and 1, got %g", cfg.Ratio)
	}
	if cfg.Consistency < 0 {
		return errors.Wrapf(errors.ErrConfigInvalidMatch,
			"match.consistency cannot be negative, got %g", cfg.Consistency)
	}
	return nil
}

// ValidateTaskConfig checks click task settings. Plan files reuse it for
// their per-task overrides.
func ValidateTaskConfig(cfg *TaskConfig) error {
	switch strings.ToLower(cfg.Button) {
	case "left", "right", "middle":
	default:
		return errors.Wrapf(errors.ErrConfigInvalidTask,
			"task.button must be left, right or middle, got %q", cfg.Button)
	}
	if cfg.Retries < 0 || cfg.Retries > constants.MaxTaskRetries {
		return errors.Wrapf(errors.ErrConfigInvalidTask,
			"task.retries must be between 0 and %d, got %d", constants.MaxTaskRetries, cfg.Retries)
	}
	if cfg.RetryInterval < 0 {
		return errors.Wrapf(errors.ErrConfigInvalidTask,
			"task.retry_interval cannot be negative, got %s", cfg.RetryInterval)
	}
	if cfg.JitterMargin < 0 {
		return errors.Wrapf(errors.ErrConfigInvalidTask,
			"task.jitter_margin cannot be negative, got %d", cfg.JitterMargin)
	}
	return nil
}

func validateLogConfig(cfg *LogConfig) error {
	if cfg.MaxSizeMB < 0 || cfg.MaxBackups < 0 || cfg.MaxAgeDays < 0 {
		return errors.Wrapf(errors.ErrConfigInvalidLog,
			"log.max_size_mb, log.max_backups and log.max_age_days cannot be negative, got %d/%d/%d",
			cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
	}
	return nil
}
