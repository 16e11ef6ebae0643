package config

import (
	"context"
	stderrors "errors"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/mrz1836/clickplan/internal/constants"
	"github.com/mrz1836/clickplan/internal/errors"
)

// newViperInstance creates a Viper instance with the CLICKPLAN_ env prefix,
// the key replacer, and defaults.
func newViperInstance() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// isConfigNotFoundError returns true if the error is a viper config file not found error.
func isConfigNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var configNotFoundErr viper.ConfigFileNotFoundError
	return stderrors.As(err, &configNotFoundErr)
}

// unmarshalAndValidate unmarshals viper config into Config struct and validates it.
func unmarshalAndValidate(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := Validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return &cfg, nil
}

// Load reads configuration from all available sources with proper precedence.
// Configuration is loaded in the following order (highest precedence first):
//  1. Environment variables (CLICKPLAN_* prefix)
//  2. Project config (.clickplan/config.yaml)
//  3. Global config (~/.clickplan/config.yaml)
//  4. Built-in defaults
//
// For CLI flag overrides, use LoadWithOverrides instead.
// Missing config files are not an error.
func Load(ctx context.Context) (*Config, error) {
	v := newViperInstance()

	if err := loadGlobalConfig(v); err != nil {
		return nil, err
	}
	if err := loadProjectConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	logger := zerolog.Ctx(ctx).With().Str("component", "config").Logger()
	logger.Debug().
		Dur("run.delay", cfg.Run.Delay).
		Bool("run.random_order", cfg.Run.RandomOrder).
		Bool("run.ignore_failure", cfg.Run.IgnoreFailure).
		Float64("match.ratio", cfg.Match.Ratio).
		Int("task.retries", cfg.Task.Retries).
		Msg("configuration loaded and unmarshaled")

	if err := Validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	return &cfg, nil
}

// loadGlobalConfig loads the global config file when it exists.
func loadGlobalConfig(v *viper.Viper) error {
	globalConfigPath, err := GlobalConfigPath()
	if err != nil || !fileExists(globalConfigPath) {
		return nil
	}

	v.SetConfigFile(globalConfigPath)
	if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) {
		return errors.Wrap(err, "failed to read global config file")
	}
	return nil
}

// loadProjectConfig merges the project config file when it exists.
func loadProjectConfig(v *viper.Viper) error {
	projectConfigPath := ProjectConfigPath()
	if !fileExists(projectConfigPath) {
		return nil
	}

	v.SetConfigFile(projectConfigPath)
	if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) {
		return errors.Wrap(err, "failed to read project config file")
	}
	return nil
}

// fileExists returns true if the file at path exists.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LoadWithOverrides loads configuration and applies CLI flag overrides.
// Only non-zero values in overrides are applied.
func LoadWithOverrides(ctx context.Context, overrides *Config) (*Config, error) {
	cfg, err := Load(ctx)
	if err != nil {
		return nil, err
	}

	if overrides != nil {
		applyOverrides(cfg, overrides)
	}

	if err := Validate(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration after overrides")
	}

	return cfg, nil
}

// LoadFromPaths loads configuration from specific file paths.
// Either path can be empty to skip that level.
func LoadFromPaths(_ context.Context, projectConfigPath, globalConfigPath string) (*Config, error) {
	v := newViperInstance()

	if globalConfigPath != "" {
		v.SetConfigFile(globalConfigPath)
		if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "failed to read global config: %s", globalConfigPath)
		}
	}

	if projectConfigPath != "" {
		v.SetConfigFile(projectConfigPath)
		if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "failed to read project config: %s", projectConfigPath)
		}
	}

	return unmarshalAndValidate(v)
}

// setDefaults configures all default values on the Viper instance.
// Keys must match the mapstructure tag names.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("run.delay", d.Run.Delay.String())
	v.SetDefault("run.random_order", d.Run.RandomOrder)
	v.SetDefault("run.ignore_failure", d.Run.IgnoreFailure)
	v.SetDefault("run.seed", d.Run.Seed)
	v.SetDefault("run.confirm", d.Run.Confirm)

	v.SetDefault("match.ratio", d.Match.Ratio)
	v.SetDefault("match.consistency", d.Match.Consistency)

	v.SetDefault("task.button", d.Task.Button)
	v.SetDefault("task.retries", d.Task.Retries)
	v.SetDefault("task.retry_interval", d.Task.RetryInterval.String())
	v.SetDefault("task.jitter", d.Task.Jitter)
	v.SetDefault("task.jitter_margin", d.Task.JitterMargin)

	v.SetDefault("log.max_size_mb", d.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", d.Log.MaxBackups)
	v.SetDefault("log.max_age_days", d.Log.MaxAgeDays)
	v.SetDefault("log.compress", d.Log.Compress)
}

// applyOverrides merges non-zero override values into the config.
//
// IMPORTANT: Boolean fields cannot be overridden to false here because the
// zero value is indistinguishable from "not set". The CLI applies boolean
// flags directly when cmd.Flags().Changed reports them.
func applyOverrides(cfg, overrides *Config) {
	if overrides.Run.Delay != 0 {
		cfg.Run.Delay = overrides.Run.Delay
	}
	if overrides.Run.RandomOrder {
		cfg.Run.RandomOrder = true
	}
	if overrides.Run.IgnoreFailure {
		cfg.Run.IgnoreFailure = true
	}
	if overrides.Run.Seed != 0 {
		cfg.Run.Seed = overrides.Run.Seed
	}

	if overrides.Match.Ratio != 0 {
		cfg.Match.Ratio = overrides.Match.Ratio
	}
	if overrides.Match.Consistency != 0 {
		cfg.Match.Consistency = overrides.Match.Consistency
	}

	applyTaskOverrides(&cfg.Task, &overrides.Task)
}

func applyTaskOverrides(cfg, overrides *TaskConfig) {
	if overrides.Button != "" {
		cfg.Button = overrides.Button
	}
	if overrides.Retries != 0 {
		cfg.Retries = overrides.Retries
	}
	if overrides.RetryInterval != 0 {
		cfg.RetryInterval = overrides.RetryInterval
	}
	if overrides.Jitter {
		cfg.Jitter = true
	}
	if overrides.JitterMargin != 0 {
		cfg.JitterMargin = overrides.JitterMargin
	}
}

// viperDecoderOption configures mapstructure to decode durations from strings.
func viperDecoderOption() viper.DecoderConfigOption {
	return viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		),
	)
}
