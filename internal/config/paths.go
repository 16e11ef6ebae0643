package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mrz1836/clickplan/internal/constants"
	"github.com/mrz1836/clickplan/internal/errors"
)

// GlobalConfigDir returns the path to the global clickplan directory.
// $CLICKPLAN_HOME wins when set; otherwise it is ~/.clickplan.
//
// Returns an error if the home directory cannot be determined.
func GlobalConfigDir() (string, error) {
	if dir := os.Getenv(constants.HomeEnvVar); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get home directory")
	}
	return filepath.Join(home, constants.AppHome), nil
}

// ProjectConfigDir returns the relative path to the project configuration directory.
func ProjectConfigDir() string {
	return constants.AppHome
}

// GlobalConfigPath returns the full path to the global configuration file.
func GlobalConfigPath() (string, error) {
	dir, err := GlobalConfigDir()
	if err != nil {
		return "", fmt.Errorf("get global config path: %w", err)
	}
	return filepath.Join(dir, constants.ConfigFileName), nil
}

// ProjectConfigPath returns the relative path to the project configuration file.
func ProjectConfigPath() string {
	return filepath.Join(ProjectConfigDir(), constants.ConfigFileName)
}

// LogDir returns the directory of the rotating log file.
func LogDir() (string, error) {
	dir, err := GlobalConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, constants.LogsDir), nil
}
