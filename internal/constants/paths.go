package constants

// Log file names.
const (
	// CLILogFileName is the name of the global CLI log file.
	// This file is located in ~/.clickplan/logs/clickplan.log
	CLILogFileName = "clickplan.log"
)

// Configuration file names.
const (
	// ConfigFileName is the name of both the global and the project config file.
	ConfigFileName = "config.yaml"
)
