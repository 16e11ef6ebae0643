// Package errors provides centralized error handling for clickplan.
//
// This package defines sentinel errors used for programmatic error categorization
// throughout the application. All error types can be checked using errors.Is().
//
// Ordinary task failures are never errors: they are reported as data in a
// task.Result. The sentinels below cover construction-time violations,
// collaborator faults, configuration, and CLI input problems.
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package errors

import "errors"

// Sentinel errors for error categorization.
// These allow callers to check error types with errors.Is().
var (
	// ErrInvalidArgument indicates that an invalid argument was provided to a
	// constructor or operation (empty name, nil task list, no templates).
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrReleased indicates an operation on a locator or task that has
	// already been released.
	ErrReleased = errors.New("resource already released")

	// ErrCaptureFailed indicates the screen or window capture collaborator failed.
	ErrCaptureFailed = errors.New("capture failed")

	// ErrMatchFailed indicates the visual matcher returned a fault, as opposed
	// to a plain "not found".
	ErrMatchFailed = errors.New("match failed")

	// ErrWindowNotFound indicates the window bound to a locator scope could not be resolved.
	ErrWindowNotFound = errors.New("window not found")

	// ErrPointerFailed indicates the pointer-input collaborator failed to click.
	ErrPointerFailed = errors.New("pointer input failed")

	// ErrTemplateLoadFailed indicates a template image could not be read or decoded.
	ErrTemplateLoadFailed = errors.New("template load failed")

	// ErrPlanNotFound indicates the plan file does not exist.
	ErrPlanNotFound = errors.New("plan file not found")

	// ErrPlanParseError indicates the plan file is not valid YAML or JSON, or has unknown fields.
	ErrPlanParseError = errors.New("plan parse error")

	// ErrPlanInvalid indicates the plan failed validation.
	ErrPlanInvalid = errors.New("invalid plan")

	// ErrGroupNotFound indicates the requested group does not exist in the plan.
	ErrGroupNotFound = errors.New("group not found")

	// ErrRunFailed indicates at least one group run reported failure.
	ErrRunFailed = errors.New("run failed")

	// ErrConfigNil indicates that a nil config was passed to validation.
	ErrConfigNil = errors.New("config is nil")

	// ErrConfigInvalidRun indicates an invalid run configuration value.
	ErrConfigInvalidRun = errors.New("invalid run configuration")

	// ErrConfigInvalidMatch indicates an invalid match configuration value.
	ErrConfigInvalidMatch = errors.New("invalid match configuration")

	// ErrConfigInvalidTask indicates an invalid task configuration value.
	ErrConfigInvalidTask = errors.New("invalid task configuration")

	// ErrConfigInvalidLog indicates an invalid log configuration value.
	ErrConfigInvalidLog = errors.New("invalid log configuration")

	// ErrInvalidOutputFormat indicates an invalid output format was specified.
	ErrInvalidOutputFormat = errors.New("invalid output format")

	// ErrOperationCanceled indicates the user canceled an operation.
	ErrOperationCanceled = errors.New("operation canceled by user")

	// ErrNonInteractiveMode indicates that an operation requiring confirmation
	// was attempted in non-interactive mode without the --yes flag.
	ErrNonInteractiveMode = errors.New("use --yes in non-interactive mode")

	// ErrJSONErrorOutput indicates that an error has already been output as JSON.
	// This ensures a non-zero exit code while preventing duplicate error messages.
	ErrJSONErrorOutput = errors.New("error output as JSON")
)

// ExitCode2Error wraps an error to indicate exit code 2 should be used.
type ExitCode2Error struct {
	Err error
}

// NewExitCode2Error wraps an error to indicate exit code 2.
func NewExitCode2Error(err error) *ExitCode2Error {
	return &ExitCode2Error{Err: err}
}

// Error implements the error interface.
func (e *ExitCode2Error) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ExitCode2Error) Unwrap() error {
	return e.Err
}

// IsExitCode2Error checks if an error should result in exit code 2.
func IsExitCode2Error(err error) bool {
	var e *ExitCode2Error
	return errors.As(err, &e)
}
