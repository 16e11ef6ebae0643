package constants

// RunStatus is the outcome of one group run as shown in reports and JSON output.
type RunStatus string

// Run status values.
const (
	// RunStatusSucceeded indicates every task of the group succeeded.
	RunStatusSucceeded RunStatus = "succeeded"

	// RunStatusFailed indicates at least one task failed.
	RunStatusFailed RunStatus = "failed"

	// RunStatusCanceled indicates the run was interrupted before every task was attempted.
	RunStatusCanceled RunStatus = "canceled"
)

// String returns the string representation of the RunStatus.
func (s RunStatus) String() string {
	return string(s)
}

// Policy names used in reports.
const (
	// PolicyFailFast stops a group run at the first failure.
	PolicyFailFast = "fail fast"

	// PolicyIgnoreFailure attempts every task regardless of failures.
	PolicyIgnoreFailure = "ignore failure"
)

// TaskOutcome is what happened to one task in a group run.
type TaskOutcome string

// Task outcome values.
const (
	// TaskSucceeded indicates the task ran and succeeded.
	TaskSucceeded TaskOutcome = "succeeded"

	// TaskFailed indicates the task ran and failed.
	TaskFailed TaskOutcome = "failed"

	// TaskNotRun indicates the task was never attempted.
	TaskNotRun TaskOutcome = "not_run"
)

// Output formats accepted by --output.
const (
	OutputFormatText = "text"
	OutputFormatJSON = "json"
)
