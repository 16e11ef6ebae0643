package errors

import "errors"

// ErrorInfo holds user-facing message and suggested action for an error.
type ErrorInfo struct {
	// Message is the user-friendly error description.
	Message string
	// Action is a suggested action to resolve the issue (empty if none).
	Action string
}

// errorEntry pairs a sentinel error with its user-facing info.
type errorEntry struct {
	err  error
	info ErrorInfo
}

// errorInfoEntries maps sentinel errors to their user-facing messages.
// A slice rather than a map so wrapped errors resolve through errors.Is().
//
//nolint:gochecknoglobals // Pre-built mapping for efficiency
var errorInfoEntries = []errorEntry{
	// ===================
	// Plans
	// ===================
	{
		err: ErrPlanNotFound,
		info: ErrorInfo{
			Message: "The plan file could not be found.",
			Action:  "Check the path passed to 'clickplan run'.",
		},
	},
	{
		err: ErrPlanParseError,
		info: ErrorInfo{
			Message: "The plan file could not be parsed.",
			Action:  "Fix the syntax error reported above and retry.",
		},
	},
	{
		err: ErrPlanInvalid,
		info: ErrorInfo{
			Message: "The plan failed validation.",
			Action:  "Run 'clickplan validate <plan>' to list every problem.",
		},
	},
	{
		err: ErrGroupNotFound,
		info: ErrorInfo{
			Message: "The requested group does not exist in the plan.",
			Action:  "Check the --group value against the group names in the plan.",
		},
	},
	{
		err: ErrTemplateLoadFailed,
		info: ErrorInfo{
			Message: "A template image could not be loaded.",
			Action:  "Template paths are resolved relative to the plan file; check they exist and are PNG or JPEG.",
		},
	},

	// ===================
	// Desktop collaborators
	// ===================
	{
		err: ErrCaptureFailed,
		info: ErrorInfo{
			Message: "Capturing the screen failed.",
			Action:  "Grant screen recording permission to the terminal and retry.",
		},
	},
	{
		err: ErrWindowNotFound,
		info: ErrorInfo{
			Message: "The target window could not be found.",
			Action:  "Make sure the application is running and the window pid or process name is correct.",
		},
	},
	{
		err: ErrPointerFailed,
		info: ErrorInfo{
			Message: "Simulating pointer input failed.",
			Action:  "Grant accessibility permission to the terminal and retry.",
		},
	},

	// ===================
	// Runs
	// ===================
	{
		err: ErrRunFailed,
		info: ErrorInfo{
			Message: "One or more tasks failed.",
			Action:  "Review the report above; rerun with --verbose for per-task diagnostics.",
		},
	},
	{
		err: ErrOperationCanceled,
		info: ErrorInfo{
			Message: "Operation canceled.",
		},
	},
	{
		err: ErrNonInteractiveMode,
		info: ErrorInfo{
			Message: "Confirmation is required but no terminal is attached.",
			Action:  "Pass --yes to run without confirmation.",
		},
	},

	// ===================
	// Configuration
	// ===================
	{
		err: ErrConfigNil,
		info: ErrorInfo{
			Message: "No configuration was provided.",
		},
	},
	{
		err: ErrConfigInvalidRun,
		info: ErrorInfo{
			Message: "The run configuration is invalid.",
			Action:  "Check the 'run' section of .clickplan/config.yaml.",
		},
	},
	{
		err: ErrConfigInvalidMatch,
		info: ErrorInfo{
			Message: "The match configuration is invalid.",
			Action:  "Check the 'match' section of .clickplan/config.yaml.",
		},
	},
	{
		err: ErrConfigInvalidTask,
		info: ErrorInfo{
			Message: "The task configuration is invalid.",
			Action:  "Check the 'task' section of .clickplan/config.yaml.",
		},
	},
	{
		err: ErrConfigInvalidLog,
		info: ErrorInfo{
			Message: "The log configuration is invalid.",
			Action:  "Check the 'log' section of .clickplan/config.yaml.",
		},
	},
	{
		err: ErrInvalidOutputFormat,
		info: ErrorInfo{
			Message: "Unknown output format.",
			Action:  "Use --output text or --output json.",
		},
	},
	{
		err: ErrInvalidArgument,
		info: ErrorInfo{
			Message: "An invalid argument was provided.",
		},
	},
}

//nolint:gochecknoglobals // Built once from errorInfoEntries
var errorInfoMap = buildErrorInfoMap()

func buildErrorInfoMap() map[error]ErrorInfo {
	m := make(map[error]ErrorInfo, len(errorInfoEntries))
	for _, entry := range errorInfoEntries {
		m[entry.err] = entry.info
	}
	return m
}

// getErrorInfo looks up the ErrorInfo for a given error.
// Direct sentinels hit the map; wrapped errors fall back to errors.Is().
// Unknown errors keep their own message.
func getErrorInfo(err error) ErrorInfo {
	if info, ok := errorInfoMap[err]; ok {
		return info
	}

	for _, entry := range errorInfoEntries {
		if errors.Is(err, entry.err) {
			return entry.info
		}
	}

	return ErrorInfo{Message: err.Error()}
}

// UserMessage returns a user-friendly message for common errors.
// For unrecognized errors, it returns the error's original message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	return getErrorInfo(err).Message
}

// Actionable returns a user-friendly error message along with a suggested
// action. The action is empty when there is nothing useful to suggest.
func Actionable(err error) (message, action string) {
	if err == nil {
		return "", ""
	}
	info := getErrorInfo(err)
	return info.Message, info.Action
}
