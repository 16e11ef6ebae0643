package task

import (
	"context"
	"fmt"
)

// Hooks observe task execution. Both callbacks are optional and cannot
// alter the Result.
type Hooks struct {
	// OnBegin is called before the task runs.
	OnBegin func(t Task)

	// OnEnd is called after the task runs, whatever the outcome.
	OnEnd func(t Task, r Result)
}

// diagnosticSetter is implemented by tasks that accept a diagnostic from
// outside Run, such as anything embedding *Base.
type diagnosticSetter interface {
	SetLastError(msg string)
}

// RunInstrumented runs t between the hooks. A released task is not run and
// yields a failed Result. A panic escaping Run is recovered into a failed
// Result so one misbehaving task cannot take down a group run.
func RunInstrumented(ctx context.Context, t Task, hooks Hooks) Result {
	if hooks.OnBegin != nil {
		hooks.OnBegin(t)
	}

	result := runGuarded(ctx, t)

	if hooks.OnEnd != nil {
		hooks.OnEnd(t, result)
	}
	return result
}

func runGuarded(ctx context.Context, t Task) (result Result) {
	if r, ok := t.(Releasable); ok && r.Released() {
		recordDiagnostic(t, "task released")
		return Failed()
	}

	defer func() {
		if p := recover(); p != nil {
			recordDiagnostic(t, fmt.Sprintf("task panicked: %v", p))
			result = Failed()
		}
	}()

	return t.Run(ctx)
}

func recordDiagnostic(t Task, msg string) {
	if s, ok := t.(diagnosticSetter); ok {
		s.SetLastError(msg)
	}
}
