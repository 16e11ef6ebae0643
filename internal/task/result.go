package task

// Result is the outcome of a task or group run. It is immutable: accessors
// return copies.
//
// A successful Result has no failed and no unenforced tasks. A task's own
// Run usually returns Succeeded() or Failed(); group runs build Results that
// list the tasks that failed and the tasks never attempted.
type Result struct {
	success    bool
	failed     []Task
	unenforced []Task
	err        error
}

// Succeeded returns a successful Result.
func Succeeded() Result {
	return Result{success: true}
}

// Failed returns a failed Result listing the given tasks as failed.
// Concrete tasks call it with no arguments; the group records the task
// itself.
func Failed(failed ...Task) Result {
	return Result{success: false, failed: cloneTasks(failed)}
}

func groupResult(failed, unenforced []Task, err error) Result {
	if len(failed) == 0 && len(unenforced) == 0 && err == nil {
		return Succeeded()
	}
	return Result{
		success:    false,
		failed:     cloneTasks(failed),
		unenforced: cloneTasks(unenforced),
		err:        err,
	}
}

// Success reports whether every task succeeded.
func (r Result) Success() bool {
	return r.success
}

// FailedTasks returns the failed tasks in the order they were encountered.
func (r Result) FailedTasks() []Task {
	return cloneTasks(r.failed)
}

// UnenforcedTasks returns the tasks that were never attempted, in the order
// the run would have executed them.
func (r Result) UnenforcedTasks() []Task {
	return cloneTasks(r.unenforced)
}

// Err returns the reason a run stopped early without a task failure,
// typically the context error of a canceled run. It is nil otherwise.
func (r Result) Err() error {
	return r.err
}

// Canceled reports whether the run was interrupted.
func (r Result) Canceled() bool {
	return r.err != nil
}

// Names returns the names of tasks, preserving order.
func Names(tasks []Task) []string {
	names := make([]string, len(tasks))
	for i, t := range tasks {
		names[i] = t.Name()
	}
	return names
}

func cloneTasks(tasks []Task) []Task {
	if len(tasks) == 0 {
		return []Task{}
	}
	return append([]Task(nil), tasks...)
}
