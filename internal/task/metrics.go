package task

import "time"

// Metrics collects metrics about group and task execution.
// Implementations can forward these to Prometheus, StatsD, or any other
// monitoring system.
type Metrics interface {
	// GroupStarted is called when a group run begins.
	GroupStarted(group string, tasks int)

	// GroupCompleted is called when a group run ends, including early exits.
	GroupCompleted(group string, duration time.Duration, success bool)

	// TaskExecuted is called after each task completes.
	TaskExecuted(group, task string, duration time.Duration, success bool)
}

// NoopMetrics is a no-op implementation of Metrics for default behavior.
type NoopMetrics struct{}

// Ensure NoopMetrics implements Metrics interface.
var _ Metrics = (*NoopMetrics)(nil)

// GroupStarted implements Metrics.
func (NoopMetrics) GroupStarted(string, int) {}

// GroupCompleted implements Metrics.
func (NoopMetrics) GroupCompleted(string, time.Duration, bool) {}

// TaskExecuted implements Metrics.
func (NoopMetrics) TaskExecuted(string, string, time.Duration, bool) {}
