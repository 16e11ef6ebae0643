// Package ctxutil provides context utility functions.
package ctxutil

import "context"

// Canceled checks if the context has been canceled or exceeded its deadline.
// Returns the context error if done (Canceled or DeadlineExceeded), nil otherwise.
// Group runs call it at every task boundary; a task's own logic is never
// interrupted mid-flight.
func Canceled(ctx context.Context) error {
	return ctx.Err()
}
