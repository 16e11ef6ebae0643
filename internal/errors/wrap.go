package errors

import "fmt"

// Wrap adds context to an error and returns nil when err is nil,
// so it can be used inline on return statements:
//
//	if err := capturer.CaptureScreen(ctx); err != nil {
//	    return errors.Wrap(err, "capture screen")
//	}
//
// The chain is preserved, so errors.Is() still finds the sentinel:
//
//	if errors.Is(err, errors.ErrCaptureFailed) { ... }
//
// Wrap at package boundaries only; wrapping at every frame produces
// unreadable messages.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf is Wrap with a formatted message:
//
//	return errors.Wrapf(errors.ErrInvalidArgument, "group %q has a nil task at %d", name, i)
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
