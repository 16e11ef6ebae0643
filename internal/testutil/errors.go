// Package testutil provides testing utilities for clickplan.
//
// This package contains mock errors and in-memory fakes of the desktop
// collaborators (capture, matching, window geometry, pointer input).
// It should only be imported by test files (*_test.go).
package testutil

import "errors"

// Mock errors for testing purposes.
// These errors are used to simulate various failure scenarios in tests.
var (
	// ErrMockCapture indicates a mock capture failure.
	ErrMockCapture = errors.New("capture device unavailable")

	// ErrMockMatch indicates a mock matcher fault.
	ErrMockMatch = errors.New("matcher crashed")

	// ErrMockWindow indicates a mock invalid window handle.
	ErrMockWindow = errors.New("invalid window handle")

	// ErrMockPointer indicates a mock pointer-input failure.
	ErrMockPointer = errors.New("pointer device unavailable")
)
