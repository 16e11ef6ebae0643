// Package locator finds a visual target on screen and acts on it.
//
// A Locator owns an ordered list of templates and an optional window scope.
// Search captures the scope once and tries each template in order, stopping
// at the first match. Click and DoubleClick build on Search and translate
// window-local match points into absolute screen coordinates.
//
// Import rules:
//   - CAN import: internal/domain, internal/errors, internal/vision
//   - MUST NOT import: internal/task, internal/actions, internal/cli
package locator

import (
	"context"
	"image"

	"github.com/mrz1836/clickplan/internal/domain"
	"github.com/mrz1836/clickplan/internal/vision"
)

// Capturer takes snapshots of the screen or of a window.
type Capturer interface {
	// CaptureScreen returns a snapshot of the whole screen.
	CaptureScreen(ctx context.Context) (vision.Frame, error)

	// CaptureWindow returns a snapshot of the window's area. Points in the
	// frame are relative to the window's top-left corner.
	CaptureWindow(ctx context.Context, h domain.WindowHandle) (vision.Frame, error)
}

// Matcher searches a captured frame for a template.
type Matcher interface {
	// Match reports whether tmpl appears in frame and, if so, candidate
	// points in frame coordinates, best first. A plain miss is
	// (MatchResult{Success: false}, nil); errors are reserved for faults.
	Match(ctx context.Context, frame, tmpl image.Image, args domain.MatchArgs) (domain.MatchResult, error)
}

// WindowGeometry resolves a window's absolute screen rectangle.
type WindowGeometry interface {
	WindowRect(ctx context.Context, h domain.WindowHandle) (domain.Rect, error)
}

// Pointer performs simulated pointer input at absolute screen coordinates.
type Pointer interface {
	Click(ctx context.Context, b domain.Button, p domain.Point) error
	DoubleClick(ctx context.Context, b domain.Button, p domain.Point) error
}

// Services bundles the collaborators a Locator calls. They are process-wide
// shared services; the locator adds no locking around them.
type Services struct {
	Capturer Capturer
	Matcher  Matcher
	Windows  WindowGeometry
	Pointer  Pointer
}
