// Package desktop adapts the OS automation library to the locator
// collaborator interfaces: screen and window capture, window geometry, and
// pointer input. Window handles are process ids.
package desktop

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/mrz1836/clickplan/internal/ctxutil"
	"github.com/mrz1836/clickplan/internal/domain"
	"github.com/mrz1836/clickplan/internal/errors"
	"github.com/mrz1836/clickplan/internal/locator"
	"github.com/mrz1836/clickplan/internal/vision"
)

// Desktop implements locator.Capturer, locator.WindowGeometry and
// locator.Pointer on the real desktop.
type Desktop struct {
	backend backend
	logger  zerolog.Logger

	// input serializes pointer moves and clicks: a move followed by another
	// goroutine's click would land on the wrong point.
	input sync.Mutex
}

var (
	_ locator.Capturer       = (*Desktop)(nil)
	_ locator.WindowGeometry = (*Desktop)(nil)
	_ locator.Pointer        = (*Desktop)(nil)
)

// New returns a Desktop backed by the OS.
func New(logger zerolog.Logger) *Desktop {
	return &Desktop{backend: robotgoBackend{}, logger: logger}
}

// Services bundles the desktop with a matcher into locator services.
func (d *Desktop) Services(m locator.Matcher) locator.Services {
	return locator.Services{
		Capturer: d,
		Matcher:  m,
		Windows:  d,
		Pointer:  d,
	}
}

// CaptureScreen captures the primary screen.
func (d *Desktop) CaptureScreen(ctx context.Context) (vision.Frame, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}
	w, h := d.backend.ScreenSize()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: screen size %dx%d", errors.ErrCaptureFailed, w, h)
	}
	return d.capture(domain.RectAt(0, 0, w, h))
}

// CaptureWindow captures the screen area covered by the window of process h.
func (d *Desktop) CaptureWindow(ctx context.Context, h domain.WindowHandle) (vision.Frame, error) {
	rect, err := d.WindowRect(ctx, h)
	if err != nil {
		return nil, err
	}
	return d.capture(rect)
}

func (d *Desktop) capture(r domain.Rect) (vision.Frame, error) {
	img, err := d.backend.Capture(r.Left, r.Top, r.Width(), r.Height())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrCaptureFailed, err)
	}
	if img == nil {
		return nil, fmt.Errorf("%w: empty image", errors.ErrCaptureFailed)
	}
	d.logger.Trace().
		Int("x", r.Left).
		Int("y", r.Top).
		Int("width", r.Width()).
		Int("height", r.Height()).
		Msg("captured")
	return vision.NewImageFrame(img), nil
}

// WindowRect returns the absolute rectangle of the window of process h.
func (d *Desktop) WindowRect(ctx context.Context, h domain.WindowHandle) (domain.Rect, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return domain.Rect{}, err
	}
	if h.IsZero() {
		return domain.Rect{}, fmt.Errorf("%w: %s", errors.ErrWindowNotFound, h)
	}
	x, y, w, hh := d.backend.Bounds(int(h))
	if w <= 0 || hh <= 0 {
		return domain.Rect{}, fmt.Errorf("%w: %s has no visible bounds", errors.ErrWindowNotFound, h)
	}
	return domain.RectAt(x, y, w, hh), nil
}

// Click moves the pointer to p and clicks b.
func (d *Desktop) Click(ctx context.Context, b domain.Button, p domain.Point) error {
	return d.press(ctx, b, p, false)
}

// DoubleClick moves the pointer to p and double-clicks b.
func (d *Desktop) DoubleClick(ctx context.Context, b domain.Button, p domain.Point) error {
	return d.press(ctx, b, p, true)
}

func (d *Desktop) press(ctx context.Context, b domain.Button, p domain.Point, double bool) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}
	if !b.Valid() {
		return fmt.Errorf("%w: unknown button %q", errors.ErrPointerFailed, b)
	}

	d.input.Lock()
	defer d.input.Unlock()
	d.backend.Move(p.X, p.Y)
	d.backend.Click(b.String(), double)
	return nil
}

// FindWindow returns the handle of the first process whose name equals
// name, ignoring case.
func (d *Desktop) FindWindow(ctx context.Context, name string) (domain.WindowHandle, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return domain.NoWindow, err
	}
	procs, err := d.backend.Processes()
	if err != nil {
		return domain.NoWindow, fmt.Errorf("%w: list processes: %w", errors.ErrWindowNotFound, err)
	}
	for _, p := range procs {
		if strings.EqualFold(p.Name, name) && p.Pid != 0 {
			return domain.WindowHandle(p.Pid), nil
		}
	}
	return domain.NoWindow, fmt.Errorf("%w: no process named %q", errors.ErrWindowNotFound, name)
}
