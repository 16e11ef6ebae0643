package locator

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/mrz1836/clickplan/internal/domain"
	"github.com/mrz1836/clickplan/internal/errors"
	"github.com/mrz1836/clickplan/internal/vision"
)

// Match is a successful search: which template matched and where, in the
// scope's local coordinates.
type Match struct {
	// TemplateIndex is the position of the matching template in the list.
	TemplateIndex int

	// TemplateName is the matching template's name.
	TemplateName string

	// Point is the best candidate point, local to the captured scope.
	Point domain.Point

	// Bounds is the template-sized box centred on Point.
	Bounds domain.Rect
}

// Target is a Match translated to absolute screen coordinates.
type Target struct {
	Match Match

	// Point is the absolute click point.
	Point domain.Point

	// Bounds is the matched template's box in absolute coordinates.
	Bounds domain.Rect
}

// Locator searches for one visual target.
type Locator struct {
	name      string
	templates []*vision.Template
	window    domain.WindowHandle
	args      domain.MatchArgs
	svc       Services
	logger    zerolog.Logger

	released atomic.Bool
}

// Option configures a Locator.
type Option func(*Locator)

// WithWindow scopes the locator to a window. Without it the locator searches
// the whole screen.
func WithWindow(h domain.WindowHandle) Option {
	return func(l *Locator) {
		l.window = h
	}
}

// WithMatchArgs overrides the default match arguments.
func WithMatchArgs(args domain.MatchArgs) Option {
	return func(l *Locator) {
		l.args = args
	}
}

// WithName sets the display name used in logs and diagnostics.
func WithName(name string) Option {
	return func(l *Locator) {
		l.name = name
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(l *Locator) {
		l.logger = logger
	}
}

// New creates a Locator. On success the locator owns the templates and
// releases them in Release; on error the caller still owns them.
func New(templates []*vision.Template, svc Services, opts ...Option) (*Locator, error) {
	l := &Locator{
		templates: append([]*vision.Template(nil), templates...),
		args:      domain.DefaultMatchArgs(),
		svc:       svc,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.name == "" && len(l.templates) > 0 && l.templates[0] != nil {
		l.name = l.templates[0].Name()
	}

	if err := l.validate(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Locator) validate() error {
	if len(l.templates) == 0 {
		return errors.Wrap(errors.ErrInvalidArgument, "locator needs at least one template")
	}
	for i, t := range l.templates {
		if t == nil || t.Released() {
			return errors.Wrapf(errors.ErrInvalidArgument, "locator %q: template %d is missing", l.name, i)
		}
	}
	if l.svc.Capturer == nil || l.svc.Matcher == nil {
		return errors.Wrapf(errors.ErrInvalidArgument, "locator %q: capturer and matcher are required", l.name)
	}
	if !l.window.IsZero() && l.svc.Windows == nil {
		return errors.Wrapf(errors.ErrInvalidArgument, "locator %q: window scope needs window geometry", l.name)
	}
	return nil
}

// Name returns the display name.
func (l *Locator) Name() string {
	return l.name
}

// Args returns the match arguments forwarded to the matcher.
func (l *Locator) Args() domain.MatchArgs {
	return l.args
}

// Window returns the scope handle; zero means whole screen.
func (l *Locator) Window() domain.WindowHandle {
	return l.window
}

// IsScreenScope reports whether the locator searches the whole screen.
func (l *Locator) IsScreenScope() bool {
	return l.window.IsZero()
}

// TemplateCount returns the number of templates.
func (l *Locator) TemplateCount() int {
	return len(l.templates)
}

// Search captures the scope and tries each template in order, returning
// the first that matches. A miss is (Match{}, false, nil). The capture is
// released before Search returns. Search never retries.
func (l *Locator) Search(ctx context.Context) (Match, bool, error) {
	if l.released.Load() {
		return Match{}, false, errors.Wrapf(errors.ErrReleased, "locator %q", l.name)
	}

	frame, err := l.capture(ctx)
	if err != nil {
		return Match{}, false, err
	}
	defer frame.Release()

	img := frame.Image()
	if img == nil {
		return Match{}, false, fmt.Errorf("locator %q: %w: empty frame for %s", l.name, errors.ErrCaptureFailed, l.window)
	}

	for i, t := range l.templates {
		tmplImg := t.Image()
		if tmplImg == nil {
			return Match{}, false, errors.Wrapf(errors.ErrReleased, "locator %q: template %q", l.name, t.Name())
		}

		res, err := l.svc.Matcher.Match(ctx, img, tmplImg, l.args)
		if err != nil {
			return Match{}, false, fmt.Errorf("locator %q: template %q: %w: %w", l.name, t.Name(), errors.ErrMatchFailed, err)
		}
		p, ok := res.Best()
		if !ok {
			continue
		}

		w, h := t.Size()
		m := Match{
			TemplateIndex: i,
			TemplateName:  t.Name(),
			Point:         p,
			Bounds:        domain.RectAt(p.X-w/2, p.Y-h/2, w, h),
		}
		l.logger.Debug().
			Str("locator", l.name).
			Str("template", m.TemplateName).
			Stringer("point", m.Point).
			Stringer("scope", l.window).
			Msg("template matched")
		return m, true, nil
	}

	l.logger.Debug().
		Str("locator", l.name).
		Int("templates", len(l.templates)).
		Stringer("scope", l.window).
		Msg("no template matched")
	return Match{}, false, nil
}

func (l *Locator) capture(ctx context.Context) (frame vision.Frame, err error) {
	if l.IsScreenScope() {
		frame, err = l.svc.Capturer.CaptureScreen(ctx)
	} else {
		frame, err = l.svc.Capturer.CaptureWindow(ctx, l.window)
	}
	if err != nil {
		return nil, fmt.Errorf("locator %q: %w: %s: %w", l.name, errors.ErrCaptureFailed, l.window, err)
	}
	if frame == nil {
		return nil, fmt.Errorf("locator %q: %w: no frame for %s", l.name, errors.ErrCaptureFailed, l.window)
	}
	return frame, nil
}

// Locate searches and translates the match to absolute screen coordinates.
// For a window scope the window's top-left is queried on every call.
func (l *Locator) Locate(ctx context.Context) (Target, bool, error) {
	m, ok, err := l.Search(ctx)
	if err != nil || !ok {
		return Target{}, false, err
	}

	target := Target{Match: m, Point: m.Point, Bounds: m.Bounds}
	if l.IsScreenScope() {
		return target, true, nil
	}

	rect, err := l.svc.Windows.WindowRect(ctx, l.window)
	if err != nil {
		return Target{}, false, fmt.Errorf("locator %q: %w: %s: %w", l.name, errors.ErrWindowNotFound, l.window, err)
	}
	target.Point = m.Point.Add(rect.Left, rect.Top)
	target.Bounds = domain.RectAt(m.Bounds.Left+rect.Left, m.Bounds.Top+rect.Top, m.Bounds.Width(), m.Bounds.Height())
	return target, true, nil
}

// Click searches and clicks the match. On a miss it returns false without
// any pointer input.
func (l *Locator) Click(ctx context.Context, b domain.Button) (bool, error) {
	return l.locateAndPress(ctx, b, false)
}

// DoubleClick searches and double-clicks the match. On a miss it returns
// false without any pointer input.
func (l *Locator) DoubleClick(ctx context.Context, b domain.Button) (bool, error) {
	return l.locateAndPress(ctx, b, true)
}

func (l *Locator) locateAndPress(ctx context.Context, b domain.Button, double bool) (bool, error) {
	target, ok, err := l.Locate(ctx)
	if err != nil || !ok {
		return false, err
	}
	if err := l.Press(ctx, b, target.Point, double); err != nil {
		return false, err
	}
	return true, nil
}

// Press sends pointer input at an absolute point without searching. Tasks
// use it to click a jittered point inside a Target's bounds.
func (l *Locator) Press(ctx context.Context, b domain.Button, p domain.Point, double bool) error {
	if l.released.Load() {
		return errors.Wrapf(errors.ErrReleased, "locator %q", l.name)
	}
	if l.svc.Pointer == nil {
		return errors.Wrapf(errors.ErrInvalidArgument, "locator %q has no pointer", l.name)
	}

	var err error
	if double {
		err = l.svc.Pointer.DoubleClick(ctx, b, p)
	} else {
		err = l.svc.Pointer.Click(ctx, b, p)
	}
	if err != nil {
		return fmt.Errorf("locator %q: %w: %s at %s: %w", l.name, errors.ErrPointerFailed, b, p, err)
	}

	l.logger.Debug().
		Str("locator", l.name).
		Str("button", b.String()).
		Bool("double", double).
		Stringer("point", p).
		Msg("pointer input sent")
	return nil
}

// Release releases every owned template. Further calls are no-ops.
func (l *Locator) Release() {
	if l.released.Swap(true) {
		return
	}
	vision.ReleaseAll(l.templates)
}

// Released reports whether Release has been called.
func (l *Locator) Released() bool {
	return l.released.Load()
}
