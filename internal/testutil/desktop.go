package testutil

import (
	"context"
	"image"
	"sync"

	"github.com/mrz1836/clickplan/internal/domain"
	"github.com/mrz1836/clickplan/internal/vision"
)

// Capturer is an in-memory capture collaborator. Every capture returns a
// frame over Image and counts how many frames were released.
type Capturer struct {
	Image image.Image
	Err   error

	mu          sync.Mutex
	screenCalls int
	windowCalls []domain.WindowHandle
	released    int
	outstanding int
}

// NewCapturer returns a Capturer serving img.
func NewCapturer(img image.Image) *Capturer {
	return &Capturer{Image: img}
}

// CaptureScreen implements locator.Capturer.
func (c *Capturer) CaptureScreen(_ context.Context) (vision.Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.screenCalls++
	return c.frameLocked()
}

// CaptureWindow implements locator.Capturer.
func (c *Capturer) CaptureWindow(_ context.Context, h domain.WindowHandle) (vision.Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.windowCalls = append(c.windowCalls, h)
	return c.frameLocked()
}

func (c *Capturer) frameLocked() (vision.Frame, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	c.outstanding++
	return &countingFrame{Frame: vision.NewImageFrame(c.Image), owner: c}, nil
}

// ScreenCalls returns the number of whole-screen captures.
func (c *Capturer) ScreenCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.screenCalls
}

// WindowCalls returns the handles passed to CaptureWindow.
func (c *Capturer) WindowCalls() []domain.WindowHandle {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.WindowHandle(nil), c.windowCalls...)
}

// Outstanding returns the number of frames captured but not yet released.
func (c *Capturer) Outstanding() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.outstanding
}

type countingFrame struct {
	vision.Frame
	owner *Capturer
	once  sync.Once
}

func (f *countingFrame) Release() {
	f.once.Do(func() {
		f.owner.mu.Lock()
		f.owner.released++
		f.owner.outstanding--
		f.owner.mu.Unlock()
	})
	f.Frame.Release()
}

// Matcher answers Match calls from a table keyed by template image.
// Templates without an entry do not match.
type Matcher struct {
	mu      sync.Mutex
	results map[image.Image]domain.MatchResult
	errs    map[image.Image]error
	panics  map[image.Image]string
	calls   []image.Image
	args    []domain.MatchArgs
}

// NewMatcher returns an empty scripted matcher.
func NewMatcher() *Matcher {
	return &Matcher{
		results: make(map[image.Image]domain.MatchResult),
		errs:    make(map[image.Image]error),
		panics:  make(map[image.Image]string),
	}
}

// Found scripts tmpl to match at the given frame-local points.
func (m *Matcher) Found(tmpl image.Image, points ...domain.Point) *Matcher {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[tmpl] = domain.MatchResult{Success: true, Points: points}
	return m
}

// Fails scripts tmpl to return err.
func (m *Matcher) Fails(tmpl image.Image, err error) *Matcher {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[tmpl] = err
	return m
}

// Panics scripts tmpl to panic with msg.
func (m *Matcher) Panics(tmpl image.Image, msg string) *Matcher {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.panics[tmpl] = msg
	return m
}

// Match implements locator.Matcher.
func (m *Matcher) Match(_ context.Context, _, tmpl image.Image, args domain.MatchArgs) (domain.MatchResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, tmpl)
	m.args = append(m.args, args)
	msg, shouldPanic := m.panics[tmpl]
	err := m.errs[tmpl]
	res := m.results[tmpl]
	m.mu.Unlock()

	if shouldPanic {
		panic(msg)
	}
	if err != nil {
		return domain.MatchResult{}, err
	}
	return res, nil
}

// Calls returns the template images inspected, in order.
func (m *Matcher) Calls() []image.Image {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]image.Image(nil), m.calls...)
}

// Args returns the match arguments received, in order.
func (m *Matcher) Args() []domain.MatchArgs {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.MatchArgs(nil), m.args...)
}

// Windows serves fixed window rectangles.
type Windows struct {
	mu    sync.Mutex
	rects map[domain.WindowHandle]domain.Rect
	calls int
}

// NewWindows returns a geometry fake with no windows.
func NewWindows() *Windows {
	return &Windows{rects: make(map[domain.WindowHandle]domain.Rect)}
}

// Set places window h at r.
func (w *Windows) Set(h domain.WindowHandle, r domain.Rect) *Windows {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.rects[h] = r
	return w
}

// WindowRect implements locator.WindowGeometry.
func (w *Windows) WindowRect(_ context.Context, h domain.WindowHandle) (domain.Rect, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls++
	r, ok := w.rects[h]
	if !ok {
		return domain.Rect{}, ErrMockWindow
	}
	return r, nil
}

// Calls returns the number of geometry queries.
func (w *Windows) Calls() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.calls
}

// PointerCall is one recorded pointer action.
type PointerCall struct {
	Button domain.Button
	Point  domain.Point
	Double bool
}

// Pointer records pointer input instead of performing it.
type Pointer struct {
	Err error

	mu    sync.Mutex
	calls []PointerCall
}

// Click implements locator.Pointer.
func (p *Pointer) Click(_ context.Context, b domain.Button, pt domain.Point) error {
	return p.record(PointerCall{Button: b, Point: pt})
}

// DoubleClick implements locator.Pointer.
func (p *Pointer) DoubleClick(_ context.Context, b domain.Button, pt domain.Point) error {
	return p.record(PointerCall{Button: b, Point: pt, Double: true})
}

func (p *Pointer) record(c PointerCall) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.calls = append(p.calls, c)
	return nil
}

// Calls returns the recorded pointer actions.
func (p *Pointer) Calls() []PointerCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]PointerCall(nil), p.calls...)
}
