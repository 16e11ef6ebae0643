package domain

import (
	"fmt"
	"math/rand/v2"

	"github.com/mrz1836/clickplan/internal/errors"
)

// Point is a pixel coordinate. Depending on where it comes from it is either
// absolute (screen space) or local to a window's captured image.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns the point offset by (dx, dy).
func (p Point) Add(dx, dy int) Point {
	return Point{X: p.X + dx, Y: p.Y + dy}
}

// String implements fmt.Stringer.
func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Rect is an axis-aligned rectangle. Right and Bottom are exclusive.
type Rect struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
}

// RectAt builds a Rect from its top-left corner and size.
func RectAt(x, y, width, height int) Rect {
	return Rect{Left: x, Top: y, Right: x + width, Bottom: y + height}
}

// Width returns the horizontal extent of the rectangle.
func (r Rect) Width() int { return r.Right - r.Left }

// Height returns the vertical extent of the rectangle.
func (r Rect) Height() int { return r.Bottom - r.Top }

// Empty reports whether the rectangle contains no points.
func (r Rect) Empty() bool {
	return r.Right <= r.Left || r.Bottom <= r.Top
}

// Contains reports whether p lies inside the rectangle.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left && p.X < r.Right && p.Y >= r.Top && p.Y < r.Bottom
}

// TopLeft returns the rectangle's origin.
func (r Rect) TopLeft() Point {
	return Point{X: r.Left, Y: r.Top}
}

// Shrink returns the rectangle with each side pulled in by the margin.
func (r Rect) Shrink(m Margins) Rect {
	return Rect{
		Left:   r.Left + m.Left,
		Top:    r.Top + m.Top,
		Right:  r.Right - m.Right,
		Bottom: r.Bottom - m.Bottom,
	}
}

// Margins are per-side insets in pixels.
type Margins struct {
	Left   int `json:"left" yaml:"left"`
	Top    int `json:"top" yaml:"top"`
	Right  int `json:"right" yaml:"right"`
	Bottom int `json:"bottom" yaml:"bottom"`
}

// UniformMargins returns the same inset on every side.
func UniformMargins(n int) Margins {
	return Margins{Left: n, Top: n, Right: n, Bottom: n}
}

// RandomPoint returns a uniformly distributed point inside rect shrunk by
// margins. It is used to jitter click targets so repeated runs do not hit
// the same pixel. The shrunk rectangle must not be empty.
func RandomPoint(rng *rand.Rand, rect Rect, margins Margins) (Point, error) {
	if rng == nil {
		return Point{}, errors.Wrap(errors.ErrInvalidArgument, "random source is nil")
	}
	inner := rect.Shrink(margins)
	if inner.Empty() {
		return Point{}, errors.Wrapf(errors.ErrInvalidArgument,
			"rectangle %dx%d leaves no room inside margins %+v", rect.Width(), rect.Height(), margins)
	}
	return Point{
		X: inner.Left + rng.IntN(inner.Width()),
		Y: inner.Top + rng.IntN(inner.Height()),
	}, nil
}
