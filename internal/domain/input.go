package domain

import (
	"fmt"
	"strings"

	"github.com/mrz1836/clickplan/internal/errors"
)

// Button identifies a pointer button.
type Button string

// Supported pointer buttons.
const (
	ButtonLeft   Button = "left"
	ButtonRight  Button = "right"
	ButtonMiddle Button = "middle"
)

// Valid reports whether b is a supported button.
func (b Button) Valid() bool {
	switch b {
	case ButtonLeft, ButtonRight, ButtonMiddle:
		return true
	default:
		return false
	}
}

// String returns the button name.
func (b Button) String() string {
	return string(b)
}

// ParseButton converts a case-insensitive name into a Button.
// An empty name selects the left button.
func ParseButton(s string) (Button, error) {
	if s == "" {
		return ButtonLeft, nil
	}
	b := Button(strings.ToLower(strings.TrimSpace(s)))
	if !b.Valid() {
		return "", errors.Wrapf(errors.ErrInvalidArgument, "unknown button %q", s)
	}
	return b, nil
}

// WindowHandle identifies the window a locator is scoped to. The zero value
// means "no window": the locator searches the whole screen. On the desktop
// adapters the handle is the owning process id.
type WindowHandle int

// NoWindow is the whole-screen scope.
const NoWindow WindowHandle = 0

// IsZero reports whether the handle selects the whole screen.
func (h WindowHandle) IsZero() bool {
	return h == NoWindow
}

// String implements fmt.Stringer.
func (h WindowHandle) String() string {
	if h.IsZero() {
		return "screen"
	}
	return fmt.Sprintf("window:%d", int(h))
}
