package testutil

import (
	"image"
	"testing"

	"github.com/mrz1836/clickplan/internal/vision"
)

// Image returns a distinct w*h gray image; each call allocates a new one so
// it can serve as a unique key in Matcher.
func Image(w, h int) *image.Gray {
	return image.NewGray(image.Rect(0, 0, w, h))
}

// Template wraps a fresh w*h image as a vision.Template.
func Template(t *testing.T, name string, w, h int) *vision.Template {
	t.Helper()
	tmpl, err := vision.NewTemplate(name, Image(w, h))
	if err != nil {
		t.Fatalf("create template %s: %v", name, err)
	}
	return tmpl
}
