// Package vision holds the image side of clickplan: template images loaded
// from disk, captured frames, and a built-in exact-scale template matcher.
//
// Feature matching proper is delegated: anything satisfying locator.Matcher
// can replace TemplateMatcher.
package vision

import (
	"context"
	"image"
	_ "image/jpeg" // register JPEG decoding for templates
	_ "image/png"  // register PNG decoding for templates
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/mrz1836/clickplan/internal/errors"
)

// maxConcurrentLoads bounds parallel template decoding.
const maxConcurrentLoads = 4

// Template is a template image owned by exactly one locator.
// Release drops the pixel data; it is safe to call more than once.
type Template struct {
	name string

	mu  sync.RWMutex
	img image.Image
}

// NewTemplate wraps an already decoded image.
func NewTemplate(name string, img image.Image) (*Template, error) {
	if img == nil {
		return nil, errors.Wrapf(errors.ErrInvalidArgument, "template %q has no image", name)
	}
	if img.Bounds().Empty() {
		return nil, errors.Wrapf(errors.ErrInvalidArgument, "template %q is empty", name)
	}
	return &Template{name: name, img: img}, nil
}

// Name returns the template's display name (the file name when loaded from disk).
func (t *Template) Name() string {
	return t.name
}

// Image returns the pixel data, or nil once released.
func (t *Template) Image() image.Image {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.img
}

// Size returns the template's width and height, zero once released.
func (t *Template) Size() (width, height int) {
	img := t.Image()
	if img == nil {
		return 0, 0
	}
	b := img.Bounds()
	return b.Dx(), b.Dy()
}

// Released reports whether Release has been called.
func (t *Template) Released() bool {
	return t.Image() == nil
}

// Release drops the pixel data.
func (t *Template) Release() {
	t.mu.Lock()
	t.img = nil
	t.mu.Unlock()
}

// LoadTemplate decodes a PNG or JPEG file into a Template.
func LoadTemplate(path string) (*Template, error) {
	f, err := os.Open(path) //nolint:gosec // template paths come from the user's plan
	if err != nil {
		return nil, errors.Wrapf(errors.ErrTemplateLoadFailed, "open %s: %v", path, err)
	}
	defer func() { _ = f.Close() }()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrTemplateLoadFailed, "decode %s: %v", path, err)
	}
	return NewTemplate(filepath.Base(path), img)
}

// LoadTemplates decodes every path concurrently and returns the templates in
// path order. On failure every template already decoded is released.
func LoadTemplates(ctx context.Context, paths []string) ([]*Template, error) {
	templates := make([]*Template, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLoads)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			t, err := LoadTemplate(path)
			if err != nil {
				return err
			}
			templates[i] = t
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		ReleaseAll(templates)
		return nil, err
	}
	return templates, nil
}

// ReleaseAll releases every non-nil template.
func ReleaseAll(templates []*Template) {
	for _, t := range templates {
		if t != nil {
			t.Release()
		}
	}
}
