package vision

import (
	"image"
	"sync"
)

// Frame is a captured snapshot of the screen or of one window. It is
// acquired right before a search and released right after it.
type Frame interface {
	// Image returns the captured pixels. Coordinates are local to the
	// captured region, with (0,0) at its top-left.
	Image() image.Image

	// Release frees the snapshot. Safe to call more than once.
	Release()
}

// ImageFrame is a Frame backed by an in-memory image.
type ImageFrame struct {
	mu  sync.Mutex
	img image.Image
}

// NewImageFrame wraps img as a Frame. The image is rebased so that its
// bounds start at (0,0).
func NewImageFrame(img image.Image) *ImageFrame {
	return &ImageFrame{img: rebase(img)}
}

// Image returns the captured pixels, or nil after Release.
func (f *ImageFrame) Image() image.Image {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.img
}

// Release drops the pixel data.
func (f *ImageFrame) Release() {
	f.mu.Lock()
	f.img = nil
	f.mu.Unlock()
}

// rebase returns img with its origin moved to (0,0) when it is not already.
func rebase(img image.Image) image.Image {
	if img == nil || img.Bounds().Min == (image.Point{}) {
		return img
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			out.Set(x, y, img.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return out
}
