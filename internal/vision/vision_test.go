package vision

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/clickplan/internal/domain"
	"github.com/mrz1836/clickplan/internal/errors"
)

// noise returns a w*h gray image filled from a seeded source so every
// sub-region is distinct.
func noise(w, h int, seed uint64) *image.Gray {
	rng := rand.New(rand.NewPCG(seed, seed))
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = uint8(rng.IntN(256))
	}
	return img
}

// crop copies a sub-rectangle into a new image anchored at (0,0).
func crop(src *image.Gray, r image.Rectangle) *image.Gray {
	out := image.NewGray(image.Rect(0, 0, r.Dx(), r.Dy()))
	for y := 0; y < r.Dy(); y++ {
		for x := 0; x < r.Dx(); x++ {
			out.SetGray(x, y, src.GrayAt(r.Min.X+x, r.Min.Y+y))
		}
	}
	return out
}

func writePNG(t *testing.T, dir, name string, img image.Image) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path) //nolint:gosec // test file
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return path
}

func TestNewTemplate(t *testing.T) {
	_, err := NewTemplate("nil", nil)
	require.ErrorIs(t, err, errors.ErrInvalidArgument)

	_, err = NewTemplate("empty", image.NewGray(image.Rect(0, 0, 0, 0)))
	require.ErrorIs(t, err, errors.ErrInvalidArgument)

	tmpl, err := NewTemplate("ok", noise(6, 4, 1))
	require.NoError(t, err)
	assert.Equal(t, "ok", tmpl.Name())
	w, h := tmpl.Size()
	assert.Equal(t, 6, w)
	assert.Equal(t, 4, h)
}

func TestTemplate_ReleaseIsIdempotent(t *testing.T) {
	tmpl, err := NewTemplate("button", noise(4, 4, 2))
	require.NoError(t, err)

	tmpl.Release()
	tmpl.Release()

	assert.True(t, tmpl.Released())
	assert.Nil(t, tmpl.Image())
	w, h := tmpl.Size()
	assert.Zero(t, w)
	assert.Zero(t, h)
}

func TestLoadTemplate(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, dir, "ok.png", noise(5, 3, 3))

	tmpl, err := LoadTemplate(path)
	require.NoError(t, err)
	assert.Equal(t, "ok.png", tmpl.Name())
	w, h := tmpl.Size()
	assert.Equal(t, 5, w)
	assert.Equal(t, 3, h)

	_, err = LoadTemplate(filepath.Join(dir, "missing.png"))
	require.ErrorIs(t, err, errors.ErrTemplateLoadFailed)

	garbage := filepath.Join(dir, "garbage.png")
	require.NoError(t, os.WriteFile(garbage, []byte("not an image"), 0o600))
	_, err = LoadTemplate(garbage)
	require.ErrorIs(t, err, errors.ErrTemplateLoadFailed)
}

func TestLoadTemplates(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writePNG(t, dir, "a.png", noise(2, 2, 1)),
		writePNG(t, dir, "b.png", noise(3, 3, 2)),
		writePNG(t, dir, "c.png", noise(4, 4, 3)),
	}

	t.Run("keeps path order", func(t *testing.T) {
		templates, err := LoadTemplates(context.Background(), paths)
		require.NoError(t, err)
		require.Len(t, templates, 3)
		assert.Equal(t, "a.png", templates[0].Name())
		assert.Equal(t, "b.png", templates[1].Name())
		assert.Equal(t, "c.png", templates[2].Name())
	})

	t.Run("fails as a whole", func(t *testing.T) {
		bad := append([]string{}, paths...)
		bad = append(bad, filepath.Join(dir, "missing.png"))
		templates, err := LoadTemplates(context.Background(), bad)
		require.ErrorIs(t, err, errors.ErrTemplateLoadFailed)
		assert.Nil(t, templates)
	})
}

func TestImageFrame(t *testing.T) {
	src := noise(10, 10, 4)
	sub := src.SubImage(image.Rect(2, 3, 6, 8))

	frame := NewImageFrame(sub)
	img := frame.Image()
	require.NotNil(t, img)
	assert.Equal(t, image.Rect(0, 0, 4, 5), img.Bounds())
	assert.Equal(t, src.GrayAt(2, 3), color.GrayModel.Convert(img.At(0, 0)))

	frame.Release()
	frame.Release()
	assert.Nil(t, frame.Image())
}

func TestTemplateMatcher_FindsExactRegion(t *testing.T) {
	frame := noise(40, 30, 10)
	tmpl := crop(frame, image.Rect(12, 7, 20, 13)) // 8x6

	res, err := TemplateMatcher{}.Match(context.Background(), frame, tmpl, domain.MatchArgs{Ratio: 0, Consistency: 2})
	require.NoError(t, err)
	require.True(t, res.Success)
	best, ok := res.Best()
	require.True(t, ok)
	assert.Equal(t, domain.Point{X: 16, Y: 10}, best, "centre of the matched region")
}

func TestTemplateMatcher_ToleratesNoiseWithinRatio(t *testing.T) {
	frame := noise(30, 30, 11)
	tmpl := crop(frame, image.Rect(5, 5, 15, 15))
	for i := range tmpl.Pix {
		if tmpl.Pix[i] < 250 {
			tmpl.Pix[i] += 5
		}
	}

	res, err := TemplateMatcher{}.Match(context.Background(), frame, tmpl, domain.MatchArgs{Ratio: 0.05, Consistency: 2})
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, domain.Point{X: 10, Y: 10}, res.Points[0])

	res, err = TemplateMatcher{}.Match(context.Background(), frame, tmpl, domain.MatchArgs{Ratio: 0, Consistency: 2})
	require.NoError(t, err)
	assert.False(t, res.Success)
}

func TestTemplateMatcher_NotFound(t *testing.T) {
	frame := image.NewGray(image.Rect(0, 0, 20, 20))
	tmpl := image.NewGray(image.Rect(0, 0, 4, 4))
	for i := range tmpl.Pix {
		tmpl.Pix[i] = 255
	}

	res, err := TemplateMatcher{}.Match(context.Background(), frame, tmpl, domain.DefaultMatchArgs())
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Empty(t, res.Points)
}

func TestTemplateMatcher_TemplateLargerThanFrame(t *testing.T) {
	res, err := TemplateMatcher{}.Match(context.Background(), noise(4, 4, 1), noise(8, 8, 1), domain.DefaultMatchArgs())
	require.NoError(t, err)
	assert.False(t, res.Success)
}

func TestTemplateMatcher_CollapsesNeighbours(t *testing.T) {
	// A flat frame matches a flat template everywhere; neighbouring
	// positions must collapse and the candidate count stays capped.
	frame := image.NewGray(image.Rect(0, 0, 16, 16))
	tmpl := image.NewGray(image.Rect(0, 0, 2, 2))

	res, err := TemplateMatcher{MaxCandidates: 3}.Match(context.Background(), frame, tmpl, domain.MatchArgs{Ratio: 0, Consistency: 4})
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Len(t, res.Points, 3)
	for i := range res.Points {
		for j := i + 1; j < len(res.Points); j++ {
			dx := abs(res.Points[i].X - res.Points[j].X)
			dy := abs(res.Points[i].Y - res.Points[j].Y)
			assert.True(t, dx > 4 || dy > 4, "points %v and %v are within the radius", res.Points[i], res.Points[j])
		}
	}
}

func TestTemplateMatcher_InvalidArguments(t *testing.T) {
	_, err := TemplateMatcher{}.Match(context.Background(), nil, noise(2, 2, 1), domain.DefaultMatchArgs())
	require.ErrorIs(t, err, errors.ErrMatchFailed)

	_, err = TemplateMatcher{}.Match(context.Background(), noise(4, 4, 1), noise(2, 2, 1), domain.MatchArgs{Ratio: 1.5})
	require.ErrorIs(t, err, errors.ErrMatchFailed)
}

func TestTemplateMatcher_HonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := TemplateMatcher{}.Match(ctx, noise(10, 10, 1), noise(2, 2, 2), domain.DefaultMatchArgs())
	require.ErrorIs(t, err, context.Canceled)
}

func TestToLuma_ColorInput(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	l := toLuma(img)
	assert.Equal(t, uint8(255), l.pix[0])
}
