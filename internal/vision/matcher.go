package vision

import (
	"context"
	"image"
	"image/color"
	"math"
	"sort"

	"github.com/mrz1836/clickplan/internal/domain"
	"github.com/mrz1836/clickplan/internal/errors"
)

const (
	// defaultMaxCandidates is the number of points reported per match.
	defaultMaxCandidates = 8

	// maxTemplateSamples bounds the pixels compared per position; larger
	// templates are sampled on a regular grid.
	maxTemplateSamples = 4096
)

// TemplateMatcher finds a template in a frame at its exact scale by mean
// absolute luminance difference.
//
// Ratio is the largest accepted difference, as a fraction of full scale
// (0 demands identical pixels). Consistency is the radius in pixels under
// which neighbouring candidates collapse into the better one.
// Reported points are the centres of the matched regions, best first.
type TemplateMatcher struct {
	// MaxCandidates caps the number of reported points. Zero means 8.
	MaxCandidates int
}

type candidate struct {
	x, y  int
	score float64
}

// Match implements locator.Matcher.
func (m TemplateMatcher) Match(ctx context.Context, frame, tmpl image.Image, args domain.MatchArgs) (domain.MatchResult, error) {
	if frame == nil || tmpl == nil {
		return domain.MatchResult{}, errors.Wrap(errors.ErrMatchFailed, "frame and template are required")
	}
	if args.Ratio < 0 || args.Ratio > 1 || math.IsNaN(args.Ratio) {
		return domain.MatchResult{}, errors.Wrapf(errors.ErrMatchFailed, "ratio %v outside [0,1]", args.Ratio)
	}

	f := toLuma(frame)
	t := toLuma(tmpl)
	if t.w > f.w || t.h > f.h {
		return domain.MatchResult{}, nil
	}

	samples := sampleGrid(t)
	budget := args.Ratio * 255 * float64(len(samples))

	var found []candidate
	for y := 0; y <= f.h-t.h; y++ {
		if err := ctx.Err(); err != nil {
			return domain.MatchResult{}, err
		}
		for x := 0; x <= f.w-t.w; x++ {
			sum, ok := score(f, t, samples, x, y, budget)
			if !ok {
				continue
			}
			found = append(found, candidate{x: x, y: y, score: sum / (255 * float64(len(samples)))})
		}
	}
	if len(found) == 0 {
		return domain.MatchResult{}, nil
	}

	limit := m.MaxCandidates
	if limit <= 0 {
		limit = defaultMaxCandidates
	}
	points := suppress(found, int(math.Ceil(args.Consistency)), limit)
	for i := range points {
		points[i] = points[i].Add(t.w/2, t.h/2)
	}
	return domain.MatchResult{Success: true, Points: points}, nil
}

// score sums absolute differences at the sampled offsets, giving up as soon
// as the budget is exceeded.
func score(f, t *luma, samples []int, x, y int, budget float64) (float64, bool) {
	var sum float64
	for _, off := range samples {
		tx, ty := off%t.w, off/t.w
		d := int(f.pix[(y+ty)*f.w+x+tx]) - int(t.pix[off])
		if d < 0 {
			d = -d
		}
		sum += float64(d)
		if sum > budget {
			return 0, false
		}
	}
	return sum, true
}

// suppress keeps the best candidates, dropping any within radius of a better one.
func suppress(found []candidate, radius, limit int) []domain.Point {
	sort.SliceStable(found, func(i, j int) bool { return found[i].score < found[j].score })

	var kept []candidate
	for _, c := range found {
		near := false
		for _, k := range kept {
			if abs(c.x-k.x) <= radius && abs(c.y-k.y) <= radius {
				near = true
				break
			}
		}
		if near {
			continue
		}
		kept = append(kept, c)
		if len(kept) == limit {
			break
		}
	}

	points := make([]domain.Point, len(kept))
	for i, k := range kept {
		points[i] = domain.Point{X: k.x, Y: k.y}
	}
	return points
}

// luma is a dense 8-bit luminance copy of an image.
type luma struct {
	w, h int
	pix  []uint8
}

func toLuma(img image.Image) *luma {
	b := img.Bounds()
	l := &luma{w: b.Dx(), h: b.Dy(), pix: make([]uint8, b.Dx()*b.Dy())}
	for y := 0; y < l.h; y++ {
		for x := 0; x < l.w; x++ {
			g, _ := color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray)
			l.pix[y*l.w+x] = g.Y
		}
	}
	return l
}

// sampleGrid returns the template offsets compared at each position.
func sampleGrid(t *luma) []int {
	step := 1
	for (t.w/step)*(t.h/step) > maxTemplateSamples {
		step++
	}
	samples := make([]int, 0, (t.w/step+1)*(t.h/step+1))
	for y := 0; y < t.h; y += step {
		for x := 0; x < t.w; x += step {
			samples = append(samples, y*t.w+x)
		}
	}
	return samples
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
