package viewport

import (
	"math"
	"strconv"

	"gridplot/internal/affine"
)

// Subdivision thresholds on the mantissa of the log spacing.
var (
	log2 = math.Log10(2)
	log5 = math.Log10(5)
)

// GridPlan describes the adaptive coordinate grid for one frame.
type GridPlan struct {
	StepsAcrossWidth  float64
	StepsAcrossHeight float64

	// CoarseStep is the world distance between major lines, a power of ten.
	CoarseStep float64
	// PixelStep is CoarseStep in pixels; Y is negative for an inverted view.
	PixelStep affine.Vector
	// PixelOrigin is the pixel position of a major line crossing near the
	// top-left corner of the bounds.
	PixelOrigin affine.Point
	// Subdivision is 0 (halves), 1 (fifths) or 2 (tenths).
	Subdivision int

	transform affine.Affine2D
}

// PlanGrid computes the grid for transform t so that major lines sit roughly
// targetPixelSpacing apart. t must have a non-zero scale.
func PlanGrid(t affine.Affine2D, targetPixelSpacing float64, bounds affine.Rect) GridPlan {
	logSpacing := math.Log10(math.Abs(targetPixelSpacing / t.ScaleX()))
	floor := math.Floor(logSpacing)
	coarse := math.Pow(10, floor)

	p := GridPlan{
		CoarseStep: coarse,
		PixelStep:  affine.Vec(coarse*t.ScaleX(), coarse*t.ScaleY()),
		transform:  t,
	}

	switch frac := logSpacing - floor; {
	case frac > log5:
		p.Subdivision = 0
	case frac > log2:
		p.Subdivision = 1
	default:
		p.Subdivision = 2
	}

	// X rounds with ceil over the step magnitude, Y with ceil over the signed
	// step; for an inverted view both land on the first line at or before
	// the top-left corner.
	sx := math.Abs(p.PixelStep.X)
	p.PixelOrigin = affine.Pt(
		t.C-math.Ceil(t.C/sx)*sx,
		t.F+p.PixelStep.Y*math.Ceil(-t.F/p.PixelStep.Y),
	)

	p.StepsAcrossWidth = math.Ceil(10 * bounds.Width / targetPixelSpacing)
	p.StepsAcrossHeight = math.Ceil(10 * bounds.Height / targetPixelSpacing)
	return p
}

// Divisions returns the number of minor intervals per coarse step.
func (p GridPlan) Divisions() int {
	switch p.Subdivision {
	case 0:
		return 2
	case 1:
		return 5
	default:
		return 10
	}
}

// MinorStep is the world distance between minor lines.
func (p GridPlan) MinorStep() float64 {
	return p.CoarseStep / float64(p.Divisions())
}

// GridLine is one vertical or horizontal line in pixel space.
type GridLine struct {
	Pixel float64
	World float64
	Major bool
}

// Vertical enumerates the x positions of grid lines inside bounds.
func (p GridPlan) Vertical(bounds affine.Rect) []GridLine {
	step := math.Abs(p.PixelStep.X)
	return p.lines(p.PixelOrigin.X, step, p.StepsAcrossWidth+1, bounds.Left(), bounds.Right(),
		func(px float64) float64 { return (px - p.transform.C) / p.transform.A })
}

// Horizontal enumerates the y positions of grid lines inside bounds.
func (p GridPlan) Horizontal(bounds affine.Rect) []GridLine {
	step := math.Abs(p.PixelStep.Y)
	return p.lines(p.PixelOrigin.Y, step, p.StepsAcrossHeight+1, bounds.Top(), bounds.Bottom(),
		func(px float64) float64 { return (px - p.transform.F) / p.transform.E })
}

func (p GridPlan) lines(start, step, count, lo, hi float64, world func(float64) float64) []GridLine {
	if step <= 0 || math.IsNaN(step) || math.IsInf(step, 0) {
		return nil
	}
	n := p.Divisions()
	minor := step / float64(n)
	var out []GridLine
	for k := 0; float64(k) <= count; k++ {
		base := start + float64(k)*step
		if base > hi {
			break
		}
		for j := 0; j < n; j++ {
			px := base + float64(j)*minor
			if px < lo || px > hi {
				continue
			}
			out = append(out, GridLine{Pixel: px, World: world(px), Major: j == 0})
		}
	}
	return out
}

// Label formats a world coordinate with just enough precision for the
// current coarse step.
func (p GridPlan) Label(world float64) string {
	digits := 0
	if p.CoarseStep < 1 {
		digits = int(math.Round(-math.Log10(p.CoarseStep)))
	}
	if math.Abs(world) < p.CoarseStep*1e-9 {
		world = 0
	}
	return strconv.FormatFloat(world, 'f', digits, 64)
}
