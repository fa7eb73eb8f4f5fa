package overlay

import (
	"fmt"
	"math"

	"gridplot/internal/affine"
	"gridplot/internal/surface"
)

// Marker is the symbol drawn for each point of a PointSeries.
type Marker int

const (
	MarkerSquare Marker = iota
	MarkerCircle
	MarkerCross
)

// DefaultMarkerSize is the marker edge length in pixels.
const DefaultMarkerSize = 4

// PointSeries draws a fixed-size marker at every point. Markers are sized in
// pixels, so zooming moves them apart without growing them.
type PointSeries struct {
	nodeBase
	points []affine.Point
	marker Marker
	size   float64
}

func NewPointSeries(points ...affine.Point) *PointSeries {
	return &PointSeries{points: points, size: DefaultMarkerSize}
}

func (p *PointSeries) Points() []affine.Point { return p.points }
func (p *PointSeries) Len() int               { return len(p.points) }

// Marker returns the marker kind and its size in pixels.
func (p *PointSeries) Marker() (Marker, float64) { return p.marker, p.size }

func (p *PointSeries) SetPoints(points ...affine.Point) {
	p.points = points
	p.NotifyReRender()
}

func (p *PointSeries) SetMarker(m Marker, size float64) {
	p.marker = m
	p.size = size
	p.NotifyReRender()
}

func (p *PointSeries) Render(rc *RenderContext, parent affine.Affine2D) {
	t, ok := p.effective(parent)
	if !ok {
		return
	}
	st := rc.resolve(p.style)
	half := p.size / 2
	for i, pt := range p.points {
		px := t.Apply(pt)
		if math.IsNaN(px.X) || math.IsNaN(px.Y) || math.IsInf(px.X, 0) || math.IsInf(px.Y, 0) {
			rc.Report(p, fmt.Errorf("point %d: %w", i, ErrDegenerateGeometry))
			continue
		}
		if px.X < rc.Bounds.Left()-half || px.X > rc.Bounds.Right()+half ||
			px.Y < rc.Bounds.Top()-half || px.Y > rc.Bounds.Bottom()+half {
			continue
		}
		drawMarker(rc.Surface, p.marker, px, half, st)
	}
}

func drawMarker(s surface.Surface, m Marker, c affine.Point, half float64, st surface.Style) {
	switch m {
	case MarkerCircle:
		s.DrawCircle(c, half, st)
	case MarkerCross:
		s.DrawLine(affine.Pt(c.X-half, c.Y-half), affine.Pt(c.X+half, c.Y+half), st)
		s.DrawLine(affine.Pt(c.X-half, c.Y+half), affine.Pt(c.X+half, c.Y-half), st)
	default:
		s.DrawPolygon([][]affine.Point{surface.Rect(affine.Rect{
			X: c.X - half, Y: c.Y - half, Width: 2 * half, Height: 2 * half,
		})}, st)
	}
}
