package overlay

import (
	"math"

	"gridplot/internal/affine"
	"gridplot/internal/surface"
)

// Item is one element of a LayeredGeometry.
type Item interface {
	draw(rc *RenderContext, t affine.Affine2D, st surface.Style) error
}

// Line is the infinite line A*x + B*y + C = 0 in world coordinates.
type Line struct {
	A, B, C float64
	Style   *surface.Style
}

// Segment clips the line under t to bounds. The two intersections are taken
// with the pair of opposite edges the transformed direction is least parallel
// to, so the segment always spans the bounds.
func (l Line) Segment(t affine.Affine2D, bounds affine.Rect) (affine.Point, affine.Point, error) {
	n2 := l.A*l.A + l.B*l.B
	if n2 == 0 {
		return affine.Point{}, affine.Point{}, ErrDegenerateGeometry
	}
	p := t.Apply(affine.Pt(-l.A*l.C/n2, -l.B*l.C/n2))
	d := t.ApplyVector(affine.Vec(-l.B, l.A))
	if d.IsZero() {
		return affine.Point{}, affine.Point{}, ErrDegenerateGeometry
	}
	if math.Abs(d.X) >= math.Abs(d.Y) {
		s0 := (bounds.Left() - p.X) / d.X
		s1 := (bounds.Right() - p.X) / d.X
		return p.Add(d.Scale(s0)), p.Add(d.Scale(s1)), nil
	}
	s0 := (bounds.Top() - p.Y) / d.Y
	s1 := (bounds.Bottom() - p.Y) / d.Y
	return p.Add(d.Scale(s0)), p.Add(d.Scale(s1)), nil
}

func (l Line) draw(rc *RenderContext, t affine.Affine2D, st surface.Style) error {
	a, b, err := l.Segment(t, rc.Bounds)
	if err != nil {
		return err
	}
	if l.Style != nil {
		st = mergeStyle(st, *l.Style)
	}
	rc.Surface.DrawLine(a, b, st)
	return nil
}

// Ellipse is the unit circle under Matrix.
type Ellipse struct {
	Matrix affine.Affine2D
	Style  *surface.Style
}

func (e Ellipse) draw(rc *RenderContext, t affine.Affine2D, st surface.Style) error {
	m := e.Matrix.Then(t)
	if m.Determinant() == 0 {
		return ErrDegenerateGeometry
	}
	if e.Style != nil {
		st = mergeStyle(st, *e.Style)
	}
	rc.Surface.DrawPolygon([][]affine.Point{unitCircle(m)}, st)
	return nil
}

// LayeredGeometry draws analytic items: infinite lines and ellipses.
type LayeredGeometry struct {
	nodeBase
	items []Item
}

func NewLayeredGeometry(items ...Item) *LayeredGeometry {
	return &LayeredGeometry{items: items}
}

func (g *LayeredGeometry) Items() []Item { return append([]Item(nil), g.items...) }

func (g *LayeredGeometry) Add(it Item) {
	g.items = append(g.items, it)
	g.NotifyReRender()
}

func (g *LayeredGeometry) SetItems(items ...Item) {
	g.items = items
	g.NotifyReRender()
}

func (g *LayeredGeometry) Render(rc *RenderContext, parent affine.Affine2D) {
	t, ok := g.effective(parent)
	if !ok {
		return
	}
	st := rc.resolve(g.style)
	for _, it := range g.items {
		if err := it.draw(rc, t, st); err != nil {
			rc.Report(g, err)
		}
	}
}
