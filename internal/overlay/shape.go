package overlay

import (
	"fmt"
	"math"

	"gridplot/internal/affine"
	"gridplot/internal/surface"
)

// ShapeKind selects the primitive a Shape describes.
type ShapeKind int

const (
	KindPolyline ShapeKind = iota
	KindPolygon
	KindRectangle
	KindCircle
)

// circleSegments is the number of chords used for circles that are not
// drawn as true circles by the surface.
const circleSegments = 64

// Shape is a world-space primitive with an optional transform of its own.
type Shape struct {
	Kind   ShapeKind
	Points []affine.Point   // polyline
	Rings  [][]affine.Point // polygon; the first ring is the outer boundary
	Rect   affine.Rect      // rectangle
	Center affine.Point     // circle
	Radius float64          // circle

	// Transform is applied before the owning node's transform. The zero
	// value means identity.
	Transform affine.Affine2D
	// Style overrides the node style when set.
	Style *surface.Style
}

func Polyline(pts ...affine.Point) Shape     { return Shape{Kind: KindPolyline, Points: pts} }
func Polygon(rings ...[]affine.Point) Shape  { return Shape{Kind: KindPolygon, Rings: rings} }
func Rectangle(r affine.Rect) Shape          { return Shape{Kind: KindRectangle, Rect: r} }
func Circle(c affine.Point, r float64) Shape { return Shape{Kind: KindCircle, Center: c, Radius: r} }

// WithTransform returns a copy of s with its own transform set.
func (s Shape) WithTransform(t affine.Affine2D) Shape {
	s.Transform = t
	return s
}

// WithStyle returns a copy of s with a style override.
func (s Shape) WithStyle(st surface.Style) Shape {
	s.Style = &st
	return s
}

func (s Shape) transform() affine.Affine2D {
	if s.Transform == (affine.Affine2D{}) {
		return affine.Identity()
	}
	return s.Transform
}

// draw renders s with t as the node's effective transform; the shape's own
// transform is applied first.
func (s Shape) draw(rc *RenderContext, t affine.Affine2D, st surface.Style) error {
	full := s.transform().Then(t)
	if s.Style != nil {
		st = mergeStyle(st, *s.Style)
	}
	switch s.Kind {
	case KindPolyline:
		if len(s.Points) < 2 {
			return fmt.Errorf("polyline with %d points: %w", len(s.Points), ErrDegenerateGeometry)
		}
		rc.Surface.DrawPolyline(applyAll(full, s.Points), st)
	case KindPolygon:
		var rings [][]affine.Point
		for _, r := range s.Rings {
			if len(r) >= 3 {
				rings = append(rings, applyAll(full, r))
			}
		}
		if len(rings) == 0 {
			return fmt.Errorf("polygon without a closed ring: %w", ErrDegenerateGeometry)
		}
		rc.Surface.DrawPolygon(rings, st)
	case KindRectangle:
		if s.Rect.Empty() {
			return fmt.Errorf("empty rectangle: %w", ErrDegenerateGeometry)
		}
		rc.Surface.DrawPolygon([][]affine.Point{applyAll(full, surface.Rect(s.Rect))}, st)
	case KindCircle:
		if s.Radius <= 0 {
			return fmt.Errorf("circle radius %g: %w", s.Radius, ErrDegenerateGeometry)
		}
		if r, ok := uniformScale(full); ok {
			rc.Surface.DrawCircle(full.Apply(s.Center), s.Radius*r, st)
			return nil
		}
		m := affine.Scale(s.Radius, s.Radius).Then(affine.Translate(s.Center.X, s.Center.Y)).Then(full)
		rc.Surface.DrawPolygon([][]affine.Point{unitCircle(m)}, st)
	default:
		return fmt.Errorf("shape kind %d: %w", s.Kind, ErrDegenerateGeometry)
	}
	return nil
}

func applyAll(t affine.Affine2D, pts []affine.Point) []affine.Point {
	out := make([]affine.Point, len(pts))
	for i, p := range pts {
		out[i] = t.Apply(p)
	}
	return out
}

// uniformScale reports the pixel radius factor of t when it maps circles to
// circles without rotation.
func uniformScale(t affine.Affine2D) (float64, bool) {
	if t.B != 0 || t.D != 0 || math.Abs(t.A) != math.Abs(t.E) || t.A == 0 {
		return 0, false
	}
	return math.Abs(t.A), true
}

// unitCircle returns the image of the unit circle under m.
func unitCircle(m affine.Affine2D) []affine.Point {
	pts := make([]affine.Point, circleSegments)
	for i := range pts {
		sin, cos := math.Sincos(2 * math.Pi * float64(i) / circleSegments)
		pts[i] = m.Apply(affine.Pt(cos, sin))
	}
	return pts
}

// Geometry draws a single shape.
type Geometry struct {
	nodeBase
	shape Shape
}

func NewGeometry(s Shape) *Geometry { return &Geometry{shape: s} }

func (g *Geometry) Shape() Shape { return g.shape }

func (g *Geometry) SetShape(s Shape) {
	g.shape = s
	g.NotifyReRender()
}

func (g *Geometry) Render(rc *RenderContext, parent affine.Affine2D) {
	t, ok := g.effective(parent)
	if !ok {
		return
	}
	if err := g.shape.draw(rc, t, rc.resolve(g.style)); err != nil {
		rc.Report(g, err)
	}
}

// GeometryGroup draws several shapes under one node. A degenerate shape is
// skipped without affecting the others.
type GeometryGroup struct {
	nodeBase
	shapes []Shape
}

func NewGeometryGroup(shapes ...Shape) *GeometryGroup {
	return &GeometryGroup{shapes: shapes}
}

func (g *GeometryGroup) Shapes() []Shape { return append([]Shape(nil), g.shapes...) }

func (g *GeometryGroup) SetShapes(shapes ...Shape) {
	g.shapes = shapes
	g.NotifyReRender()
}

func (g *GeometryGroup) Add(s Shape) {
	g.shapes = append(g.shapes, s)
	g.NotifyReRender()
}

func (g *GeometryGroup) Render(rc *RenderContext, parent affine.Affine2D) {
	t, ok := g.effective(parent)
	if !ok {
		return
	}
	st := rc.resolve(g.style)
	for _, s := range g.shapes {
		if err := s.draw(rc, t, st); err != nil {
			rc.Report(g, err)
		}
	}
}
