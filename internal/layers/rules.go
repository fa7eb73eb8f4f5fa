package layers

import (
	"gridplot/internal/affine"
	"gridplot/internal/geom"
	"gridplot/internal/overlay"
)

// selectionMarker is the pixel size of the markers drawn on selected vertices.
const selectionMarker = 10

// PointRule draws the points of a feature as one marker series.
func PointRule() overlay.Rule {
	return overlay.For(func(_ *overlay.BoundContext, f *geom.Feature) overlay.Node {
		return overlay.NewPointSeries(f.Points...)
	}).WithUpdate(func(ctx *overlay.BoundContext, n overlay.Node) {
		n.(*overlay.PointSeries).SetPoints(ctx.Value.(*geom.Feature).Points...)
	})
}

// LineRule draws every line of a feature as a polyline.
func LineRule() overlay.Rule {
	return overlay.For(func(_ *overlay.BoundContext, f *geom.Feature) overlay.Node {
		return overlay.NewGeometryGroup(lineShapes(f.Lines)...)
	}).WithUpdate(func(ctx *overlay.BoundContext, n overlay.Node) {
		n.(*overlay.GeometryGroup).SetShapes(lineShapes(ctx.Value.(*geom.Feature).Lines)...)
	})
}

// PolygonRule draws every polygon of a feature, holes included.
func PolygonRule() overlay.Rule {
	return overlay.For(func(_ *overlay.BoundContext, f *geom.Feature) overlay.Node {
		return overlay.NewGeometryGroup(polygonShapes(f.Polygons)...)
	}).WithUpdate(func(ctx *overlay.BoundContext, n overlay.Node) {
		n.(*overlay.GeometryGroup).SetShapes(polygonShapes(ctx.Value.(*geom.Feature).Polygons)...)
	})
}

// AnnotationRule draws an annotation as its shapes, its points and a label
// above the geometry.
func AnnotationRule() overlay.Rule {
	return overlay.For(func(_ *overlay.BoundContext, a Annotation) overlay.Node {
		g := overlay.NewGroup(
			overlay.NewGeometryGroup(),
			overlay.NewPointSeries(),
			overlay.NewText(affine.Point{}, "", overlay.AnchorBottomCenter),
		)
		fillAnnotation(g, a)
		return g
	}).WithUpdate(func(ctx *overlay.BoundContext, n overlay.Node) {
		fillAnnotation(n.(*overlay.Group), ctx.Value.(Annotation))
	})
}

func fillAnnotation(g *overlay.Group, a Annotation) {
	kids := g.Children()
	kids[0].(*overlay.GeometryGroup).SetShapes(
		append(lineShapes(a.Geometry.Lines), polygonShapes(a.Geometry.Polygons)...)...)
	kids[1].(*overlay.PointSeries).SetPoints(a.Geometry.Points...)

	label := kids[2].(*overlay.Text)
	label.SetLabel(a.Label)
	if b := a.Geometry.BBox(); !b.IsEmpty() {
		label.SetPosition(affine.Pt((b.MinX+b.MaxX)/2, b.MaxY))
	}
}

// SelectionRules highlight a feature: features without area (points and
// axis-aligned lines) get circles on their vertices, the rest a frame around
// their bounding box.
func SelectionRules() []overlay.Rule {
	flat := overlay.For(func(_ *overlay.BoundContext, f *geom.Feature) overlay.Node {
		ps := overlay.NewPointSeries(vertices(f)...)
		ps.SetMarker(overlay.MarkerCircle, selectionMarker)
		return ps
	}).WithUpdate(func(ctx *overlay.BoundContext, n overlay.Node) {
		n.(*overlay.PointSeries).SetPoints(vertices(ctx.Value.(*geom.Feature))...)
	})
	flat.Match = func(v any) bool {
		f, ok := v.(*geom.Feature)
		return ok && f.BBox().Rect().Empty()
	}

	framed := overlay.For(func(_ *overlay.BoundContext, f *geom.Feature) overlay.Node {
		return overlay.NewGeometry(overlay.Rectangle(f.BBox().Rect()))
	}).WithUpdate(func(ctx *overlay.BoundContext, n overlay.Node) {
		n.(*overlay.Geometry).SetShape(overlay.Rectangle(ctx.Value.(*geom.Feature).BBox().Rect()))
	})
	return []overlay.Rule{flat, framed}
}

func vertices(f *geom.Feature) []affine.Point {
	var pts []affine.Point
	f.Vertices(func(p affine.Point) { pts = append(pts, p) })
	return pts
}

func lineShapes(lines [][]affine.Point) []overlay.Shape {
	shapes := make([]overlay.Shape, 0, len(lines))
	for _, l := range lines {
		shapes = append(shapes, overlay.Polyline(l...))
	}
	return shapes
}

func polygonShapes(polys [][][]affine.Point) []overlay.Shape {
	shapes := make([]overlay.Shape, 0, len(polys))
	for _, rings := range polys {
		shapes = append(shapes, overlay.Polygon(rings...))
	}
	return shapes
}
