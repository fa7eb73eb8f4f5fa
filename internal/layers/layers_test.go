package layers

import (
	"bytes"
	"errors"
	"testing"

	"github.com/charmbracelet/log"

	"gridplot/internal/affine"
	"gridplot/internal/config"
	"gridplot/internal/geom"
	"gridplot/internal/overlay"
	"gridplot/internal/surface"
)

var style = config.Default().Style

func newSet(t *testing.T) (*Set, *overlay.Host, *int) {
	t.Helper()
	var buf bytes.Buffer
	logger := log.New(&buf)
	h := overlay.NewHost(overlay.WithLogger(logger))
	repaints := 0
	h.OnInvalidate(func() { repaints++ })
	s := New(h.Root(), style, WithLogger(logger))
	t.Cleanup(s.Close)
	return s, h, &repaints
}

func render(h *overlay.Host) []surface.Command {
	rec := surface.NewRecorder(affine.Bounds(100, 100))
	h.Render(rec, affine.Identity())
	return rec.Commands()
}

func count(cmds []surface.Command, op surface.Op, stroke string) int {
	n := 0
	for _, c := range cmds {
		if c.Op == op && c.Style.Stroke == stroke {
			n++
		}
	}
	return n
}

func sample() *geom.Dataset {
	d := geom.NewDataset("sample")
	d.Add(geom.NewFeature("well", geom.Geometry{Points: []affine.Point{affine.Pt(10, 10), affine.Pt(20, 10)}}))
	d.Add(geom.NewFeature("road", geom.Geometry{Lines: [][]affine.Point{
		{affine.Pt(0, 50), affine.Pt(50, 60)},
		{affine.Pt(50, 60), affine.Pt(90, 90)},
	}}))
	d.Add(geom.NewFeature("lake", geom.Geometry{Polygons: [][][]affine.Point{{
		{affine.Pt(60, 10), affine.Pt(90, 10), affine.Pt(90, 40), affine.Pt(60, 40)},
	}}}))
	return d
}

func binder(s *Set, l Layer) *overlay.MapBound[string] {
	return s.groups[l].Children()[0].(*overlay.MapBound[string])
}

func TestRootOrder(t *testing.T) {
	s, h, _ := newSet(t)
	kids := s.Root().Children()
	if len(kids) != int(numLayers)+2 {
		t.Fatalf("root children = %d, want %d", len(kids), int(numLayers)+2)
	}
	for l := range numLayers {
		if kids[l] != overlay.Node(s.groups[l]) {
			t.Errorf("child %d is not layer %d", l, l)
		}
	}
	if kids[numLayers] != overlay.Node(s.selection) || kids[numLayers+1] != overlay.Node(s.cursor) {
		t.Error("selection and cursor are not drawn above the layers")
	}
	if h.Root().Children()[0] != overlay.Node(s.Root()) {
		t.Error("root group not attached to the parent")
	}
}

func TestLoad(t *testing.T) {
	s, h, _ := newSet(t)
	s.Load(sample())

	if p, l, g := s.Counts(); p != 1 || l != 1 || g != 1 {
		t.Fatalf("Counts() = %d %d %d, want 1 1 1", p, l, g)
	}
	cmds := render(h)
	if got := count(cmds, surface.OpPolyline, style.Lines); got != 2 {
		t.Errorf("polylines = %d, want 2", got)
	}
	if got := count(cmds, surface.OpPolygon, style.Points); got != 2 {
		t.Errorf("point markers = %d, want 2", got)
	}
	var lake *surface.Command
	for i := range cmds {
		if cmds[i].Op == surface.OpPolygon && cmds[i].Style.Stroke == style.Polygons {
			lake = &cmds[i]
		}
	}
	if lake == nil || lake.Style.Fill != style.Polygons+polygonAlpha {
		t.Errorf("polygon command = %v", lake)
	}
	// polygons sit below lines and points
	if cmds[0].Style.Stroke != style.Polygons {
		t.Errorf("first command = %v, want the polygon", cmds[0])
	}

	s.Load(geom.NewDataset("empty"))
	if p, l, g := s.Counts(); p+l+g != 0 || len(render(h)) != 0 {
		t.Errorf("reload left %d %d %d features", p, l, g)
	}
}

func TestUpsertKeepsNodes(t *testing.T) {
	s, h, repaints := newSet(t)
	s.Load(sample())
	render(h)
	*repaints = 0

	cell, _ := binder(s, Points).Cell("well")
	node := cell.Node

	moved := geom.NewFeature("well", geom.Geometry{Points: []affine.Point{affine.Pt(5, 5)}})
	s.Upsert(moved)

	after, _ := binder(s, Points).Cell("well")
	if after.Node != node {
		t.Error("upsert rebuilt the point node")
	}
	if got := node.(*overlay.PointSeries).Points(); len(got) != 1 || got[0] != affine.Pt(5, 5) {
		t.Errorf("points = %v, want [(5,5)]", got)
	}
	if *repaints != 1 {
		t.Errorf("repaints = %d, want 1", *repaints)
	}

	// a feature that gains a line shows up in the line layer too
	moved.Lines = [][]affine.Point{{affine.Pt(0, 0), affine.Pt(1, 1)}}
	s.Upsert(moved)
	if _, l, _ := s.Counts(); l != 2 {
		t.Errorf("lines = %d, want 2", l)
	}
	if f, ok := s.Feature("well"); !ok || f != moved {
		t.Error("Feature() did not find the upserted feature")
	}

	s.Delete("well")
	if p, l, _ := s.Counts(); p != 0 || l != 1 {
		t.Errorf("after Delete: points=%d lines=%d", p, l)
	}
}

func TestToggle(t *testing.T) {
	s, h, repaints := newSet(t)
	s.Load(sample())
	render(h)
	*repaints = 0

	if s.Toggle(Points) {
		t.Fatal("Toggle(Points) = true, want hidden")
	}
	if *repaints != 1 {
		t.Errorf("repaints = %d, want 1", *repaints)
	}
	if got := count(render(h), surface.OpPolygon, style.Points); got != 0 {
		t.Errorf("hidden point markers drawn: %d", got)
	}

	// edits to a hidden layer do not repaint
	*repaints = 0
	s.Upsert(geom.NewFeature("extra", geom.Geometry{Points: []affine.Point{affine.Pt(1, 1)}}))
	if *repaints != 0 {
		t.Errorf("repaints from hidden layer = %d, want 0", *repaints)
	}
	if p, _, _ := s.Counts(); p != 2 {
		t.Errorf("hidden layer did not take the update: %d points", p)
	}

	if s.ToggleAll() {
		t.Error("ToggleAll() = true with layers shown, want hidden")
	}
	for l := range numLayers {
		if s.Visible(l) {
			t.Errorf("%v still visible", l)
		}
	}
	if !s.ToggleAll() || !s.Visible(Points) {
		t.Error("second ToggleAll() did not show every layer")
	}
}

func TestAnnotations(t *testing.T) {
	s, h, _ := newSet(t)

	if _, err := s.AnnotateWKT("bad", "POINT (1"); !errors.Is(err, geom.ErrWKT) {
		t.Fatalf("AnnotateWKT() = %v, want ErrWKT", err)
	}
	if s.Annotations() != 0 {
		t.Fatal("invalid WKT was added")
	}

	i, err := s.AnnotateWKT("site", "POLYGON ((10 10, 30 10, 30 30, 10 10))")
	if err != nil || i != 0 {
		t.Fatalf("AnnotateWKT() = %d, %v", i, err)
	}
	s.Annotate(Annotation{Label: "pin", Geometry: geom.Geometry{Points: []affine.Point{affine.Pt(50, 50)}}})
	s.AddNode(overlay.NewText(affine.Pt(70, 70), "note", overlay.AnchorCenter))

	cmds := render(h)
	texts := map[string]affine.Point{}
	for _, c := range cmds {
		if c.Op == surface.OpText {
			texts[c.Text] = c.Points[0]
		}
	}
	if len(texts) != 3 {
		t.Fatalf("labels = %v, want site, pin and note", texts)
	}
	if count(cmds, surface.OpPolygon, style.Annotations) != 2 {
		t.Errorf("want the site polygon and the pin marker in %v", cmds)
	}

	s.RemoveAnnotation(0)
	if s.Annotations() != 2 {
		t.Errorf("Annotations() = %d, want 2", s.Annotations())
	}
	s.ClearAnnotations()
	if len(render(h)) != 0 {
		t.Error("cleared annotations still render")
	}
}

func TestInspect(t *testing.T) {
	s, h, _ := newSet(t)
	s.Load(sample())

	f, d := s.Inspect(affine.Pt(21, 10))
	if f == nil || f.ID != "well" || d != 1 {
		t.Fatalf("Inspect() = %v, %v, want well at 1", f, d)
	}
	if _, ok := s.selection.Child().(*overlay.PointSeries); !ok {
		t.Errorf("point selection child = %T, want *overlay.PointSeries", s.selection.Child())
	}
	if got := count(render(h), surface.OpCircle, style.Ruler); got != 2 {
		t.Errorf("selection circles = %d, want 2", got)
	}

	f, _ = s.Inspect(affine.Pt(75, 25))
	if f == nil || f.ID != "lake" {
		t.Fatalf("Inspect() = %v, want lake", f)
	}
	if _, ok := s.selection.Child().(*overlay.Geometry); !ok {
		t.Errorf("area selection child = %T, want *overlay.Geometry", s.selection.Child())
	}

	s.SetVisible(Polygons, false)
	if f, _ := s.Inspect(affine.Pt(75, 25)); f == nil || f.ID == "lake" {
		t.Errorf("Inspect() picked %v from a hidden layer", f)
	}

	s.Select(s.dataset.Features[2])
	s.Delete("lake")
	if s.Selected() != nil {
		t.Error("deleting the selected feature kept the selection")
	}
}

func TestCursor(t *testing.T) {
	s, h, _ := newSet(t)
	s.SetCursor(affine.Pt(30, 40), true)
	cmds := render(h)
	if got := count(cmds, surface.OpLine, style.Axis); got != 2 {
		t.Fatalf("crosshair lines = %d, want 2", got)
	}
	for _, c := range cmds {
		a, b := c.Points[0], c.Points[1]
		if a.X == b.X && a.X != 30 || a.Y == b.Y && a.Y != 40 {
			t.Errorf("crosshair line %v misplaced", c)
		}
	}
	s.SetCursor(affine.Point{}, false)
	if len(render(h)) != 0 {
		t.Error("hidden crosshair still renders")
	}
}

func TestLayerString(t *testing.T) {
	if Points.String() != "points" || Layer(9).String() != "Layer(9)" {
		t.Errorf("String() = %q %q", Points, Layer(9))
	}
}
