// Package layers binds datasets into the overlay tree. Features live in
// observable maps, one per geometry kind, and reach the screen through
// binders and template rules; pasted annotations live in an observable list.
package layers

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"gridplot/internal/affine"
	"gridplot/internal/collection"
	"gridplot/internal/config"
	"gridplot/internal/geom"
	"gridplot/internal/overlay"
	"gridplot/internal/surface"
)

// Layer names one of the toggleable groups.
type Layer int

const (
	Polygons Layer = iota
	Lines
	Points
	Annotations
	numLayers
)

func (l Layer) String() string {
	switch l {
	case Polygons:
		return "polygons"
	case Lines:
		return "lines"
	case Points:
		return "points"
	case Annotations:
		return "annotations"
	}
	return fmt.Sprintf("Layer(%d)", int(l))
}

// polygonAlpha is appended to the polygon colour for the translucent fill.
const polygonAlpha = "40"

// Annotation is a labelled geometry added by the user.
type Annotation struct {
	Label    string
	Geometry geom.Geometry
}

type Option func(*Set)

func WithLogger(l *log.Logger) Option {
	return func(s *Set) {
		if l != nil {
			s.logger = l
		}
	}
}

// Set owns the data layers of one plot.
type Set struct {
	logger  *log.Logger
	root    *overlay.Group
	groups  [numLayers]*overlay.Group
	dataset *geom.Dataset

	points      *collection.Map[string, *geom.Feature]
	lines       *collection.Map[string, *geom.Feature]
	polygons    *collection.Map[string, *geom.Feature]
	annotations *collection.List[any]
	binders     []interface{ Close() }

	selection *overlay.Content
	cursor    *overlay.LayeredGeometry
}

// New builds the layer groups and adds them to parent, bottom to top:
// polygons, lines, points, annotations, selection, cursor.
func New(parent *overlay.Group, st config.StyleConfig, opts ...Option) *Set {
	s := &Set{
		logger:      log.New(io.Discard),
		points:      collection.NewMap[string, *geom.Feature](),
		lines:       collection.NewMap[string, *geom.Feature](),
		polygons:    collection.NewMap[string, *geom.Feature](),
		annotations: collection.NewList[any](),
	}
	for _, opt := range opts {
		opt(s)
	}

	polys := overlay.NewMapBound[string](PolygonRule())
	polys.SetSource(s.polygons)
	lines := overlay.NewMapBound[string](LineRule())
	lines.SetSource(s.lines)
	pts := overlay.NewMapBound[string](PointRule())
	pts.SetSource(s.points)
	notes := overlay.NewListBound(AnnotationRule())
	notes.SetSource(s.annotations)
	s.binders = []interface{ Close() }{polys, lines, pts, notes}

	s.groups[Polygons] = overlay.NewGroup(polys)
	s.groups[Polygons].SetStyle(surface.Style{Stroke: st.Polygons, Fill: st.Polygons + polygonAlpha})
	s.groups[Lines] = overlay.NewGroup(lines)
	s.groups[Lines].SetStyle(surface.Style{Stroke: st.Lines})
	s.groups[Points] = overlay.NewGroup(pts)
	s.groups[Points].SetStyle(surface.Style{Stroke: st.Points, Fill: st.Points})
	s.groups[Annotations] = overlay.NewGroup(notes)
	s.groups[Annotations].SetStyle(surface.Style{Stroke: st.Annotations, Fill: st.Annotations, FontSize: 12})

	s.selection = overlay.NewContent(SelectionRules()...)
	s.selection.SetStyle(surface.Style{Stroke: st.Ruler, LineWidth: 2})
	s.cursor = overlay.NewLayeredGeometry()
	s.cursor.SetStyle(surface.Style{Stroke: st.Axis})
	s.cursor.SetVisible(false)

	nodes := make([]overlay.Node, 0, numLayers+2)
	for _, g := range s.groups {
		nodes = append(nodes, g)
	}
	s.root = overlay.NewGroup(append(nodes, s.selection, s.cursor)...)
	parent.Add(s.root)
	return s
}

// Root is the group holding every layer.
func (s *Set) Root() *overlay.Group { return s.root }

func (s *Set) Dataset() *geom.Dataset { return s.dataset }

// Load replaces all features with those of d. Each binder sees a single
// Reset.
func (s *Set) Load(d *geom.Dataset) {
	var pts, lines, polys []collection.Entry[string, *geom.Feature]
	for _, f := range d.Features {
		e := collection.Entry[string, *geom.Feature]{Key: f.ID, Value: f}
		if len(f.Points) > 0 {
			pts = append(pts, e)
		}
		if len(f.Lines) > 0 {
			lines = append(lines, e)
		}
		if len(f.Polygons) > 0 {
			polys = append(polys, e)
		}
	}
	s.dataset = d
	s.selection.SetValue(nil)
	s.points.Reset(pts...)
	s.lines.Reset(lines...)
	s.polygons.Reset(polys...)
	s.logger.Info("dataset loaded", "name", d.Name, "features", len(d.Features),
		"points", len(pts), "lines", len(lines), "polygons", len(polys))
}

// Upsert adds or replaces one feature. A replaced feature keeps its nodes.
func (s *Set) Upsert(f *geom.Feature) {
	for _, m := range []struct {
		src *collection.Map[string, *geom.Feature]
		has bool
	}{
		{s.points, len(f.Points) > 0},
		{s.lines, len(f.Lines) > 0},
		{s.polygons, len(f.Polygons) > 0},
	} {
		if m.has {
			m.src.Set(f.ID, f)
		} else {
			m.src.Delete(f.ID)
		}
	}
}

// Delete removes a feature from every layer.
func (s *Set) Delete(id string) {
	s.points.Delete(id)
	s.lines.Delete(id)
	s.polygons.Delete(id)
	if f, ok := s.selection.Value().(*geom.Feature); ok && f.ID == id {
		s.selection.SetValue(nil)
	}
}

// Feature returns the feature stored under id in any layer.
func (s *Set) Feature(id string) (*geom.Feature, bool) {
	for _, m := range []*collection.Map[string, *geom.Feature]{s.points, s.lines, s.polygons} {
		if f, ok := m.Get(id); ok {
			return f, true
		}
	}
	return nil, false
}

// Counts returns how many features each data layer holds.
func (s *Set) Counts() (points, lines, polygons int) {
	return s.points.Len(), s.lines.Len(), s.polygons.Len()
}

func (s *Set) Visible(l Layer) bool { return s.groups[l].Visible() }

func (s *Set) SetVisible(l Layer, v bool) { s.groups[l].SetVisible(v) }

// Toggle flips one layer and returns its new visibility.
func (s *Set) Toggle(l Layer) bool {
	v := !s.groups[l].Visible()
	s.groups[l].SetVisible(v)
	return v
}

// ToggleAll hides every layer if any is shown, otherwise shows them all.
func (s *Set) ToggleAll() bool {
	shown := false
	for l := range numLayers {
		shown = shown || s.groups[l].Visible()
	}
	for l := range numLayers {
		s.groups[l].SetVisible(!shown)
	}
	return !shown
}

// Annotate appends an annotation and returns its index.
func (s *Set) Annotate(a Annotation) int {
	s.annotations.Append(a)
	return s.annotations.Len() - 1
}

// AnnotateWKT parses a WKT geometry and appends it labelled with label.
func (s *Set) AnnotateWKT(label, wkt string) (int, error) {
	g, err := geom.ParseWKT(wkt)
	if err != nil {
		return -1, err
	}
	return s.Annotate(Annotation{Label: label, Geometry: g}), nil
}

// AddNode appends a prebuilt node to the annotation layer as is.
func (s *Set) AddNode(n overlay.Node) { s.annotations.Append(n) }

func (s *Set) Annotations() int { return s.annotations.Len() }

// RemoveAnnotation drops the annotation at i.
func (s *Set) RemoveAnnotation(i int) { s.annotations.RemoveAt(i) }

func (s *Set) ClearAnnotations() { s.annotations.Reset() }

// Select highlights f; nil clears the highlight.
func (s *Set) Select(f *geom.Feature) {
	if f == nil {
		s.selection.SetValue(nil)
		return
	}
	s.selection.SetValue(f)
}

func (s *Set) Selected() *geom.Feature {
	f, _ := s.selection.Value().(*geom.Feature)
	return f
}

// Inspect selects the feature nearest to p among the visible data layers.
func (s *Set) Inspect(p affine.Point) (*geom.Feature, float64) {
	var best *geom.Feature
	bd := 0.0
	for _, c := range []struct {
		layer Layer
		src   *collection.Map[string, *geom.Feature]
	}{{Polygons, s.polygons}, {Lines, s.lines}, {Points, s.points}} {
		if !s.Visible(c.layer) {
			continue
		}
		for _, k := range c.src.Keys() {
			f, _ := c.src.Get(k)
			if d := f.Distance(p); best == nil || d < bd {
				best, bd = f, d
			}
		}
	}
	s.Select(best)
	if best != nil {
		s.logger.Debug("inspect", "id", best.ID, "distance", bd)
	}
	return best, bd
}

// SetCursor shows a crosshair through p, or hides it when show is false.
func (s *Set) SetCursor(p affine.Point, show bool) {
	if !show {
		s.cursor.SetVisible(false)
		return
	}
	s.cursor.SetItems(
		overlay.Line{A: 1, C: -p.X},
		overlay.Line{B: 1, C: -p.Y},
	)
	s.cursor.SetVisible(true)
}

// Close detaches the binders from their sources.
func (s *Set) Close() {
	for _, b := range s.binders {
		b.Close()
	}
}
