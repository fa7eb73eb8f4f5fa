// Package geom loads vector datasets (GeoJSON, WKT, CSV, KML) into keyed
// features that the plot layers bind to.
package geom

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"gridplot/internal/affine"
)

var (
	ErrEmpty       = errors.New("geom: no geometries found")
	ErrUnsupported = errors.New("geom: unsupported format")
)

// BBox is an axis-aligned world box. The zero value is a box around the
// origin; use EmptyBBox to start accumulating.
type BBox struct {
	MinX float64
	MinY float64
	MaxX float64
	MaxY float64
}

func EmptyBBox() BBox {
	return BBox{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}
}

func (b BBox) IsEmpty() bool { return b.MinX > b.MaxX || b.MinY > b.MaxY }

// Extend grows b to include p.
func (b BBox) Extend(p affine.Point) BBox {
	b.MinX = math.Min(b.MinX, p.X)
	b.MinY = math.Min(b.MinY, p.Y)
	b.MaxX = math.Max(b.MaxX, p.X)
	b.MaxY = math.Max(b.MaxY, p.Y)
	return b
}

func (b BBox) Union(o BBox) BBox {
	if o.IsEmpty() {
		return b
	}
	return b.Extend(affine.Pt(o.MinX, o.MinY)).Extend(affine.Pt(o.MaxX, o.MaxY))
}

// Rect converts b to a world rectangle; an empty box gives the zero Rect.
func (b BBox) Rect() affine.Rect {
	if b.IsEmpty() {
		return affine.Rect{}
	}
	return affine.Rect{X: b.MinX, Y: b.MinY, Width: b.MaxX - b.MinX, Height: b.MaxY - b.MinY}
}

func (b BBox) String() string {
	return fmt.Sprintf("[%.5f,%.5f,%.5f,%.5f]", b.MinX, b.MinY, b.MaxX, b.MaxY)
}

// Geometry holds the parts of one feature. Polygons are lists of rings, the
// first ring being the outer boundary and the rest holes.
type Geometry struct {
	Points   []affine.Point
	Lines    [][]affine.Point
	Polygons [][][]affine.Point
}

func (g Geometry) IsEmpty() bool {
	return len(g.Points) == 0 && len(g.Lines) == 0 && len(g.Polygons) == 0
}

// Merge appends the parts of o.
func (g *Geometry) Merge(o Geometry) {
	g.Points = append(g.Points, o.Points...)
	g.Lines = append(g.Lines, o.Lines...)
	g.Polygons = append(g.Polygons, o.Polygons...)
}

// Vertices calls fn for every coordinate in g.
func (g Geometry) Vertices(fn func(affine.Point)) {
	for _, p := range g.Points {
		fn(p)
	}
	for _, l := range g.Lines {
		for _, p := range l {
			fn(p)
		}
	}
	for _, poly := range g.Polygons {
		for _, r := range poly {
			for _, p := range r {
				fn(p)
			}
		}
	}
}

func (g Geometry) BBox() BBox {
	b := EmptyBBox()
	g.Vertices(func(p affine.Point) { b = b.Extend(p) })
	return b
}

// Feature is one keyed record of a dataset.
type Feature struct {
	ID string
	Geometry
	Attrs map[string]string

	keys []string
}

// NewFeature returns a feature with id, or a random one when id is empty.
func NewFeature(id string, g Geometry) *Feature {
	if id == "" {
		id = uuid.NewString()
	}
	return &Feature{ID: id, Geometry: g, Attrs: map[string]string{}}
}

// SetAttr sets an attribute, remembering the order keys were first set in.
func (f *Feature) SetAttr(k, v string) {
	if _, ok := f.Attrs[k]; !ok {
		f.keys = append(f.keys, k)
	}
	f.Attrs[k] = v
}

// Keys returns the attribute names in insertion order.
func (f *Feature) Keys() []string { return f.keys }

// Distance is the distance from p to the nearest vertex of f.
func (f *Feature) Distance(p affine.Point) float64 {
	d := math.Inf(1)
	f.Vertices(func(v affine.Point) { d = math.Min(d, v.Distance(p)) })
	return d
}

// Dataset is an ordered collection of features from one source.
type Dataset struct {
	Name     string
	Features []*Feature
	// Columns lists attribute names in first-seen order.
	Columns []string
	BBox    BBox

	ids  map[string]bool
	seen map[string]bool
}

func NewDataset(name string) *Dataset {
	return &Dataset{Name: name, BBox: EmptyBBox(), ids: map[string]bool{}, seen: map[string]bool{}}
}

// Add appends f. Empty geometries are dropped; a repeated id gets a numeric
// suffix so that keys stay unique.
func (d *Dataset) Add(f *Feature) bool {
	if f == nil || f.IsEmpty() {
		return false
	}
	if d.ids[f.ID] {
		base := f.ID
		for n := 2; d.ids[f.ID]; n++ {
			f.ID = fmt.Sprintf("%s#%d", base, n)
		}
	}
	d.ids[f.ID] = true
	d.Features = append(d.Features, f)
	d.BBox = d.BBox.Union(f.BBox())
	for _, k := range f.keys {
		if !d.seen[k] {
			d.seen[k] = true
			d.Columns = append(d.Columns, k)
		}
	}
	return true
}

// Counts returns the number of point, line and polygon parts.
func (d *Dataset) Counts() (points, lines, polygons int) {
	for _, f := range d.Features {
		points += len(f.Points)
		lines += len(f.Lines)
		polygons += len(f.Polygons)
	}
	return points, lines, polygons
}

// Nearest returns the feature with the vertex closest to p.
func (d *Dataset) Nearest(p affine.Point) (*Feature, float64) {
	var best *Feature
	bd := math.Inf(1)
	for _, f := range d.Features {
		if dist := f.Distance(p); dist < bd {
			best, bd = f, dist
		}
	}
	return best, bd
}

// Supported reports whether Load understands the extension of path.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".geojson", ".json", ".csv", ".kml", ".wkt":
		return true
	}
	return false
}

// Load reads path, picking the decoder by extension.
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	name := filepath.Base(path)
	var d *Dataset
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".geojson", ".json":
		d, err = DecodeGeoJSON(f, name)
	case ".csv":
		d, err = DecodeCSV(f, name)
	case ".kml":
		d, err = DecodeKML(f, name)
	case ".wkt":
		d, err = DecodeWKT(f, name)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	return d, nil
}

func finish(d *Dataset) (*Dataset, error) {
	if len(d.Features) == 0 {
		return nil, ErrEmpty
	}
	return d, nil
}
