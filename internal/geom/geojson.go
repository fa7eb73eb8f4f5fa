package geom

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"

	"gridplot/internal/affine"
)

type geoJSON struct {
	Type        string          `json:"type"`
	ID          json.RawMessage `json:"id"`
	Geometry    *geoJSON        `json:"geometry"`
	Properties  map[string]any  `json:"properties"`
	Features    []geoJSON       `json:"features"`
	Coordinates json.RawMessage `json:"coordinates"`
	Geometries  []geoJSON       `json:"geometries"`
}

// DecodeGeoJSON reads a FeatureCollection, a single Feature or a bare
// geometry. Feature ids and properties are kept.
func DecodeGeoJSON(r io.Reader, name string) (*Dataset, error) {
	var doc geoJSON
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("geojson: %w", err)
	}
	d := NewDataset(name)
	switch doc.Type {
	case "FeatureCollection":
		for i := range doc.Features {
			if err := addGeoFeature(d, &doc.Features[i]); err != nil {
				return nil, fmt.Errorf("geojson feature %d: %w", i, err)
			}
		}
	case "Feature":
		if err := addGeoFeature(d, &doc); err != nil {
			return nil, fmt.Errorf("geojson: %w", err)
		}
	case "":
		return nil, fmt.Errorf("geojson: missing type")
	default:
		g, err := doc.geometry()
		if err != nil {
			return nil, fmt.Errorf("geojson: %w", err)
		}
		d.Add(NewFeature("", g))
	}
	return finish(d)
}

func addGeoFeature(d *Dataset, f *geoJSON) error {
	if f.Geometry == nil {
		return nil
	}
	g, err := f.Geometry.geometry()
	if err != nil {
		return err
	}
	feat := NewFeature(rawID(f.ID), g)
	for _, k := range slices.Sorted(maps.Keys(f.Properties)) {
		feat.SetAttr(k, formatValue(f.Properties[k]))
	}
	d.Add(feat)
	return nil
}

func (g *geoJSON) geometry() (Geometry, error) {
	var out Geometry
	var err error
	switch g.Type {
	case "Point":
		var c []float64
		if err = json.Unmarshal(g.Coordinates, &c); err == nil {
			var p affine.Point
			if p, err = position(c); err == nil {
				out.Points = []affine.Point{p}
			}
		}
	case "MultiPoint":
		out.Points, err = decodePath(g.Coordinates)
	case "LineString":
		var l []affine.Point
		if l, err = decodePath(g.Coordinates); err == nil {
			out.Lines = [][]affine.Point{l}
		}
	case "MultiLineString":
		out.Lines, err = decodeRings(g.Coordinates)
	case "Polygon":
		var rings [][]affine.Point
		if rings, err = decodeRings(g.Coordinates); err == nil {
			out.Polygons = [][][]affine.Point{rings}
		}
	case "MultiPolygon":
		var polys [][][][]float64
		if err = json.Unmarshal(g.Coordinates, &polys); err == nil {
			for _, poly := range polys {
				var rings [][]affine.Point
				if rings, err = positionsList(poly); err != nil {
					break
				}
				out.Polygons = append(out.Polygons, rings)
			}
		}
	case "GeometryCollection":
		for i := range g.Geometries {
			part, perr := g.Geometries[i].geometry()
			if perr != nil {
				return Geometry{}, perr
			}
			out.Merge(part)
		}
	default:
		return Geometry{}, fmt.Errorf("%w: geometry type %q", ErrUnsupported, g.Type)
	}
	if err != nil {
		return Geometry{}, fmt.Errorf("%s: %w", g.Type, err)
	}
	return out, nil
}

func position(c []float64) (affine.Point, error) {
	if len(c) < 2 {
		return affine.Point{}, fmt.Errorf("position needs two coordinates, got %d", len(c))
	}
	return affine.Pt(c[0], c[1]), nil
}

func positions(cs [][]float64) ([]affine.Point, error) {
	pts := make([]affine.Point, 0, len(cs))
	for _, c := range cs {
		p, err := position(c)
		if err != nil {
			return nil, err
		}
		pts = append(pts, p)
	}
	return pts, nil
}

func positionsList(css [][][]float64) ([][]affine.Point, error) {
	out := make([][]affine.Point, 0, len(css))
	for _, cs := range css {
		pts, err := positions(cs)
		if err != nil {
			return nil, err
		}
		out = append(out, pts)
	}
	return out, nil
}

func decodePath(raw json.RawMessage) ([]affine.Point, error) {
	var cs [][]float64
	if err := json.Unmarshal(raw, &cs); err != nil {
		return nil, err
	}
	return positions(cs)
}

func decodeRings(raw json.RawMessage) ([][]affine.Point, error) {
	var css [][][]float64
	if err := json.Unmarshal(raw, &css); err != nil {
		return nil, err
	}
	return positionsList(css)
}

// rawID accepts the string or number forms of a feature id.
func rawID(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var n json.Number
	if json.Unmarshal(raw, &n) == nil {
		return n.String()
	}
	return ""
}

func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		bs, _ := json.Marshal(t)
		return string(bs)
	}
}
