package geom

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gridplot/internal/affine"
)

type kmlCoords struct {
	Coordinates string `xml:"coordinates"`
}

type kmlPolygon struct {
	Outer kmlCoords   `xml:"outerBoundaryIs>LinearRing"`
	Inner []kmlCoords `xml:"innerBoundaryIs>LinearRing"`
}

type kmlMulti struct {
	Points   []kmlCoords  `xml:"Point"`
	Lines    []kmlCoords  `xml:"LineString"`
	Polygons []kmlPolygon `xml:"Polygon"`
}

type kmlPlacemark struct {
	ID          string `xml:"id,attr"`
	Name        string `xml:"name"`
	Description string `xml:"description"`
	kmlMulti
	Multi []kmlMulti `xml:"MultiGeometry"`
	Data  []struct {
		Name  string `xml:"name,attr"`
		Value string `xml:"value"`
	} `xml:"ExtendedData>Data"`
}

// DecodeKML reads Placemarks at any depth (inside Document and Folder
// elements). Point, LineString, Polygon and MultiGeometry are supported;
// altitude is ignored. Name, description and ExtendedData become attributes.
func DecodeKML(r io.Reader, name string) (*Dataset, error) {
	d := NewDataset(name)
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("kml: %w", err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "Placemark" {
			continue
		}
		var pm kmlPlacemark
		if err := dec.DecodeElement(&pm, &se); err != nil {
			return nil, fmt.Errorf("kml: %w", err)
		}
		g, err := pm.geometry()
		if err != nil {
			return nil, fmt.Errorf("kml placemark %q: %w", pm.Name, err)
		}
		f := NewFeature(pm.ID, g)
		if pm.Name != "" {
			f.SetAttr("name", pm.Name)
		}
		if s := strings.TrimSpace(pm.Description); s != "" {
			f.SetAttr("description", s)
		}
		for _, kv := range pm.Data {
			f.SetAttr(kv.Name, strings.TrimSpace(kv.Value))
		}
		d.Add(f)
	}
	return finish(d)
}

func (pm kmlPlacemark) geometry() (Geometry, error) {
	var g Geometry
	for _, m := range append([]kmlMulti{pm.kmlMulti}, pm.Multi...) {
		part, err := m.geometry()
		if err != nil {
			return Geometry{}, err
		}
		g.Merge(part)
	}
	return g, nil
}

func (m kmlMulti) geometry() (Geometry, error) {
	var g Geometry
	for _, p := range m.Points {
		pts, err := parseKMLCoords(p.Coordinates)
		if err != nil {
			return Geometry{}, err
		}
		g.Points = append(g.Points, pts...)
	}
	for _, l := range m.Lines {
		pts, err := parseKMLCoords(l.Coordinates)
		if err != nil {
			return Geometry{}, err
		}
		g.Lines = append(g.Lines, pts)
	}
	for _, poly := range m.Polygons {
		outer, err := parseKMLCoords(poly.Outer.Coordinates)
		if err != nil {
			return Geometry{}, err
		}
		rings := [][]affine.Point{outer}
		for _, in := range poly.Inner {
			hole, err := parseKMLCoords(in.Coordinates)
			if err != nil {
				return Geometry{}, err
			}
			rings = append(rings, hole)
		}
		g.Polygons = append(g.Polygons, rings)
	}
	return g, nil
}

// parseKMLCoords parses whitespace separated "lon,lat[,alt]" tuples.
func parseKMLCoords(s string) ([]affine.Point, error) {
	var pts []affine.Point
	for _, tuple := range strings.Fields(s) {
		vals := strings.Split(tuple, ",")
		if len(vals) < 2 {
			return nil, fmt.Errorf("bad coordinate %q", tuple)
		}
		lon, err1 := strconv.ParseFloat(vals[0], 64)
		lat, err2 := strconv.ParseFloat(vals[1], 64)
		if err1 != nil || err2 != nil {
			return nil, fmt.Errorf("bad coordinate %q", tuple)
		}
		pts = append(pts, affine.Pt(lon, lat))
	}
	return pts, nil
}
