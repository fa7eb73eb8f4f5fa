package geom

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gridplot/internal/affine"
)

var ErrNoCoordinateColumns = errors.New("geom: csv needs x/lon and y/lat columns")

// DecodeCSV reads one point per row. Coordinate columns are found by name:
// lat|latitude|y and lon|lng|long|longitude|x, case-insensitive. An "id"
// column keys the features; every other column becomes an attribute. Rows
// whose coordinates do not parse are skipped.
func DecodeCSV(r io.Reader, name string) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("csv: %w", err)
	}

	lat, lon, id := -1, -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "lat", "latitude", "y":
			if lat == -1 {
				lat = i
			}
		case "lon", "lng", "long", "longitude", "x":
			if lon == -1 {
				lon = i
			}
		case "id":
			if id == -1 {
				id = i
			}
		}
	}
	if lat == -1 || lon == -1 {
		return nil, ErrNoCoordinateColumns
	}

	d := NewDataset(name)
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: %w", err)
		}
		if lat >= len(row) || lon >= len(row) {
			continue
		}
		x, err1 := strconv.ParseFloat(strings.TrimSpace(row[lon]), 64)
		y, err2 := strconv.ParseFloat(strings.TrimSpace(row[lat]), 64)
		if err1 != nil || err2 != nil {
			continue
		}
		key := ""
		if id >= 0 && id < len(row) {
			key = strings.TrimSpace(row[id])
		}
		f := NewFeature(key, Geometry{Points: []affine.Point{affine.Pt(x, y)}})
		for i, h := range header {
			if i == lat || i == lon || i == id {
				continue
			}
			v := ""
			if i < len(row) {
				v = row[i]
			}
			f.SetAttr(h, v)
		}
		d.Add(f)
	}
	return finish(d)
}
