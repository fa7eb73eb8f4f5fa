package tui

import (
	"fmt"
	"strconv"
	"strings"

	table "github.com/charmbracelet/bubbles/table"

	"gridplot/internal/geom"
)

const maxColWidth = 24

// refreshAttrs rebuilds the table from the loaded dataset, one row per
// feature and one column per attribute key.
func (m *Model) refreshAttrs() {
	d := m.layers.Dataset()
	if d == nil || len(d.Features) == 0 {
		m.showAttrs = false
		m.setStatus("no attributes for current dataset")
		return
	}
	cols, rows := attributeTable(d)
	// clear rows before the column change so no row is rendered against the
	// wrong number of columns
	m.tbl.SetRows(nil)
	m.tbl.SetColumns(cols)
	m.tbl.SetRows(rows)
}

func attributeTable(d *geom.Dataset) ([]table.Column, []table.Row) {
	titles := append([]string{"#", "id"}, d.Columns...)
	cols := make([]table.Column, len(titles))
	for i, t := range titles {
		cols[i] = table.Column{Title: t, Width: min(maxColWidth, len(t)+2)}
	}
	cols[0].Width = max(cols[0].Width, len(strconv.Itoa(len(d.Features)))+1)

	rows := make([]table.Row, 0, len(d.Features))
	for i, f := range d.Features {
		row := make(table.Row, len(titles))
		row[0] = strconv.Itoa(i + 1)
		row[1] = f.ID
		for j, k := range d.Columns {
			row[j+2] = f.Attrs[k]
		}
		for j, v := range row {
			cols[j].Width = min(maxColWidth, max(cols[j].Width, len(v)+1))
		}
		rows = append(rows, row)
	}
	return cols, rows
}

// describe is the inspect popup text for f.
func describe(d *geom.Dataset, f *geom.Feature, dist float64) string {
	lines := []string{
		fmt.Sprintf("id: %s", f.ID),
		fmt.Sprintf("distance: %.6g", dist),
		fmt.Sprintf("bbox: %s", f.BBox()),
	}
	for _, k := range f.Keys() {
		lines = append(lines, fmt.Sprintf("%s: %s", k, f.Attrs[k]))
	}
	if d != nil {
		pts, ls, polys := d.Counts()
		lines = append(lines,
			"",
			fmt.Sprintf("dataset: %s", d.Name),
			fmt.Sprintf("extent: %s", d.BBox),
			fmt.Sprintf("counts: pts=%d ls=%d poly=%d", pts, ls, polys),
		)
	}
	return strings.Join(lines, "\n")
}
