package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// canvas draws the plot into a w x h cell canvas. The previous frame is
// reused until the plot asks for a repaint or the size changes.
func (m Model) canvas(w, h int) *brailleCanvas {
	f := m.frame
	if f.valid && f.c != nil && f.c.w == w && f.c.h == h {
		return f.c
	}
	f.c = newBrailleCanvas(w, h)
	m.plot.Render(f.c.Bounds(), f.c)
	f.s, f.valid = f.c.String(), true
	return f.c
}

func (m Model) renderMap(w, h int) string {
	m.canvas(w, h)
	return m.frame.s
}

// renderMapWithBox draws box over the left edge of the map, vertically
// centred; the map stays visible to the right of it.
func (m Model) renderMapWithBox(w, h int, box string) string {
	c := m.canvas(w, h)
	boxRows := strings.Split(box, "\n")
	top := max(0, (h-len(boxRows))/2)
	rows := make([]string, h)
	for y := range h {
		i := y - top
		if i < 0 || i >= len(boxRows) {
			rows[y] = c.row(y, 0)
			continue
		}
		bw := min(w, lipgloss.Width(boxRows[i]))
		rows[y] = boxRows[i] + c.row(y, bw)
	}
	return strings.Join(rows, "\n")
}
