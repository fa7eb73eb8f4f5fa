package tui

import "gridplot/internal/affine"

// Screen layout, in cells.
const (
	sidebarWidth = 28
	headerHeight = 1
	footerHeight = 2
	minMapWidth  = 10
	minMapHeight = 4
)

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// layout is where the map sits on screen.
type layout struct {
	width, height int // content area
	mapX, mapY    int
	mapW, mapH    int
}

func (m Model) layout() layout {
	l := layout{
		width:  max(minMapWidth, m.width),
		height: max(minMapHeight, m.height-headerHeight-footerHeight),
		mapY:   headerHeight,
	}
	l.mapW = l.width
	if m.showSidebar {
		l.mapX = sidebarWidth + 1
		l.mapW -= sidebarWidth + 1
	}
	l.mapW = max(minMapWidth, l.mapW)
	l.mapH = l.height
	return l
}

// bounds is the pixel rectangle the plot renders into.
func (l layout) bounds() affine.Rect {
	return affine.Bounds(float64(l.mapW*dotsX), float64(l.mapH*dotsY))
}

// pixel maps a terminal cell to the pixel at its centre, reporting whether
// the cell lies on the map.
func (l layout) pixel(x, y int) (affine.Point, bool) {
	cx, cy := x-l.mapX, y-l.mapY
	p := affine.Pt(float64(cx*dotsX)+dotsX/2, float64(cy*dotsY)+dotsY/2)
	return p, cx >= 0 && cx < l.mapW && cy >= 0 && cy < l.mapH
}
