package tui

import (
	"math"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"gridplot/internal/affine"
	"gridplot/internal/surface"
)

// Braille cells hold a 2x4 grid of dots, so one pixel of the plot is one dot.
const (
	dotsX = 2
	dotsY = 4
)

// dotBits maps a dot position inside a cell to its bit in the braille block.
var dotBits = [dotsY][dotsX]uint8{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// brailleCanvas is a surface.Surface drawing into terminal cells. Dots take
// the colour of the last primitive that touched their cell; text replaces the
// dots of the cells it covers.
type brailleCanvas struct {
	w, h   int // in cells
	mask   [][]uint8
	colour [][]string
	text   [][]rune
	styles map[string]lipgloss.Style
}

func newBrailleCanvas(w, h int) *brailleCanvas {
	c := &brailleCanvas{
		w:      max(w, 0),
		h:      max(h, 0),
		styles: map[string]lipgloss.Style{},
	}
	c.mask = make([][]uint8, c.h)
	c.colour = make([][]string, c.h)
	c.text = make([][]rune, c.h)
	for y := range c.h {
		c.mask[y] = make([]uint8, c.w)
		c.colour[y] = make([]string, c.w)
		c.text[y] = make([]rune, c.w)
	}
	return c
}

func (c *brailleCanvas) Bounds() affine.Rect {
	return affine.Bounds(float64(c.w*dotsX), float64(c.h*dotsY))
}

// setPixel sets the dot at (mx, my); dots outside the canvas are dropped.
func (c *brailleCanvas) setPixel(mx, my int, col string) {
	if mx < 0 || my < 0 {
		return
	}
	cx, cy := mx/dotsX, my/dotsY
	if cx >= c.w || cy >= c.h {
		return
	}
	c.mask[cy][cx] |= dotBits[my%dotsY][mx%dotsX]
	if col != "" {
		c.colour[cy][cx] = col
	}
}

// drawLineMicro draws a line on the dot grid using Bresenham.
func (c *brailleCanvas) drawLineMicro(x0, y0, x1, y1 int, col string) {
	dx := abs(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -abs(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		c.setPixel(x0, y0, col)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func (c *brailleCanvas) DrawLine(a, b affine.Point, s surface.Style) {
	if s.Stroke == "" {
		return
	}
	// clip first so that far off-screen geometry does not walk millions of dots
	a, b, ok := clip(a, b, c.Bounds())
	if !ok {
		return
	}
	c.drawLineMicro(dot(a.X), dot(a.Y), dot(b.X), dot(b.Y), s.Stroke)
}

func (c *brailleCanvas) DrawPolyline(pts []affine.Point, s surface.Style) {
	for i := 1; i < len(pts); i++ {
		c.DrawLine(pts[i-1], pts[i], s)
	}
}

// DrawPolygon fills all rings together with the even-odd rule, one dot row
// at a time, then strokes every ring.
func (c *brailleCanvas) DrawPolygon(rings [][]affine.Point, s surface.Style) {
	if s.Fill != "" {
		c.fill(rings, s.Fill)
	}
	if s.Stroke == "" {
		return
	}
	for _, r := range rings {
		if len(r) < 2 {
			continue
		}
		c.DrawPolyline(r, s)
		c.DrawLine(r[len(r)-1], r[0], s)
	}
}

func (c *brailleCanvas) fill(rings [][]affine.Point, col string) {
	top, bottom := math.Inf(1), math.Inf(-1)
	for _, r := range rings {
		for _, p := range r {
			top, bottom = math.Min(top, p.Y), math.Max(bottom, p.Y)
		}
	}
	y0 := max(0, int(math.Floor(top)))
	y1 := min(c.h*dotsY-1, int(math.Ceil(bottom)))
	wMic := c.w * dotsX

	var xs []float64
	for y := y0; y <= y1; y++ {
		// sample through the middle of the dot row
		fy := float64(y) + 0.5
		xs = xs[:0]
		for _, r := range rings {
			if len(r) < 3 {
				continue
			}
			for i := range r {
				a, b := r[i], r[(i+1)%len(r)]
				if a.Y == b.Y {
					continue
				}
				if (fy >= a.Y && fy < b.Y) || (fy >= b.Y && fy < a.Y) {
					t := (fy - a.Y) / (b.Y - a.Y)
					xs = append(xs, a.X+t*(b.X-a.X))
				}
			}
		}
		slices.Sort(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			from := max(0, int(math.Round(xs[i])))
			to := min(wMic-1, int(math.Round(xs[i+1]))-1)
			for x := from; x <= to; x++ {
				c.setPixel(x, y, col)
			}
		}
	}
}

func (c *brailleCanvas) DrawCircle(ctr affine.Point, r float64, s surface.Style) {
	if s.Fill != "" {
		y0 := max(0, int(math.Floor(ctr.Y-r)))
		y1 := min(c.h*dotsY-1, int(math.Ceil(ctr.Y+r)))
		x0 := max(0, int(math.Floor(ctr.X-r)))
		x1 := min(c.w*dotsX-1, int(math.Ceil(ctr.X+r)))
		for y := y0; y <= y1; y++ {
			for x := x0; x <= x1; x++ {
				dx, dy := float64(x)+0.5-ctr.X, float64(y)+0.5-ctr.Y
				if dx*dx+dy*dy <= r*r {
					c.setPixel(x, y, s.Fill)
				}
			}
		}
	}
	if s.Stroke == "" {
		return
	}
	n := max(8, min(64, int(r*2)))
	prev := affine.Pt(ctr.X+r, ctr.Y)
	for i := 1; i <= n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		next := affine.Pt(ctr.X+r*math.Cos(a), ctr.Y+r*math.Sin(a))
		c.DrawLine(prev, next, s)
		prev = next
	}
}

// DrawText writes text into whole cells: the cell row is the one holding the
// dot just above the baseline.
func (c *brailleCanvas) DrawText(p affine.Point, text string, s surface.Style) {
	col := s.Stroke
	if col == "" {
		col = s.Fill
	}
	cy := int(math.Floor((p.Y - 1) / dotsY))
	cx := int(math.Floor(p.X / dotsX))
	if cy < 0 || cy >= c.h {
		return
	}
	for _, r := range text {
		if cx >= 0 && cx < c.w {
			c.text[cy][cx] = r
			if col != "" {
				c.colour[cy][cx] = col
			}
		}
		cx++
	}
}

// MeasureText reports one cell per rune, the same advance DrawText uses.
func (c *brailleCanvas) MeasureText(text string, _ surface.Style) (float64, float64) {
	return float64(utf8.RuneCountInString(text) * dotsX), dotsY
}

// cell returns the rune shown in a cell.
func (c *brailleCanvas) cell(x, y int) rune {
	if r := c.text[y][x]; r != 0 {
		return r
	}
	if m := c.mask[y][x]; m != 0 {
		return rune(0x2800 + int(m))
	}
	return ' '
}

// plain returns the canvas without colours, one string per row.
func (c *brailleCanvas) plain() []string {
	out := make([]string, c.h)
	row := make([]rune, c.w)
	for y := range c.h {
		for x := range c.w {
			row[x] = c.cell(x, y)
		}
		out[y] = string(row)
	}
	return out
}

// String renders the canvas with runs of equal colour styled together.
func (c *brailleCanvas) String() string {
	rows := make([]string, c.h)
	for y := range c.h {
		rows[y] = c.row(y, 0)
	}
	return strings.Join(rows, "\n")
}

// row renders cells from..w of row y.
func (c *brailleCanvas) row(y, from int) string {
	var sb strings.Builder
	start := from
	for x := from + 1; x <= c.w; x++ {
		if x < c.w && c.runColour(x, y) == c.runColour(start, y) {
			continue
		}
		run := make([]rune, 0, x-start)
		for i := start; i < x; i++ {
			run = append(run, c.cell(i, y))
		}
		sb.WriteString(c.style(c.runColour(start, y)).Render(string(run)))
		start = x
	}
	return sb.String()
}

// runColour is the colour of a cell, or "" for an empty one.
func (c *brailleCanvas) runColour(x, y int) string {
	if c.cell(x, y) == ' ' {
		return ""
	}
	return c.colour[y][x]
}

func (c *brailleCanvas) style(col string) lipgloss.Style {
	st, ok := c.styles[col]
	if !ok {
		st = lipgloss.NewStyle()
		if len(col) >= 7 {
			// the alpha suffix of "#rrggbbaa" has no terminal equivalent
			st = st.Foreground(lipgloss.Color(col[:7]))
		}
		c.styles[col] = st
	}
	return st
}

func dot(v float64) int { return int(math.Floor(v)) }

// clip trims the segment ab to r (Liang-Barsky).
func clip(a, b affine.Point, r affine.Rect) (affine.Point, affine.Point, bool) {
	t0, t1 := 0.0, 1.0
	dx, dy := b.X-a.X, b.Y-a.Y
	right, bottom := r.Right()-1e-9, r.Bottom()-1e-9
	for _, e := range [4][2]float64{
		{-dx, a.X - r.Left()},
		{dx, right - a.X},
		{-dy, a.Y - r.Top()},
		{dy, bottom - a.Y},
	} {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return a, b, false
			}
			continue
		}
		t := q / p
		if p < 0 {
			if t > t1 {
				return a, b, false
			}
			t0 = math.Max(t0, t)
		} else {
			if t < t0 {
				return a, b, false
			}
			t1 = math.Min(t1, t)
		}
	}
	return affine.Pt(a.X+t0*dx, a.Y+t0*dy), affine.Pt(a.X+t1*dx, a.Y+t1*dy), true
}
