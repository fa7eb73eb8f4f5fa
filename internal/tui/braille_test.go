package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"

	"gridplot/internal/affine"
	"gridplot/internal/surface"
)

var white = surface.Style{Stroke: "#ffffff"}

func TestSetPixel(t *testing.T) {
	c := newBrailleCanvas(2, 1)
	c.setPixel(0, 0, "")
	c.setPixel(1, 3, "")
	c.setPixel(2, 1, "")
	// outside the canvas
	c.setPixel(-1, 0, "")
	c.setPixel(4, 0, "")
	c.setPixel(0, 4, "")

	if got := c.mask[0][0]; got != 0x81 {
		t.Errorf("cell 0 mask = %#x, want 0x81", got)
	}
	if got := c.mask[0][1]; got != 0x02 {
		t.Errorf("cell 1 mask = %#x, want 0x02", got)
	}
	if got := c.plain()[0]; got != "⢁⠂" {
		t.Errorf("plain() = %q", got)
	}
}

func TestDrawLine(t *testing.T) {
	tests := []struct {
		name string
		a, b affine.Point
		want string
	}{
		{"inside", affine.Pt(0, 1.5), affine.Pt(7, 1.5), strings.Repeat("⠒", 4)},
		{"clipped", affine.Pt(-1e9, 1.5), affine.Pt(1e9, 1.5), strings.Repeat("⠒", 4)},
		{"off canvas", affine.Pt(-1e9, 50), affine.Pt(1e9, 60), "    "},
		{"vertical", affine.Pt(0.5, -10), affine.Pt(0.5, 10), "⡇   "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newBrailleCanvas(4, 1)
			done := make(chan struct{})
			go func() {
				c.DrawLine(tt.a, tt.b, white)
				close(done)
			}()
			select {
			case <-done:
			case <-time.After(time.Second):
				t.Fatal("DrawLine did not clip")
			}
			if got := c.plain()[0]; got != tt.want {
				t.Errorf("row = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDrawLineNeedsStroke(t *testing.T) {
	c := newBrailleCanvas(4, 1)
	c.DrawLine(affine.Pt(0, 1), affine.Pt(7, 1), surface.Style{Fill: "#ffffff"})
	if got := c.plain()[0]; got != "    " {
		t.Errorf("row = %q, want blank", got)
	}
}

func TestPolygonHole(t *testing.T) {
	c := newBrailleCanvas(10, 5) // 20x20 dots
	square := func(lo, hi float64) []affine.Point {
		return []affine.Point{affine.Pt(lo, lo), affine.Pt(hi, lo), affine.Pt(hi, hi), affine.Pt(lo, hi)}
	}
	c.DrawPolygon([][]affine.Point{square(0, 20), square(6, 14)}, surface.Style{Fill: "#00ff00"})

	set := func(x, y int) bool {
		return c.mask[y/dotsY][x/dotsX]&dotBits[y%dotsY][x%dotsX] != 0
	}
	for _, tt := range []struct {
		x, y int
		want bool
	}{
		{2, 2, true},
		{5, 10, true},
		{6, 10, false},
		{10, 10, false},
		{14, 10, true},
		{19, 19, true},
	} {
		if got := set(tt.x, tt.y); got != tt.want {
			t.Errorf("dot (%d,%d) set = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
	if c.colour[0][0] != "#00ff00" {
		t.Errorf("colour = %q", c.colour[0][0])
	}
}

func TestCircle(t *testing.T) {
	c := newBrailleCanvas(10, 5)
	c.DrawCircle(affine.Pt(10, 10), 6, white)
	if c.mask[2][5] != 0 {
		t.Error("stroked circle filled its centre")
	}
	c.DrawCircle(affine.Pt(10, 10), 6, surface.Style{Fill: "#ff0000"})
	if c.mask[2][5] != 0xff || c.colour[2][5] != "#ff0000" {
		t.Errorf("filled circle centre = %#x %q", c.mask[2][5], c.colour[2][5])
	}
}

func TestText(t *testing.T) {
	c := newBrailleCanvas(6, 3)
	c.setPixel(4, 4, "#ffffff")
	c.DrawText(affine.Pt(4, 8), "ab", surface.Style{Fill: "#abcdef"})
	c.DrawText(affine.Pt(4, 100), "lost", white)

	rows := c.plain()
	if rows[1] != "  ab  " {
		t.Errorf("row 1 = %q", rows[1])
	}
	if c.colour[1][2] != "#abcdef" {
		t.Errorf("text colour = %q", c.colour[1][2])
	}
	if w, h := c.MeasureText("ab", white); w != 4 || h != 4 {
		t.Errorf("MeasureText() = %v, %v, want 4, 4", w, h)
	}
}

func TestTextAdvanceMatchesMeasure(t *testing.T) {
	c := newBrailleCanvas(6, 1)
	const label = "日本x"
	c.DrawText(affine.Pt(0, 4), label, white)
	w, _ := c.MeasureText(label, white)
	cells := 0
	for _, r := range c.text[0] {
		if r != 0 {
			cells++
		}
	}
	if cells*dotsX != int(w) {
		t.Errorf("DrawText used %d cells, MeasureText reports %v dots", cells, w)
	}
	if c.text[0][2] != 'x' {
		t.Errorf("third cell = %q, want 'x'", c.text[0][2])
	}
}

func TestString(t *testing.T) {
	c := newBrailleCanvas(5, 2)
	c.DrawLine(affine.Pt(0, 1), affine.Pt(9, 1), surface.Style{Stroke: "#ff000080"})
	c.DrawText(affine.Pt(2, 8), "hi", white)

	rows := strings.Split(c.String(), "\n")
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	for i, r := range rows {
		if lipgloss.Width(r) != 5 {
			t.Errorf("row %d width = %d, want 5", i, lipgloss.Width(r))
		}
	}
	if got := c.row(1, 1); lipgloss.Width(got) != 4 || !strings.Contains(got, "hi") {
		t.Errorf("row(1, 1) = %q", got)
	}
}
