// Package surface defines the drawing capability the plot renders into and a
// recording implementation that turns a frame into a list of draw commands.
package surface

import "gridplot/internal/affine"

// Style describes how a primitive is painted. Colours are hex strings
// ("#rrggbb"); an empty colour disables that part of the paint.
type Style struct {
	Stroke    string
	Fill      string
	LineWidth float64
	FontSize  float64
}

// WithStroke returns a copy of s with the stroke colour replaced.
func (s Style) WithStroke(c string) Style {
	s.Stroke = c
	return s
}

// WithFill returns a copy of s with the fill colour replaced.
func (s Style) WithFill(c string) Style {
	s.Fill = c
	return s
}

// Width returns the line width, defaulting to one pixel.
func (s Style) Width() float64 {
	if s.LineWidth <= 0 {
		return 1
	}
	return s.LineWidth
}

// Surface is implemented by every render target. All coordinates are pixels.
type Surface interface {
	Bounds() affine.Rect

	DrawLine(a, b affine.Point, s Style)
	DrawPolyline(pts []affine.Point, s Style)
	// DrawPolygon fills rings with the even-odd rule, then strokes them.
	DrawPolygon(rings [][]affine.Point, s Style)
	DrawCircle(c affine.Point, r float64, s Style)
	// DrawText draws text with its baseline starting at p.
	DrawText(p affine.Point, text string, s Style)
	MeasureText(text string, s Style) (w, h float64)
}

// Rect returns the four corners of r as a closed ring.
func Rect(r affine.Rect) []affine.Point {
	return []affine.Point{
		affine.Pt(r.Left(), r.Top()),
		affine.Pt(r.Right(), r.Top()),
		affine.Pt(r.Right(), r.Bottom()),
		affine.Pt(r.Left(), r.Bottom()),
	}
}
