// Package raster renders a plot into an anti-aliased RGBA image with gogpu/gg
// and writes it out as PNG.
package raster

import (
	"fmt"
	"image"
	"io"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/goregular"

	"gridplot/internal/affine"
	"gridplot/internal/surface"
)

const defaultFontSize = 12

// Canvas is a surface.Surface backed by a gg context. Draw errors do not stop
// the frame; the first one is kept and returned by Err.
type Canvas struct {
	dc     *gg.Context
	bounds affine.Rect
	source *text.FontSource
	faces  map[float64]text.Face
	err    error
}

// New creates a canvas of w by h pixels with the Go Regular font loaded.
func New(w, h int) (*Canvas, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("raster: invalid size %dx%d", w, h)
	}
	src, err := text.NewFontSource(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("raster: load font: %w", err)
	}
	return &Canvas{
		dc:     gg.NewContext(w, h),
		bounds: affine.Bounds(float64(w), float64(h)),
		source: src,
		faces:  make(map[float64]text.Face),
	}, nil
}

func (c *Canvas) Bounds() affine.Rect { return c.bounds }
func (c *Canvas) Err() error          { return c.err }

// Clear paints the whole canvas with a hex colour.
func (c *Canvas) Clear(hex string) { c.dc.ClearWithColor(gg.Hex(hex)) }

func (c *Canvas) DrawLine(a, b affine.Point, s surface.Style) {
	if s.Stroke == "" {
		return
	}
	c.dc.ClearPath()
	c.dc.DrawLine(a.X, a.Y, b.X, b.Y)
	c.stroke(s)
}

func (c *Canvas) DrawPolyline(pts []affine.Point, s surface.Style) {
	if len(pts) < 2 || s.Stroke == "" {
		return
	}
	c.dc.ClearPath()
	c.path(pts, false)
	c.stroke(s)
}

func (c *Canvas) DrawPolygon(rings [][]affine.Point, s surface.Style) {
	c.dc.ClearPath()
	for _, r := range rings {
		if len(r) >= 3 {
			c.path(r, true)
		}
	}
	c.paint(s)
}

func (c *Canvas) DrawCircle(p affine.Point, r float64, s surface.Style) {
	if r <= 0 {
		return
	}
	c.dc.ClearPath()
	c.dc.DrawCircle(p.X, p.Y, r)
	c.paint(s)
}

func (c *Canvas) DrawText(p affine.Point, str string, s surface.Style) {
	col := s.Stroke
	if col == "" {
		col = s.Fill
	}
	if str == "" || col == "" {
		return
	}
	c.dc.SetFont(c.face(s.FontSize))
	c.dc.SetHexColor(col)
	c.dc.DrawString(str, p.X, p.Y)
}

func (c *Canvas) MeasureText(str string, s surface.Style) (w, h float64) {
	c.dc.SetFont(c.face(s.FontSize))
	return c.dc.MeasureString(str)
}

// Image returns a snapshot of the pixels drawn so far.
func (c *Canvas) Image() image.Image { return c.dc.Image() }

// SavePNG writes the canvas to path.
func (c *Canvas) SavePNG(path string) error { return c.dc.SavePNG(path) }

// EncodePNG writes the canvas as PNG to w.
func (c *Canvas) EncodePNG(w io.Writer) error { return c.dc.EncodePNG(w) }

// Close releases the context and the font source.
func (c *Canvas) Close() error {
	err := c.dc.Close()
	if cerr := c.source.Close(); err == nil {
		err = cerr
	}
	return err
}

func (c *Canvas) face(size float64) text.Face {
	if size <= 0 {
		size = defaultFontSize
	}
	f, ok := c.faces[size]
	if !ok {
		f = c.source.Face(size)
		c.faces[size] = f
	}
	return f
}

func (c *Canvas) path(pts []affine.Point, closed bool) {
	c.dc.MoveTo(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		c.dc.LineTo(p.X, p.Y)
	}
	if closed {
		c.dc.ClosePath()
	}
}

// paint fills the current path even-odd and then strokes it.
func (c *Canvas) paint(s surface.Style) {
	if s.Fill != "" {
		c.dc.SetFillRule(gg.FillRuleEvenOdd)
		c.dc.SetHexColor(s.Fill)
		c.keep(c.dc.FillPreserve())
	}
	if s.Stroke != "" {
		c.stroke(s)
		return
	}
	c.dc.ClearPath()
}

func (c *Canvas) stroke(s surface.Style) {
	c.dc.SetHexColor(s.Stroke)
	c.dc.SetLineWidth(s.Width())
	c.keep(c.dc.Stroke())
}

func (c *Canvas) keep(err error) {
	if err != nil && c.err == nil {
		c.err = fmt.Errorf("raster: %w", err)
	}
}
