package surface

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"gridplot/internal/affine"
)

// Op identifies a recorded primitive.
type Op int

const (
	OpLine Op = iota
	OpPolyline
	OpPolygon
	OpCircle
	OpText
)

var opNames = [...]string{"line", "polyline", "polygon", "circle", "text"}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return fmt.Sprintf("op(%d)", int(o))
}

// Command is one recorded draw call.
type Command struct {
	Op     Op
	Points []affine.Point   // line, polyline; circle centre; text origin
	Rings  [][]affine.Point // polygon
	Radius float64
	Text   string
	Style  Style
}

func (c Command) String() string {
	var b strings.Builder
	b.WriteString(c.Op.String())
	switch c.Op {
	case OpPolygon:
		fmt.Fprintf(&b, " rings=%d", len(c.Rings))
	case OpCircle:
		fmt.Fprintf(&b, " %v r=%g", c.Points[0], c.Radius)
	case OpText:
		fmt.Fprintf(&b, " %v %q", c.Points[0], c.Text)
	default:
		fmt.Fprintf(&b, " %v", c.Points)
	}
	if c.Style.Stroke != "" {
		fmt.Fprintf(&b, " stroke=%s", c.Style.Stroke)
	}
	if c.Style.Fill != "" {
		fmt.Fprintf(&b, " fill=%s", c.Style.Fill)
	}
	return b.String()
}

// Replay issues c against s.
func (c Command) Replay(s Surface) {
	switch c.Op {
	case OpLine:
		s.DrawLine(c.Points[0], c.Points[1], c.Style)
	case OpPolyline:
		s.DrawPolyline(c.Points, c.Style)
	case OpPolygon:
		s.DrawPolygon(c.Rings, c.Style)
	case OpCircle:
		s.DrawCircle(c.Points[0], c.Radius, c.Style)
	case OpText:
		s.DrawText(c.Points[0], c.Text, c.Style)
	}
}

// Recorder is a Surface that keeps every call as a Command.
type Recorder struct {
	bounds   affine.Rect
	commands []Command

	// Measure overrides text measurement. The default assumes a monospace
	// face whose advance is 0.6 of the font size.
	Measure func(text string, s Style) (w, h float64)
}

// NewRecorder returns an empty recorder for the given pixel bounds.
func NewRecorder(bounds affine.Rect) *Recorder {
	return &Recorder{bounds: bounds}
}

func (r *Recorder) Bounds() affine.Rect { return r.bounds }

// Commands returns the recorded commands in call order.
func (r *Recorder) Commands() []Command { return r.commands }

// Reset drops all recorded commands.
func (r *Recorder) Reset() { r.commands = r.commands[:0] }

// Count returns how many recorded commands have op.
func (r *Recorder) Count(op Op) int {
	n := 0
	for _, c := range r.commands {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Replay issues every recorded command against s.
func (r *Recorder) Replay(s Surface) {
	for _, c := range r.commands {
		c.Replay(s)
	}
}

func (r *Recorder) DrawLine(a, b affine.Point, s Style) {
	r.commands = append(r.commands, Command{Op: OpLine, Points: []affine.Point{a, b}, Style: s})
}

func (r *Recorder) DrawPolyline(pts []affine.Point, s Style) {
	r.commands = append(r.commands, Command{Op: OpPolyline, Points: append([]affine.Point(nil), pts...), Style: s})
}

func (r *Recorder) DrawPolygon(rings [][]affine.Point, s Style) {
	cp := make([][]affine.Point, len(rings))
	for i, ring := range rings {
		cp[i] = append([]affine.Point(nil), ring...)
	}
	r.commands = append(r.commands, Command{Op: OpPolygon, Rings: cp, Style: s})
}

func (r *Recorder) DrawCircle(c affine.Point, radius float64, s Style) {
	r.commands = append(r.commands, Command{Op: OpCircle, Points: []affine.Point{c}, Radius: radius, Style: s})
}

func (r *Recorder) DrawText(p affine.Point, text string, s Style) {
	r.commands = append(r.commands, Command{Op: OpText, Points: []affine.Point{p}, Text: text, Style: s})
}

func (r *Recorder) MeasureText(text string, s Style) (w, h float64) {
	if r.Measure != nil {
		return r.Measure(text, s)
	}
	size := s.FontSize
	if size <= 0 {
		size = 12
	}
	return 0.6 * size * float64(utf8.RuneCountInString(text)), size
}
