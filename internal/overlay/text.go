package overlay

import (
	"gridplot/internal/affine"
)

// Anchor selects which point of the text box sits on the reference point.
type Anchor int

const (
	AnchorTopLeft Anchor = iota
	AnchorTopCenter
	AnchorTopRight
	AnchorCenterLeft
	AnchorCenter
	AnchorCenterRight
	AnchorBottomLeft
	AnchorBottomCenter
	AnchorBottomRight
)

// Offset returns the displacement from the reference point to the text
// baseline origin for a box of size w x h. Text is drawn from its baseline,
// which is the bottom edge of the box.
func (a Anchor) Offset(w, h float64) affine.Vector {
	var v affine.Vector
	switch int(a) % 3 {
	case 1:
		v.X = -w / 2
	case 2:
		v.X = -w
	}
	switch int(a) / 3 {
	case 0:
		v.Y = h
	case 1:
		v.Y = h / 2
	}
	return v
}

// Text is a label pinned to a world position. Its size is in pixels and does
// not follow the zoom.
type Text struct {
	nodeBase
	pos    affine.Point
	label  string
	anchor Anchor
}

func NewText(pos affine.Point, label string, anchor Anchor) *Text {
	return &Text{pos: pos, label: label, anchor: anchor}
}

func (t *Text) Label() string          { return t.label }
func (t *Text) Position() affine.Point { return t.pos }
func (t *Text) Anchor() Anchor         { return t.anchor }

func (t *Text) SetLabel(s string) {
	t.label = s
	t.NotifyReRender()
}

func (t *Text) SetPosition(p affine.Point) {
	t.pos = p
	t.NotifyReRender()
}

func (t *Text) SetAnchor(a Anchor) {
	t.anchor = a
	t.NotifyReRender()
}

func (t *Text) Render(rc *RenderContext, parent affine.Affine2D) {
	m, ok := t.effective(parent)
	if !ok || t.label == "" {
		return
	}
	st := rc.resolve(t.style)
	w, h := rc.Surface.MeasureText(t.label, st)
	p := m.Apply(t.pos).Add(t.anchor.Offset(w, h))
	rc.Surface.DrawText(p, t.label, st)
}
