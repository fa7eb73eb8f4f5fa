package viewport

import (
	"math"

	"gridplot/internal/affine"
)

// Button identifies a pointer button.
type Button int

const (
	ButtonNone Button = iota
	ButtonPrimary
	ButtonSecondary
	ButtonMiddle
)

// Key names understood by Controller.Key. They match the names terminal and
// desktop hosts report for the same keys.
const (
	KeyUp       = "up"
	KeyDown     = "down"
	KeyLeft     = "left"
	KeyRight    = "right"
	KeyPageUp   = "pgup"
	KeyPageDown = "pgdown"
	KeyZoomIn   = "+"
	KeyZoomIn2  = "="
	KeyZoomOut  = "-"
	KeyZoomOut2 = "_"
	KeyHome     = "0"
)

// Input defaults.
const (
	DefaultPanFraction = 0.2
	PageFraction       = 0.8
	DefaultKeyZoom     = 1.2
	DefaultWheelBase   = 1.2
)

// Ruler is the measurement interaction: two world-space endpoints.
type Ruler struct {
	Active bool
	From   affine.Point
	To     affine.Point
}

// Distance is the world-space length of the ruler.
func (r Ruler) Distance() float64 { return r.From.Distance(r.To) }

// Controller turns pointer, wheel and keyboard input into Viewport mutations.
// Panning (primary button) and measuring (secondary button) are independent
// state machines; both end on release or capture loss.
type Controller struct {
	vp     *Viewport
	bounds affine.Rect

	PanFraction float64
	KeyZoom     float64
	WheelBase   float64

	home      affine.Point
	homeScale float64

	panning bool
	panRef  affine.Point

	ruler Ruler

	onRuler []func(Ruler)
}

// NewController binds a controller to vp.
func NewController(vp *Viewport) *Controller {
	return &Controller{
		vp:          vp,
		PanFraction: DefaultPanFraction,
		KeyZoom:     DefaultKeyZoom,
		WheelBase:   DefaultWheelBase,
		home:        vp.Center(),
		homeScale:   vp.Scale(),
	}
}

// Viewport returns the controlled viewport.
func (c *Controller) Viewport() *Viewport { return c.vp }

// Bounds returns the last pixel bounds passed to Resize.
func (c *Controller) Bounds() affine.Rect { return c.bounds }

// Panning reports whether a pan gesture is in progress.
func (c *Controller) Panning() bool { return c.panning }

// Ruler returns the current measurement state.
func (c *Controller) Ruler() Ruler { return c.ruler }

// OnRuler registers fn to be called whenever the ruler changes.
func (c *Controller) OnRuler(fn func(Ruler)) { c.onRuler = append(c.onRuler, fn) }

// SetHome records the view that KeyHome returns to.
func (c *Controller) SetHome(center affine.Point, scale float64) {
	c.home = center
	c.homeScale = scale
}

// Resize stores the host's pixel bounds and refreshes the transform.
func (c *Controller) Resize(bounds affine.Rect) {
	c.bounds = bounds
	c.vp.UpdateTransform(bounds)
}

// PointerDown starts a pan (primary) or a measurement (secondary).
func (c *Controller) PointerDown(b Button, p affine.Point) {
	switch b {
	case ButtonPrimary:
		c.panning = true
		c.panRef = p
	case ButtonSecondary:
		w := c.toWorld(p)
		c.setRuler(Ruler{Active: true, From: w, To: w})
	}
}

// PointerMove continues any gesture in progress.
func (c *Controller) PointerMove(p affine.Point) {
	if c.panning {
		d := p.Sub(c.panRef)
		c.panRef = p
		if !d.IsZero() {
			c.vp.Drag(d, c.bounds)
		}
	}
	if c.ruler.Active {
		r := c.ruler
		r.To = c.toWorld(p)
		c.setRuler(r)
	}
}

// PointerUp ends the gesture bound to b.
func (c *Controller) PointerUp(b Button, _ affine.Point) {
	switch b {
	case ButtonPrimary:
		c.panning = false
	case ButtonSecondary:
		if c.ruler.Active {
			c.setRuler(Ruler{})
		}
	}
}

// CaptureLost abandons every gesture in progress.
func (c *Controller) CaptureLost() {
	c.panning = false
	if c.ruler.Active {
		c.setRuler(Ruler{})
	}
}

// Wheel zooms exponentially around p; one notch of delta=1 zooms by
// WheelBase^0.5.
func (c *Controller) Wheel(p affine.Point, delta float64) {
	if delta == 0 {
		return
	}
	c.vp.ZoomAt(p, math.Pow(c.WheelBase, 0.5*delta), c.bounds)
}

// Key handles the keyboard shortcuts and reports whether k was consumed.
func (c *Controller) Key(k string) bool {
	dx := c.PanFraction * c.bounds.Width
	dy := c.PanFraction * c.bounds.Height
	center := c.bounds.Center()
	switch k {
	// keys move the view, so the content is dragged the other way
	case KeyUp:
		c.vp.Drag(affine.Vec(0, dy), c.bounds)
	case KeyDown:
		c.vp.Drag(affine.Vec(0, -dy), c.bounds)
	case KeyLeft:
		c.vp.Drag(affine.Vec(dx, 0), c.bounds)
	case KeyRight:
		c.vp.Drag(affine.Vec(-dx, 0), c.bounds)
	case KeyPageUp:
		c.vp.Drag(affine.Vec(0, PageFraction*c.bounds.Height), c.bounds)
	case KeyPageDown:
		c.vp.Drag(affine.Vec(0, -PageFraction*c.bounds.Height), c.bounds)
	case KeyZoomIn, KeyZoomIn2:
		c.vp.ZoomAt(center, c.KeyZoom, c.bounds)
	case KeyZoomOut, KeyZoomOut2:
		c.vp.ZoomAt(center, 1/c.KeyZoom, c.bounds)
	case KeyHome:
		c.vp.scale = c.vp.clamp(c.homeScale)
		c.vp.SetCenter(c.home, c.bounds)
	default:
		return false
	}
	return true
}

func (c *Controller) toWorld(p affine.Point) affine.Point {
	inv, err := c.vp.Transform().Invert()
	if err != nil {
		return c.vp.Center()
	}
	return inv.Apply(p)
}

func (c *Controller) setRuler(r Ruler) {
	c.ruler = r
	for _, fn := range c.onRuler {
		fn(r)
	}
}
