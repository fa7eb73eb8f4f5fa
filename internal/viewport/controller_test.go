package viewport

import (
	"math"
	"testing"

	"gridplot/internal/affine"
)

func newTestController() (*Controller, affine.Rect) {
	vp := New(WithScale(10), WithScaleBounds(0.01, 1000))
	c := NewController(vp)
	b := affine.Bounds(800, 600)
	c.Resize(b)
	return c, b
}

func TestControllerPanning(t *testing.T) {
	c, b := newTestController()
	world := affine.Pt(1, 1)
	before := c.Viewport().WorldToPixel(world, b)

	c.PointerDown(ButtonPrimary, affine.Pt(100, 100))
	if !c.Panning() {
		t.Fatal("Panning() = false after primary press")
	}
	c.PointerMove(affine.Pt(110, 95))
	c.PointerMove(affine.Pt(130, 90))
	c.PointerUp(ButtonPrimary, affine.Pt(130, 90))
	if c.Panning() {
		t.Error("Panning() = true after release")
	}

	after := c.Viewport().WorldToPixel(world, b)
	if !nearPt(after, affine.Pt(before.X+30, before.Y-10)) {
		t.Errorf("content moved to %+v, want %+v", after, affine.Pt(before.X+30, before.Y-10))
	}

	// moves after release do nothing
	center := c.Viewport().Center()
	c.PointerMove(affine.Pt(500, 500))
	if c.Viewport().Center() != center {
		t.Error("PointerMove after release changed the viewport")
	}
}

func TestControllerCaptureLost(t *testing.T) {
	c, _ := newTestController()
	c.PointerDown(ButtonPrimary, affine.Pt(10, 10))
	c.PointerDown(ButtonSecondary, affine.Pt(10, 10))
	c.CaptureLost()
	if c.Panning() || c.Ruler().Active {
		t.Errorf("gestures still active after capture loss: panning=%v ruler=%v", c.Panning(), c.Ruler().Active)
	}
}

func TestControllerMeasuring(t *testing.T) {
	c, _ := newTestController()
	var events []Ruler
	c.OnRuler(func(r Ruler) { events = append(events, r) })

	c.PointerDown(ButtonSecondary, affine.Pt(400, 300))
	r := c.Ruler()
	if !r.Active || !nearPt(r.From, affine.Pt(0, 0)) || r.From != r.To {
		t.Fatalf("ruler after press = %+v, want both ends at origin", r)
	}

	center := c.Viewport().Center()
	c.PointerMove(affine.Pt(430, 260))
	r = c.Ruler()
	if !nearPt(r.To, affine.Pt(3, 4)) {
		t.Errorf("ruler end = %+v, want (3,4)", r.To)
	}
	if !nearPt(r.From, affine.Pt(0, 0)) {
		t.Errorf("ruler start moved to %+v", r.From)
	}
	if !near(r.Distance(), 5) {
		t.Errorf("Distance() = %v, want 5", r.Distance())
	}
	if c.Viewport().Center() != center {
		t.Error("measuring panned the viewport")
	}

	c.PointerUp(ButtonSecondary, affine.Pt(430, 260))
	if c.Ruler().Active {
		t.Error("ruler still active after release")
	}
	if len(events) != 3 {
		t.Errorf("ruler events = %d, want 3", len(events))
	}
}

func TestControllerWheel(t *testing.T) {
	c, b := newTestController()
	p := affine.Pt(200, 150)
	world := c.Viewport().PixelToWorld(p, b)
	c.Wheel(p, 2)
	if got, want := c.Viewport().Scale(), 10*1.2; !near(got, want) {
		t.Errorf("Scale() after two notches = %v, want %v", got, want)
	}
	if !nearPt(c.Viewport().PixelToWorld(p, b), world) {
		t.Error("wheel zoom moved the point under the cursor")
	}
	c.Wheel(p, -2)
	if !near(c.Viewport().Scale(), 10) {
		t.Errorf("Scale() after zooming back = %v, want 10", c.Viewport().Scale())
	}
}

func TestControllerKeys(t *testing.T) {
	tests := []struct {
		key        string
		wantCenter affine.Point
		wantScale  float64
	}{
		{KeyLeft, affine.Pt(-16, 0), 10},
		{KeyRight, affine.Pt(16, 0), 10},
		{KeyUp, affine.Pt(0, 12), 10},
		{KeyDown, affine.Pt(0, -12), 10},
		{KeyPageUp, affine.Pt(0, 48), 10},
		{KeyPageDown, affine.Pt(0, -48), 10},
		{KeyZoomIn, affine.Pt(0, 0), 12},
		{KeyZoomIn2, affine.Pt(0, 0), 12},
		{KeyZoomOut, affine.Pt(0, 0), 10 / 1.2},
		{KeyZoomOut2, affine.Pt(0, 0), 10 / 1.2},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			c, _ := newTestController()
			if !c.Key(tt.key) {
				t.Fatalf("Key(%q) = false", tt.key)
			}
			if !nearPt(c.Viewport().Center(), tt.wantCenter) {
				t.Errorf("Center() = %+v, want %+v", c.Viewport().Center(), tt.wantCenter)
			}
			if !near(c.Viewport().Scale(), tt.wantScale) {
				t.Errorf("Scale() = %v, want %v", c.Viewport().Scale(), tt.wantScale)
			}
		})
	}
}

func TestControllerHomeAndUnknownKey(t *testing.T) {
	c, _ := newTestController()
	c.Key(KeyLeft)
	c.Key(KeyZoomIn)
	c.Key(KeyHome)
	if c.Viewport().Center() != (affine.Point{}) || c.Viewport().Scale() != 10 {
		t.Errorf("home view = %+v @ %v, want origin @ 10", c.Viewport().Center(), c.Viewport().Scale())
	}
	if c.Key("x") {
		t.Error("Key(\"x\") = true, want false")
	}
	if math.IsNaN(c.Viewport().Scale()) {
		t.Error("scale became NaN")
	}
}
