// Package viewport maps world coordinates to pixels, integrates pan and zoom
// gestures, plans the adaptive coordinate grid and interprets pointer and
// keyboard input.
package viewport

import (
	"math"

	"gridplot/internal/affine"
)

// Default scale bounds, in pixels per world unit.
const (
	DefaultMinScale = 1e-6
	DefaultMaxScale = 1e6
)

// Viewport owns the scale and world-space center of the view. The transform is
// derived from (scale, center, bounds) and cached; listeners fire only when a
// recomputation yields a different matrix.
type Viewport struct {
	scale    float64
	center   affine.Point
	minScale float64
	maxScale float64

	bounds    affine.Rect
	transform affine.Affine2D
	valid     bool

	listeners []func(affine.Affine2D)
}

// Option configures a Viewport.
type Option func(*Viewport)

// WithScaleBounds sets the clamp range for the scale.
func WithScaleBounds(minScale, maxScale float64) Option {
	return func(v *Viewport) {
		v.minScale = minScale
		v.maxScale = maxScale
	}
}

// WithScale sets the initial scale.
func WithScale(s float64) Option {
	return func(v *Viewport) { v.scale = s }
}

// WithCenter sets the initial world-space center.
func WithCenter(c affine.Point) Option {
	return func(v *Viewport) { v.center = c }
}

// New returns a viewport at scale 1 centred on the origin.
func New(opts ...Option) *Viewport {
	v := &Viewport{
		scale:    1,
		minScale: DefaultMinScale,
		maxScale: DefaultMaxScale,
	}
	for _, opt := range opts {
		opt(v)
	}
	v.scale = v.clamp(v.scale)
	return v
}

// OnChange registers fn to be called with the new transform whenever it changes.
func (v *Viewport) OnChange(fn func(affine.Affine2D)) {
	v.listeners = append(v.listeners, fn)
}

func (v *Viewport) Scale() float64       { return v.scale }
func (v *Viewport) Center() affine.Point { return v.center }
func (v *Viewport) MinScale() float64    { return v.minScale }
func (v *Viewport) MaxScale() float64    { return v.maxScale }
func (v *Viewport) Bounds() affine.Rect  { return v.bounds }

// Transform returns the cached world->pixel transform.
func (v *Viewport) Transform() affine.Affine2D { return v.transform }

func (v *Viewport) clamp(s float64) float64 {
	return math.Min(math.Max(s, v.minScale), v.maxScale)
}

// TransformFor computes the world->pixel transform for the given state without
// touching the cache.
func TransformFor(scale float64, center affine.Point, bounds affine.Rect) affine.Affine2D {
	return affine.Affine2D{
		A: scale,
		C: 0.5*bounds.Width - center.X*scale,
		E: -scale,
		F: 0.5*bounds.Height + center.Y*scale,
	}
}

// UpdateTransform recomputes the transform for bounds and notifies listeners
// if it changed.
func (v *Viewport) UpdateTransform(bounds affine.Rect) {
	v.bounds = bounds
	t := TransformFor(v.scale, v.center, bounds)
	if v.valid && t == v.transform {
		return
	}
	v.transform = t
	v.valid = true
	for _, fn := range v.listeners {
		fn(t)
	}
}

// Drag pans the view so content follows a pointer moved by pixelDelta.
func (v *Viewport) Drag(pixelDelta affine.Vector, bounds affine.Rect) {
	d := pixelDelta.FlipY().Scale(1 / v.scale)
	v.center = affine.Pt(v.center.X-d.X, v.center.Y-d.Y)
	v.UpdateTransform(bounds)
}

// ZoomAt multiplies the scale by factor, keeping the world point under pixel
// fixed on screen. Once the scale saturates at a clamp bound further zooming
// is a no-op apart from a small drift of the anchor.
func (v *Viewport) ZoomAt(pixel affine.Point, factor float64, bounds affine.Rect) {
	newScale := v.clamp(v.scale * factor)
	offset := pixel.Sub(bounds.Center()).FlipY()
	k := 1/v.scale - 1/newScale
	v.center = v.center.Add(offset.Scale(k))
	v.scale = newScale
	v.UpdateTransform(bounds)
}

// SetCenter moves the view to c.
func (v *Viewport) SetCenter(c affine.Point, bounds affine.Rect) {
	v.center = c
	v.UpdateTransform(bounds)
}

// SetScale sets the scale, clamped to the configured bounds.
func (v *Viewport) SetScale(s float64, bounds affine.Rect) {
	v.scale = v.clamp(s)
	v.UpdateTransform(bounds)
}

// Fit centres the view on world and picks the largest scale that shows it
// inside bounds with margin pixels on every side.
func (v *Viewport) Fit(world affine.Rect, bounds affine.Rect, margin float64) {
	v.center = world.Center()
	w := bounds.Width - 2*margin
	h := bounds.Height - 2*margin
	switch {
	case w <= 0 || h <= 0:
	case world.Width <= 0 && world.Height <= 0:
	case world.Width <= 0:
		v.scale = v.clamp(h / world.Height)
	case world.Height <= 0:
		v.scale = v.clamp(w / world.Width)
	default:
		v.scale = v.clamp(math.Min(w/world.Width, h/world.Height))
	}
	v.UpdateTransform(bounds)
}

// PixelToWorld maps a pixel position back to world coordinates using the
// current scale and center.
func (v *Viewport) PixelToWorld(p affine.Point, bounds affine.Rect) affine.Point {
	inv, err := TransformFor(v.scale, v.center, bounds).Invert()
	if err != nil {
		return v.center
	}
	return inv.Apply(p)
}

// WorldToPixel maps a world position to pixels.
func (v *Viewport) WorldToPixel(p affine.Point, bounds affine.Rect) affine.Point {
	return TransformFor(v.scale, v.center, bounds).Apply(p)
}
