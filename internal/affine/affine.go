// Package affine provides the 2-D points, vectors, rectangles and affine
// transforms shared by the viewport, the overlay tree and the surfaces.
package affine

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ErrSingular is returned by Invert when the matrix has no inverse.
var ErrSingular = errors.New("affine: singular matrix")

// Point is a position in world or pixel space.
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Add offsets p by v.
func (p Point) Add(v Vector) Point { return Point{X: p.X + v.X, Y: p.Y + v.Y} }

// Sub returns the vector from q to p.
func (p Point) Sub(q Point) Vector { return Vector{X: p.X - q.X, Y: p.Y - q.Y} }

// Distance returns the Euclidean distance between p and q.
func (p Point) Distance(q Point) float64 { return p.Sub(q).Length() }

// Lerp interpolates between p (t=0) and q (t=1).
func (p Point) Lerp(q Point, t float64) Point {
	return Point{X: p.X + (q.X-p.X)*t, Y: p.Y + (q.Y-p.Y)*t}
}

// Vector is a displacement; transforms ignore translation when applied to it.
type Vector struct {
	X, Y float64
}

// Vec is shorthand for Vector{X: x, Y: y}.
func Vec(x, y float64) Vector { return Vector{X: x, Y: y} }

func (v Vector) Add(w Vector) Vector { return Vector{X: v.X + w.X, Y: v.Y + w.Y} }

// Scale multiplies both components by s.
func (v Vector) Scale(s float64) Vector { return Vector{X: v.X * s, Y: v.Y * s} }

// Mul multiplies component-wise.
func (v Vector) Mul(w Vector) Vector { return Vector{X: v.X * w.X, Y: v.Y * w.Y} }

func (v Vector) Length() float64 { return math.Hypot(v.X, v.Y) }
func (v Vector) IsZero() bool    { return v.X == 0 && v.Y == 0 }
func (v Vector) Abs() Vector     { return Vector{X: math.Abs(v.X), Y: math.Abs(v.Y)} }

// FlipY negates the Y component, converting between pixel and world orientation.
func (v Vector) FlipY() Vector { return Vector{X: v.X, Y: -v.Y} }

// Rect is an axis-aligned rectangle. For pixel bounds X/Y is the top-left corner.
type Rect struct {
	X, Y, Width, Height float64
}

// Bounds returns a pixel rectangle anchored at the origin.
func Bounds(w, h float64) Rect { return Rect{Width: w, Height: h} }

// Center returns the middle of r.
func (r Rect) Center() Point { return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2} }

// Empty reports whether r has no area.
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

func (r Rect) Left() float64   { return r.X }
func (r Rect) Top() float64    { return r.Y }
func (r Rect) Right() float64  { return r.X + r.Width }
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.Right() && p.Y >= r.Y && p.Y <= r.Bottom()
}

// Affine2D is a 2x3 affine matrix in row-major order:
//
//	| A  B  C |
//	| D  E  F |
//
// mapping (x, y) to (A*x + B*y + C, D*x + E*y + F).
type Affine2D struct {
	A, B, C float64
	D, E, F float64
}

// Identity returns the identity transform.
func Identity() Affine2D { return Affine2D{A: 1, E: 1} }

// Translate returns a pure translation.
func Translate(x, y float64) Affine2D { return Affine2D{A: 1, C: x, E: 1, F: y} }

// Scale returns a pure scale.
func Scale(sx, sy float64) Affine2D { return Affine2D{A: sx, E: sy} }

// Rotate returns a rotation by angle radians.
func Rotate(angle float64) Affine2D {
	sin, cos := math.Sincos(angle)
	return Affine2D{A: cos, B: -sin, D: sin, E: cos}
}

// Multiply returns m * other: other is applied first.
func (m Affine2D) Multiply(other Affine2D) Affine2D {
	return Affine2D{
		A: m.A*other.A + m.B*other.D,
		B: m.A*other.B + m.B*other.E,
		C: m.A*other.C + m.B*other.F + m.C,
		D: m.D*other.A + m.E*other.D,
		E: m.D*other.B + m.E*other.E,
		F: m.D*other.C + m.E*other.F + m.F,
	}
}

// Then returns the transform applying m first and next second.
func (m Affine2D) Then(next Affine2D) Affine2D { return next.Multiply(m) }

// Apply transforms a point.
func (m Affine2D) Apply(p Point) Point {
	return Point{X: m.A*p.X + m.B*p.Y + m.C, Y: m.D*p.X + m.E*p.Y + m.F}
}

// ApplyVector transforms a vector, ignoring translation.
func (m Affine2D) ApplyVector(v Vector) Vector {
	return Vector{X: m.A*v.X + m.B*v.Y, Y: m.D*v.X + m.E*v.Y}
}

// ScaleX is the x scale component of an axis-aligned transform.
func (m Affine2D) ScaleX() float64 { return m.A }

// ScaleY is the y scale component of an axis-aligned transform.
func (m Affine2D) ScaleY() float64 { return m.E }

// Translation returns the offset part of the transform.
func (m Affine2D) Translation() Vector { return Vector{X: m.C, Y: m.F} }

// IsIdentity reports whether m is exactly the identity.
func (m Affine2D) IsIdentity() bool { return m == Identity() }

// Determinant of the linear part.
func (m Affine2D) Determinant() float64 { return m.A*m.E - m.B*m.D }

// Invert returns the inverse transform. The homogeneous 3x3 form is solved with
// gonum so that near-singular inputs surface as ErrSingular instead of Inf.
func (m Affine2D) Invert() (Affine2D, error) {
	if m.Determinant() == 0 {
		return Affine2D{}, ErrSingular
	}
	h := mat.NewDense(3, 3, []float64{
		m.A, m.B, m.C,
		m.D, m.E, m.F,
		0, 0, 1,
	})
	var inv mat.Dense
	if err := inv.Inverse(h); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return Affine2D{}, ErrSingular
		}
		if math.IsInf(float64(cond), 1) {
			return Affine2D{}, ErrSingular
		}
	}
	return Affine2D{
		A: inv.At(0, 0), B: inv.At(0, 1), C: inv.At(0, 2),
		D: inv.At(1, 0), E: inv.At(1, 1), F: inv.At(1, 2),
	}, nil
}
