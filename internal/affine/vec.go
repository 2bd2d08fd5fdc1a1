package affine

import (
	"fmt"
	"math"

	"golang.org/x/image/math/f64"
)

// Vec is shorthand for building an f64.Vec2.
func Vec(x, y float64) f64.Vec2 { return f64.Vec2{x, y} }

func Add(a, b f64.Vec2) f64.Vec2 { return f64.Vec2{a[0] + b[0], a[1] + b[1]} }

func Sub(a, b f64.Vec2) f64.Vec2 { return f64.Vec2{a[0] - b[0], a[1] - b[1]} }

// ScaleVec multiplies both components by s.
func ScaleVec(v f64.Vec2, s float64) f64.Vec2 { return f64.Vec2{v[0] * s, v[1] * s} }

// DivVec divides both components by s.
func DivVec(v f64.Vec2, s float64) f64.Vec2 { return f64.Vec2{v[0] / s, v[1] / s} }

func Dot(a, b f64.Vec2) float64 { return a[0]*b[0] + a[1]*b[1] }

// Cross is the z component of the 3D cross product of a and b.
func Cross(a, b f64.Vec2) float64 { return a[0]*b[1] - a[1]*b[0] }

func Length(v f64.Vec2) float64 { return math.Hypot(v[0], v[1]) }

func Distance(a, b f64.Vec2) float64 { return Length(Sub(b, a)) }

func Midpoint(a, b f64.Vec2) f64.Vec2 { return ScaleVec(Add(a, b), 0.5) }

// Normalize returns v scaled to unit length.
func Normalize(v f64.Vec2) (f64.Vec2, error) {
	l := Length(v)
	if l == 0 || math.IsNaN(l) || math.IsInf(l, 0) {
		return f64.Vec2{}, fmt.Errorf("normalize %v: %w", v, ErrDegenerate)
	}
	return DivVec(v, l), nil
}
