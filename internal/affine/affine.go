// Package affine implements the 2D affine algebra used to move the map
// view around: rotation, uniform or non-uniform scale and translation
// packed into six numbers.
package affine

import (
	"errors"
	"fmt"
	"math"

	"golang.org/x/image/math/f64"
)

// ErrDegenerate is returned when an operation would need to divide by a
// zero determinant or normalize a zero-length vector.
var ErrDegenerate = errors.New("degenerate transform")

// Transform is an affine map stored as the images of the basis vectors
// i=(1,0) and j=(0,1) followed by the image of the origin k:
//
//	(ix, iy, jx, jy, kx, ky)
//
// Transforms are plain values. Every function returns a new Transform so
// t = Compose(t, d) never reads a half written result.
type Transform [6]float64

// Identity returns the transform that maps every point onto itself.
func Identity() Transform {
	return Transform{1, 0, 0, 1, 0, 0}
}

// I returns the image of the x basis vector.
func (t Transform) I() f64.Vec2 { return f64.Vec2{t[0], t[1]} }

// J returns the image of the y basis vector.
func (t Transform) J() f64.Vec2 { return f64.Vec2{t[2], t[3]} }

// K returns the translation component.
func (t Transform) K() f64.Vec2 { return f64.Vec2{t[4], t[5]} }

func (t Transform) String() string {
	return fmt.Sprintf("[%g %g %g %g %g %g]", t[0], t[1], t[2], t[3], t[4], t[5])
}

// Determinant of the linear part.
func Determinant(t Transform) float64 {
	return t[0]*t[3] - t[1]*t[2]
}

// IsFinite reports whether all six components are finite numbers.
func IsFinite(t Transform) bool {
	for _, v := range t {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Apply maps v through t.
func Apply(v f64.Vec2, t Transform) f64.Vec2 {
	return f64.Vec2{
		v[0]*t[0] + v[1]*t[2] + t[4],
		v[0]*t[1] + v[1]*t[3] + t[5],
	}
}

// Invert returns the inverse of t. A zero or non-finite determinant
// yields ErrDegenerate.
func Invert(t Transform) (Transform, error) {
	det := Determinant(t)
	if det == 0 || math.IsNaN(det) || math.IsInf(det, 0) {
		return Transform{}, fmt.Errorf("invert %v: %w", t, ErrDegenerate)
	}
	ix, iy, jx, jy, kx, ky := t[0], t[1], t[2], t[3], t[4], t[5]
	res := Transform{
		jy / det,
		-iy / det,
		-jx / det,
		ix / det,
		(jx*ky - jy*kx) / det,
		(iy*kx - ix*ky) / det,
	}
	if !IsFinite(res) {
		return Transform{}, fmt.Errorf("invert %v: %w", t, ErrDegenerate)
	}
	return res, nil
}

// Unapply maps a point through the inverse of t.
func Unapply(v f64.Vec2, t Transform) (f64.Vec2, error) {
	inv, err := Invert(t)
	if err != nil {
		return f64.Vec2{}, err
	}
	return Apply(v, inv), nil
}

// Compose returns the transform that applies a first and then b.
func Compose(a, b Transform) Transform {
	return Transform{
		a[0]*b[0] + a[1]*b[2],
		a[0]*b[1] + a[1]*b[3],
		a[2]*b[0] + a[3]*b[2],
		a[2]*b[1] + a[3]*b[3],
		a[4]*b[0] + a[5]*b[2] + b[4],
		a[4]*b[1] + a[5]*b[3] + b[5],
	}
}

// ComposeAt composes b into a around pivot, so the screen point pivot
// stays where it is.
func ComposeAt(a, b Transform, pivot f64.Vec2) Transform {
	res := Translate(a, f64.Vec2{-pivot[0], -pivot[1]})
	res = Compose(res, b)
	return Translate(res, pivot)
}

// Translate moves the origin of t by d.
func Translate(t Transform, d f64.Vec2) Transform {
	t[4] += d[0]
	t[5] += d[1]
	return t
}

// Scale multiplies every x component of t by sx and every y component by
// sy. This is the same as composing a scaling about the origin after t.
func Scale(t Transform, sx, sy float64) Transform {
	return Transform{
		t[0] * sx, t[1] * sy,
		t[2] * sx, t[3] * sy,
		t[4] * sx, t[5] * sy,
	}
}

// Scaling returns a pure scale.
func Scaling(sx, sy float64) Transform {
	return Scale(Identity(), sx, sy)
}

// Rotation returns a pure rotation by radians.
func Rotation(radians float64) Transform {
	sin, cos := math.Sincos(radians)
	return Transform{cos, sin, -sin, cos, 0, 0}
}

// Rotate composes a rotation by radians after t.
func Rotate(t Transform, radians float64) Transform {
	return Compose(t, Rotation(radians))
}

// RotationAligning returns the pure rotation that turns the direction of
// a onto the direction of b.
func RotationAligning(a, b f64.Vec2) (Transform, error) {
	na, err := Normalize(a)
	if err != nil {
		return Transform{}, err
	}
	nb, err := Normalize(b)
	if err != nil {
		return Transform{}, err
	}
	cos := math.Max(-1, math.Min(1, Dot(na, nb)))
	sin := math.Sqrt(1 - cos*cos)
	switch c := Cross(na, nb); {
	case c < 0:
		sin = -sin
	case c == 0:
		sin = 0
	}
	return Transform{cos, sin, -sin, cos, 0, 0}, nil
}

// Angle is the signed rotation of t in radians.
func Angle(t Transform) float64 {
	return math.Atan2(t[1], t[0])
}

// UniformScale averages the lengths of both basis images. Only
// meaningful when the scale is close to uniform.
func UniformScale(t Transform) float64 {
	return (Length(t.I()) + Length(t.J())) / 2
}

// Aff3 converts t into the row-major matrix expected by
// golang.org/x/image/draw transformers.
func Aff3(t Transform) f64.Aff3 {
	return f64.Aff3{
		t[0], t[2], t[4],
		t[1], t[3], t[5],
	}
}
