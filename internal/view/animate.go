package view

import (
	"math"
	"time"

	"golang.org/x/image/math/f64"

	"github.com/example/mapnotes/internal/affine"
)

// Animation interpolates the view from the transform captured when it
// starts. Interpolate is called once per frame with the eased progress
// in [0, 1] and must not keep references between calls.
type Animation struct {
	Duration    time.Duration
	Ease        func(float64) float64
	Interpolate func(from affine.Transform, u float64) affine.Transform
}

type running struct {
	Animation
	from  affine.Transform
	start time.Time
}

// Smooth eases in and out along half a cosine period.
func Smooth(x float64) float64 {
	return (1 - math.Cos(math.Pi*x)) / 2
}

// RestoreNorth turns the view back to zero rotation around center.
func RestoreNorth(center f64.Vec2, d time.Duration) Animation {
	return Animation{
		Duration: d,
		Interpolate: func(from affine.Transform, u float64) affine.Transform {
			return affine.ComposeAt(from, affine.Rotation(-affine.Angle(from)*u), center)
		},
	}
}

// PanTo slides the screen point target onto center.
func PanTo(target, center f64.Vec2, d time.Duration) Animation {
	delta := affine.Sub(center, target)
	return Animation{
		Duration: d,
		Interpolate: func(from affine.Transform, u float64) affine.Transform {
			return affine.Translate(from, affine.ScaleVec(delta, u))
		},
	}
}

// ZoomTo scales the view around center until its uniform scale reaches
// target.
func ZoomTo(target float64, center f64.Vec2, d time.Duration) Animation {
	return Animation{
		Duration: d,
		Interpolate: func(from affine.Transform, u float64) affine.Transform {
			s0 := affine.UniformScale(from)
			if s0 == 0 {
				return from
			}
			f := math.Pow(target/s0, u)
			return affine.ComposeAt(from, affine.Scaling(f, f), center)
		},
	}
}
