// Package view owns the live camera transform that maps image pixels
// onto the canvas, together with the animations that move it.
package view

import (
	"fmt"
	"image"
	"math"
	"time"

	"golang.org/x/image/math/f64"

	"github.com/example/mapnotes/internal/affine"
)

// State is the current view. It is owned by the application and handed
// to the gesture controller and the coordinate mapper; it is not safe
// for concurrent use and is expected to live on the event loop.
type State struct {
	t        affine.Transform
	revision uint64
	anim     *running
}

// New returns a State holding the identity transform.
func New() *State {
	return &State{t: affine.Identity()}
}

// Transform returns the current transform.
func (s *State) Transform() affine.Transform {
	return s.t
}

// Revision increases every time the transform changes.
func (s *State) Revision() uint64 {
	return s.revision
}

// Set replaces the transform. Non-finite or singular transforms are
// rejected and the previous value is kept.
func (s *State) Set(t affine.Transform) error {
	if !affine.IsFinite(t) || affine.Determinant(t) == 0 {
		return fmt.Errorf("set view %v: %w", t, affine.ErrDegenerate)
	}
	s.t = t
	s.revision++
	return nil
}

// FitTransform returns the transform that scales an image of size img to
// cover canvas, centred, without rotation.
func FitTransform(img, canvas image.Point) (affine.Transform, error) {
	if img.X <= 0 || img.Y <= 0 || canvas.X <= 0 || canvas.Y <= 0 {
		return affine.Transform{}, fmt.Errorf("fit %v into %v: %w", img, canvas, affine.ErrDegenerate)
	}
	iw, ih := float64(img.X), float64(img.Y)
	cw, ch := float64(canvas.X), float64(canvas.Y)
	s := math.Max(cw/iw, ch/ih)
	return affine.Transform{s, 0, 0, s, (cw - iw*s) / 2, (ch - ih*s) / 2}, nil
}

// Fit resets the view so the image fills the canvas.
func (s *State) Fit(img, canvas image.Point) error {
	t, err := FitTransform(img, canvas)
	if err != nil {
		return err
	}
	s.CancelAnimation()
	return s.Set(t)
}

// Center returns the middle of a canvas in screen coordinates.
func Center(canvas image.Point) f64.Vec2 {
	return f64.Vec2{float64(canvas.X) / 2, float64(canvas.Y) / 2}
}

// Animate starts a, replacing any animation already running.
func (s *State) Animate(a Animation, now time.Time) {
	s.anim = &running{Animation: a, from: s.t, start: now}
}

// Animating reports whether an animation is in flight.
func (s *State) Animating() bool {
	return s.anim != nil
}

// CancelAnimation stops the running animation where it is.
func (s *State) CancelAnimation() {
	s.anim = nil
}

// Step advances the running animation to now and reports whether it
// still needs further frames.
func (s *State) Step(now time.Time) bool {
	r := s.anim
	if r == nil {
		return false
	}
	u := 1.0
	if r.Duration > 0 {
		u = float64(now.Sub(r.start)) / float64(r.Duration)
	}
	u = math.Max(0, math.Min(1, u))
	ease := r.Ease
	if ease == nil {
		ease = Smooth
	}
	if err := s.Set(r.Interpolate(r.from, ease(u))); err != nil {
		s.anim = nil
		return false
	}
	if u >= 1 {
		s.anim = nil
		return false
	}
	return true
}
