// Package gesture turns pointer, touch and wheel input into updates of
// the view transform.
package gesture

import (
	"errors"
	"fmt"
	"log"
	"math"

	"golang.org/x/image/math/f64"

	"github.com/example/mapnotes/internal/affine"
	"github.com/example/mapnotes/internal/view"
)

// MousePointer is the pointer id used for the primary mouse button.
const MousePointer = -1

// Phase of the controller state machine.
type Phase int

const (
	Idle Phase = iota
	OneTouch
	TwoTouch
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case OneTouch:
		return "one-touch"
	case TwoTouch:
		return "two-touch"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// ErrInvalidState marks input that does not fit the current phase.
var ErrInvalidState = errors.New("invalid gesture state")

type pointer struct {
	id    int
	start f64.Vec2
	cur   f64.Vec2
}

// session is the baseline a drag or pinch is computed against.
type session struct {
	snapshot affine.Transform
	pts      []pointer
}

// Options tune wheel handling and scale limits.
type Options struct {
	// ZoomFactor is the scale applied per wheel step.
	ZoomFactor float64
	// RotateStep is the rotation per wheel step in radians.
	RotateStep float64
	MinScale   float64
	MaxScale   float64
}

// DefaultOptions matches the defaults of the config file.
func DefaultOptions() Options {
	return Options{
		ZoomFactor: 1.1,
		RotateStep: 5 * math.Pi / 180,
		MinScale:   0.05,
		MaxScale:   64,
	}
}

// Controller is the gesture state machine. All methods are synchronous
// and must be called from the event loop that owns the view.
type Controller struct {
	view *view.State
	opts Options
	sess *session
	// stale holds pointers that were down when the session was cancelled.
	stale map[int]bool

	// OnChange is called after every accepted transform change.
	OnChange func()
	// Logf reports ignored or rejected input.
	Logf func(format string, args ...any)
}

// New returns a controller driving v.
func New(v *view.State, opts Options) *Controller {
	return &Controller{
		view:  v,
		opts:  opts,
		stale: map[int]bool{},
		Logf:  log.Printf,
	}
}

// Phase reports the current state.
func (c *Controller) Phase() Phase {
	if c.sess == nil {
		return Idle
	}
	if len(c.sess.pts) == 2 {
		return TwoTouch
	}
	return OneTouch
}

// Active reports whether id takes part in the current gesture.
func (c *Controller) Active(id int) bool {
	return c.find(id) >= 0
}

func (c *Controller) find(id int) int {
	if c.sess == nil {
		return -1
	}
	for i, p := range c.sess.pts {
		if p.id == id {
			return i
		}
	}
	return -1
}

func (c *Controller) logf(format string, args ...any) {
	if c.Logf != nil {
		c.Logf(format, args...)
	}
}

// Down registers a pointer going down at pos.
func (c *Controller) Down(id int, pos f64.Vec2) {
	switch c.Phase() {
	case Idle:
		if len(c.stale) > 0 {
			c.logf("gesture: pointer %d down with no active session: %v", id, ErrInvalidState)
			c.stale[id] = true
			return
		}
		c.view.CancelAnimation()
		c.sess = &session{
			snapshot: c.view.Transform(),
			pts:      []pointer{{id: id, start: pos, cur: pos}},
		}
	case OneTouch:
		if c.Active(id) {
			c.logf("gesture: pointer %d pressed twice: %v", id, ErrInvalidState)
			return
		}
		first := c.sess.pts[0]
		c.sess = &session{
			snapshot: c.view.Transform(),
			pts: []pointer{
				{id: first.id, start: first.cur, cur: first.cur},
				{id: id, start: pos, cur: pos},
			},
		}
	case TwoTouch:
		// Only two pointers are tracked; the rest are stale until released.
		c.logf("gesture: pointer %d ignored in %v", id, TwoTouch)
		c.stale[id] = true
	}
}

// Move updates the position of a pointer already down.
func (c *Controller) Move(id int, pos f64.Vec2) {
	i := c.find(id)
	if i < 0 {
		if !c.stale[id] {
			c.logf("gesture: move of pointer %d in %v: %v", id, c.Phase(), ErrInvalidState)
		}
		return
	}
	c.sess.pts[i].cur = pos
	var (
		next affine.Transform
		err  error
	)
	if len(c.sess.pts) == 1 {
		next = Drag(c.sess.snapshot, c.sess.pts[0].start, pos)
	} else {
		p0, p1 := c.sess.pts[0], c.sess.pts[1]
		next, err = Pinch(c.sess.snapshot, p0.start, p1.start, p0.cur, p1.cur)
	}
	if err == nil {
		err = c.checkScale(next)
	}
	if err == nil {
		err = c.view.Set(next)
	}
	if err != nil {
		c.logf("gesture: keeping previous view: %v", err)
		return
	}
	c.changed()
}

// Up releases a pointer. Lifting one finger of a pinch continues as a
// drag with the remaining finger from where it is now.
func (c *Controller) Up(id int) {
	if c.stale[id] {
		delete(c.stale, id)
		return
	}
	i := c.find(id)
	if i < 0 {
		c.logf("gesture: release of pointer %d in %v: %v", id, c.Phase(), ErrInvalidState)
		return
	}
	if len(c.sess.pts) == 1 {
		c.sess = nil
		return
	}
	rest := c.sess.pts[1-i]
	c.sess = &session{
		snapshot: c.view.Transform(),
		pts:      []pointer{{id: rest.id, start: rest.cur, cur: rest.cur}},
	}
}

// Cancel ends the gesture without lifting its pointers. Pointers still
// down are ignored until they are released.
func (c *Controller) Cancel() {
	if c.sess == nil {
		return
	}
	for _, p := range c.sess.pts {
		c.stale[p.id] = true
	}
	c.sess = nil
}

// Reset forgets every pointer, including stale ones.
func (c *Controller) Reset() {
	c.sess = nil
	c.stale = map[int]bool{}
}

// Wheel zooms by steps wheel notches around pos, or rotates when rotate
// is set. It is ignored while a drag is in progress.
func (c *Controller) Wheel(pos f64.Vec2, steps float64, rotate bool) {
	if c.sess != nil {
		c.logf("gesture: wheel during %v ignored", c.Phase())
		return
	}
	var delta affine.Transform
	if rotate {
		delta = affine.Rotation(steps * c.opts.RotateStep)
	} else {
		f := math.Pow(c.opts.ZoomFactor, steps)
		delta = affine.Scaling(f, f)
	}
	c.apply(delta, pos)
}

// ZoomAt scales the view by factor around pos.
func (c *Controller) ZoomAt(pos f64.Vec2, factor float64) {
	c.apply(affine.Scaling(factor, factor), pos)
}

// Pan shifts the view by d screen pixels.
func (c *Controller) Pan(d f64.Vec2) {
	c.apply(affine.Translate(affine.Identity(), d), f64.Vec2{})
}

func (c *Controller) apply(delta affine.Transform, pos f64.Vec2) {
	c.view.CancelAnimation()
	next := affine.ComposeAt(c.view.Transform(), delta, pos)
	err := c.checkScale(next)
	if err == nil {
		err = c.view.Set(next)
	}
	if err != nil {
		c.logf("gesture: keeping previous view: %v", err)
		return
	}
	c.changed()
}

// checkScale rejects transforms that move the scale further out of the
// configured range. Moving back towards the range is always allowed.
func (c *Controller) checkScale(t affine.Transform) error {
	s, cur := affine.UniformScale(t), affine.UniformScale(c.view.Transform())
	if c.opts.MinScale > 0 && s < c.opts.MinScale && s < cur {
		return fmt.Errorf("scale %g below %g", s, c.opts.MinScale)
	}
	if c.opts.MaxScale > 0 && s > c.opts.MaxScale && s > cur {
		return fmt.Errorf("scale %g above %g", s, c.opts.MaxScale)
	}
	return nil
}

func (c *Controller) changed() {
	if c.OnChange != nil {
		c.OnChange()
	}
}

// Drag is the one-pointer update: snapshot moved by cur-start.
func Drag(snapshot affine.Transform, start, cur f64.Vec2) affine.Transform {
	return affine.Translate(snapshot, affine.Sub(cur, start))
}

// Pinch is the two-pointer update. It maps the baseline points a0 and
// b0 exactly onto a1 and b1 using translation, uniform scale and
// rotation.
func Pinch(snapshot affine.Transform, a0, b0, a1, b1 f64.Vec2) (affine.Transform, error) {
	c0, c1 := affine.Midpoint(a0, b0), affine.Midpoint(a1, b1)
	d0, d1 := affine.Sub(b0, a0), affine.Sub(b1, a1)
	l0 := affine.Length(d0)
	if l0 == 0 {
		return snapshot, fmt.Errorf("pinch baseline points coincide: %w", affine.ErrDegenerate)
	}
	rot, err := affine.RotationAligning(d0, d1)
	if err != nil {
		return snapshot, fmt.Errorf("pinch: %w", err)
	}
	s := affine.Length(d1) / l0
	delta := affine.Compose(affine.Scaling(s, s), rot)
	t := affine.Translate(snapshot, affine.Sub(c1, c0))
	return affine.ComposeAt(t, delta, c1), nil
}
