package gesture

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/math/f64"

	"github.com/example/mapnotes/internal/affine"
	"github.com/example/mapnotes/internal/view"
)

const tol = 1e-9

type harness struct {
	view    *view.State
	ctrl    *Controller
	changes int
	logs    []string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{view: view.New()}
	h.ctrl = New(h.view, DefaultOptions())
	h.ctrl.OnChange = func() { h.changes++ }
	h.ctrl.Logf = func(format string, args ...any) {
		h.logs = append(h.logs, fmt.Sprintf(format, args...))
	}
	return h
}

func assertMaps(t *testing.T, tr affine.Transform, from, to f64.Vec2) {
	t.Helper()
	got := affine.Apply(from, tr)
	assert.InDelta(t, to[0], got[0], tol, "x of %v -> %v", from, got)
	assert.InDelta(t, to[1], got[1], tol, "y of %v -> %v", from, got)
}

func TestOneTouchDrag(t *testing.T) {
	h := newHarness(t)
	h.ctrl.Down(0, affine.Vec(100, 100))
	assert.Equal(t, OneTouch, h.ctrl.Phase())
	h.ctrl.Move(0, affine.Vec(110, 95))
	h.ctrl.Move(0, affine.Vec(120, 90))
	assert.Equal(t, affine.Transform{1, 0, 0, 1, 20, -10}, h.view.Transform())
	assert.Equal(t, 2, h.changes)

	h.ctrl.Up(0)
	assert.Equal(t, Idle, h.ctrl.Phase())
	assert.Equal(t, affine.Transform{1, 0, 0, 1, 20, -10}, h.view.Transform())
	assert.Empty(t, h.logs)
}

func TestDragIsRelativeToSnapshot(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.view.Set(affine.Transform{2, 0, 0, 2, 5, 5}))
	h.ctrl.Down(MousePointer, affine.Vec(0, 0))
	for i := 1; i <= 50; i++ {
		h.ctrl.Move(MousePointer, affine.Vec(float64(i), float64(-i)))
	}
	assert.Equal(t, affine.Transform{2, 0, 0, 2, 55, -45}, h.view.Transform())
}

func TestPinchExactness(t *testing.T) {
	a0, b0 := affine.Vec(0, 0), affine.Vec(100, 0)
	a1, b1 := affine.Vec(10, 10), affine.Vec(150, 10)
	tr, err := Pinch(affine.Identity(), a0, b0, a1, b1)
	require.NoError(t, err)
	assertMaps(t, tr, a0, a1)
	assertMaps(t, tr, b0, b1)
	assert.InDelta(t, 1.4, affine.UniformScale(tr), tol)
	assert.InDelta(t, 0, affine.Angle(tr), tol)
}

func TestPinchWithRotation(t *testing.T) {
	base := affine.Translate(affine.Rotate(affine.Scaling(1.5, 1.5), 0.3), affine.Vec(40, -20))
	a0, b0 := affine.Vec(200, 200), affine.Vec(260, 180)
	a1, b1 := affine.Vec(190, 250), affine.Vec(240, 330)
	tr, err := Pinch(base, a0, b0, a1, b1)
	require.NoError(t, err)
	// Content that was under each finger stays under that finger.
	for _, pair := range [][2]f64.Vec2{{a0, a1}, {b0, b1}} {
		img, err := affine.Unapply(pair[0], base)
		require.NoError(t, err)
		assertMaps(t, tr, img, pair[1])
	}
}

func TestTwoTouchSession(t *testing.T) {
	h := newHarness(t)
	h.ctrl.Down(0, affine.Vec(0, 0))
	h.ctrl.Down(1, affine.Vec(100, 0))
	assert.Equal(t, TwoTouch, h.ctrl.Phase())
	h.ctrl.Move(0, affine.Vec(10, 10))
	h.ctrl.Move(1, affine.Vec(150, 10))
	tr := h.view.Transform()
	assertMaps(t, tr, affine.Vec(0, 0), affine.Vec(10, 10))
	assertMaps(t, tr, affine.Vec(100, 0), affine.Vec(150, 10))
}

func TestSecondTouchResnapshots(t *testing.T) {
	h := newHarness(t)
	h.ctrl.Down(0, affine.Vec(0, 0))
	h.ctrl.Move(0, affine.Vec(30, 0))
	h.ctrl.Down(1, affine.Vec(130, 0))
	// No movement yet: the view is still the dragged one.
	h.ctrl.Move(1, affine.Vec(130, 0))
	assert.Equal(t, affine.Transform{1, 0, 0, 1, 30, 0}, h.view.Transform())

	// Spread the fingers to twice the distance around their midpoint.
	h.ctrl.Move(0, affine.Vec(-20, 0))
	h.ctrl.Move(1, affine.Vec(180, 0))
	tr := h.view.Transform()
	assert.InDelta(t, 2, affine.UniformScale(tr), tol)
	assertMaps(t, tr, affine.Vec(0, 0), affine.Vec(-20, 0))
}

func TestThirdTouchIgnored(t *testing.T) {
	h := newHarness(t)
	h.ctrl.Down(0, affine.Vec(0, 0))
	h.ctrl.Down(1, affine.Vec(100, 0))
	h.ctrl.Down(2, affine.Vec(50, 50))
	assert.Equal(t, TwoTouch, h.ctrl.Phase())
	assert.False(t, h.ctrl.Active(2))
	before := h.view.Transform()
	h.ctrl.Move(2, affine.Vec(500, 500))
	h.ctrl.Move(2, affine.Vec(510, 500))
	h.ctrl.Up(2)
	assert.Equal(t, before, h.view.Transform())
	assert.Len(t, h.logs, 1, "only the press of the extra pointer is reported")
	assert.Equal(t, TwoTouch, h.ctrl.Phase())

	h.ctrl.Up(0)
	h.ctrl.Up(1)
	h.ctrl.Down(3, affine.Vec(0, 0))
	assert.Equal(t, OneTouch, h.ctrl.Phase(), "released extra pointer leaves no stale state")
}

func TestLiftOneOfTwoContinuesAsDrag(t *testing.T) {
	h := newHarness(t)
	h.ctrl.Down(0, affine.Vec(0, 0))
	h.ctrl.Down(1, affine.Vec(100, 0))
	h.ctrl.Move(1, affine.Vec(200, 0))
	scaled := h.view.Transform()
	h.ctrl.Up(0)
	assert.Equal(t, OneTouch, h.ctrl.Phase())
	assert.Equal(t, scaled, h.view.Transform())

	h.ctrl.Move(1, affine.Vec(210, 5))
	assert.Equal(t, affine.Translate(scaled, affine.Vec(10, 5)), h.view.Transform())
	h.ctrl.Up(1)
	assert.Equal(t, Idle, h.ctrl.Phase())
}

func TestCoincidentTouchesKeepView(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.view.Set(affine.Transform{3, 0, 0, 3, 7, 7}))
	h.ctrl.Down(0, affine.Vec(50, 50))
	h.ctrl.Down(1, affine.Vec(50, 50))
	h.ctrl.Move(1, affine.Vec(80, 90))
	assert.Equal(t, affine.Transform{3, 0, 0, 3, 7, 7}, h.view.Transform())
	assert.Equal(t, 0, h.changes)
	require.Len(t, h.logs, 1)
	assert.Contains(t, h.logs[0], "degenerate")

	// Collapsing onto one point is rejected too.
	h.ctrl.Reset()
	h.ctrl.Down(0, affine.Vec(0, 0))
	h.ctrl.Down(1, affine.Vec(10, 0))
	h.ctrl.Move(1, affine.Vec(0, 0))
	assert.True(t, affine.IsFinite(h.view.Transform()))
	assert.Equal(t, affine.Transform{3, 0, 0, 3, 7, 7}, h.view.Transform())
}

func TestUnknownPointer(t *testing.T) {
	h := newHarness(t)
	h.ctrl.Move(4, affine.Vec(1, 1))
	h.ctrl.Up(4)
	assert.Equal(t, Idle, h.ctrl.Phase())
	assert.Equal(t, affine.Identity(), h.view.Transform())
	assert.Len(t, h.logs, 2)
}

func TestSecondTouchWithoutSessionIsNoop(t *testing.T) {
	h := newHarness(t)
	h.ctrl.Down(0, affine.Vec(10, 10))
	h.ctrl.Cancel()
	assert.Equal(t, Idle, h.ctrl.Phase())

	h.ctrl.Down(1, affine.Vec(90, 10))
	assert.Equal(t, Idle, h.ctrl.Phase())
	h.ctrl.Move(0, affine.Vec(50, 50))
	h.ctrl.Move(1, affine.Vec(60, 60))
	assert.Equal(t, affine.Identity(), h.view.Transform())

	h.ctrl.Up(0)
	h.ctrl.Up(1)
	h.ctrl.Down(2, affine.Vec(0, 0))
	assert.Equal(t, OneTouch, h.ctrl.Phase())
}

func TestWheelZoomKeepsCursor(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.view.Set(affine.Transform{0.5, 0, 0, 0.5, 10, 20}))
	cursor := affine.Vec(120, 80)
	under, err := affine.Unapply(cursor, h.view.Transform())
	require.NoError(t, err)

	h.ctrl.Wheel(cursor, 3, false)
	tr := h.view.Transform()
	assert.InDelta(t, 0.5*math.Pow(1.1, 3), affine.UniformScale(tr), tol)
	assertMaps(t, tr, under, cursor)
	assert.Equal(t, 1, h.changes)
}

func TestWheelRotate(t *testing.T) {
	h := newHarness(t)
	cursor := affine.Vec(30, 40)
	h.ctrl.Wheel(cursor, -2, true)
	tr := h.view.Transform()
	assert.InDelta(t, -10*math.Pi/180, affine.Angle(tr), tol)
	assertMaps(t, tr, cursor, cursor)
}

func TestWheelIgnoredDuringDrag(t *testing.T) {
	h := newHarness(t)
	h.ctrl.Down(0, affine.Vec(0, 0))
	h.ctrl.Wheel(affine.Vec(0, 0), 1, false)
	assert.Equal(t, affine.Identity(), h.view.Transform())
}

func TestZoomLimits(t *testing.T) {
	h := newHarness(t)
	h.ctrl.opts.MaxScale = 2
	h.ctrl.ZoomAt(affine.Vec(0, 0), 1.5)
	h.ctrl.ZoomAt(affine.Vec(0, 0), 1.5)
	assert.InDelta(t, 1.5, affine.UniformScale(h.view.Transform()), tol)
	h.ctrl.ZoomAt(affine.Vec(0, 0), 0.5)
	assert.InDelta(t, 0.75, affine.UniformScale(h.view.Transform()), tol)
}

func TestPan(t *testing.T) {
	h := newHarness(t)
	h.ctrl.Pan(affine.Vec(-15, 4))
	assert.Equal(t, affine.Transform{1, 0, 0, 1, -15, 4}, h.view.Transform())
}

func TestGestureCancelsAnimation(t *testing.T) {
	h := newHarness(t)
	start := time.Unix(0, 0)
	h.view.Animate(view.PanTo(affine.Vec(0, 0), affine.Vec(100, 100), time.Second), start)
	require.True(t, h.view.Animating())
	h.ctrl.Down(0, affine.Vec(5, 5))
	assert.False(t, h.view.Animating())
	assert.False(t, h.view.Step(start.Add(time.Second)))
	assert.Equal(t, affine.Identity(), h.view.Transform())
}
