// Package appstate runs the interactive map window.
package appstate

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log"
	"math"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/image/math/f64"

	"github.com/example/mapnotes/internal/affine"
	"github.com/example/mapnotes/internal/annotation"
	"github.com/example/mapnotes/internal/clipboard"
	"github.com/example/mapnotes/internal/config"
	"github.com/example/mapnotes/internal/geo"
	"github.com/example/mapnotes/internal/gesture"
	"github.com/example/mapnotes/internal/locate"
	"github.com/example/mapnotes/internal/notify"
	"github.com/example/mapnotes/internal/render"
	"github.com/example/mapnotes/internal/theme"
	"github.com/example/mapnotes/internal/view"
)

const messageDuration = 2 * time.Second

// panStep is how far the arrow keys move the map, in pixels.
const panStep = 40

// tap is a press that has not moved far enough to become a drag.
type tap struct {
	id  int
	pos f64.Vec2
}

// Viewer is the state behind the window: the view, the gesture
// controller, the annotations and the current selection. It is owned by
// the event loop and not safe for concurrent use.
type Viewer struct {
	cfg       *config.Config
	theme     *theme.Theme
	store     *annotation.Store
	notifier  *notify.Notifier
	satellite image.Image
	mask      image.Image

	view   *view.State
	ctrl   *gesture.Controller
	mapper *geo.Mapper
	canvas image.Point

	selected   int
	label      int
	showLabels bool
	location   *locate.Fix
	tap        *tap

	message      string
	messageUntil time.Time

	now  func() time.Time
	logf func(format string, args ...any)
}

// NewViewer builds a viewer for a map image of the given size.
func NewViewer(cfg *config.Config, store *annotation.Store, imgSize image.Point) (*Viewer, error) {
	if cfg == nil {
		cfg = config.New()
	}
	v := &Viewer{
		cfg:      cfg,
		theme:    theme.Default(),
		store:    store,
		view:     view.New(),
		selected: -1,
		now:      time.Now,
		logf:     log.Printf,
	}
	m, err := geo.NewMapper(cfg.Calibration, imgSize, v.view)
	if err != nil {
		return nil, err
	}
	v.mapper = m
	v.ctrl = gesture.New(v.view, cfg.GestureOptions())
	if cfg.Label != "" {
		if l, err := store.LabelByName(cfg.Label); err == nil {
			v.label = v.labelIndex(l.ID)
		} else {
			v.logf("label %q: %v", cfg.Label, err)
		}
	}
	return v, nil
}

// Mapper converts between coordinates for the current view.
func (v *Viewer) Mapper() *geo.Mapper { return v.mapper }

// View is the state the gestures act on.
func (v *Viewer) View() *view.State { return v.view }

// Controller returns the gesture controller.
func (v *Viewer) Controller() *gesture.Controller { return v.ctrl }

// Selected is the index of the selected entry or -1.
func (v *Viewer) Selected() int { return v.selected }

// Message returns the status notice if it has not expired.
func (v *Viewer) Message() string {
	if v.message == "" || v.now().After(v.messageUntil) {
		return ""
	}
	return v.message
}

func (v *Viewer) setMessage(format string, args ...any) {
	v.message = fmt.Sprintf(format, args...)
	v.messageUntil = v.now().Add(messageDuration)
	v.logf("%s", v.message)
}

// Resize changes the canvas. The first resize fits the map into it.
func (v *Viewer) Resize(canvas image.Point) {
	first := v.canvas == (image.Point{})
	v.canvas = canvas
	if first {
		v.Fit()
	}
}

// Fit shows the whole map image.
func (v *Viewer) Fit() {
	v.interrupt()
	if err := v.view.Fit(v.mapper.Image, v.canvas); err != nil {
		v.logf("fit: %v", err)
	}
}

func (v *Viewer) center() f64.Vec2 { return view.Center(v.canvas) }

// PointerDown starts or extends a gesture.
func (v *Viewer) PointerDown(id int, pos f64.Vec2) {
	if v.ctrl.Phase() == gesture.Idle {
		v.tap = &tap{id: id, pos: pos}
	} else {
		v.tap = nil
	}
	v.ctrl.Down(id, pos)
}

// PointerMove updates a pointer of the current gesture.
func (v *Viewer) PointerMove(id int, pos f64.Vec2) {
	if t := v.tap; t != nil && t.id == id && affine.Distance(t.pos, pos) > v.cfg.View.TapSlop {
		v.tap = nil
	}
	v.ctrl.Move(id, pos)
}

// PointerUp ends a pointer. A press released close to where it started
// is a tap on the map.
func (v *Viewer) PointerUp(id int, pos f64.Vec2) {
	t := v.tap
	v.tap = nil
	v.ctrl.Up(id)
	if t != nil && t.id == id && v.ctrl.Phase() == gesture.Idle && affine.Distance(t.pos, pos) <= v.cfg.View.TapSlop {
		v.Tap(t.pos)
	}
}

// interrupt ends the current gesture for a programmatic view change.
// Pointers still down stay ignored until they are released.
func (v *Viewer) interrupt() {
	v.tap = nil
	v.ctrl.Cancel()
}

// AbortGesture forgets the current gesture and its pointers, for
// example when the window loses focus mid drag and the release will
// never arrive.
func (v *Viewer) AbortGesture() {
	v.tap = nil
	v.ctrl.Reset()
}

// Wheel zooms, or rotates when rotate is set, around pos.
func (v *Viewer) Wheel(pos f64.Vec2, steps float64, rotate bool) {
	v.ctrl.Wheel(pos, steps, rotate)
}

// Tap selects the marker under pos. Tapping empty map clears the
// selection, or adds an entry with the current label when nothing is
// selected.
func (v *Viewer) Tap(pos f64.Vec2) {
	if i, ok := v.mapper.Nearest(pos, v.store.Coords(), v.cfg.View.HitRadius); ok {
		if v.selected == i {
			v.selected = -1
		} else {
			v.selected = i
			v.describe(i)
		}
		return
	}
	if v.selected >= 0 {
		v.selected = -1
		return
	}
	c, err := v.mapper.ScreenToGeo(pos)
	if err != nil {
		v.logf("tap: %v", err)
		return
	}
	if !v.mapper.Box.Contains(c) {
		v.setMessage("outside the map")
		return
	}
	e := annotation.Entry{Lat: c.Lat, Lon: c.Lon}
	if l, ok := v.currentLabel(); ok {
		e.Label = l.ID
	}
	i, err := v.store.Add(e)
	if err != nil {
		v.setMessage("add: %v", err)
		return
	}
	v.selected = i
	v.describe(i)
}

func (v *Viewer) describe(i int) {
	entries := v.store.Entries()
	if i < 0 || i >= len(entries) {
		return
	}
	e := entries[i]
	name := "unlabelled"
	if l, err := v.store.Label(e.Label); err == nil {
		name = l.Name
	}
	v.setMessage("%s %s", name, e.Coord())
}

func (v *Viewer) currentLabel() (annotation.Label, bool) {
	labels := v.store.Labels()
	if len(labels) == 0 {
		return annotation.Label{}, false
	}
	return labels[v.label%len(labels)], true
}

func (v *Viewer) labelIndex(id int) int {
	for i, l := range v.store.Labels() {
		if l.ID == id {
			return i
		}
	}
	return 0
}

// CycleLabel moves the current label forward or backward. A selected
// entry takes the new label too.
func (v *Viewer) CycleLabel(step int) {
	n := len(v.store.Labels())
	if n == 0 {
		v.setMessage("no labels")
		return
	}
	v.label = ((v.label+step)%n + n) % n
	l, _ := v.currentLabel()
	if v.selected >= 0 {
		if err := v.store.Relabel(v.selected, l.ID); err != nil {
			v.logf("relabel: %v", err)
		}
	}
	v.setMessage("label: %s", l.Name)
}

// DeleteSelected removes the selected entry.
func (v *Viewer) DeleteSelected() {
	if v.selected < 0 {
		return
	}
	e, err := v.store.Remove(v.selected)
	v.selected = -1
	if err != nil {
		v.logf("remove: %v", err)
		return
	}
	v.setMessage("removed %s", e.Coord())
}

// Deselect clears the selection.
func (v *Viewer) Deselect() { v.selected = -1 }

// ToggleLabels shows or hides the names next to every marker.
func (v *Viewer) ToggleLabels() { v.showLabels = !v.showLabels }

// RestoreNorth animates the rotation back to zero.
func (v *Viewer) RestoreNorth() {
	v.interrupt()
	v.view.Animate(view.RestoreNorth(v.center(), v.cfg.AnimationDuration()), v.now())
}

// SetLocation records a position fix.
func (v *Viewer) SetLocation(fix locate.Fix) {
	v.location = &fix
}

// CenterOnLocation animates the last fix into the middle of the canvas.
func (v *Viewer) CenterOnLocation() {
	if v.location == nil {
		v.setMessage("no location yet")
		return
	}
	if !v.mapper.Box.Contains(v.location.Coord) {
		v.setMessage("you are outside the map")
		return
	}
	v.interrupt()
	target := v.mapper.GeoToScreen(v.location.Coord)
	v.view.Animate(view.PanTo(target, v.center(), v.cfg.AnimationDuration()), v.now())
}

// Pan moves the map by d pixels.
func (v *Viewer) Pan(d f64.Vec2) { v.ctrl.Pan(d) }

// Zoom scales around the canvas center.
func (v *Viewer) Zoom(factor float64) { v.ctrl.ZoomAt(v.center(), factor) }

// Step advances a running animation and reports whether another frame
// is needed.
func (v *Viewer) Step() bool { return v.view.Step(v.now()) }

// Animating reports a running animation.
func (v *Viewer) Animating() bool { return v.view.Animating() }

// Save writes the annotations to the data file.
func (v *Viewer) Save() error {
	if err := v.store.Save(); err != nil {
		v.setMessage("save failed: %v", err)
		return err
	}
	v.setMessage("saved %s", v.store.Path())
	if v.notifier != nil {
		v.notifier.Save(v.store.Path())
	}
	return nil
}

// Export writes the annotations as GeoJSON into the export directory.
func (v *Viewer) Export() (string, error) {
	dir := v.cfg.ExportDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		v.setMessage("export failed: %v", err)
		return "", err
	}
	path := filepath.Join(dir, "mapnotes-"+v.now().Format("20060102-150405")+".geojson")
	f, err := os.Create(path)
	if err != nil {
		v.setMessage("export failed: %v", err)
		return "", err
	}
	if err := annotation.Encode(f, v.store.Data(), annotation.FormatGeoJSON); err != nil {
		f.Close()
		v.setMessage("export failed: %v", err)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	v.setMessage("exported %s", path)
	if v.notifier != nil {
		preview, err := render.Image(context.Background(), v.Scene())
		if err != nil {
			preview = nil
		}
		v.notifier.Export(path, preview)
	}
	return path, nil
}

// CopyJSON puts the annotation document on the clipboard.
func (v *Viewer) CopyJSON() error {
	var buf bytes.Buffer
	if err := annotation.Encode(&buf, v.store.Data(), annotation.FormatJSON); err != nil {
		return err
	}
	if err := clipboard.WriteText(buf.String()); err != nil {
		v.setMessage("copy failed: %v", err)
		return err
	}
	v.setMessage("annotations copied to clipboard")
	if v.notifier != nil {
		v.notifier.Copy("annotations")
	}
	return nil
}

// CopyView puts the rendered view on the clipboard as PNG.
func (v *Viewer) CopyView() error {
	sc := v.Scene()
	sc.Message = ""
	img, err := render.Image(context.Background(), sc)
	if err != nil {
		return err
	}
	if err := clipboard.WriteImage(img); err != nil {
		v.setMessage("copy failed: %v", err)
		return err
	}
	v.setMessage("view copied to clipboard")
	if v.notifier != nil {
		v.notifier.Copy("map view")
	}
	return nil
}

// Reload picks up changes another program made to the data file.
// Unsaved edits win over the file on disk.
func (v *Viewer) Reload() {
	if !v.store.Changed() {
		return
	}
	if v.store.Dirty() {
		v.setMessage("data file changed on disk; save to overwrite")
		return
	}
	if err := v.store.Reload(); err != nil {
		v.setMessage("reload failed: %v", err)
		return
	}
	v.selected = -1
	v.setMessage("reloaded %s", filepath.Base(v.store.Path()))
}

// Scene captures everything needed to draw the current frame.
func (v *Viewer) Scene() render.Scene {
	sc := render.Scene{
		Canvas:     v.canvas,
		View:       v.view.Transform(),
		Satellite:  v.satellite,
		Mask:       v.mask,
		ShowLabels: v.showLabels,
		Compass:    math.Abs(affine.Angle(v.view.Transform())) > 1e-3,
		Message:    v.Message(),
		Theme:      v.theme,
	}
	names := map[int]string{}
	for _, l := range v.store.Labels() {
		names[l.ID] = l.Name
	}
	for i, e := range v.store.Entries() {
		sc.Markers = append(sc.Markers, render.Marker{
			Pos:      v.mapper.GeoToScreen(e.Coord()),
			Label:    names[e.Label],
			Selected: i == v.selected,
		})
	}
	if fix := v.location; fix != nil {
		sc.Location = &render.Location{
			Pos:    v.mapper.GeoToScreen(fix.Coord),
			Radius: v.mapper.ScreenRadius(fix.Accuracy),
		}
	}
	status := fmt.Sprintf("%d entries", len(sc.Markers))
	if l, ok := v.currentLabel(); ok {
		status = fmt.Sprintf("label: %s | %s", l.Name, status)
	}
	if v.store.Dirty() {
		status += " | unsaved"
	}
	sc.Status = status
	return sc
}
