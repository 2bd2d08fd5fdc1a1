package appstate

import (
	"log"
	"unicode"

	"golang.org/x/image/math/f64"
	"golang.org/x/mobile/event/key"
)

// KeyShortcut describes a keyboard combination that triggers an action.
type KeyShortcut struct {
	Rune      rune
	Code      key.Code
	Modifiers key.Modifiers
}

// action names understood by the viewer.
const (
	actionFit       = "fit"
	actionNorth     = "north"
	actionLocate    = "locate"
	actionNextLabel = "next-label"
	actionPrevLabel = "prev-label"
	actionDelete    = "delete"
	actionDeselect  = "deselect"
	actionLabels    = "labels"
	actionSave      = "save"
	actionExport    = "export"
	actionCopy      = "copy"
	actionCopyView  = "copy-view"
	actionZoomIn    = "zoom-in"
	actionZoomOut   = "zoom-out"
	actionLeft      = "left"
	actionRight     = "right"
	actionUp        = "up"
	actionDown      = "down"
	actionQuit      = "quit"
)

var keyboardAction = map[KeyShortcut]string{
	{Rune: 'r'}:                            actionFit,
	{Rune: 'n'}:                            actionNorth,
	{Rune: 'l'}:                            actionLocate,
	{Rune: ']'}:                            actionNextLabel,
	{Rune: '['}:                            actionPrevLabel,
	{Rune: 't'}:                            actionLabels,
	{Rune: '+'}:                            actionZoomIn,
	{Rune: '='}:                            actionZoomIn,
	{Rune: '-'}:                            actionZoomOut,
	{Rune: 'q'}:                            actionQuit,
	{Rune: 's', Modifiers: key.ModControl}: actionSave,
	{Rune: 'e', Modifiers: key.ModControl}: actionExport,
	{Rune: 'c', Modifiers: key.ModControl}: actionCopy,
	{Rune: 'p', Modifiers: key.ModControl}: actionCopyView,

	{Rune: -1, Code: key.CodeDeleteForward}:   actionDelete,
	{Rune: -1, Code: key.CodeDeleteBackspace}: actionDelete,
	{Rune: -1, Code: key.CodeEscape}:          actionDeselect,
	{Rune: -1, Code: key.CodeLeftArrow}:       actionLeft,
	{Rune: -1, Code: key.CodeRightArrow}:      actionRight,
	{Rune: -1, Code: key.CodeUpArrow}:         actionUp,
	{Rune: -1, Code: key.CodeDownArrow}:       actionDown,
}

// shortcutFor normalises a key press for lookup. Shift only changes
// which rune arrives, so it is ignored.
func shortcutFor(e key.Event) KeyShortcut {
	mods := e.Modifiers &^ key.ModShift
	if e.Rune <= 0 {
		return KeyShortcut{Rune: -1, Code: e.Code, Modifiers: mods}
	}
	return KeyShortcut{Rune: unicode.ToLower(e.Rune), Modifiers: mods}
}

// HandleKey runs the action bound to e and reports whether the window
// should close.
func (v *Viewer) HandleKey(e key.Event) (quit bool) {
	if e.Direction != key.DirPress {
		return false
	}
	name, ok := keyboardAction[shortcutFor(e)]
	if !ok {
		return false
	}
	switch name {
	case actionFit:
		v.Fit()
	case actionNorth:
		v.RestoreNorth()
	case actionLocate:
		v.CenterOnLocation()
	case actionNextLabel:
		v.CycleLabel(1)
	case actionPrevLabel:
		v.CycleLabel(-1)
	case actionDelete:
		v.DeleteSelected()
	case actionDeselect:
		v.Deselect()
	case actionLabels:
		v.ToggleLabels()
	case actionZoomIn:
		v.Zoom(v.cfg.View.WheelZoom)
	case actionZoomOut:
		v.Zoom(1 / v.cfg.View.WheelZoom)
	case actionLeft:
		v.Pan(f64.Vec2{panStep, 0})
	case actionRight:
		v.Pan(f64.Vec2{-panStep, 0})
	case actionUp:
		v.Pan(f64.Vec2{0, panStep})
	case actionDown:
		v.Pan(f64.Vec2{0, -panStep})
	case actionSave:
		_ = v.Save()
	case actionExport:
		_, _ = v.Export()
	case actionCopy:
		_ = v.CopyJSON()
	case actionCopyView:
		_ = v.CopyView()
	case actionQuit:
		if v.store.Dirty() {
			log.Print("quitting with unsaved changes")
		}
		return true
	}
	return false
}
