// Package display finds the monitors the viewer window can open on.
package display

import (
	"errors"
	"fmt"
	"image"
	"math"
	"strconv"
	"strings"
)

var errNoMonitors = errors.New("no monitors available")

// Monitor describes one output in the desktop layout.
type Monitor struct {
	Index   int
	Name    string
	Rect    image.Rectangle
	Primary bool
}

func (m Monitor) String() string {
	s := fmt.Sprintf("%d: %s %dx%d+%d+%d", m.Index, m.Name, m.Rect.Dx(), m.Rect.Dy(), m.Rect.Min.X, m.Rect.Min.Y)
	if m.Primary {
		s += " (primary)"
	}
	return s
}

type lister interface {
	List() ([]Monitor, error)
}

var backend lister = newBackend()

// List returns the connected monitors.
func List() ([]Monitor, error) {
	monitors, err := backend.List()
	if err != nil {
		return nil, err
	}
	if len(monitors) == 0 {
		return nil, errNoMonitors
	}
	return monitors, nil
}

// Find lists the monitors and resolves selector against them.
func Find(selector string) (Monitor, error) {
	monitors, err := List()
	if err != nil {
		return Monitor{}, err
	}
	return FindMonitor(monitors, selector)
}

// FindMonitor resolves a selector: empty or "primary" picks the primary
// output, a number or "#number" picks by index, anything else matches
// the output name.
func FindMonitor(monitors []Monitor, selector string) (Monitor, error) {
	if len(monitors) == 0 {
		return Monitor{}, errNoMonitors
	}
	lower := strings.ToLower(strings.TrimSpace(selector))
	if lower == "" || lower == "primary" {
		for _, mon := range monitors {
			if mon.Primary {
				return mon, nil
			}
		}
		return monitors[0], nil
	}
	lower = strings.TrimPrefix(lower, "#")
	if idx, err := strconv.Atoi(lower); err == nil {
		if idx < 0 || idx >= len(monitors) {
			return Monitor{}, fmt.Errorf("monitor index %d out of range", idx)
		}
		return monitors[idx], nil
	}
	for _, mon := range monitors {
		if strings.EqualFold(mon.Name, lower) {
			return mon, nil
		}
	}
	for _, mon := range monitors {
		if strings.Contains(strings.ToLower(mon.Name), lower) {
			return mon, nil
		}
	}
	return Monitor{}, fmt.Errorf("monitor %q not found", selector)
}

// WindowSize scales content to fill at most fraction of the monitor,
// keeping its aspect ratio. A zero monitor leaves content unchanged.
func WindowSize(m Monitor, content image.Point, fraction float64) image.Point {
	if m.Rect.Empty() || content.X <= 0 || content.Y <= 0 {
		return content
	}
	w := float64(m.Rect.Dx()) * fraction
	h := float64(m.Rect.Dy()) * fraction
	s := min(w/float64(content.X), h/float64(content.Y))
	return image.Pt(max(1, int(math.Round(float64(content.X)*s))), max(1, int(math.Round(float64(content.Y)*s))))
}
