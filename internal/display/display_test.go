package display

import (
	"errors"
	"image"
	"testing"
)

var layout = []Monitor{
	{Index: 0, Name: "HDMI-1", Rect: image.Rect(0, 0, 1920, 1080)},
	{Index: 1, Name: "eDP-1", Rect: image.Rect(1920, 0, 3200, 800), Primary: true},
}

type fakeBackend struct {
	monitors []Monitor
	err      error
}

func (f fakeBackend) List() ([]Monitor, error) { return f.monitors, f.err }

func TestFindMonitor(t *testing.T) {
	tests := []struct {
		selector string
		want     string
	}{
		{"", "eDP-1"},
		{"primary", "eDP-1"},
		{"0", "HDMI-1"},
		{"#1", "eDP-1"},
		{"hdmi-1", "HDMI-1"},
		{"edp", "eDP-1"},
	}
	for _, tt := range tests {
		got, err := FindMonitor(layout, tt.selector)
		if err != nil {
			t.Fatalf("FindMonitor(%q): %v", tt.selector, err)
		}
		if got.Name != tt.want {
			t.Errorf("FindMonitor(%q) = %s, want %s", tt.selector, got.Name, tt.want)
		}
	}
	for _, bad := range []string{"2", "#-1", "DP-3"} {
		if _, err := FindMonitor(layout, bad); err == nil {
			t.Errorf("FindMonitor(%q) expected error", bad)
		}
	}
	if _, err := FindMonitor(nil, ""); !errors.Is(err, errNoMonitors) {
		t.Errorf("expected errNoMonitors, got %v", err)
	}
}

func TestPrimaryFallsBackToFirst(t *testing.T) {
	mons := []Monitor{{Name: "a"}, {Name: "b"}}
	got, err := FindMonitor(mons, "primary")
	if err != nil || got.Name != "a" {
		t.Fatalf("got %v, %v", got, err)
	}
}

func TestFindUsesBackend(t *testing.T) {
	orig := backend
	t.Cleanup(func() { backend = orig })

	backend = fakeBackend{monitors: layout}
	got, err := Find("#0")
	if err != nil || got.Name != "HDMI-1" {
		t.Fatalf("Find = %v, %v", got, err)
	}

	backend = fakeBackend{}
	if _, err := List(); !errors.Is(err, errNoMonitors) {
		t.Fatalf("expected errNoMonitors, got %v", err)
	}

	listErr := errors.New("no X")
	backend = fakeBackend{err: listErr}
	if _, err := Find(""); !errors.Is(err, listErr) {
		t.Fatalf("expected backend error, got %v", err)
	}
}

func TestWindowSize(t *testing.T) {
	m := Monitor{Rect: image.Rect(0, 0, 1920, 1080)}
	if got := WindowSize(m, image.Pt(1000, 1000), 0.8); got != image.Pt(864, 864) {
		t.Errorf("square map: got %v", got)
	}
	if got := WindowSize(m, image.Pt(4000, 1000), 0.5); got != image.Pt(960, 240) {
		t.Errorf("wide map: got %v", got)
	}
	if got := WindowSize(Monitor{}, image.Pt(30, 20), 0.8); got != image.Pt(30, 20) {
		t.Errorf("empty monitor: got %v", got)
	}
	if got := WindowSize(layout[0], image.Point{}, 0.8); got != (image.Point{}) {
		t.Errorf("empty content: got %v", got)
	}
}

func TestMonitorString(t *testing.T) {
	if got, want := layout[1].String(), "1: eDP-1 1280x800+1920+0 (primary)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
