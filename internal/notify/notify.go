// Package notify announces saves, exports and clipboard copies through
// the desktop notification service.
package notify

import (
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"

	xdraw "golang.org/x/image/draw"

	"github.com/example/mapnotes/internal/platform"
)

// Event identifies a notification trigger.
type Event string

const (
	// EventExport emits a notification when annotations are exported.
	EventExport Event = "export"
	// EventSave emits a notification when the annotation file is written.
	EventSave Event = "save"
	// EventCopy emits a notification when data is copied to the clipboard.
	EventCopy Event = "copy"
)

// events in the order their environment overrides are read.
var events = []Event{EventExport, EventSave, EventCopy}

// previewSize bounds the longer side of an export preview icon.
const previewSize = 256

// EventPreference describes formatting for a notification event.
type EventPreference struct {
	Template string
}

// Preferences describes notification behaviour loaded from configuration.
type Preferences struct {
	Title  string
	Events map[Event]EventPreference
}

// DefaultPreferences returns the default notification settings.
func DefaultPreferences() Preferences {
	return Preferences{
		Title: platform.AppName,
		Events: map[Event]EventPreference{
			EventExport: {Template: "Exported %s"},
			EventSave:   {Template: "Saved %s"},
			EventCopy:   {Template: "Copied %s to clipboard"},
		},
	}
}

// LoadPreferences reads MAPNOTES_NOTIFY_TITLE and the per event
// MAPNOTES_NOTIFY_<EVENT>_TEXT templates.
func LoadPreferences() Preferences {
	return preferencesFrom(os.Getenv)
}

func preferencesFrom(getenv func(string) string) Preferences {
	prefs := DefaultPreferences()
	if v := strings.TrimSpace(getenv("MAPNOTES_NOTIFY_TITLE")); v != "" {
		prefs.Title = v
	}
	for _, ev := range events {
		if v := strings.TrimSpace(getenv(ev.envKey())); v != "" {
			prefs.Events[ev] = EventPreference{Template: v}
		}
	}
	return prefs
}

func (e Event) envKey() string {
	return "MAPNOTES_NOTIFY_" + strings.ToUpper(string(e)) + "_TEXT"
}

// Notifier sends desktop notifications for the events that are
// enabled. A nil Notifier is silent.
type Notifier struct {
	title     string
	templates map[Event]string
	enabled   map[Event]bool
	send      func(title, body string, opts platform.Options) error
}

// New creates a Notifier with every event disabled.
func New(prefs Preferences) *Notifier {
	n := &Notifier{
		title:     prefs.Title,
		templates: make(map[Event]string, len(prefs.Events)),
		enabled:   make(map[Event]bool),
		send:      platform.Notify,
	}
	for ev, p := range prefs.Events {
		n.templates[ev] = strings.TrimSpace(p.Template)
	}
	return n
}

// Enable toggles the notifier for the provided event.
func (n *Notifier) Enable(event Event, enabled bool) {
	if n == nil {
		return
	}
	n.enabled[event] = enabled
}

func (n *Notifier) on(event Event) bool {
	return n != nil && n.enabled[event] && n.templates[event] != ""
}

// Export reports an export. A preview image, when given, is shown as
// the notification icon.
func (n *Notifier) Export(path string, preview image.Image) {
	if !n.on(EventExport) {
		return
	}
	var opts platform.Options
	if preview != nil {
		icon, err := writePreview(preview)
		if err != nil {
			log.Printf("notification preview: %v", err)
		} else {
			defer removePreview(icon)
			opts.IconPath = icon
		}
	}
	n.post(EventExport, displayPath(path), opts)
}

// Save reports the data file that was written.
func (n *Notifier) Save(path string) {
	n.post(EventSave, displayPath(path), platform.Options{})
}

// Copy reports what went to the clipboard.
func (n *Notifier) Copy(what string) {
	what = strings.TrimSpace(what)
	if what == "" {
		what = "annotations"
	}
	n.post(EventCopy, what, platform.Options{})
}

func (n *Notifier) post(event Event, detail string, opts platform.Options) {
	if !n.on(event) {
		return
	}
	body := strings.TrimSpace(fmt.Sprintf(n.templates[event], detail))
	if body == "" {
		return
	}
	if err := n.send(n.title, body, opts); err != nil {
		log.Printf("notification %s: %v", event, err)
	}
}

// displayPath shows files by absolute path; "-" is standard output.
func displayPath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" || path == "-" {
		return "to stdout"
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

// writePreview stores a thumbnail of img in a temporary PNG file.
func writePreview(img image.Image) (string, error) {
	thumb := thumbnail(img, previewSize)
	f, err := os.CreateTemp("", "mapnotes-preview-*.png")
	if err != nil {
		return "", err
	}
	err = png.Encode(f, thumb)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

func removePreview(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Printf("remove preview: %v", err)
	}
}

// thumbnail scales img down so its longer side is at most limit pixels.
func thumbnail(img image.Image, limit int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= limit && h <= limit {
		return img
	}
	if w >= h {
		h, w = h*limit/w, limit
	} else {
		w, h = w*limit/h, limit
	}
	dst := image.NewRGBA(image.Rect(0, 0, max(w, 1), max(h, 1)))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}

