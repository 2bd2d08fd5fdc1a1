package config

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/example/mapnotes/internal/geo"
	"github.com/example/mapnotes/internal/gesture"
	"github.com/example/mapnotes/internal/theme"
)

// Notify holds notification settings.
type Notify struct {
	Export bool
	Save   bool
	Copy   bool
}

// View holds input and navigation settings.
type View struct {
	WheelZoom      float64 // scale factor per wheel notch
	WheelRotateDeg float64 // degrees per wheel notch with a modifier held
	MinScale       float64
	MaxScale       float64
	HitRadius      float64 // pixels around a marker that select it
	AnimationMS    int
	TapSlop        float64 // pixels a press may move and still count as a tap
}

// Config holds the application configuration.
type Config struct {
	Theme       string
	Satellite   string
	Mask        string
	DataFile    string
	ExportDir   string
	Label       string
	Calibration geo.BoundingBox
	View        View
	Notify      Notify
	Themes      map[string]*theme.Theme
}

// New creates a new Config with defaults.
func New() *Config {
	return &Config{
		Theme:       "", // Default to empty to allow fallback to Env/Default
		Calibration: geo.DefaultBox,
		View: View{
			WheelZoom:      1.1,
			WheelRotateDeg: 5,
			MinScale:       0.05,
			MaxScale:       64,
			HitRadius:      20,
			AnimationMS:    400,
			TapSlop:        4,
		},
		Themes: make(map[string]*theme.Theme),
	}
}

// GestureOptions converts the view settings for the gesture controller.
func (c *Config) GestureOptions() gesture.Options {
	return gesture.Options{
		ZoomFactor: c.View.WheelZoom,
		RotateStep: c.View.WheelRotateDeg * math.Pi / 180,
		MinScale:   c.View.MinScale,
		MaxScale:   c.View.MaxScale,
	}
}

// AnimationDuration of view animations.
func (c *Config) AnimationDuration() time.Duration {
	return time.Duration(c.View.AnimationMS) * time.Millisecond
}

func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// String implements fmt.Stringer and returns the configuration in RC format.
func (c *Config) String() string {
	var sb strings.Builder

	// Root section
	for _, kv := range [][2]string{
		{"theme", c.Theme},
		{"satellite", c.Satellite},
		{"mask", c.Mask},
		{"data_file", c.DataFile},
		{"export_dir", c.ExportDir},
		{"label", c.Label},
	} {
		if kv[1] != "" {
			fmt.Fprintf(&sb, "%s = %s\n", kv[0], kv[1])
		}
	}
	sb.WriteString("\n")

	sb.WriteString("[calibration]\n")
	fmt.Fprintf(&sb, "min_lat = %s\n", ftoa(c.Calibration.Min.Lat))
	fmt.Fprintf(&sb, "min_lon = %s\n", ftoa(c.Calibration.Min.Lon))
	fmt.Fprintf(&sb, "max_lat = %s\n", ftoa(c.Calibration.Max.Lat))
	fmt.Fprintf(&sb, "max_lon = %s\n", ftoa(c.Calibration.Max.Lon))
	sb.WriteString("\n")

	sb.WriteString("[view]\n")
	fmt.Fprintf(&sb, "wheel_zoom = %s\n", ftoa(c.View.WheelZoom))
	fmt.Fprintf(&sb, "wheel_rotate_deg = %s\n", ftoa(c.View.WheelRotateDeg))
	fmt.Fprintf(&sb, "min_scale = %s\n", ftoa(c.View.MinScale))
	fmt.Fprintf(&sb, "max_scale = %s\n", ftoa(c.View.MaxScale))
	fmt.Fprintf(&sb, "hit_radius = %s\n", ftoa(c.View.HitRadius))
	fmt.Fprintf(&sb, "animation_ms = %d\n", c.View.AnimationMS)
	fmt.Fprintf(&sb, "tap_slop = %s\n", ftoa(c.View.TapSlop))
	sb.WriteString("\n")

	// Notify section
	sb.WriteString("[notify]\n")
	fmt.Fprintf(&sb, "export = %v\n", c.Notify.Export)
	fmt.Fprintf(&sb, "save = %v\n", c.Notify.Save)
	fmt.Fprintf(&sb, "copy = %v\n", c.Notify.Copy)
	sb.WriteString("\n")

	// Sort keys for deterministic output
	var themeNames []string
	for name := range c.Themes {
		themeNames = append(themeNames, name)
	}
	sort.Strings(themeNames)

	for _, name := range themeNames {
		fmt.Fprintf(&sb, "[theme.%s]\n", name)
		_ = theme.Write(&sb, c.Themes[name])
		sb.WriteString("\n")
	}

	return sb.String()
}
