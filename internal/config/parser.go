package config

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/example/mapnotes/internal/theme"
)

// Parse reads configuration from an io.Reader.
func Parse(r io.Reader) (*Config, error) {
	cfg := New()
	scanner := bufio.NewScanner(r)

	// Context for parsing
	var currentSection string
	var currentTheme *theme.Theme

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}

		// Handle Sections
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			currentSection = strings.TrimSuffix(strings.TrimPrefix(line, "["), "]")
			currentTheme = nil

			if themeName, ok := strings.CutPrefix(currentSection, "theme."); ok {
				// Start with defaults so missing keys are fine
				currentTheme = theme.Default()
				currentTheme.Name = themeName
				cfg.Themes[themeName] = currentTheme
			}
			continue
		}

		// Parse Key = Value or Key: Value
		var parts []string
		if strings.Contains(line, "=") {
			parts = strings.SplitN(line, "=", 2)
		} else if strings.Contains(line, ":") {
			parts = strings.SplitN(line, ":", 2)
		} else {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		// Remove quotes if present
		if len(value) >= 2 && strings.HasPrefix(value, "\"") && strings.HasSuffix(value, "\"") {
			value = value[1 : len(value)-1]
		}

		var err error
		switch section := strings.ToLower(currentSection); {
		case currentTheme != nil:
			err = currentTheme.Set(key, value)
		case section == "notify":
			err = setNotifyField(&cfg.Notify, key, value)
		case section == "calibration":
			err = setCalibrationField(cfg, key, value)
		case section == "view":
			err = setViewField(&cfg.View, key, value)
		case section == "":
			err = setRootField(cfg, key, value)
		}
		if err != nil {
			section := currentSection
			if section == "" {
				section = "root"
			}
			return nil, fmt.Errorf("error in section [%s]: %w", section, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if err := cfg.Calibration.Validate(); err != nil {
		return nil, fmt.Errorf("error in section [calibration]: %w", err)
	}
	return cfg, nil
}

func setRootField(cfg *Config, key, value string) error {
	switch strings.ToLower(key) {
	case "theme":
		cfg.Theme = value
	case "satellite":
		cfg.Satellite = value
	case "mask":
		cfg.Mask = value
	case "data_file":
		cfg.DataFile = value
	case "export_dir":
		cfg.ExportDir = value
	case "label":
		cfg.Label = value
	}
	return nil
}

func setNotifyField(n *Notify, key, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid boolean for key %s: %w", key, err)
	}
	switch strings.ToLower(key) {
	case "export":
		n.Export = b
	case "save":
		n.Save = b
	case "copy":
		n.Copy = b
	}
	return nil
}

func parseFloat(key, value string) (float64, error) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number for key %s: %w", key, err)
	}
	return f, nil
}

func setCalibrationField(cfg *Config, key, value string) error {
	f, err := parseFloat(key, value)
	if err != nil {
		return err
	}
	switch strings.ToLower(key) {
	case "min_lat":
		cfg.Calibration.Min.Lat = f
	case "min_lon":
		cfg.Calibration.Min.Lon = f
	case "max_lat":
		cfg.Calibration.Max.Lat = f
	case "max_lon":
		cfg.Calibration.Max.Lon = f
	}
	return nil
}

func setViewField(v *View, key, value string) error {
	f, err := parseFloat(key, value)
	if err != nil {
		return err
	}
	switch strings.ToLower(key) {
	case "wheel_zoom":
		if f <= 1 {
			return fmt.Errorf("wheel_zoom must be greater than 1, got %v", f)
		}
		v.WheelZoom = f
	case "wheel_rotate_deg":
		v.WheelRotateDeg = f
	case "min_scale":
		v.MinScale = f
	case "max_scale":
		v.MaxScale = f
	case "hit_radius":
		v.HitRadius = f
	case "animation_ms":
		v.AnimationMS = int(f)
	case "tap_slop":
		v.TapSlop = f
	}
	return nil
}
