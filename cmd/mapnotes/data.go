package main

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strconv"
	"strings"

	"github.com/example/mapnotes/assets"
	"github.com/example/mapnotes/internal/annotation"
	"github.com/example/mapnotes/internal/appstate"
)

func dataFileHint() string {
	return annotation.DefaultPath()
}

// openStore opens the configured data file. A missing file starts from
// the bundled sample data.
func (r *root) openStore() (*annotation.Store, error) {
	path := r.config.DataFile
	if path == "" {
		path = annotation.DefaultPath()
	}
	s, err := annotation.Open(path, assets.SeedData())
	if err != nil {
		return nil, fmt.Errorf("failed to open data file %s: %w", path, err)
	}
	return s, nil
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// appOptions collects what every viewer needs: the store, the map
// images, the theme and the notifier.
func (r *root) appOptions(store *annotation.Store) ([]appstate.Option, error) {
	opts := []appstate.Option{
		appstate.WithConfig(r.config),
		appstate.WithStore(store),
		appstate.WithTheme(r.activeTheme),
		appstate.WithNotifier(r.notifier),
	}
	if p := r.config.Satellite; p != "" {
		img, err := loadImage(p)
		if err != nil {
			return nil, fmt.Errorf("failed to load satellite image: %w", err)
		}
		opts = append(opts, appstate.WithSatellite(img))
	}
	if p := r.config.Mask; p != "" {
		img, err := loadImage(p)
		if err != nil {
			return nil, fmt.Errorf("failed to load mask image: %w", err)
		}
		opts = append(opts, appstate.WithMask(img))
	}
	return opts, nil
}

func parseSize(s string) (image.Point, error) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return image.Point{}, fmt.Errorf("invalid size %q: expected WIDTHxHEIGHT", s)
	}
	x, err := strconv.Atoi(w)
	if err != nil {
		return image.Point{}, fmt.Errorf("invalid size %q: %w", s, err)
	}
	y, err := strconv.Atoi(h)
	if err != nil {
		return image.Point{}, fmt.Errorf("invalid size %q: %w", s, err)
	}
	if x <= 0 || y <= 0 {
		return image.Point{}, fmt.Errorf("invalid size %q: must be positive", s)
	}
	return image.Pt(x, y), nil
}

func parsePoint(s string) (float64, float64, error) {
	a, b, ok := strings.Cut(s, ",")
	if !ok {
		return 0, 0, fmt.Errorf("invalid point %q: expected X,Y", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(a), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid point %q: %w", s, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(b), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid point %q: %w", s, err)
	}
	return x, y, nil
}
