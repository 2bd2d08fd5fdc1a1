package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/png"
	"math"
	"os"

	"github.com/example/mapnotes/internal/affine"
	"github.com/example/mapnotes/internal/appstate"
	"github.com/example/mapnotes/internal/clipboard"
	"github.com/example/mapnotes/internal/geo"
	"github.com/example/mapnotes/internal/locate"
	"github.com/example/mapnotes/internal/render"
)

var writeClipboardImage = clipboard.WriteImage

type snapshotCmd struct {
	output      string
	stdout      bool
	toClipboard bool
	size        string
	rotate      float64
	zoom        float64
	center      string
	labels      bool
	at          string
	accuracy    float64
	*root
	fs *flag.FlagSet

	sizePt image.Point
}

func (s *snapshotCmd) FlagSet() *flag.FlagSet {
	return s.fs
}

func parseSnapshotCmd(args []string, r *root) (*snapshotCmd, error) {
	fs := flag.NewFlagSet("snapshot", flag.ExitOnError)
	s := &snapshotCmd{root: r, fs: fs}
	fs.Usage = usageFunc(s)
	fs.StringVar(&s.output, "output", "mapnotes.png", "write the rendered map to this file path")
	fs.BoolVar(&s.stdout, "stdout", false, "write PNG data to stdout")
	fs.BoolVar(&s.toClipboard, "to-clipboard", false, "copy the rendered map to the clipboard")
	fs.BoolVar(&s.toClipboard, "to-clip", false, "copy the rendered map to the clipboard (alias)")
	fs.StringVar(&s.size, "size", "1024x768", "image size WIDTHxHEIGHT")
	fs.Float64Var(&s.rotate, "rotate", 0, "rotate the view by this many degrees clockwise")
	fs.Float64Var(&s.zoom, "zoom", 1, "zoom relative to the fitted map")
	fs.StringVar(&s.center, "center", "", "put lat,lon in the middle of the image")
	fs.BoolVar(&s.labels, "labels", false, "draw every label, not only the selected one")
	fs.StringVar(&s.at, "at", "", "draw a location marker at lat,lon")
	fs.Float64Var(&s.accuracy, "accuracy", 0, "accuracy in meters for -at")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if s.toClipboard && s.stdout {
		return nil, fmt.Errorf("-stdout cannot be used with -to-clipboard")
	}
	if fs.NArg() == 1 && s.output == "mapnotes.png" {
		s.output = fs.Arg(0)
	} else if fs.NArg() > 0 {
		return nil, &UsageError{of: s}
	}
	pt, err := parseSize(s.size)
	if err != nil {
		return nil, err
	}
	s.sizePt = pt
	if s.zoom <= 0 || math.IsNaN(s.zoom) || math.IsInf(s.zoom, 0) {
		return nil, fmt.Errorf("invalid -zoom %v: must be positive", s.zoom)
	}
	return s, nil
}

func (s *snapshotCmd) Run() error {
	img, err := s.render()
	if err != nil {
		return fmt.Errorf("failed to render map: %w", err)
	}
	switch {
	case s.toClipboard:
		if err := writeClipboardImage(img); err != nil {
			return fmt.Errorf("failed to copy snapshot to clipboard: %w", err)
		}
		fmt.Fprintln(s.root.stderr, "snapshot copied to clipboard")
		if s.notifier != nil {
			s.notifier.Copy("map snapshot")
		}
	case s.stdout:
		if err := png.Encode(s.root.stdout, img); err != nil {
			return fmt.Errorf("failed to write PNG: %w", err)
		}
	default:
		if err := savePNG(s.output, img); err != nil {
			return err
		}
		fmt.Fprintf(s.root.stdout, "saved %s\n", s.output)
		if s.notifier != nil {
			s.notifier.Export(s.output, img)
		}
	}
	return nil
}

func (s *snapshotCmd) render() (*image.RGBA, error) {
	store, err := s.openStore()
	if err != nil {
		return nil, err
	}
	opts, err := s.appOptions(store)
	if err != nil {
		return nil, err
	}
	v, err := appstate.New(opts...).NewViewer()
	if err != nil {
		return nil, err
	}
	v.Resize(s.sizePt)
	if s.center != "" {
		c, err := geo.ParseCoord(s.center)
		if err != nil {
			return nil, fmt.Errorf("invalid -center: %w", err)
		}
		mid := affine.Vec(float64(s.sizePt.X)/2, float64(s.sizePt.Y)/2)
		v.Pan(affine.Sub(mid, v.Mapper().GeoToScreen(c)))
	}
	if s.zoom != 1 {
		v.Zoom(s.zoom)
	}
	if s.rotate != 0 {
		mid := affine.Vec(float64(s.sizePt.X)/2, float64(s.sizePt.Y)/2)
		t := affine.ComposeAt(v.View().Transform(), affine.Rotation(s.rotate*math.Pi/180), mid)
		if err := v.View().Set(t); err != nil {
			return nil, err
		}
	}
	if s.labels {
		v.ToggleLabels()
	}
	if s.at != "" {
		c, err := geo.ParseCoord(s.at)
		if err != nil {
			return nil, fmt.Errorf("invalid -at: %w", err)
		}
		v.SetLocation(locate.Fix{Coord: c, Accuracy: s.accuracy})
	}
	return render.Image(context.Background(), v.Scene())
}

func savePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return f.Close()
}
