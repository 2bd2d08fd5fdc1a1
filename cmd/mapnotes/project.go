package main

import (
	"flag"
	"fmt"
	"image"

	"github.com/example/mapnotes/internal/affine"
	"github.com/example/mapnotes/internal/geo"
	"github.com/example/mapnotes/internal/view"
)

type projectCmd struct {
	reverse bool
	size    string
	*root
	fs *flag.FlagSet

	sizePt image.Point
}

func (c *projectCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseProjectCmd(args []string, r *root) (*projectCmd, error) {
	fs := flag.NewFlagSet("project", flag.ExitOnError)
	c := &projectCmd{root: r, fs: fs}
	fs.Usage = usageFunc(c)
	fs.BoolVar(&c.reverse, "reverse", false, "convert image pixels x,y back to lat,lon")
	fs.StringVar(&c.size, "size", "", "map image size WIDTHxHEIGHT (default from -satellite or 1024x768)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 1 {
		return nil, &UsageError{of: c}
	}
	if c.size != "" {
		pt, err := parseSize(c.size)
		if err != nil {
			return nil, err
		}
		c.sizePt = pt
	}
	return c, nil
}

func (c *projectCmd) imageSize() (image.Point, error) {
	if c.sizePt != (image.Point{}) {
		return c.sizePt, nil
	}
	if p := c.config.Satellite; p != "" {
		img, err := loadImage(p)
		if err != nil {
			return image.Point{}, fmt.Errorf("failed to load satellite image: %w", err)
		}
		return img.Bounds().Size(), nil
	}
	return image.Pt(1024, 768), nil
}

func (c *projectCmd) Run() error {
	sz, err := c.imageSize()
	if err != nil {
		return err
	}
	m, err := geo.NewMapper(c.config.Calibration, sz, view.New())
	if err != nil {
		return err
	}
	if c.reverse {
		x, y, err := parsePoint(c.fs.Arg(0))
		if err != nil {
			return err
		}
		coord := m.FromImage(affine.Vec(x, y))
		fmt.Fprintln(c.root.stdout, coord)
		if !m.Box.Contains(coord) {
			fmt.Fprintln(c.root.stderr, "warning: point is outside the map")
		}
		return nil
	}
	coord, err := geo.ParseCoord(c.fs.Arg(0))
	if err != nil {
		return err
	}
	p := m.ToImage(coord)
	fmt.Fprintf(c.root.stdout, "%.2f,%.2f\n", p[0], p[1])
	if !m.Box.Contains(coord) {
		fmt.Fprintln(c.root.stderr, "warning: point is outside the map")
	}
	return nil
}
