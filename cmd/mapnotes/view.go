package main

import (
	"flag"
	"fmt"
	"image"
	"log"

	"github.com/example/mapnotes/internal/appstate"
	"github.com/example/mapnotes/internal/geo"
	"github.com/example/mapnotes/internal/locate"
)

type viewCmd struct {
	size     string
	monitor  string
	at       string
	accuracy float64
	noLocate bool
	*root
	fs *flag.FlagSet

	sizePt image.Point
}

func (c *viewCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseViewCmd(args []string, r *root) (*viewCmd, error) {
	fs := flag.NewFlagSet("view", flag.ExitOnError)
	c := &viewCmd{root: r, fs: fs}
	fs.Usage = usageFunc(c)
	fs.StringVar(&c.size, "size", "", "window size WIDTHxHEIGHT (default fits the monitor)")
	fs.StringVar(&c.monitor, "monitor", "", "monitor to size the window for: index, name, or primary")
	fs.StringVar(&c.at, "at", "", "fixed location lat,lon instead of asking the location service")
	fs.Float64Var(&c.accuracy, "accuracy", 0, "accuracy in meters for -at")
	fs.BoolVar(&c.noLocate, "no-locate", false, "do not show the current location")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
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

// locationSource picks where positions come from.
func locationSource(at string, accuracy float64, disabled bool) (locate.Source, error) {
	switch {
	case disabled:
		return nil, nil
	case at != "":
		coord, err := geo.ParseCoord(at)
		if err != nil {
			return nil, fmt.Errorf("invalid -at: %w", err)
		}
		return locate.Static{Coord: coord, Accuracy: accuracy}, nil
	}
	return locate.NewGeoClue("mapnotes"), nil
}

func (c *viewCmd) Run() error {
	store, err := c.openStore()
	if err != nil {
		return err
	}
	opts, err := c.appOptions(store)
	if err != nil {
		return err
	}
	src, err := locationSource(c.at, c.accuracy, c.noLocate)
	if err != nil {
		return err
	}
	if src != nil {
		opts = append(opts, appstate.WithLocations(src))
	}
	opts = append(opts,
		appstate.WithSize(c.sizePt),
		appstate.WithMonitor(c.monitor),
		appstate.WithOnClose(func() {
			if store.Dirty() {
				log.Printf("closing with unsaved changes in %s", store.Path())
			}
		}),
	)
	appstate.New(opts...).Run()
	return nil
}
