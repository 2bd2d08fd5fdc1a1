package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/example/mapnotes/internal/display"
	"github.com/example/mapnotes/internal/locate"
)

var newLocationSource = func() locate.Source { return locate.NewGeoClue("mapnotes") }

type locateCmd struct {
	timeout time.Duration
	*root
	fs *flag.FlagSet
}

func (c *locateCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseLocateCmd(args []string, r *root) (*locateCmd, error) {
	fs := flag.NewFlagSet("locate", flag.ExitOnError)
	c := &locateCmd{root: r, fs: fs}
	fs.Usage = usageFunc(c)
	fs.DurationVar(&c.timeout, "timeout", 30*time.Second, "give up after this long")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, &UsageError{of: c}
	}
	return c, nil
}

func (c *locateCmd) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	fix, err := locate.Once(ctx, newLocationSource())
	if err != nil {
		return fmt.Errorf("failed to get location: %w", err)
	}
	fmt.Fprintln(c.root.stdout, fix)
	if !c.config.Calibration.Contains(fix.Coord) {
		fmt.Fprintln(c.root.stderr, "you are outside the map")
	}
	return nil
}

type monitorsCmd struct {
	*root
	fs *flag.FlagSet
}

func (c *monitorsCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseMonitorsCmd(args []string, r *root) (*monitorsCmd, error) {
	fs := flag.NewFlagSet("monitors", flag.ExitOnError)
	c := &monitorsCmd{root: r, fs: fs}
	fs.Usage = usageFunc(c)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *monitorsCmd) Run() error {
	monitors, err := display.List()
	if err != nil {
		return fmt.Errorf("failed to list monitors: %w", err)
	}
	for _, m := range monitors {
		fmt.Fprintln(c.root.stdout, m)
	}
	return nil
}
