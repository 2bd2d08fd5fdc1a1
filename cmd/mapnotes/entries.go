package main

import (
	"errors"
	"flag"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/example/mapnotes/internal/annotation"
	"github.com/example/mapnotes/internal/geo"
)

type addCmd struct {
	label       string
	note        string
	createLabel bool
	force       bool
	*root
	fs *flag.FlagSet
}

func (c *addCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseAddCmd(args []string, r *root) (*addCmd, error) {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	c := &addCmd{root: r, fs: fs}
	fs.Usage = usageFunc(c)
	fs.StringVar(&c.label, "label", "", "label name for the entry (default from config)")
	fs.StringVar(&c.note, "note", "", "free text stored with the entry")
	fs.BoolVar(&c.createLabel, "create-label", false, "create the label when it does not exist")
	fs.BoolVar(&c.force, "force", false, "accept a point outside the calibrated map")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 1 {
		return nil, &UsageError{of: c}
	}
	if c.label == "" {
		c.label = r.config.Label
	}
	return c, nil
}

func (c *addCmd) Run() error {
	coord, err := geo.ParseCoord(c.fs.Arg(0))
	if err != nil {
		return err
	}
	if !c.force && !c.config.Calibration.Contains(coord) {
		return fmt.Errorf("%s is outside the map; use -force to add it anyway", coord)
	}
	store, err := c.openStore()
	if err != nil {
		return err
	}
	e := annotation.Entry{Lat: coord.Lat, Lon: coord.Lon, Note: c.note}
	if c.label != "" {
		l, err := store.LabelByName(c.label)
		switch {
		case errors.Is(err, annotation.ErrNoLabel) && c.createLabel:
			l = store.AddLabel(c.label)
		case err != nil:
			return fmt.Errorf("failed to add entry: %w", err)
		}
		e.Label = l.ID
	} else if labels := store.Labels(); len(labels) > 0 {
		e.Label = labels[0].ID
	}
	i, err := store.Add(e)
	if err != nil {
		return fmt.Errorf("failed to add entry: %w", err)
	}
	if err := store.Save(); err != nil {
		return fmt.Errorf("failed to save %s: %w", store.Path(), err)
	}
	fmt.Fprintf(c.root.stdout, "%d\t%s\n", i, coord)
	return nil
}

type removeCmd struct {
	*root
	fs *flag.FlagSet
}

func (c *removeCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseRemoveCmd(args []string, r *root) (*removeCmd, error) {
	fs := flag.NewFlagSet("remove", flag.ExitOnError)
	c := &removeCmd{root: r, fs: fs}
	fs.Usage = usageFunc(c)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 1 {
		return nil, &UsageError{of: c}
	}
	return c, nil
}

func (c *removeCmd) Run() error {
	i, err := strconv.Atoi(c.fs.Arg(0))
	if err != nil {
		return fmt.Errorf("invalid entry index %q: %w", c.fs.Arg(0), err)
	}
	store, err := c.openStore()
	if err != nil {
		return err
	}
	e, err := store.Remove(i)
	if err != nil {
		return fmt.Errorf("failed to remove entry: %w", err)
	}
	if err := store.Save(); err != nil {
		return fmt.Errorf("failed to save %s: %w", store.Path(), err)
	}
	fmt.Fprintf(c.root.stdout, "removed %d\t%s\n", i, e.Coord())
	return nil
}

type listCmd struct {
	label  string
	near   string
	radius float64
	*root
	fs *flag.FlagSet
}

func (c *listCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseListCmd(args []string, r *root) (*listCmd, error) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	c := &listCmd{root: r, fs: fs}
	fs.Usage = usageFunc(c)
	fs.StringVar(&c.label, "label", "", "only list entries with this label")
	fs.StringVar(&c.near, "near", "", "only list entries around lat,lon")
	fs.Float64Var(&c.radius, "radius", 50, "distance in meters for -near")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, &UsageError{of: c}
	}
	return c, nil
}

func (c *listCmd) Run() error {
	store, err := c.openStore()
	if err != nil {
		return err
	}
	labelID := -1
	if c.label != "" {
		l, err := store.LabelByName(c.label)
		if err != nil {
			return err
		}
		labelID = l.ID
	}
	var near *geo.Coord
	if c.near != "" {
		p, err := geo.ParseCoord(c.near)
		if err != nil {
			return fmt.Errorf("invalid -near: %w", err)
		}
		near = &p
	}
	names := map[int]string{}
	for _, l := range store.Labels() {
		names[l.ID] = l.Name
	}
	tw := tabwriter.NewWriter(c.root.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tLAT,LON\tLABEL\tNOTE")
	for i, e := range store.Entries() {
		if labelID >= 0 && e.Label != labelID {
			continue
		}
		if near != nil && geo.Distance(*near, e.Coord()) > c.radius {
			continue
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i, e.Coord(), names[e.Label], e.Note)
	}
	return tw.Flush()
}

type labelsCmd struct {
	*root
	fs *flag.FlagSet
}

func (c *labelsCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseLabelsCmd(args []string, r *root) (*labelsCmd, error) {
	fs := flag.NewFlagSet("labels", flag.ExitOnError)
	c := &labelsCmd{root: r, fs: fs}
	fs.Usage = usageFunc(c)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *labelsCmd) Run() error {
	args := c.fs.Args()
	if len(args) == 0 {
		args = []string{"list"}
	}
	store, err := c.openStore()
	if err != nil {
		return err
	}
	switch args[0] {
	case "list":
		counts := map[int]int{}
		for _, e := range store.Entries() {
			counts[e.Label]++
		}
		for _, l := range store.Labels() {
			fmt.Fprintf(c.root.stdout, "%d\t%s\t%d\n", l.ID, l.Name, counts[l.ID])
		}
		return nil
	case "add":
		if len(args) != 2 {
			return &UsageError{of: c}
		}
		l := store.AddLabel(args[1])
		if store.Dirty() {
			if err := store.Save(); err != nil {
				return fmt.Errorf("failed to save %s: %w", store.Path(), err)
			}
		}
		fmt.Fprintf(c.root.stdout, "%d\t%s\n", l.ID, l.Name)
		return nil
	}
	return fmt.Errorf("unknown labels command: %s", args[0])
}
