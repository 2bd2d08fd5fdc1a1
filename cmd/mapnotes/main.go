package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/example/mapnotes/internal/config"
	"github.com/example/mapnotes/internal/notify"
	"github.com/example/mapnotes/internal/theme"
)

var (
	version            = "dev"
	commit             = ""
	date               = ""
	configPathOverride = ""
)

type runnable interface{ Run() error }

type root struct {
	fs           *flag.FlagSet
	program      string
	notifier     *notify.Notifier
	config       *config.Config
	exportAlerts bool
	saveAlerts   bool
	copyAlerts   bool
	themeName    string
	dataFile     string
	satellite    string
	mask         string
	activeTheme  *theme.Theme
	stdout       io.Writer
	stderr       io.Writer
}

func (r *root) Program() string {
	return r.program
}

func (r *root) FlagSet() *flag.FlagSet {
	return r.fs
}

func newRoot() *root {
	prefs := notify.LoadPreferences()
	loader := config.NewLoader(version, configPathOverride)
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load config: %v\n", err)
		cfg = config.New()
	}

	r := &root{
		fs:       flag.NewFlagSet("mapnotes", flag.ExitOnError),
		program:  "mapnotes",
		notifier: notify.New(prefs),
		config:   cfg,
		stdout:   os.Stdout,
		stderr:   os.Stderr,
	}
	r.fs.BoolVar(&r.exportAlerts, "notify-export", cfg.Notify.Export, "show a desktop notification after exporting annotations")
	r.fs.BoolVar(&r.saveAlerts, "notify-save", cfg.Notify.Save, "show a desktop notification after saving the data file")
	r.fs.BoolVar(&r.copyAlerts, "notify-copy", cfg.Notify.Copy, "show a desktop notification after copying to the clipboard")

	// Precedence: CLI > Env > Config > Default
	r.fs.StringVar(&r.themeName, "theme", "", "color theme to use ("+strings.Join(theme.Names(), ", ")+")")
	r.fs.StringVar(&r.dataFile, "data", "", "annotation data file (default from config or "+dataFileHint()+")")
	r.fs.StringVar(&r.satellite, "satellite", "", "satellite photo of the mapped area (PNG or JPEG)")
	r.fs.StringVar(&r.mask, "mask", "", "overlay drawn above the shaded photo (PNG with transparency)")
	r.fs.Usage = usageFunc(r)
	return r
}

func (r *root) Run(args []string) error {
	if err := r.fs.Parse(args); err != nil {
		return err
	}
	if r.fs.NArg() < 1 {
		return &UsageError{of: r}
	}
	if r.notifier != nil {
		r.notifier.Enable(notify.EventExport, r.exportAlerts)
		r.notifier.Enable(notify.EventSave, r.saveAlerts)
		r.notifier.Enable(notify.EventCopy, r.copyAlerts)
	}
	r.applyOverrides()
	r.activeTheme = r.loadTheme()

	cmdName := r.fs.Arg(0)
	subArgs := r.fs.Args()[1:]

	var (
		cmd runnable
		err error
	)
	switch cmdName {
	case "view":
		cmd, err = parseViewCmd(subArgs, r)
	case "snapshot":
		cmd, err = parseSnapshotCmd(subArgs, r)
	case "export":
		cmd, err = parseExportCmd(subArgs, r)
	case "import":
		cmd, err = parseImportCmd(subArgs, r)
	case "add":
		cmd, err = parseAddCmd(subArgs, r)
	case "remove":
		cmd, err = parseRemoveCmd(subArgs, r)
	case "list":
		cmd, err = parseListCmd(subArgs, r)
	case "labels":
		cmd, err = parseLabelsCmd(subArgs, r)
	case "project":
		cmd, err = parseProjectCmd(subArgs, r)
	case "locate":
		cmd, err = parseLocateCmd(subArgs, r)
	case "monitors":
		cmd, err = parseMonitorsCmd(subArgs, r)
	case "interactive":
		cmd, err = parseInteractiveCmd(subArgs, r)
	case "config":
		cmd, err = parseConfigCmd(subArgs, r)
	case "version":
		cmd = &versionCmd{r: r}
	default:
		err = &UsageError{of: r}
	}
	if err != nil {
		return err
	}
	return cmd.Run()
}

// applyOverrides layers environment variables and flags over the
// loaded config.
func (r *root) applyOverrides() {
	for env, dst := range map[string]*string{
		"MAPNOTES_DATA":      &r.config.DataFile,
		"MAPNOTES_SATELLITE": &r.config.Satellite,
		"MAPNOTES_MASK":      &r.config.Mask,
	} {
		if v := os.Getenv(env); v != "" {
			*dst = v
		}
	}
	if r.dataFile != "" {
		r.config.DataFile = r.dataFile
	}
	if r.satellite != "" {
		r.config.Satellite = r.satellite
	}
	if r.mask != "" {
		r.config.Mask = r.mask
	}
}

func (r *root) loadTheme() *theme.Theme {
	themeName := r.themeName
	if themeName == "" {
		themeName = os.Getenv("MAPNOTES_THEME")
	}
	if themeName == "" {
		themeName = r.config.Theme
	}
	if t, ok := r.config.Themes[themeName]; ok {
		return t
	}
	t, err := theme.NewLoader().Load(themeName)
	if err != nil {
		if themeName != "" && themeName != "default" {
			fmt.Fprintf(r.stderr, "warning: failed to load theme '%s': %v. using default.\n", themeName, err)
		}
		return theme.Default()
	}
	return t
}

func main() {
	r := newRoot()
	if err := r.Run(os.Args[1:]); err != nil {
		var uerr *UsageError
		if errors.As(err, &uerr) {
			fmt.Fprintln(os.Stderr, uerr.Error())
		} else {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
}
