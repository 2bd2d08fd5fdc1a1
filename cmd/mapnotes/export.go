package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/example/mapnotes/internal/annotation"
	"github.com/example/mapnotes/internal/clipboard"
)

var (
	writeClipboardText = clipboard.WriteText
	readClipboardText  = clipboard.ReadText
)

func formatNames() string {
	names := make([]string, len(annotation.Formats))
	for i, f := range annotation.Formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

type exportCmd struct {
	format      string
	output      string
	toClipboard bool
	*root
	fs *flag.FlagSet
}

func (c *exportCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseExportCmd(args []string, r *root) (*exportCmd, error) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	c := &exportCmd{root: r, fs: fs}
	fs.Usage = usageFunc(c)
	fs.StringVar(&c.format, "format", "", "output format ("+formatNames()+"); default from the file extension or geojson")
	fs.StringVar(&c.output, "output", "-", "write to this file, - for stdout")
	fs.BoolVar(&c.toClipboard, "to-clipboard", false, "copy the document to the clipboard")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() == 1 && c.output == "-" {
		c.output = fs.Arg(0)
	} else if fs.NArg() > 0 {
		return nil, &UsageError{of: c}
	}
	if c.toClipboard && c.output != "-" {
		return nil, fmt.Errorf("-to-clipboard cannot be used with -output")
	}
	return c, nil
}

func (c *exportCmd) resolveFormat() (annotation.Format, error) {
	switch {
	case c.format != "":
		return annotation.ParseFormat(c.format)
	case c.output != "-":
		if f, err := annotation.ParseFormat(c.output); err == nil {
			return f, nil
		}
	}
	return annotation.FormatGeoJSON, nil
}

func (c *exportCmd) Run() error {
	f, err := c.resolveFormat()
	if err != nil {
		return err
	}
	store, err := c.openStore()
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := annotation.Encode(&buf, store.Data(), f); err != nil {
		return fmt.Errorf("failed to encode %s: %w", f, err)
	}
	switch {
	case c.toClipboard:
		if err := writeClipboardText(buf.String()); err != nil {
			return fmt.Errorf("failed to copy annotations to clipboard: %w", err)
		}
		fmt.Fprintln(c.root.stderr, "annotations copied to clipboard")
		if c.notifier != nil {
			c.notifier.Copy("annotations")
		}
	case c.output == "-":
		_, err := io.Copy(c.root.stdout, &buf)
		return err
	default:
		if err := os.WriteFile(c.output, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", c.output, err)
		}
		fmt.Fprintf(c.root.stderr, "exported %d entries to %s\n", len(store.Entries()), c.output)
		if c.notifier != nil {
			c.notifier.Export(c.output, nil)
		}
	}
	return nil
}

type importCmd struct {
	format        string
	replace       bool
	fromClipboard bool
	*root
	fs *flag.FlagSet
}

func (c *importCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseImportCmd(args []string, r *root) (*importCmd, error) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	c := &importCmd{root: r, fs: fs}
	fs.Usage = usageFunc(c)
	fs.StringVar(&c.format, "format", "", "input format ("+formatNames()+"); default from the file extension or json")
	fs.BoolVar(&c.replace, "replace", false, "replace the current annotations instead of merging")
	fs.BoolVar(&c.fromClipboard, "from-clipboard", false, "read the document from the clipboard")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	switch {
	case c.fromClipboard && fs.NArg() > 0:
		return nil, fmt.Errorf("-from-clipboard cannot be used with an input file")
	case !c.fromClipboard && fs.NArg() != 1:
		return nil, &UsageError{of: c}
	}
	return c, nil
}

func (c *importCmd) read() ([]byte, string, error) {
	if c.fromClipboard {
		text, err := readClipboardText()
		if err != nil {
			return nil, "", fmt.Errorf("failed to read clipboard: %w", err)
		}
		return []byte(text), "", nil
	}
	name := c.fs.Arg(0)
	if name == "-" {
		b, err := io.ReadAll(os.Stdin)
		return b, "", err
	}
	b, err := os.ReadFile(name)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read %s: %w", name, err)
	}
	return b, name, nil
}

func (c *importCmd) Run() error {
	b, name, err := c.read()
	if err != nil {
		return err
	}
	f := annotation.FormatJSON
	switch {
	case c.format != "":
		if f, err = annotation.ParseFormat(c.format); err != nil {
			return err
		}
	case name != "":
		if guessed, err := annotation.ParseFormat(name); err == nil {
			f = guessed
		}
	}
	d, err := annotation.Decode(bytes.NewReader(b), f)
	if err != nil {
		return fmt.Errorf("failed to import: %w", err)
	}
	store, err := c.openStore()
	if err != nil {
		return err
	}
	if c.replace {
		store.Replace(*d)
	} else {
		store.Merge(*d)
	}
	if err := store.Save(); err != nil {
		return fmt.Errorf("failed to save %s: %w", store.Path(), err)
	}
	fmt.Fprintf(c.root.stderr, "imported %d entries; %d total in %s\n", len(d.Entries), len(store.Entries()), store.Path())
	if c.notifier != nil {
		c.notifier.Save(store.Path())
	}
	return nil
}
