package main

import (
	"bytes"
	"errors"
	"flag"
	"image"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/mapnotes/assets"
	"github.com/example/mapnotes/internal/annotation"
	"github.com/example/mapnotes/internal/config"
)

func testRoot(t *testing.T) (*root, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	cfg := config.New()
	cfg.DataFile = filepath.Join(t.TempDir(), "map-data.json")
	var stdout, stderr bytes.Buffer
	r := &root{
		fs:      flag.NewFlagSet("mapnotes", flag.ContinueOnError),
		program: "mapnotes",
		config:  cfg,
		stdout:  &stdout,
		stderr:  &stderr,
	}
	return r, &stdout, &stderr
}

func reopen(t *testing.T, r *root) *annotation.Store {
	t.Helper()
	s, err := annotation.Open(r.config.DataFile, assets.SeedData())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	return s
}

func TestSnapshotRunImageError(t *testing.T) {
	r, _, _ := testRoot(t)
	r.config.Satellite = filepath.Join(t.TempDir(), "missing.png")
	cmd, err := parseSnapshotCmd([]string{"-output", filepath.Join(t.TempDir(), "out.png")}, r)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if err := cmd.Run(); err == nil {
		t.Fatalf("expected error")
	} else {
		if !errors.Is(err, fs.ErrNotExist) {
			t.Fatalf("expected wrapped error, got %v", err)
		}
		if want := "failed to render map"; !strings.Contains(err.Error(), want) {
			t.Fatalf("expected error to contain %q, got %v", want, err)
		}
	}
}

func TestSnapshotWritesPNG(t *testing.T) {
	r, stdout, _ := testRoot(t)
	out := filepath.Join(t.TempDir(), "map.png")
	cmd, err := parseSnapshotCmd([]string{"-size", "64x48", "-labels", "-at", "-25.494,-54.548", out}, r)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := img.Bounds().Size(); got != image.Pt(64, 48) {
		t.Fatalf("size = %v, want 64x48", got)
	}
	if !strings.Contains(stdout.String(), out) {
		t.Fatalf("expected output path in %q", stdout.String())
	}
}

func TestSnapshotClipboardError(t *testing.T) {
	original := writeClipboardImage
	sentinel := errors.New("no display")
	writeClipboardImage = func(image.Image) error { return sentinel }
	t.Cleanup(func() { writeClipboardImage = original })

	r, _, _ := testRoot(t)
	cmd, err := parseSnapshotCmd([]string{"-size", "32x32", "-to-clipboard"}, r)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if err := cmd.Run(); !errors.Is(err, sentinel) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestParseSnapshotRejectsStdoutWithClipboard(t *testing.T) {
	r, _, _ := testRoot(t)
	_, err := parseSnapshotCmd([]string{"-stdout", "-to-clipboard"}, r)
	if err == nil {
		t.Fatalf("expected error")
	}
	if want := "-stdout cannot be used"; !strings.Contains(err.Error(), want) {
		t.Fatalf("expected error to mention %q, got %v", want, err)
	}
}

func TestAddUnknownLabel(t *testing.T) {
	r, _, _ := testRoot(t)
	cmd, err := parseAddCmd([]string{"-label", "Hidrante", "-25.494,-54.548"}, r)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if err := cmd.Run(); !errors.Is(err, annotation.ErrNoLabel) {
		t.Fatalf("expected ErrNoLabel, got %v", err)
	}
	if _, err := os.Stat(r.config.DataFile); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("data file should not be written on error: %v", err)
	}
}

func TestAddCreatesLabel(t *testing.T) {
	r, stdout, _ := testRoot(t)
	cmd, err := parseAddCmd([]string{"-label", "Hidrante", "-create-label", "-note", "vermelho", "-25.494,-54.548"}, r)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got, want := stdout.String(), "3\t-25.494,-54.548\n"; got != want {
		t.Fatalf("stdout = %q, want %q", got, want)
	}
	s := reopen(t, r)
	l, err := s.LabelByName("hidrante")
	if err != nil {
		t.Fatalf("label not saved: %v", err)
	}
	entries := s.Entries()
	if len(entries) != 4 {
		t.Fatalf("got %d entries, want 4", len(entries))
	}
	if e := entries[3]; e.Label != l.ID || e.Note != "vermelho" {
		t.Fatalf("unexpected entry %+v", e)
	}
}

func TestAddOutsideMap(t *testing.T) {
	r, _, _ := testRoot(t)
	cmd, err := parseAddCmd([]string{"0,0"}, r)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if err := cmd.Run(); err == nil || !strings.Contains(err.Error(), "outside the map") {
		t.Fatalf("expected outside the map error, got %v", err)
	}
}

func TestRemoveOutOfRange(t *testing.T) {
	r, _, _ := testRoot(t)
	cmd, err := parseRemoveCmd([]string{"7"}, r)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	err = cmd.Run()
	if !errors.Is(err, annotation.ErrNoEntry) {
		t.Fatalf("expected ErrNoEntry, got %v", err)
	}
	if want := "failed to remove entry"; !strings.Contains(err.Error(), want) {
		t.Fatalf("expected error to contain %q, got %v", want, err)
	}
}

func TestProject(t *testing.T) {
	r, stdout, _ := testRoot(t)
	cmd, err := parseProjectCmd([]string{"-size", "1000x1000", "-25.49093,-54.55207"}, r)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got, want := stdout.String(), "0.00,0.00\n"; got != want {
		t.Fatalf("project = %q, want %q", got, want)
	}

	stdout.Reset()
	cmd, err = parseProjectCmd([]string{"-size", "1000x1000", "-reverse", "0,1000"}, r)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got, want := stdout.String(), "-25.49659,-54.55207\n"; got != want {
		t.Fatalf("reverse = %q, want %q", got, want)
	}
}

func TestExportFormatFromExtension(t *testing.T) {
	r, _, stderr := testRoot(t)
	out := filepath.Join(t.TempDir(), "notes.yaml")
	cmd, err := parseExportCmd([]string{"-output", out}, r)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(b), "entries:") {
		t.Fatalf("expected yaml output, got %s", b)
	}
	if !strings.Contains(stderr.String(), "exported 3 entries") {
		t.Fatalf("unexpected stderr %q", stderr.String())
	}
}

func TestExportDefaultsToGeoJSON(t *testing.T) {
	r, stdout, _ := testRoot(t)
	cmd, err := parseExportCmd(nil, r)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(stdout.String(), `"FeatureCollection"`) {
		t.Fatalf("expected geojson, got %s", stdout.String())
	}
}

func TestParseImportClipboardWithFile(t *testing.T) {
	r, _, _ := testRoot(t)
	_, err := parseImportCmd([]string{"-from-clipboard", "notes.json"}, r)
	if err == nil {
		t.Fatalf("expected error")
	}
	if want := "-from-clipboard cannot be used"; !strings.Contains(err.Error(), want) {
		t.Fatalf("expected error to mention %q, got %v", want, err)
	}
}

func TestImportMergesByLabelName(t *testing.T) {
	r, _, _ := testRoot(t)
	in := filepath.Join(t.TempDir(), "more.json")
	doc := `{"version":1,"labels":[{"id":9,"name":"BANCO"}],"entries":[{"lat":-25.495,"lon":-54.55,"label":9}]}`
	if err := os.WriteFile(in, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	cmd, err := parseImportCmd([]string{in}, r)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	s := reopen(t, r)
	if got := len(s.Labels()); got != 5 {
		t.Fatalf("got %d labels, want 5", got)
	}
	banco, err := s.LabelByName("Banco")
	if err != nil {
		t.Fatal(err)
	}
	entries := s.Entries()
	if len(entries) != 4 || entries[3].Label != banco.ID {
		t.Fatalf("unexpected entries %+v", entries)
	}
}

func TestImportClipboardError(t *testing.T) {
	original := readClipboardText
	sentinel := errors.New("empty")
	readClipboardText = func() (string, error) { return "", sentinel }
	t.Cleanup(func() { readClipboardText = original })

	r, _, _ := testRoot(t)
	cmd, err := parseImportCmd([]string{"-from-clipboard"}, r)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if err := cmd.Run(); !errors.Is(err, sentinel) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestInteractiveExec(t *testing.T) {
	r, stdout, _ := testRoot(t)
	cmd, err := parseInteractiveCmd([]string{"-e", "add -label banco -25.494,-54.548", "-e", "list -label Banco"}, r)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	out := stdout.String()
	if !strings.Contains(out, "3\t-25.494,-54.548") {
		t.Fatalf("add output missing in %q", out)
	}
	if !strings.Contains(out, "Banco") {
		t.Fatalf("list output missing in %q", out)
	}
}

func TestInteractiveReadsLines(t *testing.T) {
	r, stdout, stderr := testRoot(t)
	cmd, err := parseInteractiveCmd(nil, r)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	cmd.in = strings.NewReader("remove 99\nlabels\nexit\nlabels\n")
	if err := cmd.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(stderr.String(), "no such entry") {
		t.Fatalf("expected remove error, got %q", stderr.String())
	}
	if got := strings.Count(stdout.String(), "Escola"); got != 1 {
		t.Fatalf("labels ran %d times, want 1", got)
	}
}

func TestUsageErrorListsFlags(t *testing.T) {
	r, _, _ := testRoot(t)
	cmd, err := parseSnapshotCmd(nil, r)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	help := (&UsageError{of: cmd}).Error()
	for _, want := range []string{"mapnotes snapshot", "-to-clipboard", "default 1024x768"} {
		if !strings.Contains(help, want) {
			t.Fatalf("help missing %q:\n%s", want, help)
		}
	}
}
