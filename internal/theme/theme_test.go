package theme

import (
	"bytes"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	input := `
// comment
Name: Night
Marker: #112233
shade: #00000040
Unknown: #FFFFFF
`
	th, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if th.Name != "Night" {
		t.Errorf("Expected name 'Night', got %q", th.Name)
	}
	if th.Marker != (color.RGBA{0x11, 0x22, 0x33, 0xFF}) {
		t.Errorf("Unexpected Marker color: %+v", th.Marker)
	}
	if th.Shade != (color.RGBA{0, 0, 0, 0x40}) {
		t.Errorf("Unexpected Shade color: %+v", th.Shade)
	}
	if th.LocationStroke != Default().LocationStroke {
		t.Errorf("Missing keys should keep defaults, got %+v", th.LocationStroke)
	}
}

func TestParseBadColor(t *testing.T) {
	if _, err := Parse(strings.NewReader("Marker: 112233")); err == nil {
		t.Error("Expected error for color without #")
	}
	if _, err := Parse(strings.NewReader("Marker: #1122")); err == nil {
		t.Error("Expected error for short color")
	}
}

func TestWriteRoundTrip(t *testing.T) {
	orig := Default()
	orig.Name = "copy"
	orig.LabelBackground = color.RGBA{1, 2, 3, 4}
	var buf bytes.Buffer
	if err := Write(&buf, orig); err != nil {
		t.Fatal(err)
	}
	back, err := Parse(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if *back != *orig {
		t.Errorf("round trip mismatch:\n%+v\n%+v", orig, back)
	}
}

func TestEmbeddedThemesParse(t *testing.T) {
	names := Names()
	if len(names) < 3 {
		t.Fatalf("expected embedded themes, got %v", names)
	}
	l := &Loader{}
	for _, n := range names {
		if _, err := l.Load(n); err != nil {
			t.Errorf("embedded theme %s: %v", n, err)
		}
	}
}

func TestLoaderSearchOrder(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "mine.theme"), []byte("Name: Mine\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	l := &Loader{ConfigDir: dir}
	th, err := l.Load("mine")
	if err != nil || th.Name != "Mine" {
		t.Fatalf("Load(mine) = %v, %v", th, err)
	}
	th, err = l.Load(filepath.Join(dir, "mine.theme"))
	if err != nil || th.Name != "Mine" {
		t.Fatalf("Load(path) = %v, %v", th, err)
	}
	if _, err := l.Load("missing"); err == nil {
		t.Error("expected error for missing theme")
	}
	th, err = l.Load("")
	if err != nil || th.Name != "Default" {
		t.Fatalf("Load(\"\") = %v, %v", th, err)
	}
}
