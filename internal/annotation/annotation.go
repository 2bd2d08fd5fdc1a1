// Package annotation holds the labelled points placed on the map and
// their persistence.
package annotation

import (
	"errors"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/example/mapnotes/internal/geo"
)

// CurrentVersion is written into every saved file.
const CurrentVersion = 1

var (
	// ErrNoEntry is returned for an entry index out of range.
	ErrNoEntry = errors.New("no such entry")
	// ErrNoLabel is returned for an unknown label id or name.
	ErrNoLabel = errors.New("no such label")
)

// Label names a category of entries.
type Label struct {
	ID   int    `json:"id" yaml:"id" toml:"id"`
	Name string `json:"name" yaml:"name" toml:"name"`
}

// Entry is one point on the map.
type Entry struct {
	Lat     float64   `json:"lat" yaml:"lat" toml:"lat"`
	Lon     float64   `json:"lon" yaml:"lon" toml:"lon"`
	Label   int       `json:"label" yaml:"label" toml:"label"`
	Note    string    `json:"note,omitempty" yaml:"note,omitempty" toml:"note,omitempty"`
	Created time.Time `json:"created,omitzero" yaml:"created,omitempty" toml:"created"`
}

// Coord returns the position of e.
func (e Entry) Coord() geo.Coord {
	return geo.Coord{Lat: e.Lat, Lon: e.Lon}
}

// Data is the whole annotation document.
type Data struct {
	Version int     `json:"version,omitempty" yaml:"version" toml:"version"`
	Labels  []Label `json:"labels" yaml:"labels" toml:"labels"`
	Entries []Entry `json:"entries" yaml:"entries" toml:"entries"`
}

// Fix upgrades documents written before labels carried ids: ids are
// assigned in file order and the labels are sorted by name.
func Fix(d *Data) {
	if d.Version != 0 {
		return
	}
	for i := range d.Labels {
		d.Labels[i].ID = i
	}
	SortLabels(d.Labels)
	d.Version = CurrentVersion
}

// SortLabels orders labels by Compare on their names, keeping the order
// of equal names.
func SortLabels(labels []Label) {
	sort.SliceStable(labels, func(i, j int) bool {
		return Compare(labels[i].Name, labels[j].Name) < 0
	})
}

var nonASCII = runes.Predicate(func(r rune) bool {
	return r < 0x20 || r > 0x7e
})

// Fold drops accents and anything outside printable ASCII, then lowers
// the case.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(nonASCII))
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

// Compare orders two names ignoring case and accents.
func Compare(a, b string) int {
	return strings.Compare(Fold(a), Fold(b))
}
