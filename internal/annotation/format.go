package annotation

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format is an export encoding.
type Format string

const (
	FormatJSON    Format = "json"
	FormatGeoJSON Format = "geojson"
	FormatYAML    Format = "yaml"
	FormatTOML    Format = "toml"
)

// Formats lists every supported export format.
var Formats = []Format{FormatJSON, FormatGeoJSON, FormatYAML, FormatTOML}

// ParseFormat accepts a format name or a file name with a known
// extension.
func ParseFormat(s string) (Format, error) {
	name := strings.ToLower(strings.TrimPrefix(filepath.Ext(s), "."))
	if name == "" {
		name = strings.ToLower(s)
	}
	switch name {
	case "json":
		return FormatJSON, nil
	case "geojson":
		return FormatGeoJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	}
	return "", fmt.Errorf("unknown format %q", s)
}

// Encode writes d in format f.
func Encode(w io.Writer, d Data, f Format) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(d)
	case FormatGeoJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(toFeatures(d))
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(d); err != nil {
			return err
		}
		return enc.Close()
	case FormatTOML:
		return toml.NewEncoder(w).Encode(d)
	}
	return fmt.Errorf("encode: unknown format %q", f)
}

// Decode reads a document in format f and upgrades old versions.
func Decode(r io.Reader, f Format) (*Data, error) {
	var d Data
	switch f {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&d); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
	case FormatGeoJSON:
		var fc featureCollection
		if err := json.NewDecoder(r).Decode(&fc); err != nil {
			return nil, fmt.Errorf("decode geojson: %w", err)
		}
		d = fromFeatures(fc)
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&d); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	case FormatTOML:
		if err := toml.NewDecoder(r).Decode(&d); err != nil {
			return nil, fmt.Errorf("decode toml: %w", err)
		}
	default:
		return nil, fmt.Errorf("decode: unknown format %q", f)
	}
	Fix(&d)
	return &d, nil
}

type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

type feature struct {
	Type       string            `json:"type"`
	Geometry   point             `json:"geometry"`
	Properties featureProperties `json:"properties"`
}

type point struct {
	Type string `json:"type"`
	// Coordinates are longitude first.
	Coordinates [2]float64 `json:"coordinates"`
}

type featureProperties struct {
	Label string `json:"label,omitempty"`
	Note  string `json:"note,omitempty"`
}

func toFeatures(d Data) featureCollection {
	names := make(map[int]string, len(d.Labels))
	for _, l := range d.Labels {
		names[l.ID] = l.Name
	}
	fc := featureCollection{Type: "FeatureCollection", Features: []feature{}}
	for _, e := range d.Entries {
		fc.Features = append(fc.Features, feature{
			Type:       "Feature",
			Geometry:   point{Type: "Point", Coordinates: [2]float64{e.Lon, e.Lat}},
			Properties: featureProperties{Label: names[e.Label], Note: e.Note},
		})
	}
	return fc
}

func fromFeatures(fc featureCollection) Data {
	d := Data{Version: CurrentVersion}
	ids := map[string]int{}
	for _, f := range fc.Features {
		if f.Geometry.Type != "Point" {
			continue
		}
		e := Entry{Lat: f.Geometry.Coordinates[1], Lon: f.Geometry.Coordinates[0], Note: f.Properties.Note}
		if name := f.Properties.Label; name != "" {
			id, ok := ids[Fold(name)]
			if !ok {
				id = len(d.Labels)
				ids[Fold(name)] = id
				d.Labels = append(d.Labels, Label{ID: id, Name: name})
			}
			e.Label = id
		}
		d.Entries = append(d.Entries, e)
	}
	SortLabels(d.Labels)
	return d
}
