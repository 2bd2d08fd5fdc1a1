// Package geo maps between latitude/longitude and the pixels of the
// calibrated map image, and from there onto the screen.
package geo

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// EarthRadius is the mean earth radius in meters.
const EarthRadius = 6371008.8

// ErrBadBox is returned for an empty or inverted bounding box.
var ErrBadBox = errors.New("invalid bounding box")

// Coord is a latitude/longitude pair in degrees.
type Coord struct {
	Lat float64 `json:"lat" yaml:"lat" toml:"lat"`
	Lon float64 `json:"lon" yaml:"lon" toml:"lon"`
}

func (c Coord) String() string {
	return strconv.FormatFloat(c.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lon, 'f', -1, 64)
}

// ParseCoord reads "lat,lon".
func ParseCoord(s string) (Coord, error) {
	lat, lon, ok := strings.Cut(s, ",")
	if !ok {
		return Coord{}, fmt.Errorf("coordinate %q: want lat,lon", s)
	}
	var c Coord
	var err error
	if c.Lat, err = strconv.ParseFloat(strings.TrimSpace(lat), 64); err != nil {
		return Coord{}, fmt.Errorf("latitude %q: %w", lat, err)
	}
	if c.Lon, err = strconv.ParseFloat(strings.TrimSpace(lon), 64); err != nil {
		return Coord{}, fmt.Errorf("longitude %q: %w", lon, err)
	}
	return c, nil
}

// BoundingBox calibrates the map image: Min is the bottom left corner
// and Max the top right corner.
type BoundingBox struct {
	Min Coord
	Max Coord
}

// DefaultBox is the area covered by the bundled map images.
var DefaultBox = BoundingBox{
	Min: Coord{Lat: -25.49659, Lon: -54.55207},
	Max: Coord{Lat: -25.49093, Lon: -54.54451},
}

// Validate checks that the box has a positive extent on both axes.
func (b BoundingBox) Validate() error {
	if !(b.Max.Lat > b.Min.Lat) || !(b.Max.Lon > b.Min.Lon) {
		return fmt.Errorf("%v .. %v: %w", b.Min, b.Max, ErrBadBox)
	}
	return nil
}

// Contains reports whether c lies inside the box.
func (b BoundingBox) Contains(c Coord) bool {
	return c.Lat >= b.Min.Lat && c.Lat <= b.Max.Lat && c.Lon >= b.Min.Lon && c.Lon <= b.Max.Lon
}

// Center of the box.
func (b BoundingBox) Center() Coord {
	return Coord{Lat: (b.Min.Lat + b.Max.Lat) / 2, Lon: (b.Min.Lon + b.Max.Lon) / 2}
}

// Diagonal is the distance between both corners in meters.
func (b BoundingBox) Diagonal() float64 {
	return Distance(b.Min, b.Max)
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// Distance is the great-circle distance between a and b in meters.
func Distance(a, b Coord) float64 {
	dLat := toRad(b.Lat - a.Lat)
	dLon := toRad(b.Lon - a.Lon)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * EarthRadius * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}
