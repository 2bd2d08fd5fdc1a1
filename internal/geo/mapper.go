package geo

import (
	"fmt"
	"image"
	"math"

	"golang.org/x/image/math/f64"

	"github.com/example/mapnotes/internal/affine"
)

// Viewer supplies the current view transform.
type Viewer interface {
	Transform() affine.Transform
}

// Mapper converts between geographic, image and screen coordinates.
type Mapper struct {
	Box   BoundingBox
	Image image.Point
	View  Viewer
}

// NewMapper validates the calibration and returns a mapper.
func NewMapper(box BoundingBox, img image.Point, v Viewer) (*Mapper, error) {
	if err := box.Validate(); err != nil {
		return nil, err
	}
	if img.X <= 0 || img.Y <= 0 {
		return nil, fmt.Errorf("image size %v: %w", img, ErrBadBox)
	}
	return &Mapper{Box: box, Image: img, View: v}, nil
}

// ToImage returns the image pixel for c. Latitude grows upwards so the
// vertical axis is flipped.
func (m *Mapper) ToImage(c Coord) f64.Vec2 {
	nx := (c.Lon - m.Box.Min.Lon) / (m.Box.Max.Lon - m.Box.Min.Lon)
	ny := (c.Lat - m.Box.Min.Lat) / (m.Box.Max.Lat - m.Box.Min.Lat)
	return f64.Vec2{nx * float64(m.Image.X), (1 - ny) * float64(m.Image.Y)}
}

// FromImage is the inverse of ToImage.
func (m *Mapper) FromImage(p f64.Vec2) Coord {
	nx := p[0] / float64(m.Image.X)
	ny := 1 - p[1]/float64(m.Image.Y)
	return Coord{
		Lat: m.Box.Min.Lat + ny*(m.Box.Max.Lat-m.Box.Min.Lat),
		Lon: m.Box.Min.Lon + nx*(m.Box.Max.Lon-m.Box.Min.Lon),
	}
}

// GeoToScreen projects c through the current view.
func (m *Mapper) GeoToScreen(c Coord) f64.Vec2 {
	return affine.Apply(m.ToImage(c), m.View.Transform())
}

// ScreenToGeo returns the coordinate under the screen point p.
func (m *Mapper) ScreenToGeo(p f64.Vec2) (Coord, error) {
	img, err := affine.Unapply(p, m.View.Transform())
	if err != nil {
		return Coord{}, err
	}
	return m.FromImage(img), nil
}

// Nearest returns the index of the coordinate whose screen position is
// closest to p and strictly closer than threshold pixels. On equal
// distances the earlier entry wins.
func (m *Mapper) Nearest(p f64.Vec2, coords []Coord, threshold float64) (int, bool) {
	best, bestDist := -1, threshold
	t := m.View.Transform()
	for i, c := range coords {
		d := affine.Distance(p, affine.Apply(m.ToImage(c), t))
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return best, best >= 0
}

// MetersPerPixel is the ground distance covered by one image pixel.
func (m *Mapper) MetersPerPixel() float64 {
	return m.Box.Diagonal() / math.Hypot(float64(m.Image.X), float64(m.Image.Y))
}

// ScreenRadius converts a ground distance around the map into screen
// pixels at the current zoom.
func (m *Mapper) ScreenRadius(meters float64) float64 {
	return meters / m.MetersPerPixel() * affine.UniformScale(m.View.Transform())
}

// Visible reports whether p falls within canvas grown by margin pixels.
func Visible(p f64.Vec2, canvas image.Point, margin float64) bool {
	return p[0] >= -margin && p[1] >= -margin &&
		p[0] < float64(canvas.X)+margin && p[1] < float64(canvas.Y)+margin
}
