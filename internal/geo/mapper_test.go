package geo

import (
	"image"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/mapnotes/internal/affine"
)

type fixedView affine.Transform

func (v fixedView) Transform() affine.Transform { return affine.Transform(v) }

func newMapper(t *testing.T, tr affine.Transform) *Mapper {
	t.Helper()
	m, err := NewMapper(DefaultBox, image.Pt(1000, 800), fixedView(tr))
	require.NoError(t, err)
	return m
}

var views = []affine.Transform{
	affine.Identity(),
	{0.5, 0, 0, 0.5, 0, 0},
	affine.Translate(affine.Rotate(affine.Scaling(2.3, 2.3), 1.9), affine.Vec(-300, 140)),
	affine.ComposeAt(affine.Scaling(0.01, 0.01), affine.Rotation(-0.4), affine.Vec(250, 200)),
}

func TestRoundTrip(t *testing.T) {
	coords := []Coord{
		DefaultBox.Min,
		DefaultBox.Max,
		DefaultBox.Center(),
		{Lat: -25.4921, Lon: -54.5501},
		{Lat: -25.4962, Lon: -54.5452},
	}
	for _, tr := range views {
		m := newMapper(t, tr)
		for _, c := range coords {
			back, err := m.ScreenToGeo(m.GeoToScreen(c))
			require.NoError(t, err)
			assert.InEpsilon(t, c.Lat, back.Lat, 1e-9)
			assert.InEpsilon(t, c.Lon, back.Lon, 1e-9)
		}
	}
}

func TestCorners(t *testing.T) {
	m := newMapper(t, affine.Identity())
	assert.InDelta(t, 0, m.ToImage(DefaultBox.Min)[0], 1e-9)
	assert.InDelta(t, 800, m.ToImage(DefaultBox.Min)[1], 1e-9)
	assert.InDelta(t, 1000, m.ToImage(DefaultBox.Max)[0], 1e-9)
	assert.InDelta(t, 0, m.ToImage(DefaultBox.Max)[1], 1e-9)

	m = newMapper(t, affine.Transform{0.5, 0, 0, 0.5, 10, 20})
	p := m.GeoToScreen(DefaultBox.Center())
	assert.InDelta(t, 260, p[0], 1e-9)
	assert.InDelta(t, 220, p[1], 1e-9)
}

func TestScreenToGeoDegenerate(t *testing.T) {
	m := newMapper(t, affine.Transform{})
	_, err := m.ScreenToGeo(affine.Vec(1, 1))
	assert.ErrorIs(t, err, affine.ErrDegenerate)
}

func TestNewMapperValidates(t *testing.T) {
	_, err := NewMapper(BoundingBox{Min: DefaultBox.Max, Max: DefaultBox.Min}, image.Pt(10, 10), fixedView(affine.Identity()))
	assert.ErrorIs(t, err, ErrBadBox)
	_, err = NewMapper(DefaultBox, image.Pt(0, 10), fixedView(affine.Identity()))
	assert.ErrorIs(t, err, ErrBadBox)
}

func TestNearest(t *testing.T) {
	m := newMapper(t, affine.Identity())
	coords := []Coord{
		m.FromImage(affine.Vec(100, 100)),
		m.FromImage(affine.Vec(110, 100)),
		m.FromImage(affine.Vec(90, 100)),
		m.FromImage(affine.Vec(500, 500)),
	}

	i, ok := m.Nearest(affine.Vec(108, 101), coords, 20)
	require.True(t, ok)
	assert.Equal(t, 1, i)

	// (100,100) sits halfway between entries 1 and 2; entry 0 is closest.
	i, ok = m.Nearest(affine.Vec(100, 100), coords, 20)
	require.True(t, ok)
	assert.Equal(t, 0, i)

	// Equal distance: first one wins.
	dup := []Coord{coords[3], coords[0], coords[0]}
	i, ok = m.Nearest(affine.Vec(100, 130), dup, 40)
	require.True(t, ok)
	assert.Equal(t, 1, i)

	_, ok = m.Nearest(affine.Vec(300, 300), coords, 20)
	assert.False(t, ok)

	// The threshold is exclusive.
	_, ok = m.Nearest(affine.Vec(500, 500), coords[3:], 0)
	assert.False(t, ok)
	_, ok = m.Nearest(affine.Vec(500, 519), coords[3:], 20)
	assert.True(t, ok)

	_, ok = m.Nearest(affine.Vec(0, 0), nil, 20)
	assert.False(t, ok)
}

func TestNearestFollowsView(t *testing.T) {
	m := newMapper(t, affine.Transform{2, 0, 0, 2, 50, 0})
	coords := []Coord{m.FromImage(affine.Vec(100, 100))}
	_, ok := m.Nearest(affine.Vec(100, 100), coords, 10)
	assert.False(t, ok)
	i, ok := m.Nearest(affine.Vec(250, 200), coords, 10)
	assert.True(t, ok)
	assert.Equal(t, 0, i)
}

func TestDistance(t *testing.T) {
	assert.InDelta(t, 0, Distance(DefaultBox.Min, DefaultBox.Min), 1e-9)
	// One degree of latitude.
	assert.InDelta(t, EarthRadius*math.Pi/180, Distance(Coord{0, 0}, Coord{1, 0}), 1e-6)
	d := DefaultBox.Diagonal()
	assert.InDelta(t, 986, d, 5)
	assert.InDelta(t, d, Distance(DefaultBox.Max, DefaultBox.Min), 1e-9)
}

func TestMetersPerPixel(t *testing.T) {
	m := newMapper(t, affine.Scaling(2, 2))
	mpp := m.MetersPerPixel()
	assert.InDelta(t, DefaultBox.Diagonal()/math.Hypot(1000, 800), mpp, 1e-12)
	assert.InDelta(t, 2*10/mpp, m.ScreenRadius(10), 1e-9)
}

func TestVisible(t *testing.T) {
	c := image.Pt(100, 50)
	assert.True(t, Visible(affine.Vec(0, 0), c, 0))
	assert.False(t, Visible(affine.Vec(100, 10), c, 0))
	assert.True(t, Visible(affine.Vec(100, 10), c, 5))
	assert.False(t, Visible(affine.Vec(-6, 10), c, 5))
}

func TestParseCoord(t *testing.T) {
	c, err := ParseCoord("-25.4921, -54.5501")
	require.NoError(t, err)
	assert.Equal(t, Coord{Lat: -25.4921, Lon: -54.5501}, c)
	assert.Equal(t, "-25.4921,-54.5501", c.String())
	_, err = ParseCoord("-25.4921")
	assert.Error(t, err)
	_, err = ParseCoord("x,1")
	assert.Error(t, err)
}

func TestBoxContains(t *testing.T) {
	assert.True(t, DefaultBox.Contains(DefaultBox.Center()))
	assert.False(t, DefaultBox.Contains(Coord{Lat: 0, Lon: 0}))
	assert.NoError(t, DefaultBox.Validate())
}
