package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/math/f64"

	"github.com/example/mapnotes/internal/affine"
	"github.com/example/mapnotes/internal/theme"
)

// disc is an anti-aliased alpha mask of a filled circle, or of a ring
// when width is positive.
type disc struct {
	c     f64.Vec2
	r     float64
	width float64
}

func (d disc) ColorModel() color.Model { return color.AlphaModel }

func (d disc) Bounds() image.Rectangle {
	e := d.r + d.width + 1
	return image.Rect(
		int(math.Floor(d.c[0]-e)), int(math.Floor(d.c[1]-e)),
		int(math.Ceil(d.c[0]+e)), int(math.Ceil(d.c[1]+e)),
	)
}

func (d disc) At(x, y int) color.Color {
	dist := math.Hypot(float64(x)+0.5-d.c[0], float64(y)+0.5-d.c[1])
	var a float64
	if d.width > 0 {
		a = d.width/2 + 0.5 - math.Abs(dist-d.r)
	} else {
		a = d.r + 0.5 - dist
	}
	return color.Alpha{A: uint8(255 * math.Max(0, math.Min(1, a)))}
}

func fillCircle(dst draw.Image, c f64.Vec2, r float64, col color.RGBA) {
	d := disc{c: c, r: r}
	draw.DrawMask(dst, d.Bounds(), image.NewUniform(col), image.Point{}, d, d.Bounds().Min, draw.Over)
}

func strokeCircle(dst draw.Image, c f64.Vec2, r, width float64, col color.RGBA) {
	d := disc{c: c, r: r, width: width}
	draw.DrawMask(dst, d.Bounds(), image.NewUniform(col), image.Point{}, d, d.Bounds().Min, draw.Over)
}

// drawLine plots a line with round caps of the given width.
func drawLine(dst draw.Image, a, b f64.Vec2, width float64, col color.RGBA) {
	n := int(math.Ceil(affine.Distance(a, b)))
	for i := 0; i <= n; i++ {
		t := 0.0
		if n > 0 {
			t = float64(i) / float64(n)
		}
		p := f64.Vec2{a[0] + (b[0]-a[0])*t, a[1] + (b[1]-a[1])*t}
		fillCircle(dst, p, width/2, col)
	}
}

// drawCompass draws a needle in the top right corner pointing to the
// image's north.
func drawCompass(dst *image.RGBA, view affine.Transform, th *theme.Theme) {
	const r = 18
	b := dst.Bounds()
	c := f64.Vec2{float64(b.Max.X - r - 12), float64(b.Min.Y + r + 12)}
	j, err := affine.Normalize(view.J())
	if err != nil {
		return
	}
	north := affine.ScaleVec(j, -1)
	fillCircle(dst, c, r, th.LabelBackground)
	strokeCircle(dst, c, r, 1, th.CompassText)
	tip := affine.Add(c, affine.ScaleVec(north, r-4))
	tail := affine.Add(c, affine.ScaleVec(north, -(r - 8)))
	drawLine(dst, tail, c, 2, th.CompassText)
	drawLine(dst, c, tip, 3, th.CompassNeedle)
	label := affine.Add(c, affine.ScaleVec(north, r+8))
	drawCentered(dst, label, "N", th.CompassText)
}
