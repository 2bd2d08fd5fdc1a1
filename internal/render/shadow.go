package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"sync"

	"golang.org/x/image/math/f64"
)

// ShadowOptions configures the drop shadow under markers.
type ShadowOptions struct {
	Radius int
	Offset image.Point
}

// DefaultShadowOptions is a soft shadow slightly below and right of the
// marker.
func DefaultShadowOptions() ShadowOptions {
	return ShadowOptions{Radius: 3, Offset: image.Pt(2, 3)}
}

type spriteKey struct{ size, blur int }

var sprites sync.Map // spriteKey -> *image.Alpha

// ShadowSprite returns a blurred disc of the given radius as an alpha
// mask centred on (0, 0). Sprites are cached per size.
func ShadowSprite(radius, blur int) *image.Alpha {
	if blur < 0 {
		blur = 0
	}
	key := spriteKey{radius, blur}
	if v, ok := sprites.Load(key); ok {
		return v.(*image.Alpha)
	}
	e := radius + blur + 1
	bounds := image.Rect(-e, -e, e+1, e+1)
	mask := image.NewAlpha(bounds)
	draw.Draw(mask, bounds, disc{c: f64.Vec2{0.5, 0.5}, r: float64(radius)}, bounds.Min, draw.Src)
	out := blurAlpha(mask, blur)
	sprites.Store(key, out)
	return out
}

func drawMarkerShadow(dst *image.RGBA, p f64.Vec2, col color.RGBA) {
	if col.A == 0 {
		return
	}
	opts := DefaultShadowOptions()
	sprite := ShadowSprite(MarkerRadius, opts.Radius)
	at := image.Pt(int(math.Round(p[0])), int(math.Round(p[1]))).Add(opts.Offset)
	r := sprite.Bounds().Add(at)
	draw.DrawMask(dst, r, image.NewUniform(col), image.Point{}, sprite, sprite.Bounds().Min, draw.Over)
}

// blurAlpha runs a box blur of the given radius horizontally then
// vertically using running sums.
func blurAlpha(src *image.Alpha, radius int) *image.Alpha {
	bounds := src.Bounds()
	if radius <= 0 {
		out := image.NewAlpha(bounds)
		copy(out.Pix, src.Pix)
		return out
	}
	w, h := bounds.Dx(), bounds.Dy()
	tmp := image.NewAlpha(bounds)
	dst := image.NewAlpha(bounds)

	prefix := make([]int, max(w, h)+1)
	for y := 0; y < h; y++ {
		row := y * src.Stride
		for x := 0; x < w; x++ {
			prefix[x+1] = prefix[x] + int(src.Pix[row+x])
		}
		for x := 0; x < w; x++ {
			x0, x1 := max(0, x-radius), min(w-1, x+radius)
			tmp.Pix[y*tmp.Stride+x] = uint8((prefix[x1+1] - prefix[x0]) / (x1 - x0 + 1))
		}
	}
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			prefix[y+1] = prefix[y] + int(tmp.Pix[y*tmp.Stride+x])
		}
		for y := 0; y < h; y++ {
			y0, y1 := max(0, y-radius), min(h-1, y+radius)
			dst.Pix[y*dst.Stride+x] = uint8((prefix[y1+1] - prefix[y0]) / (y1 - y0 + 1))
		}
	}
	return dst
}
