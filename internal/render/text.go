package render

import (
	"image"
	"image/color"
	"image/draw"
	"log"
	"math"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"

	"github.com/example/mapnotes/internal/theme"
)

var (
	facesOnce   sync.Once
	messageFace font.Face = basicfont.Face7x13
	statusFace  font.Face = basicfont.Face7x13
)

// labelFace stays the bitmap font so small labels are crisp at any zoom.
var labelFace font.Face = basicfont.Face7x13

func loadFaces() {
	facesOnce.Do(func() {
		f, err := opentype.Parse(goregular.TTF)
		if err != nil {
			log.Printf("parse font: %v", err)
			return
		}
		if face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: 28, DPI: 72, Hinting: font.HintingFull}); err == nil {
			messageFace = face
		} else {
			log.Printf("font face: %v", err)
		}
		if face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: 14, DPI: 72, Hinting: font.HintingFull}); err == nil {
			statusFace = face
		} else {
			log.Printf("font face: %v", err)
		}
	})
}

// MeasureText returns the bounding box width and height of s in face
// and the offset of the baseline from the top.
func MeasureText(face font.Face, s string) (width, height, baseline int) {
	d := &font.Drawer{Face: face}
	m := face.Metrics()
	return d.MeasureString(s).Ceil(), m.Ascent.Ceil() + m.Descent.Ceil(), m.Ascent.Ceil()
}

func drawText(dst draw.Image, face font.Face, x, baseline int, s string, col color.Color) {
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(col), Face: face, Dot: fixed.P(x, baseline)}
	d.DrawString(s)
}

func drawCentered(dst draw.Image, c f64.Vec2, s string, col color.Color) {
	w, h, base := MeasureText(labelFace, s)
	x := int(math.Round(c[0])) - w/2
	y := int(math.Round(c[1])) - h/2 + base
	drawText(dst, labelFace, x, y, s, col)
}

// drawLabel puts the text in a box to the right of a marker.
func drawLabel(dst *image.RGBA, p f64.Vec2, s string, th *theme.Theme) {
	w, h, base := MeasureText(labelFace, s)
	x := int(math.Round(p[0])) + MarkerRadius + 4
	y := int(math.Round(p[1])) - h/2
	box := image.Rect(x-3, y-2, x+w+3, y+h+2)
	draw.Draw(dst, box, image.NewUniform(th.LabelBackground), image.Point{}, draw.Over)
	drawText(dst, labelFace, x, y+base, s, th.LabelText)
}

func drawStatus(dst *image.RGBA, s string, th *theme.Theme) {
	loadFaces()
	b := dst.Bounds()
	w, h, base := MeasureText(statusFace, s)
	box := image.Rect(b.Min.X, b.Max.Y-h-8, b.Min.X+w+16, b.Max.Y)
	draw.Draw(dst, box, image.NewUniform(th.LabelBackground), image.Point{}, draw.Over)
	drawText(dst, statusFace, box.Min.X+8, box.Min.Y+4+base, s, th.StatusText)
}

// drawMessage shows a transient notice in the middle of the canvas.
func drawMessage(dst *image.RGBA, s string, th *theme.Theme) {
	loadFaces()
	b := dst.Bounds()
	w, h, base := MeasureText(messageFace, s)
	px := b.Min.X + (b.Dx()-w)/2
	py := b.Min.Y + (b.Dy()-h)/2
	rect := image.Rect(px-10, py-8, px+w+10, py+h+8)
	draw.Draw(dst, rect, image.NewUniform(th.LabelBackground), image.Point{}, draw.Over)
	drawText(dst, messageFace, px, py+base, s, th.StatusText)
}
