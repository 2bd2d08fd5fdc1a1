// Package render draws the annotated map for the viewer window and for
// snapshot exports.
package render

import (
	"context"
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/example/mapnotes/internal/affine"
	"github.com/example/mapnotes/internal/geo"
	"github.com/example/mapnotes/internal/theme"
)

// MarkerRadius is the drawn radius of an annotation marker in pixels.
const MarkerRadius = 6

// Marker is an annotation already projected to screen space.
type Marker struct {
	Pos      f64.Vec2
	Label    string
	Selected bool
}

// Location is the user's position in screen space with its accuracy
// radius in pixels.
type Location struct {
	Pos    f64.Vec2
	Radius float64
}

// Scene is an immutable snapshot of everything drawn in one frame.
type Scene struct {
	Canvas    image.Point
	View      affine.Transform
	Satellite image.Image
	Mask      image.Image
	Markers   []Marker
	Location  *Location
	// ShowLabels draws every marker label, not only the selected one.
	ShowLabels bool
	Compass    bool
	Status     string
	Message    string
	Theme      *theme.Theme
}

// Draw paints sc into dst. It returns ctx.Err() when the frame was
// abandoned part way.
func Draw(ctx context.Context, dst *image.RGBA, sc Scene) error {
	th := sc.Theme
	if th == nil {
		th = theme.Default()
	}
	draw.Draw(dst, dst.Bounds(), image.NewUniform(th.Background), image.Point{}, draw.Src)
	if ctx.Err() != nil {
		return ctx.Err()
	}

	s2d := affine.Aff3(sc.View)
	if sc.Satellite != nil {
		xdraw.BiLinear.Transform(dst, s2d, sc.Satellite, sc.Satellite.Bounds(), draw.Over, nil)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if th.Shade.A > 0 {
			xdraw.NearestNeighbor.Transform(dst, s2d, image.NewUniform(th.Shade), sc.Satellite.Bounds(), draw.Over, nil)
		}
	}
	if sc.Mask != nil {
		xdraw.BiLinear.Transform(dst, s2d, sc.Mask, sc.Mask.Bounds(), draw.Over, nil)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	canvas := dst.Bounds().Size()
	for _, m := range sc.Markers {
		if !geo.Visible(m.Pos, canvas, MarkerRadius*3) {
			continue
		}
		drawMarkerShadow(dst, m.Pos, th.MarkerShadow)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	for _, m := range sc.Markers {
		if !geo.Visible(m.Pos, canvas, MarkerRadius*3) {
			continue
		}
		fill := th.Marker
		if m.Selected {
			fill = th.MarkerSelected
		}
		fillCircle(dst, m.Pos, MarkerRadius, fill)
		strokeCircle(dst, m.Pos, MarkerRadius, 1.5, th.MarkerStroke)
	}
	for _, m := range sc.Markers {
		if m.Label == "" || !(m.Selected || sc.ShowLabels) {
			continue
		}
		if geo.Visible(m.Pos, canvas, MarkerRadius*3) {
			drawLabel(dst, m.Pos, m.Label, th)
		}
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	if loc := sc.Location; loc != nil {
		if loc.Radius > 0 {
			fillCircle(dst, loc.Pos, loc.Radius, th.LocationFill)
			strokeCircle(dst, loc.Pos, loc.Radius, 1, th.LocationStroke)
		}
		fillCircle(dst, loc.Pos, 5, th.LocationStroke)
		strokeCircle(dst, loc.Pos, 5, 1.5, color.RGBA{255, 255, 255, 255})
	}

	if sc.Compass {
		drawCompass(dst, sc.View, th)
	}
	if sc.Status != "" {
		drawStatus(dst, sc.Status, th)
	}
	if sc.Message != "" {
		drawMessage(dst, sc.Message, th)
	}
	return ctx.Err()
}

// Image renders sc into a new image the size of sc.Canvas.
func Image(ctx context.Context, sc Scene) (*image.RGBA, error) {
	img := image.NewRGBA(image.Rectangle{Max: sc.Canvas})
	if err := Draw(ctx, img, sc); err != nil {
		return nil, err
	}
	return img, nil
}
