//go:build !(linux || freebsd || openbsd || netbsd || dragonfly)

package locate

import "context"

// GeoClue is only available where the freedesktop system bus exists.
type GeoClue struct {
	DesktopID string
	Threshold uint32
	Accuracy  uint32
}

func NewGeoClue(desktopID string) *GeoClue {
	return &GeoClue{DesktopID: desktopID}
}

func (g *GeoClue) Watch(context.Context) (<-chan Fix, error) {
	return nil, ErrUnavailable
}
