package theme

import (
	"image/color"
)

// Theme defines the colors used to draw the map and its annotations.
type Theme struct {
	Name string

	// General
	Background color.RGBA // Canvas outside the map image
	Shade      color.RGBA // Dimming layer between satellite image and overlay

	// Markers
	Marker          color.RGBA
	MarkerStroke    color.RGBA
	MarkerSelected  color.RGBA
	MarkerShadow    color.RGBA
	LabelText       color.RGBA
	LabelBackground color.RGBA

	// Location
	LocationFill   color.RGBA // Accuracy circle
	LocationStroke color.RGBA

	// Compass & status
	CompassNeedle color.RGBA
	CompassText   color.RGBA
	StatusText    color.RGBA
}

// Default returns the hardcoded default theme (fallback).
func Default() *Theme {
	return &Theme{
		Name:            "Default",
		Background:      color.RGBA{32, 32, 32, 255},
		Shade:           color.RGBA{0, 0, 0, 128},
		Marker:          color.RGBA{230, 57, 70, 255},
		MarkerStroke:    color.RGBA{255, 255, 255, 255},
		MarkerSelected:  color.RGBA{255, 196, 0, 255},
		MarkerShadow:    color.RGBA{0, 0, 0, 160},
		LabelText:       color.RGBA{255, 255, 255, 255},
		LabelBackground: color.RGBA{0, 0, 0, 170},
		LocationFill:    color.RGBA{0, 127, 255, 51},
		LocationStroke:  color.RGBA{0, 119, 255, 255},
		CompassNeedle:   color.RGBA{230, 57, 70, 255},
		CompassText:     color.RGBA{255, 255, 255, 255},
		StatusText:      color.RGBA{255, 255, 255, 255},
	}
}
