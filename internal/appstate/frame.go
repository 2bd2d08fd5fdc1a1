package appstate

import (
	"context"
	"errors"
	"image"
	"log"

	"golang.org/x/exp/shiny/screen"

	"github.com/example/mapnotes/internal/render"
)

// frameDropThreshold specifies how many consecutive frames can be canceled
// before a draw is allowed to complete to keep the UI responsive.
const frameDropThreshold = 10

// queueScene hands sc to the paint worker through a one slot channel,
// replacing a scene that has not been picked up yet. It never blocks as
// long as the event loop is the only sender.
func queueScene(ch chan render.Scene, sc render.Scene) {
	select {
	case ch <- sc:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	ch <- sc
}

func drawFrame(ctx context.Context, s screen.Screen, w screen.Window, sc render.Scene) {
	if sc.Canvas.X <= 0 || sc.Canvas.Y <= 0 {
		return
	}
	b, err := s.NewBuffer(sc.Canvas)
	if err != nil {
		log.Printf("new buffer: %v", err)
		return
	}
	defer b.Release()

	if err := render.Draw(ctx, b.RGBA(), sc); err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Printf("draw: %v", err)
		}
		return
	}
	w.Upload(image.Point{}, b, b.Bounds())
	w.Publish()
}
