package appstate

import (
	"context"
	"image"
	"log"
	"sync"
	"time"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/image/math/f64"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"
	"golang.org/x/mobile/event/touch"

	"github.com/example/mapnotes/internal/annotation"
	"github.com/example/mapnotes/internal/config"
	"github.com/example/mapnotes/internal/display"
	"github.com/example/mapnotes/internal/gesture"
	"github.com/example/mapnotes/internal/locate"
	"github.com/example/mapnotes/internal/notify"
	"github.com/example/mapnotes/internal/render"
	"github.com/example/mapnotes/internal/theme"
)

// frameInterval paces animation frames.
const frameInterval = time.Second / 60

// AppState holds the configuration of the viewer window.
type AppState struct {
	Satellite image.Image
	Mask      image.Image
	Store     *annotation.Store
	Config    *config.Config
	Theme     *theme.Theme
	Notifier  *notify.Notifier
	Locations locate.Source
	Size      image.Point
	Monitor   string
	Title     string

	onClose   func()
	closeOnce sync.Once
}

// Option modifies an AppState during creation.
type Option func(*AppState)

// WithSatellite sets the photo drawn under the annotations.
func WithSatellite(img image.Image) Option { return func(a *AppState) { a.Satellite = img } }

// WithMask sets the overlay drawn above the shaded photo.
func WithMask(img image.Image) Option { return func(a *AppState) { a.Mask = img } }

// WithStore sets the annotations shown and edited by the viewer.
func WithStore(s *annotation.Store) Option { return func(a *AppState) { a.Store = s } }

// WithConfig sets the configuration.
func WithConfig(cfg *config.Config) Option { return func(a *AppState) { a.Config = cfg } }

// WithTheme sets the colors.
func WithTheme(t *theme.Theme) Option { return func(a *AppState) { a.Theme = t } }

// WithNotifier enables desktop notifications for save, export and copy.
func WithNotifier(n *notify.Notifier) Option { return func(a *AppState) { a.Notifier = n } }

// WithLocations sets where position fixes come from.
func WithLocations(src locate.Source) Option { return func(a *AppState) { a.Locations = src } }

// WithSize sets the initial window size.
func WithSize(sz image.Point) Option { return func(a *AppState) { a.Size = sz } }

// WithMonitor picks the monitor the window is sized for.
func WithMonitor(selector string) Option { return func(a *AppState) { a.Monitor = selector } }

// WithOnClose registers a callback invoked when the window closes.
func WithOnClose(fn func()) Option { return func(a *AppState) { a.onClose = fn } }

// New creates an AppState with the provided options.
func New(opts ...Option) *AppState {
	a := &AppState{Title: "mapnotes"}
	for _, o := range opts {
		o(a)
	}
	if a.Config == nil {
		a.Config = config.New()
	}
	return a
}

// Custom events posted to the window so that every change of viewer
// state happens on the event loop.
type (
	frameEvent    struct{}
	locationEvent struct{ fix locate.Fix }
	reloadEvent   struct{}
)

// imageSize is the size of the map image, falling back to the mask.
func (a *AppState) imageSize() image.Point {
	if a.Satellite != nil {
		return a.Satellite.Bounds().Size()
	}
	if a.Mask != nil {
		return a.Mask.Bounds().Size()
	}
	return image.Pt(1024, 768)
}

// NewViewer builds the viewer state without opening a window.
func (a *AppState) NewViewer() (*Viewer, error) {
	store := a.Store
	if store == nil {
		var err error
		if store, err = annotation.Open(a.Config.DataFile, nil); err != nil {
			return nil, err
		}
		a.Store = store
	}
	v, err := NewViewer(a.Config, store, a.imageSize())
	if err != nil {
		return nil, err
	}
	v.satellite, v.mask, v.notifier = a.Satellite, a.Mask, a.Notifier
	if a.Theme != nil {
		v.theme = a.Theme
	}
	return v, nil
}

func (a *AppState) windowSize() image.Point {
	if a.Size.X > 0 && a.Size.Y > 0 {
		return a.Size
	}
	img := a.imageSize()
	mon, err := display.Find(a.Monitor)
	if err != nil {
		log.Printf("monitor: %v", err)
		return display.WindowSize(display.Monitor{Rect: image.Rect(0, 0, 1280, 800)}, img, 0.9)
	}
	return display.WindowSize(mon, img, 0.8)
}

func (a *AppState) notifyClose() {
	a.closeOnce.Do(func() {
		if a.onClose != nil {
			a.onClose()
		}
	})
}

// Run executes the UI loop using shiny's driver.
func (a *AppState) Run() { driver.Main(a.Main) }

func (a *AppState) Main(s screen.Screen) {
	v, err := a.NewViewer()
	if err != nil {
		log.Printf("viewer: %v", err)
		return
	}
	sz := a.windowSize()
	w, err := s.NewWindow(&screen.NewWindowOptions{Width: sz.X, Height: sz.Y, Title: a.Title})
	if err != nil {
		log.Fatalf("new window: %v", err)
	}
	defer w.Release()
	defer a.notifyClose()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	v.ctrl.OnChange = func() { w.Send(paint.Event{}) }

	if a.Locations != nil {
		fixes, err := a.Locations.Watch(ctx)
		if err != nil {
			log.Printf("location: %v", err)
		} else {
			go func() {
				for fix := range fixes {
					w.Send(locationEvent{fix})
				}
			}()
		}
	}

	if path := v.store.Path(); path != "" {
		watcher, err := annotation.Watch(path, 200*time.Millisecond, func() { w.Send(reloadEvent{}) })
		if err != nil {
			log.Printf("watch %s: %v", path, err)
		} else {
			defer watcher.Close()
		}
	}

	var paintMu sync.Mutex
	var paintCancel context.CancelFunc
	var dropCount int
	paintCh := make(chan render.Scene, 1)
	defer close(paintCh)
	go func() {
		for sc := range paintCh {
			ctx, cancel := context.WithCancel(ctx)
			paintMu.Lock()
			paintCancel = cancel
			paintMu.Unlock()
			drawFrame(ctx, s, w, sc)
			paintMu.Lock()
			paintCancel = nil
			if ctx.Err() == nil {
				dropCount = 0
			}
			paintMu.Unlock()
			cancel()
		}
	}()

	framePending := false
	scheduleFrame := func() {
		if framePending || !v.Animating() {
			return
		}
		framePending = true
		time.AfterFunc(frameInterval, func() { w.Send(frameEvent{}) })
	}
	scheduleRepaint := func() {
		w.Send(paint.Event{})
		if v.Message() != "" {
			time.AfterFunc(messageDuration+50*time.Millisecond, func() { w.Send(paint.Event{}) })
		}
	}

	mouseDown := false
	for {
		e := w.NextEvent()
		switch e := e.(type) {
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				paintMu.Lock()
				if paintCancel != nil {
					paintCancel()
				}
				paintMu.Unlock()
				return
			}
			if e.Crosses(lifecycle.StageFocused) == lifecycle.CrossOff && mouseDown {
				mouseDown = false
				v.AbortGesture()
			}
		case size.Event:
			v.Resize(image.Pt(e.WidthPx, e.HeightPx))
			w.Send(paint.Event{})
		case paint.Event:
			paintMu.Lock()
			if paintCancel != nil {
				if dropCount < frameDropThreshold {
					paintCancel()
					dropCount++
				}
			}
			paintMu.Unlock()
			sc := v.Scene()
			queueScene(paintCh, sc)
		case frameEvent:
			framePending = false
			v.Step()
			scheduleFrame()
			w.Send(paint.Event{})
		case locationEvent:
			first := v.location == nil
			v.SetLocation(e.fix)
			if first {
				log.Printf("location: %v", e.fix)
			}
			w.Send(paint.Event{})
		case reloadEvent:
			v.Reload()
			scheduleRepaint()
		case mouse.Event:
			pos := f64.Vec2{float64(e.X), float64(e.Y)}
			switch {
			case e.Direction == mouse.DirStep:
				rotate := e.Modifiers&(key.ModShift|key.ModControl) != 0
				switch e.Button {
				case mouse.ButtonWheelUp:
					v.Wheel(pos, 1, rotate)
				case mouse.ButtonWheelDown:
					v.Wheel(pos, -1, rotate)
				case mouse.ButtonWheelLeft:
					v.Wheel(pos, -1, true)
				case mouse.ButtonWheelRight:
					v.Wheel(pos, 1, true)
				}
			case e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress:
				mouseDown = true
				v.PointerDown(gesture.MousePointer, pos)
			case e.Button == mouse.ButtonLeft && e.Direction == mouse.DirRelease:
				if mouseDown {
					mouseDown = false
					v.PointerUp(gesture.MousePointer, pos)
					scheduleRepaint()
				}
			case e.Direction == mouse.DirNone && mouseDown:
				v.PointerMove(gesture.MousePointer, pos)
			}
		case touch.Event:
			pos := f64.Vec2{float64(e.X), float64(e.Y)}
			id := int(e.Sequence)
			switch e.Type {
			case touch.TypeBegin:
				v.PointerDown(id, pos)
			case touch.TypeMove:
				v.PointerMove(id, pos)
			case touch.TypeEnd:
				v.PointerUp(id, pos)
				scheduleRepaint()
			}
		case key.Event:
			if v.HandleKey(e) {
				return
			}
			scheduleFrame()
			scheduleRepaint()
		case error:
			log.Printf("window: %v", e)
		}
	}
}
