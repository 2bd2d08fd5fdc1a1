// Package locate reports the device position so the viewer can show
// where the user stands on the map.
package locate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/mapnotes/internal/geo"
)

// ErrUnavailable is returned when no location service can be reached.
var ErrUnavailable = errors.New("location service unavailable")

// Fix is one position report.
type Fix struct {
	Coord geo.Coord
	// Accuracy radius in meters; zero when unknown.
	Accuracy float64
	Time     time.Time
}

func (f Fix) String() string {
	if f.Accuracy > 0 {
		return fmt.Sprintf("%s ±%.0fm", f.Coord, f.Accuracy)
	}
	return f.Coord.String()
}

// Source produces fixes until ctx is done, then closes the channel.
type Source interface {
	Watch(ctx context.Context) (<-chan Fix, error)
}

// Once waits for the first fix from src.
func Once(ctx context.Context, src Source) (Fix, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	fixes, err := src.Watch(ctx)
	if err != nil {
		return Fix{}, err
	}
	select {
	case fix, ok := <-fixes:
		if !ok {
			return Fix{}, ErrUnavailable
		}
		return fix, nil
	case <-ctx.Done():
		return Fix{}, ctx.Err()
	}
}

// Static reports a single fixed position, for example one given on the
// command line.
type Static Fix

// Watch sends the position once and closes the channel when ctx ends.
func (s Static) Watch(ctx context.Context) (<-chan Fix, error) {
	ch := make(chan Fix, 1)
	fix := Fix(s)
	if fix.Time.IsZero() {
		fix.Time = time.Now()
	}
	ch <- fix
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch, nil
}
