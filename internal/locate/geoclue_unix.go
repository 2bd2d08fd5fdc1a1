//go:build linux || freebsd || openbsd || netbsd || dragonfly

package locate

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/example/mapnotes/internal/geo"
)

const (
	geoclueService    = "org.freedesktop.GeoClue2"
	geoclueManager    = dbus.ObjectPath("/org/freedesktop/GeoClue2/Manager")
	clientInterface   = "org.freedesktop.GeoClue2.Client"
	locationInterface = "org.freedesktop.GeoClue2.Location"
)

// Accuracy levels understood by GeoClue.
const (
	AccuracyCity         uint32 = 4
	AccuracyNeighborhood uint32 = 5
	AccuracyStreet       uint32 = 6
	AccuracyExact        uint32 = 8
)

// GeoClue reads positions from the GeoClue2 service on the system bus.
type GeoClue struct {
	DesktopID string
	// Threshold in meters below which movements are not reported.
	Threshold uint32
	Accuracy  uint32
}

// NewGeoClue returns a client asking for street level positions.
func NewGeoClue(desktopID string) *GeoClue {
	return &GeoClue{DesktopID: desktopID, Accuracy: AccuracyExact}
}

// Watch starts a GeoClue client and streams its location updates.
func (g *GeoClue) Watch(ctx context.Context) (<-chan Fix, error) {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, fmt.Errorf("%w: dbus connect: %v", ErrUnavailable, err)
	}

	var clientPath dbus.ObjectPath
	manager := conn.Object(geoclueService, geoclueManager)
	if err := manager.CallWithContext(ctx, geoclueService+".Manager.GetClient", 0).Store(&clientPath); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: get client: %v", ErrUnavailable, err)
	}
	client := conn.Object(geoclueService, clientPath)
	props := map[string]any{
		"DesktopId":              g.DesktopID,
		"DistanceThreshold":      g.Threshold,
		"RequestedAccuracyLevel": g.Accuracy,
	}
	for name, value := range props {
		if err := client.SetProperty(clientInterface+"."+name, dbus.MakeVariant(value)); err != nil {
			conn.Close()
			return nil, fmt.Errorf("geoclue set %s: %w", name, err)
		}
	}

	sigc := make(chan *dbus.Signal, 4)
	conn.Signal(sigc)
	if err := conn.AddMatchSignal(
		dbus.WithMatchObjectPath(clientPath),
		dbus.WithMatchInterface(clientInterface),
		dbus.WithMatchMember("LocationUpdated"),
	); err != nil {
		conn.Close()
		return nil, fmt.Errorf("geoclue subscribe: %w", err)
	}
	if err := client.CallWithContext(ctx, clientInterface+".Start", 0).Err; err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: start: %v", ErrUnavailable, err)
	}

	fixes := make(chan Fix, 1)
	go func() {
		defer close(fixes)
		defer conn.Close()
		defer client.Call(clientInterface+".Stop", 0)
		for {
			select {
			case <-ctx.Done():
				return
			case sig, ok := <-sigc:
				if !ok {
					return
				}
				if sig.Path != clientPath || sig.Name != clientInterface+".LocationUpdated" || len(sig.Body) < 2 {
					continue
				}
				path, ok := sig.Body[1].(dbus.ObjectPath)
				if !ok {
					continue
				}
				fix, err := readLocation(conn, path)
				if err != nil {
					log.Printf("geoclue: %v", err)
					continue
				}
				select {
				case fixes <- fix:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return fixes, nil
}

func readLocation(conn *dbus.Conn, path dbus.ObjectPath) (Fix, error) {
	var props map[string]dbus.Variant
	obj := conn.Object(geoclueService, path)
	if err := obj.Call("org.freedesktop.DBus.Properties.GetAll", 0, locationInterface).Store(&props); err != nil {
		return Fix{}, fmt.Errorf("read location %s: %w", path, err)
	}
	return fixFromProperties(props)
}

// fixFromProperties decodes the properties of a GeoClue Location object.
func fixFromProperties(props map[string]dbus.Variant) (Fix, error) {
	lat, ok := props["Latitude"].Value().(float64)
	if !ok {
		return Fix{}, fmt.Errorf("location without latitude")
	}
	lon, ok := props["Longitude"].Value().(float64)
	if !ok {
		return Fix{}, fmt.Errorf("location without longitude")
	}
	fix := Fix{Coord: geo.Coord{Lat: lat, Lon: lon}, Time: time.Now()}
	if acc, ok := props["Accuracy"].Value().(float64); ok && acc > 0 {
		fix.Accuracy = acc
	}
	// Timestamp is a (seconds, microseconds) pair.
	if ts, ok := props["Timestamp"].Value().([]any); ok && len(ts) == 2 {
		sec, okSec := ts[0].(uint64)
		usec, okUsec := ts[1].(uint64)
		if okSec && okUsec && sec > 0 {
			fix.Time = time.Unix(int64(sec), int64(usec)*int64(time.Microsecond))
		}
	}
	return fix, nil
}
