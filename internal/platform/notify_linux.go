//go:build linux

package platform

import (
	"github.com/godbus/dbus/v5"
)

const (
	notifyDest   = "org.freedesktop.Notifications"
	notifyPath   = dbus.ObjectPath("/org/freedesktop/Notifications")
	notifyMethod = notifyDest + ".Notify"

	// defaultIcon is a freedesktop icon name used without a preview.
	defaultIcon = "mark-location"
)

// Notify posts a notification to the session's notification daemon.
func Notify(title, body string, opts Options) error {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return err
	}
	defer conn.Close()

	icon := opts.IconPath
	if icon == "" {
		icon = defaultIcon
	}
	hints := map[string]dbus.Variant{
		"category":      dbus.MakeVariant("transfer.complete"),
		"desktop-entry": dbus.MakeVariant(AppName),
		"urgency":       dbus.MakeVariant(byte(0)),
	}
	return conn.Object(notifyDest, notifyPath).Call(notifyMethod, 0,
		AppName, uint32(0), icon, title, body, []string{}, hints,
		int32(opts.timeout().Milliseconds())).Err
}
