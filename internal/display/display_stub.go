//go:build !(linux || freebsd || openbsd || netbsd || dragonfly)

package display

import "errors"

type stubBackend struct{}

func newBackend() lister { return stubBackend{} }

func (stubBackend) List() ([]Monitor, error) {
	return nil, errors.New("monitor listing is not supported on this platform")
}
