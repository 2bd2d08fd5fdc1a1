//go:build (linux || freebsd || openbsd || netbsd || dragonfly) && cgo

package clipboard

import (
	"golang.design/x/clipboard"
)

type nativeBackend struct{}

func newBackend() (backend, error) {
	if err := clipboard.Init(); err != nil {
		return nil, err
	}
	return nativeBackend{}, nil
}

func format(k kind) clipboard.Format {
	if k == kindPNG {
		return clipboard.FmtImage
	}
	return clipboard.FmtText
}

func (nativeBackend) write(k kind, data []byte) error {
	clipboard.Write(format(k), data)
	return nil
}

func (nativeBackend) read(k kind) ([]byte, error) {
	return clipboard.Read(format(k)), nil
}
