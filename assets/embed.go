// Package assets bundles the data shipped inside the mapnotes binary.
package assets

import (
	_ "embed"
)

// seed is the annotation document a new data file starts from. It
// predates label ids, so loading it exercises the version upgrade.
//
//go:embed map-data.json
var seed []byte

// SeedData returns a copy of the bundled annotation document.
func SeedData() []byte {
	return append([]byte(nil), seed...)
}
