//go:build !cgo || purego
// +build !cgo purego

package repostore

// This file is compiled when building without CGO or with the purego tag.
// modernc.org/sqlite is a pure Go translation of SQLite: no C compiler
// required, suitable for cross-compilation and development.
//
// Build command:
//   CGO_ENABLED=0 go build -tags "purego" ./...

import (
	_ "modernc.org/sqlite"
)

const (
	// DriverName is the SQLite driver to use
	DriverName = "sqlite"

	// BuildMode describes the current build configuration
	BuildMode = "purego"
)
