//go:build cgo && !purego
// +build cgo,!purego

package repostore

// This file is compiled for CGO builds. The mattn driver links the C
// SQLite library and is the faster option for production deployments.
//
// Build command:
//   CGO_ENABLED=1 go build ./...

import (
	_ "github.com/mattn/go-sqlite3"
)

const (
	// DriverName is the SQLite driver to use
	DriverName = "sqlite3"

	// BuildMode describes the current build configuration
	BuildMode = "cgo"
)
