// Package repostore persists repository registrations and per-file
// content hashes in SQLite.
//
// The database opens with either the cgo driver (mattn/go-sqlite3) or
// the pure-Go driver (modernc.org/sqlite) depending on build tags.
// Schema migrations are embedded SQL files applied in semver order.
package repostore
