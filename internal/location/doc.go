// Package location provides the spatial model for Argus: Sites contain
// Spaces (lobbies, server rooms, loading docks) where devices and alarm
// zones live.
//
// The package provides a Repository interface with a SQLite implementation
// for querying spaces by site membership.
//
// # Thread Safety
//
// SQLiteRepository is safe for concurrent use from multiple goroutines
// (SQLite WAL mode + connection pooling).
package location
