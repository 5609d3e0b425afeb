// Package statestore holds the in-memory per-device state map that feeds
// UI reads and alarm-zone trigger evaluation.
//
// The store is fed from two directions: a full-replacement snapshot after
// each device sync, and incremental merges from live standardized events.
// Sync replaces static fields (name, vendor, type info) wholesale but
// never clobbers display state learned more recently from live traffic;
// events update display state and event-history pointers but leave static
// fields alone.
//
// Reads return copies, so callers never observe a partially-updated entry.
// All methods are safe for concurrent use.
package statestore
