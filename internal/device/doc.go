// Package device holds the canonical device model and the normalization
// pipeline that produces it.
//
// Vendor payloads arrive with heterogeneous type and state vocabularies.
// Two pure mapping components translate them into the canonical shape the
// rest of the system consumes:
//
//   - MapDeviceType resolves (connector category, raw vendor type) to a
//     standardized type/subtype. It is total: unknown pairs resolve to a
//     documented fallback instead of erroring.
//   - RawToIntermediate / IntermediateToDisplay canonicalize vendor state
//     tokens in two stages, so the display mapping stays vendor-agnostic.
//
// The SQLite repository persists device rows keyed on the
// (connector_id, device_id) uniqueness constraint, upserted by the sync
// orchestrator. Enriched reads join connector metadata, Piko server
// details, and bidirectional camera-association counts.
package device
