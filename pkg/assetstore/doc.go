// Package assetstore provides the durable, per-device asset store for the
// xianyi exhibit guide.
//
// # Overview
//
// The store persists one record per logical asset key on the visitor's own
// device, surviving restarts. Records are a tagged variant: raw binary
// content (uploaded image or narration audio payloads) or a plain string
// (a previously resolved remote URL). The tag is decided once at write time
// and carried through every read and transport-encode path, so no consumer
// ever has to probe a payload to learn what it is.
//
// # Keys
//
// Asset keys are stable strings shared between the store, the bundled
// fallback file layout, and the sync bundle:
//
//	poster                      entry poster image
//	{relicID}                   relic card image, e.g. "relic7"
//	audio_{relicID}_{persona}   narration audio, e.g. "audio_relic7_探索者"
//
// # Semantics
//
// At most one record exists per key; Put overwrites. Absence is an expected
// state, reported as a boolean rather than an error. Delete is idempotent.
// A Put followed by a Get on the same key observes the write. The store is
// safe for concurrent readers alongside a writer; no cross-key transactions
// are offered or needed.
package assetstore
