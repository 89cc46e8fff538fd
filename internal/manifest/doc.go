// Package manifest tracks the blob manifest for a case.
//
// A Ledger holds one Entry per distinct SHA-256 in first-sighting order.
// Attachment references are additive: every message that points at a blob
// is appended to related_message_ids exactly once, no matter how many times
// the same bytes appear across messages. Orphan media registers an entry
// only when no entry exists yet and never mutates one that does.
//
// The ledger is written once per run as manifest.jsonl and read back with
// the tolerant JSONL decoder, so a truncated or hand-edited manifest still
// yields its well-formed entries.
package manifest
