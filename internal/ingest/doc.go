// Package ingest sequences a full ingestion run for one case:
//
//	prepare workspace -> lock case -> unpack -> locate report -> parse
//	-> messages (+ blobs, manifest) -> contacts -> calls -> manifest -> summary
//
// Runs are deterministic in report document order. parsed/*.jsonl and the
// manifest are rewritten from scratch on every run while blobs/ accumulates,
// so re-ingesting the same container reproduces identical outputs without
// writing any new blob files.
//
// A run fails on unpack errors, a missing or unparseable report, case lock
// contention, or output I/O errors. Per-record problems such as missing
// attachments are logged and counted in the Summary instead.
package ingest
