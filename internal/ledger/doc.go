// Package ledger persists a history of ingestion runs in SQLite.
//
// Each completed or failed run is recorded with its counts and timing so
// operators can audit when a case was ingested and what it produced. The
// ledger is advisory: the pipeline's outputs on disk remain the source of
// truth, and callers treat ledger failures as non-fatal.
//
// Schema changes ship as numbered files under migrations/ and are applied
// in order inside a single transaction on Open.
package ledger
