// Package workspace owns the on-disk layout of a case:
//
//	<output_dir>/<case_id>/raw/      unpacked input
//	<output_dir>/<case_id>/parsed/   JSONL outputs, rewritten each run
//	<output_dir>/<case_id>/blobs/    content-addressed store, append-only
//
// A Case also holds the advisory run lock (<case>/.ingest.lock) that keeps
// two ingestion runs from writing the same case at once. Independent cases
// never contend.
package workspace
