// Package verify audits a blob manifest against a blob directory.
//
// Every manifest entry is resolved to <blobs_dir>/<sha256><ext>, where ext
// comes from the entry's blob_path, and the file is rehashed. Missing files,
// digest mismatches, and size mismatches are collected as findings rather
// than returned as errors, so one bad blob never hides the rest. Hashing
// fans out over a bounded worker pool; findings keep manifest order.
//
// Verification is an offline check. Ingestion never calls it.
package verify
