// Package blobstore implements a content-addressed file store keyed by
// SHA-256.
//
// Every blob lives at <dir>/<sha256><ext>, where ext is the source file's
// extension. Ingesting identical bytes twice is a no-op on disk; the second
// call only rehashes the source. New blobs are staged in a temp file inside
// the store, verified against the digest computed on the first pass, fsynced,
// and renamed into place, so concurrent ingesters of the same content never
// observe a partial blob.
package blobstore
