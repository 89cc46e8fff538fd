package verify

import "fmt"

// MissingBlobError reports a manifest entry whose blob file does not exist.
type MissingBlobError struct {
	Path   string
	SHA256 string
}

func (e *MissingBlobError) Error() string {
	return fmt.Sprintf("missing blob %s", e.Path)
}

// HashMismatchError reports a blob whose content no longer matches its digest.
type HashMismatchError struct {
	Path string
	Want string
	Got  string
}

func (e *HashMismatchError) Error() string {
	return fmt.Sprintf("hash mismatch for %s: manifest %s, actual %s", e.Path, e.Want, e.Got)
}

// SizeMismatchError reports a blob whose size differs from the manifest.
type SizeMismatchError struct {
	Path string
	Want int64
	Got  int64
}

func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("size mismatch for %s: manifest %d bytes, actual %d bytes", e.Path, e.Want, e.Got)
}

// InvalidEntryError reports a manifest entry that cannot name a blob.
type InvalidEntryError struct {
	BlobID string
	Reason string
}

func (e *InvalidEntryError) Error() string {
	return fmt.Sprintf("invalid manifest entry %q: %s", e.BlobID, e.Reason)
}
