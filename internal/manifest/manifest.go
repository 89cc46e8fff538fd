package manifest

import (
	"fmt"
	"time"

	"ufdr/internal/blobstore"
	"ufdr/internal/jsonl"
	"ufdr/internal/timestamp"
)

// Entry is one line of manifest.jsonl.
type Entry struct {
	BlobID            string   `json:"blob_id"`
	CaseID            string   `json:"case_id"`
	OrigPath          string   `json:"orig_path"`
	BlobPath          string   `json:"blob_path"`
	SHA256            string   `json:"sha256"`
	SizeBytes         int64    `json:"size_bytes"`
	MtimeUTC          string   `json:"mtime_utc"`
	RelatedMessageIDs []string `json:"related_message_ids"`
}

// NewEntry builds an entry for a stored blob. origPath is the
// slash-separated path relative to the case raw directory.
func NewEntry(caseID, origPath string, ref blobstore.Ref, mtime time.Time) Entry {
	return Entry{
		BlobID:            ref.SHA256,
		CaseID:            caseID,
		OrigPath:          origPath,
		BlobPath:          ref.Name(),
		SHA256:            ref.SHA256,
		SizeBytes:         ref.SizeBytes,
		MtimeUTC:          timestamp.Format(mtime.Truncate(time.Second)),
		RelatedMessageIDs: []string{},
	}
}

// Ledger accumulates manifest entries keyed by SHA-256.
type Ledger struct {
	order   []*Entry
	bySHA   map[string]*Entry
	related map[string]map[string]struct{}
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		bySHA:   make(map[string]*Entry),
		related: make(map[string]map[string]struct{}),
	}
}

// Reference records that msgID points at the blob described by entry. The
// first reference seeds the entry; later ones only extend its message set.
func (l *Ledger) Reference(entry Entry, msgID string) {
	existing, ok := l.bySHA[entry.SHA256]
	if !ok {
		existing = l.insert(entry)
	}
	if msgID == "" {
		return
	}
	seen := l.related[entry.SHA256]
	if _, dup := seen[msgID]; dup {
		return
	}
	seen[msgID] = struct{}{}
	existing.RelatedMessageIDs = append(existing.RelatedMessageIDs, msgID)
}

// Orphan registers media that no message referenced. It reports whether a
// new entry was added.
func (l *Ledger) Orphan(entry Entry) bool {
	if _, ok := l.bySHA[entry.SHA256]; ok {
		return false
	}
	l.insert(entry)
	return true
}

// Lookup returns the entry for a digest.
func (l *Ledger) Lookup(sha256 string) (Entry, bool) {
	e, ok := l.bySHA[sha256]
	if !ok {
		return Entry{}, false
	}
	return cloneEntry(*e), true
}

// Len returns the number of distinct blobs.
func (l *Ledger) Len() int {
	return len(l.order)
}

// Entries returns copies of all entries in first-sighting order.
func (l *Ledger) Entries() []Entry {
	out := make([]Entry, 0, len(l.order))
	for _, e := range l.order {
		out = append(out, cloneEntry(*e))
	}
	return out
}

// Write replaces path with the ledger contents.
func (l *Ledger) Write(path string) error {
	w, err := jsonl.Create(path)
	if err != nil {
		return fmt.Errorf("create manifest: %w", err)
	}
	for _, e := range l.order {
		if err := w.Write(e); err != nil {
			_ = w.Close()
			return fmt.Errorf("write manifest entry %s: %w", e.SHA256, err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close manifest: %w", err)
	}
	return nil
}

func (l *Ledger) insert(entry Entry) *Entry {
	e := cloneEntry(entry)
	seen := make(map[string]struct{}, len(e.RelatedMessageIDs))
	kept := e.RelatedMessageIDs[:0]
	for _, id := range e.RelatedMessageIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		kept = append(kept, id)
	}
	e.RelatedMessageIDs = kept
	l.bySHA[e.SHA256] = &e
	l.related[e.SHA256] = seen
	l.order = append(l.order, &e)
	return &e
}

func cloneEntry(e Entry) Entry {
	ids := make([]string, len(e.RelatedMessageIDs))
	copy(ids, e.RelatedMessageIDs)
	e.RelatedMessageIDs = ids
	return e
}
