package manifest

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"ufdr/internal/blobstore"
)

func entryFor(sha, orig string) Entry {
	ref := blobstore.Ref{SHA256: sha, SizeBytes: 3, Ext: ".jpg"}
	return NewEntry("case-1", orig, ref, time.Date(2024, 1, 2, 3, 4, 5, 600, time.FixedZone("x", 3600)))
}

func TestNewEntry(t *testing.T) {
	e := entryFor("abc", "media/IMG_001.jpg")
	if e.BlobID != "abc" || e.SHA256 != "abc" {
		t.Fatalf("ids not set: %+v", e)
	}
	if e.BlobPath != "abc.jpg" {
		t.Fatalf("BlobPath = %s", e.BlobPath)
	}
	if e.MtimeUTC != "2024-01-02T02:04:05Z" {
		t.Fatalf("MtimeUTC = %s", e.MtimeUTC)
	}
	if e.RelatedMessageIDs == nil || len(e.RelatedMessageIDs) != 0 {
		t.Fatalf("expected empty related list, got %v", e.RelatedMessageIDs)
	}
}

func TestReferenceIsAdditive(t *testing.T) {
	l := NewLedger()
	l.Reference(entryFor("abc", "media/a.jpg"), "msg-0001")
	l.Reference(entryFor("abc", "media/b.jpg"), "msg-0002")
	l.Reference(entryFor("abc", "media/a.jpg"), "msg-0001")

	if l.Len() != 1 {
		t.Fatalf("Len = %d, want 1", l.Len())
	}
	e, ok := l.Lookup("abc")
	if !ok {
		t.Fatal("entry missing")
	}
	if !reflect.DeepEqual(e.RelatedMessageIDs, []string{"msg-0001", "msg-0002"}) {
		t.Fatalf("related = %v", e.RelatedMessageIDs)
	}
	if e.OrigPath != "media/a.jpg" {
		t.Fatalf("first sighting should win orig_path, got %s", e.OrigPath)
	}
}

func TestOrphanIsFirstSeenWins(t *testing.T) {
	l := NewLedger()
	l.Reference(entryFor("abc", "media/a.jpg"), "msg-0001")
	if l.Orphan(entryFor("abc", "media/dup.jpg")) {
		t.Fatal("orphan should not replace a referenced entry")
	}
	if !l.Orphan(entryFor("def", "media/orphan.jpg")) {
		t.Fatal("new orphan should be added")
	}
	if l.Orphan(entryFor("def", "media/orphan2.jpg")) {
		t.Fatal("second orphan with same digest should be ignored")
	}

	entries := l.Entries()
	if len(entries) != 2 {
		t.Fatalf("entries = %d", len(entries))
	}
	if entries[0].SHA256 != "abc" || entries[1].SHA256 != "def" {
		t.Fatalf("order = %s, %s", entries[0].SHA256, entries[1].SHA256)
	}
	if !reflect.DeepEqual(entries[0].RelatedMessageIDs, []string{"msg-0001"}) {
		t.Fatalf("referenced entry mutated: %v", entries[0].RelatedMessageIDs)
	}
	if entries[1].OrigPath != "media/orphan.jpg" || len(entries[1].RelatedMessageIDs) != 0 {
		t.Fatalf("unexpected orphan entry %+v", entries[1])
	}
}

func TestReferenceAfterOrphanExtends(t *testing.T) {
	l := NewLedger()
	l.Orphan(entryFor("abc", "media/a.jpg"))
	l.Reference(entryFor("abc", "media/a.jpg"), "msg-0003")
	e, _ := l.Lookup("abc")
	if !reflect.DeepEqual(e.RelatedMessageIDs, []string{"msg-0003"}) {
		t.Fatalf("related = %v", e.RelatedMessageIDs)
	}
}

func TestEntriesAreCopies(t *testing.T) {
	l := NewLedger()
	l.Reference(entryFor("abc", "media/a.jpg"), "msg-0001")
	entries := l.Entries()
	entries[0].RelatedMessageIDs[0] = "mutated"
	e, _ := l.Lookup("abc")
	if e.RelatedMessageIDs[0] != "msg-0001" {
		t.Fatal("ledger state leaked through Entries")
	}
}

func TestWriteAndRead(t *testing.T) {
	l := NewLedger()
	l.Reference(entryFor("abc", "media/a.jpg"), "msg-0001")
	l.Orphan(entryFor("def", "media/b.jpg"))

	path := filepath.Join(t.TempDir(), "manifest.jsonl")
	if err := l.Write(path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"related_message_ids":[]`) {
		t.Fatalf("orphan should serialize an empty list: %s", data)
	}

	// Append a corrupt line; Read should skip it.
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString("{broken\n"); err != nil {
		t.Fatal(err)
	}
	_ = f.Close()

	entries, skipped, err := Read(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 || len(skipped) != 1 {
		t.Fatalf("entries=%d skipped=%d", len(entries), len(skipped))
	}
	if !reflect.DeepEqual(entries, l.Entries()) {
		t.Fatalf("round trip mismatch:\n%+v\n%+v", entries, l.Entries())
	}
}
