package verify_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"ufdr/internal/blobstore"
	"ufdr/internal/manifest"
	"ufdr/internal/verify"
)

type fixture struct {
	manifest string
	blobs    string
	entries  []manifest.Entry
}

func newFixture(t *testing.T, files map[string]string) fixture {
	t.Helper()
	base := t.TempDir()
	src := filepath.Join(base, "src")
	if err := os.MkdirAll(src, 0o755); err != nil {
		t.Fatal(err)
	}
	store, err := blobstore.New(filepath.Join(base, "blobs"), 0)
	if err != nil {
		t.Fatal(err)
	}
	ledger := manifest.NewLedger()
	for _, name := range []string{"a.jpg", "b.png", "c.txt"} {
		body, ok := files[name]
		if !ok {
			continue
		}
		path := filepath.Join(src, name)
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
		ref, err := store.Ingest(path)
		if err != nil {
			t.Fatal(err)
		}
		ledger.Orphan(manifest.NewEntry("case-v", "media/"+name, ref, time.Unix(0, 0)))
	}
	path := filepath.Join(base, "parsed", "blobs_manifest.jsonl")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := ledger.Write(path); err != nil {
		t.Fatal(err)
	}
	return fixture{manifest: path, blobs: store.Dir(), entries: ledger.Entries()}
}

func TestVerifyCleanManifest(t *testing.T) {
	fx := newFixture(t, map[string]string{"a.jpg": "alpha", "b.png": "bravo", "c.txt": "charlie"})
	report, err := verify.Verify(context.Background(), fx.manifest, fx.blobs, verify.Options{Workers: 2})
	if err != nil {
		t.Fatal(err)
	}
	if !report.OK() {
		t.Fatalf("expected clean report, got %+v", report.Findings)
	}
	if report.Checked != 3 || report.Verified != 3 {
		t.Fatalf("checked=%d verified=%d", report.Checked, report.Verified)
	}
}

func TestVerifyDetectsTamperedBlob(t *testing.T) {
	fx := newFixture(t, map[string]string{"a.jpg": "alpha", "b.png": "bravo"})
	target := filepath.Join(fx.blobs, fx.entries[1].BlobPath)
	if err := os.WriteFile(target, []byte("BRAVO"), 0o644); err != nil {
		t.Fatal(err)
	}

	report, err := verify.Verify(context.Background(), fx.manifest, fx.blobs, verify.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Findings) != 1 || report.HashMismatches() != 1 {
		t.Fatalf("findings = %+v", report.Findings)
	}
	var mismatch *verify.HashMismatchError
	if !errors.As(report.Findings[0].Err, &mismatch) {
		t.Fatalf("unexpected finding %v", report.Findings[0].Err)
	}
	if mismatch.Want != fx.entries[1].SHA256 {
		t.Fatalf("Want = %s", mismatch.Want)
	}
	if report.Verified != 1 {
		t.Fatalf("Verified = %d", report.Verified)
	}
}

func TestVerifyDetectsSizeMismatch(t *testing.T) {
	fx := newFixture(t, map[string]string{"a.jpg": "alpha"})
	entry := fx.entries[0]
	entry.SizeBytes = 99
	l := manifest.NewLedger()
	l.Orphan(entry)
	if err := l.Write(fx.manifest); err != nil {
		t.Fatal(err)
	}

	report, err := verify.Verify(context.Background(), fx.manifest, fx.blobs, verify.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if report.SizeMismatches() != 1 {
		t.Fatalf("findings = %+v", report.Findings)
	}
}

func TestVerifyReportsMissingInManifestOrder(t *testing.T) {
	fx := newFixture(t, map[string]string{"a.jpg": "alpha", "b.png": "bravo", "c.txt": "charlie"})
	for _, i := range []int{0, 2} {
		if err := os.Remove(filepath.Join(fx.blobs, fx.entries[i].BlobPath)); err != nil {
			t.Fatal(err)
		}
	}

	report, err := verify.Verify(context.Background(), fx.manifest, fx.blobs, verify.Options{Workers: 8})
	if err != nil {
		t.Fatal(err)
	}
	if report.Missing() != 2 {
		t.Fatalf("findings = %+v", report.Findings)
	}
	if report.Findings[0].Entry.BlobID != fx.entries[0].BlobID || report.Findings[1].Entry.BlobID != fx.entries[2].BlobID {
		t.Fatal("findings not in manifest order")
	}
}

func TestVerifySkipsMalformedLines(t *testing.T) {
	fx := newFixture(t, map[string]string{"a.jpg": "alpha"})
	f, err := os.OpenFile(fx.manifest, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString("not json\n"); err != nil {
		t.Fatal(err)
	}
	_ = f.Close()

	report, err := verify.Verify(context.Background(), fx.manifest, fx.blobs, verify.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if report.Verified != 1 || len(report.Skipped) != 1 {
		t.Fatalf("verified=%d skipped=%d", report.Verified, len(report.Skipped))
	}
	if report.OK() {
		t.Fatal("skipped lines should mark the report as not OK")
	}
}

func TestVerifyRejectsInvalidDigest(t *testing.T) {
	fx := newFixture(t, map[string]string{"a.jpg": "alpha"})
	entry := fx.entries[0]
	entry.SHA256 = "../../etc/passwd"
	l := manifest.NewLedger()
	l.Orphan(entry)
	if err := l.Write(fx.manifest); err != nil {
		t.Fatal(err)
	}

	report, err := verify.Verify(context.Background(), fx.manifest, fx.blobs, verify.Options{})
	if err != nil {
		t.Fatal(err)
	}
	var invalid *verify.InvalidEntryError
	if len(report.Findings) != 1 || !errors.As(report.Findings[0].Err, &invalid) {
		t.Fatalf("findings = %+v", report.Findings)
	}
}

func TestVerifyMissingManifest(t *testing.T) {
	_, err := verify.Verify(context.Background(), filepath.Join(t.TempDir(), "nope.jsonl"), t.TempDir(), verify.Options{})
	if err == nil {
		t.Fatal("expected error for missing manifest")
	}
}

func TestVerifyHonorsCancellation(t *testing.T) {
	fx := newFixture(t, map[string]string{"a.jpg": "alpha"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := verify.Verify(ctx, fx.manifest, fx.blobs, verify.Options{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
}

func TestBlobLocationUsesBlobPathExtension(t *testing.T) {
	entry := manifest.Entry{
		BlobID:   "x",
		SHA256:   "2CF24DBA5FB0A30E26E83B2AC5B9E29E1B161E5C1FA7425E73043362938B9824",
		BlobPath: "blobs/2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824.jpg",
	}
	got, err := verify.BlobLocation(entry, "/cases/c1/blobs")
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join("/cases/c1/blobs", "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824.jpg")
	if got != want {
		t.Fatalf("got %s want %s", got, want)
	}
}
