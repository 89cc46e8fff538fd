package fileutil

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "dst.txt")

	content := []byte("hello world")
	if err := os.WriteFile(src, content, 0o644); err != nil {
		t.Fatal(err)
	}

	if err := CopyFile(src, dst); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(content) {
		t.Fatalf("content mismatch: got %q, want %q", got, content)
	}
}

func TestHashFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hello.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	// A tiny buffer forces several reads.
	sum, size, err := HashFile(path, 2)
	if err != nil {
		t.Fatal(err)
	}
	if sum != "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824" {
		t.Fatalf("unexpected digest %s", sum)
	}
	if size != 5 {
		t.Fatalf("size = %d, want 5", size)
	}
}

func TestHashFileMissing(t *testing.T) {
	if _, _, err := HashFile(filepath.Join(t.TempDir(), "nope"), 0); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestCopyFileAtomic(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "out", "dst.bin")
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		t.Fatal(err)
	}

	content := []byte("verified copy test data")
	if err := os.WriteFile(src, content, 0o644); err != nil {
		t.Fatal(err)
	}
	sum, _, err := HashFile(src, 0)
	if err != nil {
		t.Fatal(err)
	}

	if err := CopyFileAtomic(src, dst, sum, 4); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(content) {
		t.Fatalf("content mismatch: got %q", got)
	}
	assertNoTempFiles(t, filepath.Dir(dst))
}

func TestCopyFileAtomicDigestMismatch(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "dst.bin")
	if err := os.WriteFile(src, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}

	err := CopyFileAtomic(src, dst, strings.Repeat("0", 64), 0)
	if !errors.Is(err, ErrDigestMismatch) {
		t.Fatalf("expected ErrDigestMismatch, got %v", err)
	}
	if _, statErr := os.Stat(dst); !os.IsNotExist(statErr) {
		t.Fatal("destination should not exist after mismatch")
	}
	assertNoTempFiles(t, dir)
}

func TestCopyFileAtomicMissingSource(t *testing.T) {
	dir := t.TempDir()
	err := CopyFileAtomic(filepath.Join(dir, "nope"), filepath.Join(dir, "dst"), "", 0)
	if err == nil {
		t.Fatal("expected error for missing source")
	}
}

func TestCopyTreeMergesAndSkipsSymlinks(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()

	if err := os.MkdirAll(filepath.Join(src, "media", "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "report.xml"), []byte("<report/>"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "media", "sub", "a.jpg"), []byte("jpg"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(filepath.Join(src, "report.xml"), filepath.Join(src, "link.xml")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	// Existing destination files are kept or overwritten, never removed.
	if err := os.WriteFile(filepath.Join(dst, "keep.txt"), []byte("keep"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dst, "report.xml"), []byte("stale"), 0o644); err != nil {
		t.Fatal(err)
	}

	var skipped []string
	n, err := CopyTree(src, dst, func(rel string) { skipped = append(skipped, rel) })
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("copied %d files, want 2", n)
	}
	if len(skipped) != 1 || skipped[0] != "link.xml" {
		t.Fatalf("skipped = %v, want [link.xml]", skipped)
	}

	got, err := os.ReadFile(filepath.Join(dst, "report.xml"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "<report/>" {
		t.Fatalf("report.xml not overwritten: %q", got)
	}
	if _, err := os.Stat(filepath.Join(dst, "keep.txt")); err != nil {
		t.Fatalf("existing file removed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dst, "media", "sub", "a.jpg")); err != nil {
		t.Fatalf("nested file missing: %v", err)
	}
	if _, err := os.Lstat(filepath.Join(dst, "link.xml")); !os.IsNotExist(err) {
		t.Fatal("symlink should not be copied")
	}
}

func assertNoTempFiles(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".tmp-") {
			t.Fatalf("leftover temp file %s", e.Name())
		}
	}
}

func TestCopyTreePreservesModTime(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	path := filepath.Join(src, "a.txt")
	if err := os.WriteFile(path, []byte("a"), 0o644); err != nil {
		t.Fatal(err)
	}
	mtime := time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC)
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatal(err)
	}
	if _, err := CopyTree(src, dst, nil); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(filepath.Join(dst, "a.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if !info.ModTime().Equal(mtime) {
		t.Fatalf("mtime = %s, want %s", info.ModTime(), mtime)
	}
}

func TestCopyTreeRejectsDestinationInsideSource(t *testing.T) {
	src := t.TempDir()
	if err := os.WriteFile(filepath.Join(src, "a.txt"), []byte("a"), 0o644); err != nil {
		t.Fatal(err)
	}
	for _, dst := range []string{src, filepath.Join(src, "out", "raw")} {
		if _, err := CopyTree(src, dst, nil); !errors.Is(err, ErrDestinationInsideSource) {
			t.Fatalf("CopyTree(%s) err = %v, want ErrDestinationInsideSource", dst, err)
		}
	}
}

func TestIsWithin(t *testing.T) {
	root := t.TempDir()
	sibling := t.TempDir()
	link := filepath.Join(sibling, "link")
	if err := os.Symlink(root, link); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
		want bool
	}{
		{"same", root, true},
		{"missing child", filepath.Join(root, "a", "b"), true},
		{"dotdot prefix name", root + "..x", false},
		{"sibling", sibling, false},
		{"through symlink", filepath.Join(link, "raw"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := IsWithin(root, tt.path)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Fatalf("IsWithin(%s, %s) = %v, want %v", root, tt.path, got, tt.want)
			}
		})
	}
}
