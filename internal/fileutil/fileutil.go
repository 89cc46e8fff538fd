package fileutil

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DefaultBufferSize is the streaming buffer used when callers pass zero.
const DefaultBufferSize = 64 * 1024

// TempPrefix marks in-flight files written by CopyFileAtomic.
const TempPrefix = ".tmp-"

// ErrDestinationInsideSource reports a CopyTree whose destination lies in
// the tree being copied.
var ErrDestinationInsideSource = errors.New("destination is inside the source tree")

// ErrDigestMismatch reports that copied bytes did not hash to the expected digest.
var ErrDigestMismatch = errors.New("digest mismatch")

// CopyFile streams src to dst using io.Copy with default permissions (0o644).
func CopyFile(src, dst string) error {
	return CopyFileMode(src, dst, 0o644)
}

// CopyFileMode streams src to dst, setting the given file mode on dst.
func CopyFileMode(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

// HashFile streams path through SHA-256 using a buffer of bufSize bytes and
// returns the lowercase hex digest and byte count.
func HashFile(path string, bufSize int) (string, int64, error) {
	in, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer in.Close()
	return HashReader(in, bufSize)
}

// HashReader is HashFile for an already open stream.
func HashReader(r io.Reader, bufSize int) (string, int64, error) {
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}
	hasher := sha256.New()
	n, err := io.CopyBuffer(hasher, r, make([]byte, bufSize))
	if err != nil {
		return "", n, err
	}
	return hex.EncodeToString(hasher.Sum(nil)), n, nil
}

// CopyFileAtomic streams src into a temp file beside dst, verifies the copy
// against both the bytes read and wantSHA256 (when non-empty), fsyncs, and
// renames it into place. dst is never observed partially written.
func CopyFileAtomic(src, dst, wantSHA256 string, bufSize int) error {
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), TempPrefix+filepath.Base(dst)+"-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	srcHasher := sha256.New()
	dstHasher := sha256.New()
	tee := io.TeeReader(in, srcHasher)
	multi := io.MultiWriter(tmp, dstHasher)

	if _, err := io.CopyBuffer(multi, tee, make([]byte, bufSize)); err != nil {
		return err
	}
	if !bytes.Equal(srcHasher.Sum(nil), dstHasher.Sum(nil)) {
		return fmt.Errorf("copy %s: %w: file corrupted during copy", src, ErrDigestMismatch)
	}
	if wantSHA256 != "" {
		if got := hex.EncodeToString(dstHasher.Sum(nil)); got != wantSHA256 {
			return fmt.Errorf("copy %s: %w: expected %s, got %s", src, ErrDigestMismatch, wantSHA256, got)
		}
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	committed = true
	return nil
}

// CopyTree merge-copies the regular files under src into dst, overwriting
// files at the same relative path and preserving modification times.
// Symlinks and other non-regular entries are not followed; onSkip, when set,
// receives their slash-separated relative path. Returns the number of files
// copied.
func CopyTree(src, dst string, onSkip func(rel string)) (int, error) {
	nested, err := IsWithin(src, dst)
	if err != nil {
		return 0, err
	}
	if nested {
		return 0, fmt.Errorf("copy %s to %s: %w", src, dst, ErrDestinationInsideSource)
	}
	copied := 0
	err = filepath.WalkDir(src, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		switch {
		case d.IsDir():
			return os.MkdirAll(target, 0o755)
		case d.Type().IsRegular():
			if err := CopyFile(path, target); err != nil {
				return fmt.Errorf("copy %s: %w", filepath.ToSlash(rel), err)
			}
			if info, err := d.Info(); err == nil {
				_ = os.Chtimes(target, info.ModTime(), info.ModTime())
			}
			copied++
			return nil
		default:
			if onSkip != nil {
				onSkip(filepath.ToSlash(rel))
			}
			return nil
		}
	})
	return copied, err
}

// IsWithin reports whether path is root or lies beneath it once both are made
// absolute and symlinks in their existing prefixes are resolved. path need
// not exist yet.
func IsWithin(root, path string) (bool, error) {
	r, err := resolveExisting(root)
	if err != nil {
		return false, err
	}
	p, err := resolveExisting(path)
	if err != nil {
		return false, err
	}
	rel, err := filepath.Rel(r, p)
	if err != nil {
		return false, nil
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))), nil
}

// resolveExisting makes path absolute and evaluates symlinks in its longest
// existing prefix, keeping the missing remainder as written.
func resolveExisting(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	var missing []string
	for current := abs; ; {
		resolved, err := filepath.EvalSymlinks(current)
		if err == nil {
			return filepath.Join(append([]string{resolved}, missing...)...), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(current)
		if parent == current {
			return abs, nil
		}
		missing = append([]string{filepath.Base(current)}, missing...)
		current = parent
	}
}
