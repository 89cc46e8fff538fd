// Package unpack materializes an extraction container into a case raw
// directory.
//
// Directory inputs are merge-copied. Zip containers are extracted entry by
// entry; entries that would land outside the raw directory, and symlink
// entries, are rejected and reported instead of written.
package unpack

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"ufdr/internal/fileutil"
	"ufdr/internal/logging"
)

// ErrArchive is matched by ArchiveError.
var ErrArchive = errors.New("unreadable archive")

// ArchiveError reports a container that could not be opened or read.
type ArchiveError struct {
	Path string
	Err  error
}

func (e *ArchiveError) Error() string {
	return fmt.Sprintf("archive %s: %v", e.Path, e.Err)
}

func (e *ArchiveError) Unwrap() error {
	return e.Err
}

func (e *ArchiveError) Is(target error) bool {
	return target == ErrArchive
}

// Result describes what Unpack wrote.
type Result struct {
	Files    int
	Rejected []string
}

// Unpack copies or extracts input into rawDir, creating rawDir if needed.
func Unpack(ctx context.Context, input, rawDir string, logger *slog.Logger) (Result, error) {
	logger = logging.NewComponentLogger(logger, "unpack")
	result := Result{Rejected: []string{}}

	info, err := os.Stat(input)
	if err != nil {
		return result, fmt.Errorf("stat input: %w", err)
	}
	if info.IsDir() {
		nested, err := fileutil.IsWithin(input, rawDir)
		if err != nil {
			return result, fmt.Errorf("resolve raw directory: %w", err)
		}
		if nested {
			return result, fmt.Errorf("raw directory %s is inside input %s: %w", rawDir, input, fileutil.ErrDestinationInsideSource)
		}
	}
	if err := os.MkdirAll(rawDir, 0o755); err != nil {
		return result, fmt.Errorf("create raw directory: %w", err)
	}

	if info.IsDir() {
		n, err := fileutil.CopyTree(input, rawDir, func(rel string) {
			result.Rejected = append(result.Rejected, rel)
			logging.WarnWithContext(logger, "skipping non-regular file", "unpack_skip",
				logging.String("entry", rel),
				logging.String(logging.FieldErrorHint, "symlinks and devices are not copied into the case"),
				logging.String(logging.FieldImpact, "entry absent from raw directory"),
			)
		})
		result.Files = n
		if err != nil {
			return result, fmt.Errorf("copy input directory: %w", err)
		}
		return result, nil
	}

	return extractZip(ctx, input, rawDir, logger, result)
}

func extractZip(ctx context.Context, input, rawDir string, logger *slog.Logger, result Result) (Result, error) {
	zr, err := zip.OpenReader(input)
	if err != nil && !(zr != nil && errors.Is(err, zip.ErrInsecurePath)) {
		return result, &ArchiveError{Path: input, Err: err}
	}
	defer zr.Close()

	for _, entry := range zr.File {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		rel, reason := entryPath(entry)
		if reason != "" {
			result.Rejected = append(result.Rejected, entry.Name)
			logging.WarnWithContext(logger, "rejecting archive entry", "unpack_reject",
				logging.String("entry", entry.Name),
				logging.String("reason", reason),
				logging.String(logging.FieldErrorHint, "inspect the container; it may be crafted or corrupted"),
				logging.String(logging.FieldImpact, "entry not extracted"),
			)
			continue
		}
		target := filepath.Join(rawDir, filepath.FromSlash(rel))
		if entry.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return result, fmt.Errorf("create %s: %w", rel, err)
			}
			continue
		}
		if err := writeEntry(entry, target); err != nil {
			var archErr *ArchiveError
			if errors.As(err, &archErr) {
				archErr.Path = input
			}
			return result, err
		}
		result.Files++
	}
	logger.Debug("archive extracted",
		logging.Int("files", result.Files),
		logging.Int("rejected", len(result.Rejected)),
	)
	return result, nil
}

// entryPath returns the cleaned slash path for entry, or a rejection reason.
func entryPath(entry *zip.File) (string, string) {
	if entry.Mode()&fs.ModeSymlink != 0 {
		return "", "symlink entry"
	}
	name := strings.ReplaceAll(entry.Name, `\`, "/")
	if strings.HasPrefix(name, "/") || filepath.VolumeName(name) != "" {
		return "", "absolute path"
	}
	rel := path.Clean(name)
	if rel == "." {
		return "", "empty path"
	}
	if !fs.ValidPath(rel) {
		return "", "path escapes extraction root"
	}
	return rel, ""
}

func writeEntry(entry *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create parent for %s: %w", entry.Name, err)
	}
	src, err := entry.Open()
	if err != nil {
		return &ArchiveError{Err: fmt.Errorf("open entry %s: %w", entry.Name, err)}
	}
	defer src.Close()

	dst, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", entry.Name, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return &ArchiveError{Err: fmt.Errorf("read entry %s: %w", entry.Name, err)}
	}
	if err := dst.Close(); err != nil {
		return fmt.Errorf("close %s: %w", entry.Name, err)
	}
	if mod := entry.Modified; !mod.IsZero() {
		_ = os.Chtimes(target, mod, mod)
	}
	return nil
}
