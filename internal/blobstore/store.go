package blobstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ufdr/internal/fileutil"
)

// Ref identifies a stored blob.
type Ref struct {
	SHA256    string
	SizeBytes int64
	// Ext is the extension of the stored file. Content first seen under
	// one extension keeps it for every later sighting.
	Ext string
	// Created is true when this call wrote the blob file.
	Created bool
}

// Name returns the blob file name relative to the store root.
func (r Ref) Name() string {
	return r.SHA256 + r.Ext
}

// Store is a directory of content-addressed blobs.
type Store struct {
	dir     string
	bufSize int
}

// New opens (creating if needed) the blob directory. bufSize bounds the
// streaming buffer; zero selects fileutil.DefaultBufferSize.
func New(dir string, bufSize int) (*Store, error) {
	if dir == "" {
		return nil, errors.New("blob directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create blob directory: %w", err)
	}
	if bufSize <= 0 {
		bufSize = fileutil.DefaultBufferSize
	}
	return &Store{dir: dir, bufSize: bufSize}, nil
}

// Dir returns the store root.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the absolute location of a blob name inside the store.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// Ingest hashes the file at path and copies it into the store unless a blob
// with the same digest already exists, whatever its extension.
func (s *Store) Ingest(path string) (Ref, error) {
	sum, size, err := fileutil.HashFile(path, s.bufSize)
	if err != nil {
		return Ref{}, fmt.Errorf("hash %s: %w", path, err)
	}
	ref := Ref{SHA256: sum, SizeBytes: size, Ext: filepath.Ext(path)}

	ext, found, err := s.lookup(sum)
	if err != nil {
		return Ref{}, err
	}
	if found {
		ref.Ext = ext
		return ref, nil
	}

	dst := s.Path(ref.Name())
	if err := fileutil.CopyFileAtomic(path, dst, sum, s.bufSize); err != nil {
		return Ref{}, fmt.Errorf("store blob %s: %w", ref.Name(), err)
	}
	ref.Created = true
	return ref, nil
}

// lookup finds a stored blob for digest and returns its extension.
func (s *Store) lookup(digest string) (string, bool, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, digest+"*"))
	if err != nil {
		return "", false, fmt.Errorf("scan blobs for %s: %w", digest, err)
	}
	for _, match := range matches {
		ext := strings.TrimPrefix(filepath.Base(match), digest)
		if ext != "" && (!strings.HasPrefix(ext, ".") || strings.Contains(ext[1:], ".")) {
			continue
		}
		info, err := os.Stat(match)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return "", false, fmt.Errorf("stat blob %s: %w", filepath.Base(match), err)
		}
		if info.Mode().IsRegular() {
			return ext, true, nil
		}
	}
	return "", false, nil
}

// Has reports whether a blob name is present in the store.
func (s *Store) Has(name string) bool {
	_, err := os.Stat(s.Path(name))
	return err == nil
}
