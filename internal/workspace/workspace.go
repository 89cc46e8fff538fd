package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
)

// Output file names under parsed/.
const (
	MessagesFile = "messages.jsonl"
	ContactsFile = "contacts.jsonl"
	CallsFile    = "calls.jsonl"
	ManifestFile = "blobs_manifest.jsonl"
	lockFile     = ".ingest.lock"
)

// ErrCaseLocked is returned when another run holds the case lock.
var ErrCaseLocked = errors.New("case is locked by another ingestion run")

// Case is the workspace for one case id.
type Case struct {
	ID     string
	Root   string
	Raw    string
	Parsed string
	Blobs  string

	lock *flock.Flock
}

// ValidateCaseID rejects ids that are empty or would not map to a single
// directory name.
func ValidateCaseID(caseID string) error {
	id := strings.TrimSpace(caseID)
	switch {
	case id == "":
		return errors.New("case id is required")
	case id != caseID:
		return fmt.Errorf("case id %q has surrounding whitespace", caseID)
	case id == "." || id == "..":
		return fmt.Errorf("case id %q is not a valid directory name", caseID)
	case strings.ContainsAny(id, `/\`):
		return fmt.Errorf("case id %q must not contain path separators", caseID)
	}
	return nil
}

// Layout returns the case paths without touching the filesystem.
func Layout(outputDir, caseID string) (*Case, error) {
	if strings.TrimSpace(outputDir) == "" {
		return nil, errors.New("output directory is required")
	}
	if err := ValidateCaseID(caseID); err != nil {
		return nil, err
	}
	root := filepath.Join(outputDir, caseID)
	return &Case{
		ID:     caseID,
		Root:   root,
		Raw:    filepath.Join(root, "raw"),
		Parsed: filepath.Join(root, "parsed"),
		Blobs:  filepath.Join(root, "blobs"),
		lock:   flock.New(filepath.Join(root, lockFile)),
	}, nil
}

// Open returns the case layout after creating its directories.
func Open(outputDir, caseID string) (*Case, error) {
	c, err := Layout(outputDir, caseID)
	if err != nil {
		return nil, err
	}
	for _, dir := range []string{c.Raw, c.Parsed, c.Blobs} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return c, nil
}

// Lock acquires the case run lock without blocking.
func (c *Case) Lock() error {
	ok, err := c.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire case lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrCaseLocked, c.ID)
	}
	return nil
}

// Unlock releases the case run lock.
func (c *Case) Unlock() error {
	return c.lock.Unlock()
}

// LockPath returns the lock file location.
func (c *Case) LockPath() string {
	return c.lock.Path()
}

// MessagesPath returns parsed/messages.jsonl.
func (c *Case) MessagesPath() string { return filepath.Join(c.Parsed, MessagesFile) }

// ContactsPath returns parsed/contacts.jsonl.
func (c *Case) ContactsPath() string { return filepath.Join(c.Parsed, ContactsFile) }

// CallsPath returns parsed/calls.jsonl.
func (c *Case) CallsPath() string { return filepath.Join(c.Parsed, CallsFile) }

// ManifestPath returns parsed/blobs_manifest.jsonl.
func (c *Case) ManifestPath() string { return filepath.Join(c.Parsed, ManifestFile) }
