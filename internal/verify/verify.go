package verify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"

	"ufdr/internal/fileutil"
	"ufdr/internal/jsonl"
	"ufdr/internal/logging"
	"ufdr/internal/manifest"
)

// DefaultWorkers is the pool size used when Options.Workers is zero.
const DefaultWorkers = 4

// Options tunes a verification pass.
type Options struct {
	Workers    int
	BufferSize int
	Logger     *slog.Logger
}

// Finding pairs a manifest entry with the problem found for it.
type Finding struct {
	Entry manifest.Entry
	Err   error
}

// Report aggregates the outcome of Verify.
type Report struct {
	Manifest string
	BlobsDir string
	Checked  int
	Verified int
	Findings []Finding
	Skipped  []*jsonl.FieldParseError
}

// OK reports whether every entry verified and no line was skipped.
func (r *Report) OK() bool {
	return len(r.Findings) == 0 && len(r.Skipped) == 0
}

// Missing returns the number of entries whose blob file is absent.
func (r *Report) Missing() int { return countAs[*MissingBlobError](r.Findings) }

// HashMismatches returns the number of entries whose digest no longer matches.
func (r *Report) HashMismatches() int { return countAs[*HashMismatchError](r.Findings) }

// SizeMismatches returns the number of entries whose size no longer matches.
func (r *Report) SizeMismatches() int { return countAs[*SizeMismatchError](r.Findings) }

func countAs[T error](findings []Finding) int {
	n := 0
	for _, f := range findings {
		var target T
		if errors.As(f.Err, &target) {
			n++
		}
	}
	return n
}

// Verify rehashes every blob named in the manifest at manifestPath. It
// returns an error only when the manifest cannot be read or ctx ends.
func Verify(ctx context.Context, manifestPath, blobsDir string, opts Options) (*Report, error) {
	logger := logging.NewComponentLogger(opts.Logger, "verify")
	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	entries, skipped, err := manifest.Read(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	for _, s := range skipped {
		logging.WarnWithContext(logger, "skipping malformed manifest line", "manifest_line_skipped",
			logging.Int("line", s.Line),
			logging.Error(s.Err),
			logging.String(logging.FieldImpact, "entry not verified"),
		)
	}

	report := &Report{
		Manifest: manifestPath,
		BlobsDir: blobsDir,
		Checked:  len(entries),
		Skipped:  skipped,
	}
	results := make([]error, len(entries))

	pool, err := ants.NewPool(workers, ants.WithPanicHandler(func(p any) {
		logger.Error("verify worker panic recovered", logging.Any("panic", p))
	}))
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for i := range entries {
		if ctx.Err() != nil {
			break
		}
		i := i
		wg.Add(1)
		task := func() {
			defer wg.Done()
			if ctx.Err() != nil {
				results[i] = ctx.Err()
				return
			}
			results[i] = checkEntry(entries[i], blobsDir, opts.BufferSize)
		}
		if err := pool.Submit(task); err != nil {
			wg.Done()
			results[i] = fmt.Errorf("schedule check: %w", err)
		}
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for i, res := range results {
		if res == nil {
			report.Verified++
			continue
		}
		report.Findings = append(report.Findings, Finding{Entry: entries[i], Err: res})
		logging.WarnWithContext(logger, "blob verification failed", "blob_verify_failed",
			logging.String("blob_id", entries[i].BlobID),
			logging.Error(res),
			logging.String(logging.FieldErrorHint, "compare against the original extraction"),
			logging.String(logging.FieldImpact, "chain of custody cannot be confirmed for this blob"),
		)
	}
	logger.Info("verification complete",
		logging.Int("checked", report.Checked),
		logging.Int("verified", report.Verified),
		logging.Int("findings", len(report.Findings)),
		logging.Int("skipped_lines", len(report.Skipped)),
	)
	return report, nil
}

// BlobLocation returns where the blob for entry is expected in blobsDir.
func BlobLocation(entry manifest.Entry, blobsDir string) (string, error) {
	if !validDigest(entry.SHA256) {
		return "", &InvalidEntryError{BlobID: entry.BlobID, Reason: "sha256 is not a 64 character hex digest"}
	}
	ext := path.Ext(filepath.ToSlash(entry.BlobPath))
	if strings.ContainsAny(ext, `/\`) {
		return "", &InvalidEntryError{BlobID: entry.BlobID, Reason: "blob_path has an invalid extension"}
	}
	return filepath.Join(blobsDir, strings.ToLower(entry.SHA256)+ext), nil
}

func checkEntry(entry manifest.Entry, blobsDir string, bufSize int) error {
	location, err := BlobLocation(entry, blobsDir)
	if err != nil {
		return err
	}
	info, err := os.Stat(location)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &MissingBlobError{Path: location, SHA256: entry.SHA256}
		}
		return fmt.Errorf("stat %s: %w", location, err)
	}
	if !info.Mode().IsRegular() {
		return &MissingBlobError{Path: location, SHA256: entry.SHA256}
	}
	sum, size, err := fileutil.HashFile(location, bufSize)
	if err != nil {
		return fmt.Errorf("hash %s: %w", location, err)
	}
	if !strings.EqualFold(sum, entry.SHA256) {
		return &HashMismatchError{Path: location, Want: entry.SHA256, Got: sum}
	}
	if size != entry.SizeBytes {
		return &SizeMismatchError{Path: location, Want: entry.SizeBytes, Got: size}
	}
	return nil
}

func validDigest(s string) bool {
	if len(s) != 64 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
