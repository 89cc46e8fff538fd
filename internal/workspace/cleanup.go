package workspace

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"ufdr/internal/fileutil"
	"ufdr/internal/logging"
)

// CleanupResult lists the partial blobs removed from a case and the
// removals that failed.
type CleanupResult struct {
	Removed []string
	Err     error
}

// CleanTempBlobs removes temp files left in blobs/ by an interrupted run.
// Call it only while holding the case lock. Failures are logged and
// collected in the result; they never stop the run.
func (c *Case) CleanTempBlobs(ctx context.Context, logger *slog.Logger) CleanupResult {
	var result CleanupResult
	matches, err := filepath.Glob(filepath.Join(c.Blobs, fileutil.TempPrefix+"*"))
	if err != nil {
		result.Err = err
		return result
	}

	var errs []error
	for _, path := range matches {
		if ctx.Err() != nil {
			break
		}
		info, err := os.Lstat(path)
		if err != nil || info.IsDir() {
			continue
		}
		if err := os.Remove(path); err != nil {
			errs = append(errs, err)
			logging.WarnWithContext(logger, "failed to remove partial blob", "blob_cleanup_failed",
				logging.String("path", path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check blobs directory permissions"),
				logging.String(logging.FieldImpact, "disk space not reclaimed"),
			)
			continue
		}
		result.Removed = append(result.Removed, path)
	}
	result.Err = errors.Join(errs...)

	if len(result.Removed) > 0 && logger != nil {
		logger.Info("removed partial blobs",
			logging.Int("count", len(result.Removed)),
			logging.String("dir", c.Blobs),
			logging.String(logging.FieldEventType, "blob_cleanup"),
		)
	}
	return result
}
