package report

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"ufdr/internal/logging"
)

// ErrReportNotFound is matched by NotFoundError.
var ErrReportNotFound = errors.New("report not found")

// NotFoundError reports that no structured document exists at the raw root.
type NotFoundError struct {
	Dir  string
	Name string
	Ext  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no %s or other *%s report in %s", e.Name, e.Ext, e.Dir)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrReportNotFound
}

// LocateOptions names the canonical report file and fallback extension.
type LocateOptions struct {
	Name string
	Ext  string
}

// Locate finds the report document directly under rawDir. The canonical
// name wins; otherwise the lexically first root-level file with the
// extension is used and a warning is logged.
func Locate(rawDir string, opts LocateOptions, logger *slog.Logger) (string, error) {
	if opts.Name == "" {
		opts.Name = "report.xml"
	}
	if opts.Ext == "" {
		opts.Ext = ".xml"
	}
	canonical := filepath.Join(rawDir, opts.Name)
	if info, err := os.Stat(canonical); err == nil && info.Mode().IsRegular() {
		return canonical, nil
	}

	entries, err := os.ReadDir(rawDir)
	if err != nil {
		return "", fmt.Errorf("read raw directory: %w", err)
	}
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if !strings.EqualFold(filepath.Ext(entry.Name()), opts.Ext) {
			continue
		}
		path := filepath.Join(rawDir, entry.Name())
		logging.WarnWithContext(logger, "canonical report missing; using fallback document", "report_fallback",
			logging.String("expected", opts.Name),
			logging.String("using", entry.Name()),
			logging.String(logging.FieldErrorHint, "confirm the fallback document is the extraction report"),
			logging.String(logging.FieldImpact, "records are parsed from a heuristically chosen file"),
		)
		return path, nil
	}
	return "", &NotFoundError{Dir: rawDir, Name: opts.Name, Ext: opts.Ext}
}
