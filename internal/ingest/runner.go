package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"ufdr/internal/blobstore"
	"ufdr/internal/config"
	"ufdr/internal/fileutil"
	"ufdr/internal/jsonl"
	"ufdr/internal/ledger"
	"ufdr/internal/logging"
	"ufdr/internal/manifest"
	"ufdr/internal/records"
	"ufdr/internal/report"
	"ufdr/internal/unpack"
	"ufdr/internal/workspace"
)

// Request names the inputs of one run.
type Request struct {
	InputPath string
	OutputDir string
	CaseID    string
	// DeviceID and DialectPath override the configured values when set.
	DeviceID    string
	DialectPath string
}

// Output describes one produced stream.
type Output struct {
	Count int    `json:"count"`
	Path  string `json:"path"`
}

// Summary is printed after a successful run.
type Summary struct {
	RunID              string   `json:"run_id"`
	CaseID             string   `json:"case_id"`
	InputSHA256        string   `json:"input_sha256,omitempty"`
	Messages           Output   `json:"messages"`
	Contacts           Output   `json:"contacts"`
	Calls              Output   `json:"calls"`
	Blobs              Output   `json:"blobs"`
	RejectedEntries    []string `json:"rejected_entries"`
	MissingAttachments int      `json:"missing_attachments"`
	Elapsed            string   `json:"elapsed"`
}

// Runner executes ingestion runs.
type Runner struct {
	cfg       *config.Config
	logger    *slog.Logger
	ledger    *ledger.Store
	progress  records.ProgressSink
	direction records.DirectionPolicy
	now       func() time.Time
	newID     func() string
}

// Option customizes a Runner.
type Option func(*Runner)

// WithLedger records every run in store.
func WithLedger(store *ledger.Store) Option {
	return func(r *Runner) { r.ledger = store }
}

// WithProgress reports extraction progress to sink.
func WithProgress(sink records.ProgressSink) Option {
	return func(r *Runner) { r.progress = sink }
}

// WithDirectionPolicy replaces the default message direction heuristic.
func WithDirectionPolicy(policy records.DirectionPolicy) Option {
	return func(r *Runner) { r.direction = policy }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// NewRunner constructs a Runner. cfg must already be normalized.
func NewRunner(cfg *config.Config, logger *slog.Logger, opts ...Option) *Runner {
	r := &Runner{
		cfg:       cfg,
		logger:    logging.NewComponentLogger(logger, "ingest"),
		progress:  records.NopProgress{},
		direction: records.SenderOnlyInbound{},
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run ingests req.InputPath into req.OutputDir/req.CaseID.
func (r *Runner) Run(ctx context.Context, req Request) (*Summary, error) {
	started := r.now()
	runID := r.newID()
	logger := logging.WithRun(r.logger, req.CaseID, runID)

	summary, err := r.run(ctx, req, runID, logger)
	finished := r.now()
	if summary != nil {
		summary.Elapsed = finished.Sub(started).Round(time.Millisecond).String()
	}
	r.record(ctx, req, runID, started, finished, summary, err, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("ingest complete",
		logging.Int("messages", summary.Messages.Count),
		logging.Int("contacts", summary.Contacts.Count),
		logging.Int("calls", summary.Calls.Count),
		logging.Int("blobs", summary.Blobs.Count),
		logging.Int("missing_attachments", summary.MissingAttachments),
		logging.Int("rejected_entries", len(summary.RejectedEntries)),
		logging.String("elapsed", summary.Elapsed),
	)
	return summary, nil
}

func (r *Runner) run(ctx context.Context, req Request, runID string, logger *slog.Logger) (*Summary, error) {
	if strings.TrimSpace(req.InputPath) == "" {
		return nil, errors.New("input path is required")
	}

	dialectPath := r.cfg.Ingest.DialectPath
	if req.DialectPath != "" {
		dialectPath = req.DialectPath
	}
	dialect, err := report.LoadDialect(dialectPath)
	if err != nil {
		return nil, err
	}
	deviceID := r.cfg.Ingest.DeviceID
	if req.DeviceID != "" {
		deviceID = req.DeviceID
	}

	c, err := workspace.Open(req.OutputDir, req.CaseID)
	if err != nil {
		return nil, fmt.Errorf("prepare workspace: %w", err)
	}
	if err := c.Lock(); err != nil {
		return nil, err
	}
	defer func() {
		if err := c.Unlock(); err != nil {
			logging.WarnWithContext(logger, "failed to release case lock", "case_unlock_failed",
				logging.String("lock", c.LockPath()),
				logging.Error(err),
			)
		}
	}()
	c.CleanTempBlobs(ctx, logger)

	summary := &Summary{
		RunID:           runID,
		CaseID:          req.CaseID,
		Messages:        Output{Path: c.MessagesPath()},
		Contacts:        Output{Path: c.ContactsPath()},
		Calls:           Output{Path: c.CallsPath()},
		Blobs:           Output{Path: c.ManifestPath()},
		RejectedEntries: []string{},
	}

	digest, err := inputDigest(req.InputPath, r.cfg.Ingest.BufferSize)
	if err != nil {
		return summary, err
	}
	summary.InputSHA256 = digest

	unpacked, err := unpack.Unpack(ctx, req.InputPath, c.Raw, logger)
	summary.RejectedEntries = append(summary.RejectedEntries, unpacked.Rejected...)
	if err != nil {
		return summary, fmt.Errorf("unpack: %w", err)
	}
	logger.Info("input unpacked",
		logging.Int("files", unpacked.Files),
		logging.Int("rejected", len(unpacked.Rejected)),
	)

	reportPath, err := report.Locate(c.Raw, report.LocateOptions{
		Name: r.cfg.Ingest.ReportName,
		Ext:  r.cfg.Ingest.ReportExt,
	}, logger)
	if err != nil {
		return summary, err
	}
	root, err := report.ParseFile(reportPath)
	if err != nil {
		return summary, fmt.Errorf("parse report: %w", err)
	}

	store, err := blobstore.New(c.Blobs, r.cfg.Ingest.BufferSize)
	if err != nil {
		return summary, err
	}
	blobs := manifest.NewLedger()
	extractor, err := records.NewExtractor(records.Options{
		CaseID:    req.CaseID,
		DeviceID:  deviceID,
		RawDir:    c.Raw,
		Blobs:     store,
		Manifest:  blobs,
		Dialect:   dialect,
		Counter:   records.NewCounter(),
		Direction: r.direction,
		Progress:  r.progress,
		MediaDirs: r.cfg.Ingest.MediaDirs,
		Logger:    logger,
	})
	if err != nil {
		return summary, err
	}

	err = writeStream(c.MessagesPath(), func(w *jsonl.Writer) error {
		stats, err := extractor.ExtractMessages(ctx, root, w)
		summary.Messages.Count = stats.Messages
		summary.MissingAttachments = stats.MissingAttachments
		return err
	})
	if err != nil {
		return summary, fmt.Errorf("extract messages: %w", err)
	}

	err = writeStream(c.ContactsPath(), func(w *jsonl.Writer) error {
		n, err := extractor.ExtractContacts(ctx, root, w)
		summary.Contacts.Count = n
		return err
	})
	if err != nil {
		return summary, fmt.Errorf("extract contacts: %w", err)
	}

	err = writeStream(c.CallsPath(), func(w *jsonl.Writer) error {
		n, err := extractor.ExtractCalls(ctx, root, w)
		summary.Calls.Count = n
		return err
	})
	if err != nil {
		return summary, fmt.Errorf("extract calls: %w", err)
	}

	if err := blobs.Write(c.ManifestPath()); err != nil {
		return summary, err
	}
	summary.Blobs.Count = blobs.Len()
	return summary, nil
}

// inputDigest hashes a container file. Extracted directories have no single
// digest and return "".
func inputDigest(path string, bufSize int) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat input: %w", err)
	}
	if !info.Mode().IsRegular() {
		return "", nil
	}
	sum, _, err := fileutil.HashFile(path, bufSize)
	if err != nil {
		return "", fmt.Errorf("hash input: %w", err)
	}
	return sum, nil
}

func writeStream(path string, fn func(w *jsonl.Writer) error) error {
	w, err := jsonl.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := fn(w); err != nil {
		_ = w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

func (r *Runner) record(ctx context.Context, req Request, runID string, started, finished time.Time, summary *Summary, runErr error, logger *slog.Logger) {
	if r.ledger == nil || workspace.ValidateCaseID(req.CaseID) != nil {
		return
	}
	run := ledger.Run{
		ID:         runID,
		CaseID:     req.CaseID,
		InputPath:  req.InputPath,
		OutputDir:  req.OutputDir,
		Status:     ledger.StatusSucceeded,
		StartedAt:  started,
		FinishedAt: finished,
	}
	if summary != nil {
		run.InputSHA256 = summary.InputSHA256
		run.Messages = summary.Messages.Count
		run.Contacts = summary.Contacts.Count
		run.Calls = summary.Calls.Count
		run.Blobs = summary.Blobs.Count
		run.RejectedEntries = len(summary.RejectedEntries)
		run.MissingAttachments = summary.MissingAttachments
	}
	if runErr != nil {
		run.Status = ledger.StatusFailed
		run.ErrorMessage = runErr.Error()
	}
	// Record even when ctx is already cancelled.
	if err := r.ledger.Record(context.WithoutCancel(ctx), run); err != nil {
		logging.WarnWithContext(logger, "failed to record run in ledger", "ledger_record_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check ledger.path permissions or disable the ledger"),
			logging.String(logging.FieldImpact, "run missing from history"),
		)
	}
}
