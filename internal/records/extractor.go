package records

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"ufdr/internal/blobstore"
	"ufdr/internal/entities"
	"ufdr/internal/logging"
	"ufdr/internal/manifest"
	"ufdr/internal/report"
	"ufdr/internal/timestamp"
)

var (
	errOutsideRaw   = errors.New("path escapes the raw directory")
	errNotRegular   = errors.New("not a regular file")
	errEmptyRefPath = errors.New("empty attachment path")
)

// Options configures an Extractor.
type Options struct {
	CaseID    string
	DeviceID  string
	RawDir    string
	Blobs     *blobstore.Store
	Manifest  *manifest.Ledger
	Dialect   *report.Dialect
	Counter   *Counter
	Direction DirectionPolicy
	Progress  ProgressSink
	MediaDirs []string
	Logger    *slog.Logger
}

// Extractor emits canonical records for one case run.
type Extractor struct {
	caseID    string
	deviceID  string
	rawDir    string
	blobs     *blobstore.Store
	manifest  *manifest.Ledger
	dialect   *report.Dialect
	counter   *Counter
	direction DirectionPolicy
	progress  ProgressSink
	mediaDirs []string
	logger    *slog.Logger

	ingested map[string]struct{}
}

// MessageStats summarizes a message extraction pass.
type MessageStats struct {
	Messages           int
	Attachments        int
	MissingAttachments int
	Orphans            int
}

// NewExtractor validates opts and fills defaults for optional collaborators.
func NewExtractor(opts Options) (*Extractor, error) {
	if strings.TrimSpace(opts.CaseID) == "" {
		return nil, errors.New("case id is required")
	}
	if opts.RawDir == "" {
		return nil, errors.New("raw directory is required")
	}
	if opts.Blobs == nil || opts.Manifest == nil {
		return nil, errors.New("blob store and manifest are required")
	}
	if opts.Dialect == nil {
		opts.Dialect = report.DefaultDialect()
	}
	if opts.Counter == nil {
		opts.Counter = NewCounter()
	}
	if opts.Direction == nil {
		opts.Direction = SenderOnlyInbound{}
	}
	if opts.Progress == nil {
		opts.Progress = NopProgress{}
	}
	if opts.DeviceID == "" {
		opts.DeviceID = "device-unknown"
	}
	return &Extractor{
		caseID:    opts.CaseID,
		deviceID:  opts.DeviceID,
		rawDir:    opts.RawDir,
		blobs:     opts.Blobs,
		manifest:  opts.Manifest,
		dialect:   opts.Dialect,
		counter:   opts.Counter,
		direction: opts.Direction,
		progress:  opts.Progress,
		mediaDirs: opts.MediaDirs,
		logger:    logging.NewComponentLogger(opts.Logger, "records"),
		ingested:  make(map[string]struct{}),
	}, nil
}

// ExtractMessages writes one MessageRecord per message node, then registers
// orphan media.
func (x *Extractor) ExtractMessages(ctx context.Context, root *report.Node, w Writer) (MessageStats, error) {
	var stats MessageStats
	rule, ok := x.dialect.Rule(report.RecordMessages)
	if !ok {
		return stats, fmt.Errorf("dialect %q has no %s rule", x.dialect.Name, report.RecordMessages)
	}

	x.progress.Start(report.RecordMessages)
	err := report.Walk(root, rule, func(node *report.Node) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		rec, attached, missing, err := x.message(node, rule)
		if err != nil {
			return err
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("write message %s: %w", rec.ID, err)
		}
		stats.Messages++
		stats.Attachments += attached
		stats.MissingAttachments += missing
		x.progress.Advance(report.RecordMessages, stats.Messages)
		return nil
	})
	if err != nil {
		return stats, err
	}
	x.progress.Done(report.RecordMessages, stats.Messages)

	orphans, err := x.scanOrphans(ctx)
	stats.Orphans = orphans
	if err != nil {
		return stats, err
	}
	return stats, nil
}

func (x *Extractor) message(node *report.Node, rule report.Rule) (MessageRecord, int, int, error) {
	seq := x.counter.Next(report.RecordMessages)
	id := rule.Field(node, "id")
	if id == "" {
		id = SyntheticID(report.RecordMessages, seq)
	}

	sender := rule.Field(node, "sender")
	recipient := rule.Field(node, "recipient")
	body := rule.Field(node, "body")

	participants := make([]string, 0, 2)
	for _, p := range []string{sender, recipient} {
		if p != "" {
			participants = append(participants, p)
		}
	}

	rec := MessageRecord{
		ID:           id,
		CaseID:       x.caseID,
		DeviceID:     x.deviceID,
		TimestampUTC: timestamp.Normalize(rule.Field(node, "timestamp")),
		Direction:    x.direction.Direction(sender, recipient),
		Participants: participants,
		Body:         body,
		Attachments:  make([]string, 0),
		Entities:     entities.Extract(body),
		RawSource:    node.Path,
		Hash:         BodyHash(body),
	}

	missing := 0
	for _, att := range rule.AttachmentNodes(node) {
		if att.Text == "" {
			continue
		}
		ref, err := x.attach(id, att.Text)
		if err != nil {
			var missErr *AttachmentMissingError
			if errors.As(err, &missErr) {
				missing++
				logging.WarnWithContext(x.logger, "attachment not found", "attachment_missing",
					logging.String(logging.FieldRecordID, id),
					logging.String("path", missErr.Path),
					logging.Error(missErr),
					logging.String(logging.FieldErrorHint, "check that the extraction includes the referenced media"),
					logging.String(logging.FieldImpact, "message emitted without this attachment"),
				)
				continue
			}
			return rec, len(rec.Attachments), missing, err
		}
		rec.Attachments = append(rec.Attachments, ref)
	}
	return rec, len(rec.Attachments), missing, nil
}

// attach resolves ref under raw/, stores it, and records the manifest
// reference. It returns the blob name.
func (x *Extractor) attach(msgID, ref string) (string, error) {
	rel, err := cleanRelative(ref)
	if err != nil {
		return "", &AttachmentMissingError{MessageID: msgID, Path: ref, Err: err}
	}
	abs := filepath.Join(x.rawDir, filepath.FromSlash(rel))
	info, err := os.Stat(abs)
	if err != nil {
		return "", &AttachmentMissingError{MessageID: msgID, Path: rel, Err: err}
	}
	if !info.Mode().IsRegular() {
		return "", &AttachmentMissingError{MessageID: msgID, Path: rel, Err: errNotRegular}
	}

	blob, err := x.blobs.Ingest(abs)
	if err != nil {
		return "", fmt.Errorf("message %s: %w", msgID, err)
	}
	x.manifest.Reference(manifest.NewEntry(x.caseID, rel, blob, info.ModTime()), msgID)
	x.ingested[rel] = struct{}{}
	return blob.Name(), nil
}

// scanOrphans ingests media files under the configured directories that no
// message referenced.
func (x *Extractor) scanOrphans(ctx context.Context) (int, error) {
	fsys := os.DirFS(x.rawDir)
	var found []string
	for _, dir := range x.mediaDirs {
		matches, err := doublestar.Glob(fsys, path.Join(dir, "**"), doublestar.WithFilesOnly())
		if err != nil {
			return 0, fmt.Errorf("scan %s: %w", dir, err)
		}
		found = append(found, matches...)
	}
	sort.Strings(found)

	orphans := 0
	seen := make(map[string]struct{}, len(found))
	for _, rel := range found {
		if err := ctx.Err(); err != nil {
			return orphans, err
		}
		if _, ok := seen[rel]; ok {
			continue
		}
		seen[rel] = struct{}{}
		if _, ok := x.ingested[rel]; ok {
			continue
		}
		info, err := fs.Stat(fsys, rel)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		blob, err := x.blobs.Ingest(filepath.Join(x.rawDir, filepath.FromSlash(rel)))
		if err != nil {
			return orphans, fmt.Errorf("orphan %s: %w", rel, err)
		}
		x.ingested[rel] = struct{}{}
		if x.manifest.Orphan(manifest.NewEntry(x.caseID, rel, blob, info.ModTime())) {
			orphans++
		}
	}
	return orphans, nil
}

// ExtractContacts writes one ContactRecord per contact node.
func (x *Extractor) ExtractContacts(ctx context.Context, root *report.Node, w Writer) (int, error) {
	rule, ok := x.dialect.Rule(report.RecordContacts)
	if !ok {
		return 0, fmt.Errorf("dialect %q has no %s rule", x.dialect.Name, report.RecordContacts)
	}
	count := 0
	x.progress.Start(report.RecordContacts)
	err := report.Walk(root, rule, func(node *report.Node) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		rec := ContactRecord{
			ID:        SyntheticID(report.RecordContacts, x.counter.Next(report.RecordContacts)),
			CaseID:    x.caseID,
			Name:      rule.Field(node, "name"),
			Phone:     rule.Field(node, "phone"),
			RawSource: node.Path,
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("write contact %s: %w", rec.ID, err)
		}
		count++
		x.progress.Advance(report.RecordContacts, count)
		return nil
	})
	if err != nil {
		return count, err
	}
	x.progress.Done(report.RecordContacts, count)
	return count, nil
}

// ExtractCalls writes one CallRecord per call node.
func (x *Extractor) ExtractCalls(ctx context.Context, root *report.Node, w Writer) (int, error) {
	rule, ok := x.dialect.Rule(report.RecordCalls)
	if !ok {
		return 0, fmt.Errorf("dialect %q has no %s rule", x.dialect.Name, report.RecordCalls)
	}
	count := 0
	x.progress.Start(report.RecordCalls)
	err := report.Walk(root, rule, func(node *report.Node) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		rec := CallRecord{
			ID:           SyntheticID(report.RecordCalls, x.counter.Next(report.RecordCalls)),
			CaseID:       x.caseID,
			TimestampUTC: timestamp.Normalize(rule.Field(node, "timestamp")),
			Caller:       rule.Field(node, "caller"),
			Callee:       rule.Field(node, "callee"),
			Duration:     rule.Field(node, "duration"),
			RawSource:    node.Path,
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("write call %s: %w", rec.ID, err)
		}
		count++
		x.progress.Advance(report.RecordCalls, count)
		return nil
	})
	if err != nil {
		return count, err
	}
	x.progress.Done(report.RecordCalls, count)
	return count, nil
}

// BodyHash returns "sha256:<hex>" of body, or "" when body is empty.
func BodyHash(body string) string {
	if body == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(body))
	return "sha256:" + hex.EncodeToString(sum[:])
}

// cleanRelative normalizes an attachment reference to a slash-separated
// path that stays inside raw/.
func cleanRelative(ref string) (string, error) {
	ref = strings.TrimSpace(strings.ReplaceAll(ref, `\`, "/"))
	if ref == "" {
		return "", errEmptyRefPath
	}
	if strings.HasPrefix(ref, "/") || filepath.VolumeName(ref) != "" {
		return "", errOutsideRaw
	}
	rel := path.Clean(ref)
	if !fs.ValidPath(rel) || rel == "." {
		return "", errOutsideRaw
	}
	return rel, nil
}
