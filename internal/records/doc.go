// Package records turns report nodes into canonical message, contact, and
// call records.
//
// An Extractor is bound to one case and one run. It walks the parsed report
// with the rules from a report.Dialect, numbers records with a per-run
// Counter, stores message attachments in the blob store, and feeds the
// manifest ledger. A message that cannot resolve an attachment is still
// emitted; the missing reference is logged as an AttachmentMissingError.
//
// After all messages are written, ExtractMessages scans the configured media
// directories under raw/ and registers any file that no message referenced
// as an orphan blob.
package records
