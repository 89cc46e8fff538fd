// Package logging assembles structured slog loggers and formatting helpers used
// across the ufdr pipeline.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes helpers so pipeline code tags log lines with case IDs,
// run IDs, and event types in a consistent shape. The package also provides a
// no-op logger for tests and wiring code that cannot fail.
//
// Loggers default to stderr: stdout is reserved for machine-readable command
// output such as the ingestion summary.
package logging
