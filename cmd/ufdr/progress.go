package main

import (
	"log/slog"

	"ufdr/internal/logging"
)

// logProgress reports extraction progress through the logger: one line when
// a record type starts, a sampled debug line every
// logging.DefaultProgressInterval records, and a total when it finishes.
type logProgress struct {
	logger  *slog.Logger
	sampler *logging.ProgressSampler
}

func newLogProgress(logger *slog.Logger) *logProgress {
	return &logProgress{
		logger:  logging.NewComponentLogger(logger, "progress"),
		sampler: logging.NewProgressSampler(0),
	}
}

func (p *logProgress) Start(recordType string) {
	p.sampler.Reset()
	p.sampler.ShouldLog(recordType, 0)
	p.logger.Info("extracting records", logging.String(logging.FieldRecordType, recordType))
}

func (p *logProgress) Advance(recordType string, count int) {
	if p.sampler.ShouldLog(recordType, count) {
		p.logger.Debug("extraction progress",
			logging.String(logging.FieldRecordType, recordType),
			logging.Int("records", count),
		)
	}
}

func (p *logProgress) Done(recordType string, total int) {
	p.logger.Info("record type complete",
		logging.String(logging.FieldRecordType, recordType),
		logging.Int("records", total),
	)
}
