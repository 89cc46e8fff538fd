package logging

import "strings"

// DefaultProgressInterval is the record count between sampled progress lines.
const DefaultProgressInterval = 1000

// ProgressSampler thins per-record progress into one line per interval,
// restarting whenever the phase (record type) changes.
type ProgressSampler struct {
	interval  int
	phase     string
	lastBlock int
}

// NewProgressSampler constructs a sampler emitting every interval records.
// A non-positive interval selects DefaultProgressInterval.
func NewProgressSampler(interval int) *ProgressSampler {
	if interval <= 0 {
		interval = DefaultProgressInterval
	}
	return &ProgressSampler{interval: interval, lastBlock: -1}
}

// ShouldLog reports whether progress at count within phase should be logged.
// The first call for a phase always logs. After that a line is emitted each
// time count enters a new interval block.
func (s *ProgressSampler) ShouldLog(phase string, count int) bool {
	if s == nil {
		return true
	}
	phase = strings.TrimSpace(phase)
	if phase != s.phase {
		s.phase = phase
		s.lastBlock = count / s.interval
		return true
	}
	block := count / s.interval
	if block > s.lastBlock {
		s.lastBlock = block
		return true
	}
	return false
}

// Reset forgets the current phase so the next call logs.
func (s *ProgressSampler) Reset() {
	if s == nil {
		return
	}
	s.phase = ""
	s.lastBlock = -1
}
