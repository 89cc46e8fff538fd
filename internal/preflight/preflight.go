package preflight

import (
	"ufdr/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for an ingestion into
// outputDir. inputPath is checked when non-empty.
func RunAll(cfg *config.Config, inputPath, outputDir string) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	if inputPath != "" {
		results = append(results, CheckInput(inputPath))
	}
	results = append(results, CheckOutputDir("Output directory", outputDir))
	results = append(results, CheckWritableTarget("Log directory", cfg.Paths.LogDir))
	results = append(results, CheckLedger(cfg))
	results = append(results, CheckDialect(cfg.Ingest.DialectPath))
	return results
}

// Failed returns the subset of results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
