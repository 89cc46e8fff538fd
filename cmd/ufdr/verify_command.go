package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"ufdr/internal/verify"
)

var errVerifyFindings = errors.New("verification reported findings")

type verifyFindingView struct {
	BlobID   string `json:"blob_id"`
	OrigPath string `json:"orig_path"`
	Kind     string `json:"kind"`
	Detail   string `json:"detail"`
}

type verifySkippedView struct {
	Line   int    `json:"line"`
	Detail string `json:"detail"`
}

type verifyView struct {
	Manifest string              `json:"manifest"`
	BlobsDir string              `json:"blobs_dir"`
	Checked  int                 `json:"checked"`
	Verified int                 `json:"verified"`
	Findings []verifyFindingView `json:"findings"`
	Skipped  []verifySkippedView `json:"skipped_lines"`
}

func newVerifyCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var strict bool
	var workers int

	cmd := &cobra.Command{
		Use:   "verify <manifest.jsonl> <blobs_dir>",
		Short: "Rehash blobs and compare them against a manifest",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			if workers <= 0 {
				workers = cfg.Verify.Workers
			}

			report, err := verify.Verify(cmd.Context(), args[0], args[1], verify.Options{
				Workers:    workers,
				BufferSize: cfg.Ingest.BufferSize,
				Logger:     logger,
			})
			if err != nil {
				return err
			}

			view := buildVerifyView(report)
			if jsonOutput {
				if err := writeJSON(cmd, view); err != nil {
					return err
				}
			} else {
				printVerifyReport(cmd, view)
			}
			if strict && !report.OK() {
				return errVerifyFindings
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the report as JSON")
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when any finding or skipped line is reported")
	cmd.Flags().IntVar(&workers, "workers", 0, "Concurrent hash workers (defaults to [verify] workers)")
	return cmd
}

func buildVerifyView(report *verify.Report) verifyView {
	view := verifyView{
		Manifest: report.Manifest,
		BlobsDir: report.BlobsDir,
		Checked:  report.Checked,
		Verified: report.Verified,
		Findings: make([]verifyFindingView, 0, len(report.Findings)),
		Skipped:  make([]verifySkippedView, 0, len(report.Skipped)),
	}
	for _, f := range report.Findings {
		view.Findings = append(view.Findings, verifyFindingView{
			BlobID:   f.Entry.BlobID,
			OrigPath: f.Entry.OrigPath,
			Kind:     findingKind(f.Err),
			Detail:   f.Err.Error(),
		})
	}
	for _, s := range report.Skipped {
		view.Skipped = append(view.Skipped, verifySkippedView{Line: s.Line, Detail: s.Err.Error()})
	}
	return view
}

func findingKind(err error) string {
	var missing *verify.MissingBlobError
	var hash *verify.HashMismatchError
	var size *verify.SizeMismatchError
	var invalid *verify.InvalidEntryError
	switch {
	case errors.As(err, &missing):
		return findingMissing
	case errors.As(err, &hash):
		return findingHashMismatch
	case errors.As(err, &size):
		return findingSizeMismatch
	case errors.As(err, &invalid):
		return findingInvalidEntry
	default:
		return findingOther
	}
}

func printVerifyReport(cmd *cobra.Command, view verifyView) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	if len(view.Findings) > 0 {
		rows := make([][]string, 0, len(view.Findings))
		for _, f := range view.Findings {
			rows = append(rows, []string{f.BlobID, f.OrigPath, f.Kind, f.Detail})
		}
		fmt.Fprintln(out, renderTable([]string{"Blob", "Original Path", "Finding", "Detail"}, rows, nil))
	}
	if len(view.Skipped) > 0 {
		rows := make([][]string, 0, len(view.Skipped))
		for _, s := range view.Skipped {
			rows = append(rows, []string{strconv.Itoa(s.Line), s.Detail})
		}
		fmt.Fprintln(out, renderTable([]string{"Line", "Skipped"}, rows, []columnAlignment{alignRight, alignLeft}))
	}

	for _, line := range verifyStatusLines(view, colorize) {
		fmt.Fprintln(out, line)
	}
	fmt.Fprintf(out, "Verified %d blobs.\n", view.Verified)
}
