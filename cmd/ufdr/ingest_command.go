package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"ufdr/internal/ingest"
	"ufdr/internal/logging"
	"ufdr/internal/preflight"
)

func newIngestCommand(ctx *commandContext) *cobra.Command {
	var deviceID string
	var dialectPath string

	cmd := &cobra.Command{
		Use:   "ingest <input_path> <output_dir> <case_id>",
		Short: "Ingest a UFDR container into a case directory",
		Long: "Unpack a UFDR archive (or an already extracted directory), parse its report, " +
			"store attachments by content hash, and write messages, contacts, calls, and the blob manifest " +
			"under <output_dir>/<case_id>. A JSON summary is printed on success.",
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			inputPath, outputDir, caseID := args[0], args[1], args[2]

			if failed := preflight.Failed(preflight.RunAll(cfg, "", outputDir)); len(failed) > 0 {
				details := make([]string, 0, len(failed))
				for _, r := range failed {
					details = append(details, fmt.Sprintf("%s: %s", r.Name, r.Detail))
				}
				err := fmt.Errorf("preflight failed: %s", strings.Join(details, "; "))
				logging.ErrorWithContext(logger, "ingest aborted", "preflight_failed",
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "run `ufdr check <output_dir>` for details"),
				)
				return err
			}

			opts := []ingest.Option{ingest.WithProgress(newLogProgress(logger))}
			store, err := ctx.openLedger(cmd.Context())
			if err != nil {
				logging.WarnWithContext(logger, "run ledger unavailable", "ledger_open_failed",
					logging.Error(err),
					logging.String(logging.FieldImpact, "this run will not appear in history"),
				)
			} else if store != nil {
				defer store.Close()
				opts = append(opts, ingest.WithLedger(store))
			}

			runner := ingest.NewRunner(cfg, logger, opts...)
			summary, err := runner.Run(cmd.Context(), ingest.Request{
				InputPath:   inputPath,
				OutputDir:   outputDir,
				CaseID:      caseID,
				DeviceID:    strings.TrimSpace(deviceID),
				DialectPath: strings.TrimSpace(dialectPath),
			})
			if err != nil {
				logging.ErrorWithContext(logger, "ingest failed", "ingest_failed",
					logging.String(logging.FieldCaseID, caseID),
					logging.String("input", inputPath),
					logging.Error(err),
				)
				return err
			}
			return writeJSON(cmd, summary)
		},
	}

	cmd.Flags().StringVar(&deviceID, "device-id", "", "Device identifier stamped on message records")
	cmd.Flags().StringVar(&dialectPath, "dialect", "", "YAML dialect file overlaying the built-in report dialect")
	return cmd
}
