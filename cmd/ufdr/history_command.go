package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"ufdr/internal/ledger"
)

type runView struct {
	ID                 string `json:"id"`
	CaseID             string `json:"case_id"`
	Status             string `json:"status"`
	InputPath          string `json:"input_path"`
	InputSHA256        string `json:"input_sha256,omitempty"`
	OutputDir          string `json:"output_dir"`
	StartedAt          string `json:"started_at"`
	Duration           string `json:"duration"`
	Messages           int    `json:"messages"`
	Contacts           int    `json:"contacts"`
	Calls              int    `json:"calls"`
	Blobs              int    `json:"blobs"`
	RejectedEntries    int    `json:"rejected_entries"`
	MissingAttachments int    `json:"missing_attachments"`
	Error              string `json:"error,omitempty"`
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var limit int

	cmd := &cobra.Command{
		Use:   "history [case_id]",
		Short: "List recorded ingestion runs",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openLedger(cmd.Context())
			if err != nil {
				return err
			}
			if store == nil {
				return errLedgerDisabled
			}
			defer store.Close()

			caseID := ""
			if len(args) == 1 {
				caseID = args[0]
			}
			runs, err := store.List(cmd.Context(), caseID, limit)
			if err != nil {
				return err
			}

			views := make([]runView, 0, len(runs))
			for _, run := range runs {
				views = append(views, newRunView(run))
			}
			if jsonOutput {
				return writeJSON(cmd, views)
			}

			out := cmd.OutOrStdout()
			if len(views) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			rows := make([][]string, 0, len(views))
			for _, v := range views {
				rows = append(rows, []string{
					v.ID,
					v.CaseID,
					v.Status,
					v.StartedAt,
					v.Duration,
					strconv.Itoa(v.Messages),
					strconv.Itoa(v.Contacts),
					strconv.Itoa(v.Calls),
					strconv.Itoa(v.Blobs),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Run", "Case", "Status", "Started", "Duration", "Messages", "Contacts", "Calls", "Blobs"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit runs as JSON")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show (0 for all)")
	return cmd
}

func newRunView(run ledger.Run) runView {
	return runView{
		ID:                 run.ID,
		CaseID:             run.CaseID,
		Status:             run.Status,
		InputPath:          run.InputPath,
		InputSHA256:        run.InputSHA256,
		OutputDir:          run.OutputDir,
		StartedAt:          run.StartedAt.UTC().Format(time.RFC3339),
		Duration:           run.Duration().Round(time.Millisecond).String(),
		Messages:           run.Messages,
		Contacts:           run.Contacts,
		Calls:              run.Calls,
		Blobs:              run.Blobs,
		RejectedEntries:    run.RejectedEntries,
		MissingAttachments: run.MissingAttachments,
		Error:              run.ErrorMessage,
	}
}
