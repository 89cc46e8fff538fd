package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"ufdr/internal/preflight"
)

var errPreflightFailed = errors.New("one or more preflight checks failed")

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var inputPath string

	cmd := &cobra.Command{
		Use:   "check <output_dir>",
		Short: "Check that an ingestion into output_dir can run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			results := preflight.RunAll(cfg, inputPath, args[0])
			for _, line := range preflightLines(results, colorize) {
				fmt.Fprintln(out, line)
			}
			if len(preflight.Failed(results)) > 0 {
				return errPreflightFailed
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "Also check this input container")
	return cmd
}
