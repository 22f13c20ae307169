package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"downconv/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify SoX and the state directories are usable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			for _, line := range renderSectionHeader("Environment", colorize) {
				fmt.Fprintln(out, line)
			}
			results := preflight.RunAll(cmd.Context(), cfg)
			for _, line := range preflightLines(results, colorize) {
				fmt.Fprintln(out, line)
			}

			fmt.Fprintln(out)
			for _, line := range renderSectionHeader("Settings", colorize) {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Setting", "Value"},
				[][]string{
					{"Encoder", cfg.EncoderBinary()},
					{"Concurrency", strconv.Itoa(cfg.Encoder.Concurrency)},
					{"Abort policy", cfg.Encoder.AbortPolicy},
					{"History", yesNo(cfg.History.Enabled)},
					{"State directory", cfg.Paths.StateDir},
				},
				[]columnAlignment{alignLeft, alignLeft},
			))

			if failed := preflight.Failed(results); len(failed) > 0 {
				return errors.New("environment check failed")
			}
			return nil
		},
	}
}
