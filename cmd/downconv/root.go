package main

import (
	"github.com/spf13/cobra"

	"downconv/internal/conversion"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var concurrencyFlag int
	var logLevelFlag string
	var opts conversion.Options

	ctx := newCommandContext(&configFlag, &concurrencyFlag, &logLevelFlag)

	rootCmd := &cobra.Command{
		Use:   "downconv <path>",
		Short: "Convert a 24-bit FLAC release folder to 16-bit",
		Long: "downconv writes a 16-bit sibling of a high-resolution FLAC release folder.\n" +
			"24-bit tracks are resampled and dithered with SoX; every other file is copied.",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, ctx, args[0], opts)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().IntVar(&concurrencyFlag, "concurrency", 0, "Number of SoX processes to run at once (default from config)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level override (debug, info, warn, error)")
	rootCmd.Flags().BoolVar(&opts.SkipUnneeded, "skip-unneeded-files", false, "Do not copy files that fail the keep pattern (scans, logs, cue sheets)")
	rootCmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Print the conversion plan without writing anything")

	rootCmd.AddCommand(newConfigCommand(ctx))
	rootCmd.AddCommand(newCheckCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))
	rootCmd.AddCommand(newLogCommand(ctx))

	return rootCmd
}
