package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"downconv/internal/conversion"
	"downconv/internal/history"
	"downconv/internal/logging"
	"downconv/internal/services"
)

func runConvert(cmd *cobra.Command, ctx *commandContext, source string, opts conversion.Options) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	runCtx := services.WithRunID(cmd.Context(), uuid.NewString())

	out := cmd.OutOrStdout()
	reporter := newConsoleReporter(out, cmd.ErrOrStderr())
	options := []conversion.Option{conversion.WithReporter(reporter)}

	if cfg.History.Enabled && !opts.DryRun {
		store, err := history.Open(cfg)
		if err != nil {
			logging.WithContext(runCtx, logger).Warn("run history unavailable", logging.Error(err))
		} else {
			defer store.Close()
			options = append(options, conversion.WithHistory(store))
		}
	}

	result, err := conversion.NewConverter(cfg, logger, options...).Convert(runCtx, source, opts)
	reporter.close()
	if errors.Is(err, conversion.ErrDestinationExists) {
		fmt.Fprintln(out, renderStatusLine("Destination", statusWarn, err.Error(), shouldColorize(out)))
		return nil
	}
	if err != nil {
		return err
	}

	if opts.DryRun {
		printPlan(out, result)
		return nil
	}
	printSummary(out, result)
	return nil
}

func printPlan(out io.Writer, result conversion.Result) {
	fmt.Fprintf(out, "Destination: %s\n", result.Destination.Path)
	rows := make([][]string, 0, len(result.Plan.Convert)+len(result.Plan.Copy)+len(result.Plan.Skipped))
	for _, task := range result.Plan.Convert {
		rows = append(rows, []string{"convert", relTo(result.Source, task.Source), strconv.Itoa(task.SampleRate)})
	}
	for _, task := range result.Plan.Copy {
		rows = append(rows, []string{"copy", relTo(result.Source, task.Source), ""})
	}
	for _, rel := range result.Plan.Skipped {
		rows = append(rows, []string{"skip", rel, ""})
	}
	if len(rows) == 0 {
		fmt.Fprintln(out, "Folder is empty")
		return
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Action", "File", "Source Rate"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight},
	))
}

func printSummary(out io.Writer, result conversion.Result) {
	fmt.Fprintf(out, "Converted %d %s, copied %d %s (%s) to %s\n",
		result.Converted, plural(result.Converted, "file"),
		result.Copied, plural(result.Copied, "file"),
		humanize.Bytes(uint64(max(result.BytesCopied, 0))),
		result.Destination.Path,
	)
	if skipped := len(result.Plan.Skipped); skipped > 0 {
		fmt.Fprintf(out, "Skipped %d unneeded %s\n", skipped, plural(skipped, "file"))
	}
}

func relTo(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return rel
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
