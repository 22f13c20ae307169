package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"downconv/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List previous conversion runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistory(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No conversions recorded")
				return nil
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Run", "Started", "Folder", "Status", "Converted", "Copied", "Skipped", "Duration"},
				runRows(runs, time.Now()),
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight},
			))
			return nil
		},
	}
	historyCmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list (0 for all)")

	historyCmd.AddCommand(newHistoryShowCommand(ctx))
	return historyCmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the files processed by one run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistory(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := store.GetRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if run == nil {
				return fmt.Errorf("run %s not found", args[0])
			}
			files, err := store.Files(cmd.Context(), run.RunID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			fmt.Fprintln(out, renderStatusLine("Source", statusInfo, run.Source, colorize))
			fmt.Fprintln(out, renderStatusLine("Destination", statusInfo, run.Destination, colorize))
			fmt.Fprintln(out, renderStatusLine("Status", runStatusKind(run.Status), string(run.Status), colorize))
			fmt.Fprintln(out, renderStatusLine("Files", statusInfo,
				fmt.Sprintf("%d converted, %d copied (%s), %d skipped",
					run.Converted, run.Copied, humanize.Bytes(uint64(max(run.BytesCopied, 0))), run.Skipped),
				colorize))
			if run.Error != "" {
				fmt.Fprintln(out, renderStatusLine("Error", statusError, run.Error, colorize))
			}
			if len(files) == 0 {
				return nil
			}
			rows := make([][]string, 0, len(files))
			for _, f := range files {
				rows = append(rows, []string{string(f.Action), f.Path, string(f.Status), f.Detail})
			}
			fmt.Fprintln(out, renderTable([]string{"Action", "File", "Status", "Detail"}, rows, nil))
			return nil
		},
	}
}

func openHistory(ctx *commandContext) (*history.Store, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.History.Enabled {
		return nil, errors.New("run history is disabled (set history.enabled in the config)")
	}
	return history.Open(cfg)
}

func runRows(runs []history.Run, now time.Time) [][]string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		duration := "-"
		if d := run.Duration(); d > 0 {
			duration = d.Round(time.Second).String()
		}
		rows = append(rows, []string{
			run.RunID,
			humanize.RelTime(run.StartedAt, now, "ago", "from now"),
			filepath.Base(run.Source),
			string(run.Status),
			strconv.Itoa(run.Converted),
			strconv.Itoa(run.Copied),
			strconv.Itoa(run.Skipped),
			duration,
		})
	}
	return rows
}

func runStatusKind(status history.Status) statusKind {
	switch status {
	case history.StatusCompleted:
		return statusOK
	case history.StatusSkipped, history.StatusRunning:
		return statusWarn
	case history.StatusFailed, history.StatusRejected:
		return statusError
	default:
		return statusInfo
	}
}
