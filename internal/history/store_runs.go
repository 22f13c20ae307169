package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// BeginRun records the start of a conversion run.
func (s *Store) BeginRun(ctx context.Context, runID, source, destination string) error {
	runID = strings.TrimSpace(runID)
	if runID == "" {
		return errors.New("run id required")
	}
	return s.execWithRetry(
		ctx,
		`INSERT INTO runs (run_id, source_path, destination_path, status, started_at)
         VALUES (?, ?, ?, ?, ?)`,
		runID,
		source,
		destination,
		StatusRunning,
		formatTime(time.Now()),
	)
}

// RecordFile appends a per-file outcome to a run.
func (s *Store) RecordFile(ctx context.Context, result FileResult) error {
	return s.execWithRetry(
		ctx,
		`INSERT INTO run_files (run_id, path, action, status, detail, recorded_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		result.RunID,
		result.Path,
		result.Action,
		result.Status,
		nullableString(result.Detail),
		formatTime(time.Now()),
	)
}

// FinishRun stores the terminal status and counters of a run.
func (s *Store) FinishRun(ctx context.Context, runID string, status Status, counts Counts, runErr error) error {
	var message string
	if runErr != nil {
		message = runErr.Error()
	}
	return s.execWithRetry(
		ctx,
		`UPDATE runs
         SET status = ?, converted = ?, copied = ?, skipped = ?, bytes_copied = ?, error_message = ?, finished_at = ?
         WHERE run_id = ?`,
		status,
		counts.Converted,
		counts.Copied,
		counts.Skipped,
		counts.BytesCopied,
		nullableString(message),
		formatTime(time.Now()),
		runID,
	)
}

// ListRuns returns the most recent runs, newest first. A limit <= 0 returns all runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	ctx = ensureContext(ctx)
	query := `SELECT id, run_id, source_path, destination_path, status, converted, copied, skipped,
                     bytes_copied, error_message, started_at, finished_at
              FROM runs ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun returns a run by its run identifier, or nil when absent.
func (s *Store) GetRun(ctx context.Context, runID string) (*Run, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		`SELECT id, run_id, source_path, destination_path, status, converted, copied, skipped,
                bytes_copied, error_message, started_at, finished_at
         FROM runs WHERE run_id = ?`, runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// Files returns the per-file outcomes of a run in recording order.
func (s *Store) Files(ctx context.Context, runID string) ([]FileResult, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, path, action, status, detail FROM run_files WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("list run files: %w", err)
	}
	defer rows.Close()

	var files []FileResult
	for rows.Next() {
		var (
			result FileResult
			detail sql.NullString
		)
		if err := rows.Scan(&result.RunID, &result.Path, &result.Action, &result.Status, &detail); err != nil {
			return nil, fmt.Errorf("scan run file: %w", err)
		}
		result.Detail = detail.String
		files = append(files, result)
	}
	return files, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		run        Run
		errMessage sql.NullString
		startedAt  sql.NullString
		finishedAt sql.NullString
	)
	if err := row.Scan(
		&run.ID,
		&run.RunID,
		&run.Source,
		&run.Destination,
		&run.Status,
		&run.Converted,
		&run.Copied,
		&run.Skipped,
		&run.BytesCopied,
		&errMessage,
		&startedAt,
		&finishedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.Error = errMessage.String
	run.StartedAt = parseTime(startedAt)
	run.FinishedAt = parseTime(finishedAt)
	return run, nil
}
