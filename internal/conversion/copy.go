package conversion

import (
	"context"
	"os"
	"path/filepath"

	"downconv/internal/fileutil"
)

// CopyAll copies every task in order, creating destination directories as
// needed. It stops at the first error and returns the bytes written so far.
func CopyAll(ctx context.Context, tasks []CopyTask, reporter Reporter) (int64, error) {
	reporter = reporterOrNop(reporter)
	var total int64
	for _, task := range tasks {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		if err := os.MkdirAll(filepath.Dir(task.Dest), 0o755); err != nil {
			return total, filesystemError("copy", "create destination directory", err)
		}
		n, err := fileutil.CopyFileVerified(task.Source, task.Dest)
		if err != nil {
			return total, filesystemError("copy", "copy "+filepath.Base(task.Source), err)
		}
		total += n
		reporter.FileCopied(task, n)
	}
	return total, nil
}
