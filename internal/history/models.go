package history

import "time"

// Status represents the terminal (or in-flight) state of a run or file.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	// StatusRejected marks runs stopped by validation or configuration before
	// any output was written.
	StatusRejected Status = "rejected"
	// StatusSkipped marks runs whose destination already existed or whose
	// folder was locked by another process, and files dropped by
	// --skip-unneeded-files.
	StatusSkipped Status = "skipped"
)

// Action describes what the converter did with a file.
type Action string

const (
	ActionConvert Action = "convert"
	ActionCopy    Action = "copy"
	ActionSkip    Action = "skip"
)

// Run is one invocation of the converter against a source folder.
type Run struct {
	ID          int64
	RunID       string
	Source      string
	Destination string
	Status      Status
	Converted   int
	Copied      int
	Skipped     int
	BytesCopied int64
	Error       string
	StartedAt   time.Time
	FinishedAt  time.Time
}

// Duration returns how long the run took, or zero while it is still running.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() || r.StartedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// FileResult is the outcome recorded for a single file within a run.
type FileResult struct {
	RunID  string
	Path   string
	Action Action
	Status Status
	Detail string
}

// Counts summarizes a finished run.
type Counts struct {
	Converted   int
	Copied      int
	Skipped     int
	BytesCopied int64
}
