package conversion

// Reporter receives per-file progress. Calls come from one goroutine at a time.
type Reporter interface {
	FileCopied(task CopyTask, bytes int64)
	FileSkipped(rel string)
	// SceneSuspected is called at most once per folder with the indicator
	// files found, relative to the source root.
	SceneSuspected(files []string)
	// ConversionStarted is called at launch; remaining counts tasks not yet launched.
	ConversionStarted(task Task, slot, remaining int)
	ConversionFinished(task Task, err error)
}

// NopReporter ignores all progress.
type NopReporter struct{}

func (NopReporter) FileCopied(CopyTask, int64)       {}
func (NopReporter) FileSkipped(string)               {}
func (NopReporter) SceneSuspected([]string)          {}
func (NopReporter) ConversionStarted(Task, int, int) {}
func (NopReporter) ConversionFinished(Task, error)   {}

func reporterOrNop(r Reporter) Reporter {
	if r == nil {
		return NopReporter{}
	}
	return r
}
