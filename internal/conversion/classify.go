package conversion

import (
	"io/fs"
	"path/filepath"
	"regexp"

	"downconv/internal/audioinfo"
)

// Task converts one high-resolution file.
type Task struct {
	Source     string
	Dest       string
	SampleRate int
}

// Name returns the source basename.
func (t Task) Name() string { return filepath.Base(t.Source) }

// CopyTask duplicates one file verbatim.
type CopyTask struct {
	Source string
	Dest   string
}

// Plan is the classification of a source tree. Slices keep walk order.
type Plan struct {
	Convert []Task
	Copy    []CopyTask
	// Skipped holds paths relative to the source root.
	Skipped []string
}

// ClassifyOptions controls which files are dropped from the copy set.
type ClassifyOptions struct {
	SkipUnneeded bool
	// Keep protects matching basenames from SkipUnneeded.
	Keep *regexp.Regexp
}

// Classify partitions every file under source into convert, copy, or skip,
// mirroring relative paths under dest.
func Classify(source, dest string, info audioinfo.Index, opts ClassifyOptions) (Plan, error) {
	var plan Plan
	err := walkFiles(source, func(rel string, d fs.DirEntry) error {
		src := filepath.Join(source, rel)
		out := filepath.Join(dest, rel)
		name := d.Name()

		if rec, ok := info.Lookup(name); ok && rec.Precision == 24 {
			plan.Convert = append(plan.Convert, Task{Source: src, Dest: out, SampleRate: rec.SampleRate})
			return nil
		}
		if opts.SkipUnneeded && (opts.Keep == nil || !opts.Keep.MatchString(name)) {
			plan.Skipped = append(plan.Skipped, rel)
			return nil
		}
		plan.Copy = append(plan.Copy, CopyTask{Source: src, Dest: out})
		return nil
	})
	if err != nil {
		return Plan{}, filesystemError("classify", "scan source folder", err)
	}
	return plan, nil
}
