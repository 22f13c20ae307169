package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"

	"downconv/internal/conversion"
)

// consoleReporter prints one line per copied, skipped, or converted file.
// When the progress writer is a terminal a spinner tracks finished files.
type consoleReporter struct {
	out      io.Writer
	bar      *progressbar.ProgressBar
	colorize bool
}

func newConsoleReporter(out, progress io.Writer) *consoleReporter {
	r := &consoleReporter{out: out, colorize: shouldColorize(out)}
	if shouldColorize(progress) {
		r.bar = progressbar.NewOptions(-1,
			progressbar.OptionSetWriter(progress),
			progressbar.OptionSetDescription("working"),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionShowCount(),
			progressbar.OptionSetElapsedTime(true),
			progressbar.OptionClearOnFinish(),
		)
	}
	return r
}

func (r *consoleReporter) FileCopied(task conversion.CopyTask, bytes int64) {
	r.println(fmt.Sprintf("Copied %s (%s)", task.Dest, humanize.Bytes(uint64(max(bytes, 0)))))
	r.advance()
}

func (r *consoleReporter) FileSkipped(rel string) {
	r.println("Skipped " + rel)
}

func (r *consoleReporter) SceneSuspected(files []string) {
	detail := fmt.Sprintf("this may be a scene release, review the output manually (%s)", strings.Join(files, ", "))
	r.println(renderStatusLine("Scene", statusWarn, detail, r.colorize))
}

func (r *consoleReporter) ConversionStarted(task conversion.Task, slot, remaining int) {
	r.println(fmt.Sprintf("Converting %s [%d left to convert]", task.Name(), remaining))
	if r.bar != nil {
		r.bar.Describe("converting " + task.Name())
	}
}

func (r *consoleReporter) ConversionFinished(task conversion.Task, err error) {
	if err != nil {
		r.println(renderStatusLine(task.Name(), statusError, "conversion failed", r.colorize))
		return
	}
	r.advance()
}

func (r *consoleReporter) advance() {
	if r.bar != nil {
		_ = r.bar.Add(1)
	}
}

func (r *consoleReporter) println(line string) {
	if r.bar != nil {
		_ = r.bar.Clear()
	}
	fmt.Fprintln(r.out, line)
	if r.bar != nil {
		_ = r.bar.RenderBlank()
	}
}

func (r *consoleReporter) close() {
	if r.bar != nil {
		_ = r.bar.Finish()
	}
}
