package conversion

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// Launcher starts one encoder process per task.
type Launcher interface {
	Launch(ctx context.Context, task Task, rate int) (Process, error)
}

// Process is a running encoder.
type Process interface {
	// Wait blocks until exit and returns the exit code and captured stderr.
	// err is set only when the exit status could not be determined.
	Wait() (exitCode int, stderr string, err error)
	// Terminate asks the process to stop.
	Terminate() error
	// Kill stops the process immediately.
	Kill() error
}

// SoxLauncher runs SoX with 16-bit dithered output and high quality
// linear-phase resampling.
type SoxLauncher struct {
	Binary string
	// Grace bounds how long a terminated process may take to exit after its
	// context is cancelled before it is killed.
	Grace time.Duration
}

// Args builds the SoX argument vector for a task.
func (l SoxLauncher) Args(task Task, rate int) []string {
	return []string{task.Source, "-G", "-b", "16", task.Dest, "rate", "-v", "-L", strconv.Itoa(rate), "dither"}
}

// Launch starts SoX for task. The process receives SIGTERM when ctx is cancelled.
func (l SoxLauncher) Launch(ctx context.Context, task Task, rate int) (Process, error) {
	binary := strings.TrimSpace(l.Binary)
	if binary == "" {
		binary = "sox"
	}
	cmd := exec.CommandContext(ctx, binary, l.Args(task, rate)...) //nolint:gosec
	cmd.Cancel = func() error {
		return cmd.Process.Signal(unix.SIGTERM)
	}
	cmd.WaitDelay = l.Grace

	proc := &execProcess{cmd: cmd}
	cmd.Stderr = &proc.stderr
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", binary, err)
	}
	return proc, nil
}

type execProcess struct {
	cmd    *exec.Cmd
	stderr bytes.Buffer

	mu     sync.Mutex
	exited bool
}

func (p *execProcess) Wait() (int, string, error) {
	err := p.cmd.Wait()
	p.mu.Lock()
	p.exited = true
	p.mu.Unlock()

	stderr := p.stderr.String()
	if err == nil {
		return 0, stderr, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), stderr, nil
	}
	return -1, stderr, err
}

func (p *execProcess) Terminate() error {
	return p.signal(unix.SIGTERM)
}

func (p *execProcess) Kill() error {
	return p.signal(unix.SIGKILL)
}

func (p *execProcess) signal(sig unix.Signal) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.exited || p.cmd.Process == nil {
		return nil
	}
	return p.cmd.Process.Signal(sig)
}
