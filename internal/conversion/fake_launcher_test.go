package conversion_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"downconv/internal/conversion"
)

// fakeProc is an encoder whose exit is driven by the test.
type fakeProc struct {
	name       string
	exit       chan int
	stderr     string
	ignoreTerm bool
	terminated atomic.Bool
	killed     atomic.Bool
	once       sync.Once
	onExit     func(code int)
}

func (p *fakeProc) finish(code int) {
	p.once.Do(func() { p.exit <- code })
}

func (p *fakeProc) Wait() (int, string, error) {
	code := <-p.exit
	if p.onExit != nil {
		p.onExit(code)
	}
	if code == 0 {
		return 0, "", nil
	}
	return code, p.stderr, nil
}

func (p *fakeProc) Terminate() error {
	p.terminated.Store(true)
	if !p.ignoreTerm {
		p.finish(143)
	}
	return nil
}

func (p *fakeProc) Kill() error {
	p.killed.Store(true)
	p.finish(137)
	return nil
}

// fakeLauncher records launches and tracks concurrently running processes.
type fakeLauncher struct {
	mu       sync.Mutex
	running  int
	peak     int
	launched []string
	rates    map[string]int
	procs    map[string]*fakeProc
	started  chan string
	// setup configures each process after it is created. It may call finish
	// from a goroutine to end the process.
	setup     func(p *fakeProc)
	launchErr map[string]error
	// writeOutput creates the destination file on success.
	writeOutput bool
}

func newFakeLauncher(setup func(p *fakeProc)) *fakeLauncher {
	return &fakeLauncher{
		rates:     map[string]int{},
		procs:     map[string]*fakeProc{},
		started:   make(chan string, 64),
		setup:     setup,
		launchErr: map[string]error{},
	}
}

func (l *fakeLauncher) Launch(_ context.Context, task conversion.Task, rate int) (conversion.Process, error) {
	name := task.Name()
	l.mu.Lock()
	if err := l.launchErr[name]; err != nil {
		l.mu.Unlock()
		return nil, err
	}
	l.launched = append(l.launched, name)
	l.rates[name] = rate
	l.running++
	if l.running > l.peak {
		l.peak = l.running
	}
	proc := &fakeProc{name: name, exit: make(chan int, 1), stderr: "sox FAIL " + name}
	writeOutput := l.writeOutput
	proc.onExit = func(code int) {
		if writeOutput && code == 0 {
			_ = os.WriteFile(task.Dest, []byte("16-bit "+name), 0o644)
		}
		l.mu.Lock()
		l.running--
		l.mu.Unlock()
	}
	l.procs[name] = proc
	l.mu.Unlock()

	if l.setup != nil {
		l.setup(proc)
	}
	l.started <- name
	return proc, nil
}

func (l *fakeLauncher) Launched() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.launched...)
}

func (l *fakeLauncher) Peak() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.peak
}

func (l *fakeLauncher) Proc(name string) *fakeProc {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.procs[name]
}

func (l *fakeLauncher) waitStarted(t *testing.T, want ...string) {
	t.Helper()
	for _, name := range want {
		select {
		case got := <-l.started:
			if got != name {
				t.Fatalf("expected %s to start, got %s", name, got)
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for %s to start", name)
		}
	}
}

// exitAfter ends every process with code after delay.
func exitAfter(delay time.Duration, code int) func(p *fakeProc) {
	return func(p *fakeProc) {
		go func() {
			time.Sleep(delay)
			p.finish(code)
		}()
	}
}

// finishRecorder reports ConversionFinished calls on a channel.
type finishRecorder struct {
	conversion.NopReporter
	finished chan string
	mu       sync.Mutex
	started  []int
}

func newFinishRecorder() *finishRecorder {
	return &finishRecorder{finished: make(chan string, 64)}
}

func (r *finishRecorder) ConversionStarted(_ conversion.Task, _ int, remaining int) {
	r.mu.Lock()
	r.started = append(r.started, remaining)
	r.mu.Unlock()
}

func (r *finishRecorder) ConversionFinished(task conversion.Task, err error) {
	status := "ok"
	if err != nil {
		status = "failed"
	}
	r.finished <- fmt.Sprintf("%s:%s", task.Name(), status)
}

func (r *finishRecorder) waitFinished(t *testing.T, want string) {
	t.Helper()
	select {
	case got := <-r.finished:
		if got != want {
			t.Fatalf("expected %s, got %s", want, got)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for %s", want)
	}
}

func makeTasks(dir string, rates ...int) []conversion.Task {
	tasks := make([]conversion.Task, len(rates))
	for i, rate := range rates {
		name := fmt.Sprintf("%02d.flac", i+1)
		tasks[i] = conversion.Task{
			Source:     filepath.Join(dir, "src", name),
			Dest:       filepath.Join(dir, "dst", name),
			SampleRate: rate,
		}
	}
	return tasks
}

var errLaunch = errors.New("exec: no such file")
