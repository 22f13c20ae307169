package conversion_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"downconv/internal/config"
	"downconv/internal/conversion"
	"downconv/internal/services"
)

func runSchedule(ctx context.Context, pool *conversion.Pool, tasks []conversion.Task, l conversion.Launcher, r conversion.Reporter) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- conversion.Schedule(ctx, pool, tasks, l, r)
	}()
	return errCh
}

func waitErr(t *testing.T, errCh <-chan error) error {
	t.Helper()
	select {
	case err := <-errCh:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for Schedule to return")
		return nil
	}
}

func TestScheduleRunsAllTasksWithinLimit(t *testing.T) {
	dir := t.TempDir()
	tasks := makeTasks(dir, 96000, 88200, 192000, 176400, 48000, 44100, 96000)
	launcher := newFakeLauncher(exitAfter(5*time.Millisecond, 0))
	pool := conversion.NewPool(conversion.PoolOptions{Size: 2})
	rep := newFinishRecorder()

	if err := conversion.Schedule(context.Background(), pool, tasks, launcher, rep); err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	if peak := launcher.Peak(); peak > 2 {
		t.Fatalf("expected at most 2 concurrent encoders, saw %d", peak)
	}
	launched := launcher.Launched()
	if len(launched) != len(tasks) {
		t.Fatalf("expected %d launches, got %v", len(tasks), launched)
	}
	for i, task := range tasks {
		if launched[i] != task.Name() {
			t.Fatalf("launch order %v does not follow task order", launched)
		}
	}
	if launcher.rates["02.flac"] != 44100 || launcher.rates["01.flac"] != 48000 {
		t.Fatalf("unexpected target rates %v", launcher.rates)
	}
	if len(rep.finished) != len(tasks) {
		t.Fatalf("expected %d completions, got %d", len(tasks), len(rep.finished))
	}
	if rep.started[0] != len(tasks)-1 || rep.started[len(rep.started)-1] != 0 {
		t.Fatalf("unexpected remaining counts %v", rep.started)
	}
	if _, err := os.Stat(filepath.Join(dir, "dst")); err != nil {
		t.Fatalf("expected destination directory to be created: %v", err)
	}
}

func TestScheduleSingleSlotIsSequential(t *testing.T) {
	tasks := makeTasks(t.TempDir(), 96000, 96000, 96000)
	launcher := newFakeLauncher(exitAfter(time.Millisecond, 0))
	pool := conversion.NewPool(conversion.PoolOptions{Size: 0})

	if pool.Size() != 1 {
		t.Fatalf("expected pool size clamped to 1, got %d", pool.Size())
	}
	if err := conversion.Schedule(context.Background(), pool, tasks, launcher, nil); err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if launcher.Peak() != 1 {
		t.Fatalf("expected one encoder at a time, saw %d", launcher.Peak())
	}
}

func TestScheduleFirstWaveFailureStopsLaunches(t *testing.T) {
	for _, policy := range []string{config.AbortTerminate, config.AbortWait} {
		t.Run(policy, func(t *testing.T) {
			tasks := makeTasks(t.TempDir(), 96000, 96000, 96000)
			launcher := newFakeLauncher(nil)
			pool := conversion.NewPool(conversion.PoolOptions{Size: 2, AbortPolicy: policy})
			rep := newFinishRecorder()

			errCh := runSchedule(context.Background(), pool, tasks, launcher, rep)
			launcher.waitStarted(t, "01.flac", "02.flac")

			launcher.Proc("01.flac").finish(2)
			rep.waitFinished(t, "01.flac:failed")

			second := launcher.Proc("02.flac")
			if policy == config.AbortWait {
				if second.terminated.Load() {
					t.Fatal("wait policy must not terminate running siblings")
				}
				second.finish(0)
			}

			err := waitErr(t, errCh)
			if !errors.Is(err, conversion.ErrEncoderFailed) || !errors.Is(err, services.ErrExternalTool) {
				t.Fatalf("expected encoder failure, got %v", err)
			}
			var encErr *conversion.EncoderError
			if !errors.As(err, &encErr) || encErr.ExitCode != 2 || encErr.Source != "01.flac" || encErr.Stderr != "sox FAIL 01.flac" {
				t.Fatalf("unexpected encoder error %#v", err)
			}

			if launched := launcher.Launched(); len(launched) != 2 {
				t.Fatalf("third task must never launch, launched %v", launched)
			}
			if policy == config.AbortTerminate && !second.terminated.Load() {
				t.Fatal("terminate policy must signal running siblings")
			}
			if launcher.Peak() > 2 {
				t.Fatalf("expected at most 2 concurrent encoders, saw %d", launcher.Peak())
			}
		})
	}
}

func TestScheduleInvalidSampleRateAborts(t *testing.T) {
	tasks := makeTasks(t.TempDir(), 96000, 50000, 96000)
	launcher := newFakeLauncher(exitAfter(time.Millisecond, 0))
	pool := conversion.NewPool(conversion.PoolOptions{Size: 1})

	err := conversion.Schedule(context.Background(), pool, tasks, launcher, nil)
	if !errors.Is(err, conversion.ErrInvalidSampleRate) {
		t.Fatalf("expected ErrInvalidSampleRate, got %v", err)
	}
	var rateErr *conversion.InvalidSampleRateError
	if !errors.As(err, &rateErr) || rateErr.File != "02.flac" || rateErr.Rate != 50000 {
		t.Fatalf("unexpected error %#v", err)
	}
	if launched := launcher.Launched(); len(launched) != 1 {
		t.Fatalf("expected only the first task launched, got %v", launched)
	}
}

func TestScheduleLaunchErrorAborts(t *testing.T) {
	tasks := makeTasks(t.TempDir(), 96000, 96000)
	launcher := newFakeLauncher(exitAfter(time.Millisecond, 0))
	launcher.launchErr["01.flac"] = errLaunch
	pool := conversion.NewPool(conversion.PoolOptions{Size: 2})

	err := conversion.Schedule(context.Background(), pool, tasks, launcher, nil)
	if !errors.Is(err, errLaunch) || !errors.Is(err, conversion.ErrEncoderFailed) {
		t.Fatalf("expected wrapped launch error, got %v", err)
	}
	if len(launcher.Launched()) != 0 {
		t.Fatalf("expected no launches, got %v", launcher.Launched())
	}
}

func TestScheduleCancellationTerminatesRunning(t *testing.T) {
	tasks := makeTasks(t.TempDir(), 96000, 96000, 96000)
	launcher := newFakeLauncher(nil)
	pool := conversion.NewPool(conversion.PoolOptions{Size: 2, AbortPolicy: config.AbortWait})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := runSchedule(ctx, pool, tasks, launcher, nil)
	launcher.waitStarted(t, "01.flac", "02.flac")
	cancel()

	err := waitErr(t, errCh)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	for _, name := range []string{"01.flac", "02.flac"} {
		if !launcher.Proc(name).terminated.Load() {
			t.Fatalf("expected %s to be terminated", name)
		}
	}
	if len(launcher.Launched()) != 2 {
		t.Fatalf("expected no launches after cancel, got %v", launcher.Launched())
	}
}

func TestScheduleKillsAfterGrace(t *testing.T) {
	tasks := makeTasks(t.TempDir(), 96000, 96000)
	launcher := newFakeLauncher(func(p *fakeProc) {
		p.ignoreTerm = p.name == "02.flac"
	})
	pool := conversion.NewPool(conversion.PoolOptions{Size: 2, Grace: 20 * time.Millisecond})

	errCh := runSchedule(context.Background(), pool, tasks, launcher, nil)
	launcher.waitStarted(t, "01.flac", "02.flac")
	launcher.Proc("01.flac").finish(1)

	err := waitErr(t, errCh)
	if !errors.Is(err, conversion.ErrEncoderFailed) {
		t.Fatalf("expected encoder failure, got %v", err)
	}
	stubborn := launcher.Proc("02.flac")
	if !stubborn.terminated.Load() || !stubborn.killed.Load() {
		t.Fatal("expected stubborn encoder to be terminated and then killed")
	}
}

func TestScheduleRemovesPartialOutput(t *testing.T) {
	tasks := makeTasks(t.TempDir(), 96000)
	if err := os.MkdirAll(filepath.Dir(tasks[0].Dest), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(tasks[0].Dest, []byte("partial"), 0o644); err != nil {
		t.Fatal(err)
	}
	launcher := newFakeLauncher(exitAfter(time.Millisecond, 2))
	pool := conversion.NewPool(conversion.PoolOptions{Size: 1})

	if err := conversion.Schedule(context.Background(), pool, tasks, launcher, nil); err == nil {
		t.Fatal("expected failure")
	}
	if _, err := os.Stat(tasks[0].Dest); !os.IsNotExist(err) {
		t.Fatalf("expected partial output removed, stat err=%v", err)
	}
}

func TestScheduleNoTasks(t *testing.T) {
	pool := conversion.NewPool(conversion.PoolOptions{Size: 2})
	if err := conversion.Schedule(context.Background(), pool, nil, nil, nil); err != nil {
		t.Fatalf("expected nil for empty task list, got %v", err)
	}
}
