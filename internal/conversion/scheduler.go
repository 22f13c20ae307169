package conversion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"downconv/internal/config"
	"downconv/internal/logging"
	"downconv/internal/services"
)

// PoolOptions configures a Pool.
type PoolOptions struct {
	Size int
	// AbortPolicy is config.AbortTerminate or config.AbortWait.
	AbortPolicy string
	// Grace is how long terminated encoders get before they are killed.
	Grace  time.Duration
	Logger *slog.Logger
}

// Pool is a fixed set of encoder slots for one folder conversion. It is not
// safe for concurrent use and must not be reused across folders.
type Pool struct {
	slots  []slot
	policy string
	grace  time.Duration
	logger *slog.Logger
}

type slot struct {
	task    *Task
	proc    Process
	started time.Time
}

func (s slot) idle() bool { return s.proc == nil }

// NewPool builds a pool with opts.Size slots (at least one).
func NewPool(opts PoolOptions) *Pool {
	size := opts.Size
	if size < 1 {
		size = 1
	}
	policy := opts.AbortPolicy
	if policy != config.AbortWait {
		policy = config.AbortTerminate
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Pool{
		slots:  make([]slot, size),
		policy: policy,
		grace:  opts.Grace,
		logger: logger,
	}
}

// Size returns the number of slots.
func (p *Pool) Size() int { return len(p.slots) }

type completion struct {
	slot     int
	exitCode int
	stderr   string
	err      error
}

// Schedule runs tasks on the pool's slots in order. At most Size encoders run
// at once. The first launch failure, invalid sample rate, or nonzero exit
// stops further launches and is returned once every running encoder has been
// reaped. Cancelling ctx terminates running encoders.
func Schedule(ctx context.Context, pool *Pool, tasks []Task, launcher Launcher, reporter Reporter) error {
	if len(tasks) == 0 {
		return nil
	}
	if launcher == nil {
		return errors.New("schedule: launcher is required")
	}
	reporter = reporterOrNop(reporter)
	logger := logging.NewComponentLogger(pool.logger, "scheduler")
	if stage, ok := services.StageFromContext(ctx); ok {
		logger = logger.With(logging.String(logging.FieldStage, stage))
	}

	var (
		done      = make(chan completion, len(pool.slots))
		next      int
		running   int
		failure   error
		ctxDone   = ctx.Done()
		killTimer <-chan time.Time
	)

	abort := func(cause error, terminate bool) {
		if failure == nil {
			failure = cause
		}
		if !terminate || running == 0 {
			if running > 0 {
				logger.Info("waiting for running encoders after failure", logging.Int("running", running))
			}
			return
		}
		logger.Info("terminating running encoders", logging.Int("running", running))
		for i := range pool.slots {
			if pool.slots[i].idle() {
				continue
			}
			if err := pool.slots[i].proc.Terminate(); err != nil {
				logger.Debug("terminate encoder", logging.Int(logging.FieldSlot, i), logging.Error(err))
			}
		}
		if pool.grace > 0 && killTimer == nil {
			killTimer = time.After(pool.grace)
		}
	}

	launch := func(i int) error {
		task := tasks[next]
		next++
		rate, err := ResolveSampleRate(task.SampleRate)
		if err != nil {
			var rateErr *InvalidSampleRateError
			if errors.As(err, &rateErr) {
				rateErr.File = task.Name()
			}
			return err
		}
		if err := os.MkdirAll(filepath.Dir(task.Dest), 0o755); err != nil {
			return filesystemError("convert", "create destination directory", err)
		}
		proc, err := launcher.Launch(ctx, task, rate)
		if err != nil {
			return &EncoderError{Source: task.Name(), ExitCode: -1, Err: err}
		}
		pool.slots[i] = slot{task: &tasks[next-1], proc: proc, started: time.Now()}
		running++
		reporter.ConversionStarted(task, i, len(tasks)-next)
		logger.Debug("encoder launched",
			logging.String(logging.FieldFile, task.Name()),
			logging.Int(logging.FieldSlot, i),
			logging.Int("target_rate", rate),
		)
		go func(i int, proc Process) {
			code, stderr, err := proc.Wait()
			done <- completion{slot: i, exitCode: code, stderr: stderr, err: err}
		}(i, proc)
		return nil
	}

	fill := func() {
		for i := range pool.slots {
			if failure != nil || next >= len(tasks) {
				return
			}
			if !pool.slots[i].idle() {
				continue
			}
			if err := ctx.Err(); err != nil {
				abort(fmt.Errorf("conversion cancelled: %w", err), true)
				return
			}
			if err := launch(i); err != nil {
				abort(err, pool.policy == config.AbortTerminate)
				return
			}
		}
	}

	fill()
	for running > 0 {
		select {
		case c := <-done:
			finished := pool.slots[c.slot]
			task := *finished.task
			pool.slots[c.slot] = slot{}
			running--

			if c.err == nil && c.exitCode == 0 {
				logger.Debug("encoder finished",
					logging.String(logging.FieldFile, task.Name()),
					logging.Int(logging.FieldSlot, c.slot),
					logging.Duration("elapsed", time.Since(finished.started)),
				)
				reporter.ConversionFinished(task, nil)
				fill()
				continue
			}

			encErr := &EncoderError{Source: task.Name(), ExitCode: c.exitCode, Stderr: c.stderr, Err: c.err}
			discardPartial(task, logger)
			if failure != nil {
				// A sibling stopped after the batch was already aborted.
				reporter.ConversionFinished(task, encErr)
				continue
			}
			logging.ErrorWithContext(logger, "encoder failed", "encoder_failed",
				logging.String(logging.FieldFile, task.Name()),
				logging.Int("exit_code", c.exitCode),
				logging.String("stderr", c.stderr),
				logging.String(logging.FieldErrorHint, "inspect the encoder output above and the source file"),
			)
			reporter.ConversionFinished(task, encErr)
			abort(encErr, pool.policy == config.AbortTerminate)

		case <-ctxDone:
			ctxDone = nil
			abort(fmt.Errorf("conversion cancelled: %w", ctx.Err()), true)

		case <-killTimer:
			killTimer = nil
			for i := range pool.slots {
				if pool.slots[i].idle() {
					continue
				}
				logger.Warn("encoder ignored terminate, killing",
					logging.String(logging.FieldFile, pool.slots[i].task.Name()),
					logging.Int(logging.FieldSlot, i),
				)
				_ = pool.slots[i].proc.Kill()
			}
		}
	}

	return failure
}

func discardPartial(task Task, logger *slog.Logger) {
	if err := os.Remove(task.Dest); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Debug("remove partial output", logging.String(logging.FieldFile, task.Dest), logging.Error(err))
	}
}
