package conversion

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"downconv/internal/audioinfo"
	"downconv/internal/config"
	"downconv/internal/deps"
	"downconv/internal/fileutil"
	"downconv/internal/history"
	"downconv/internal/logging"
	"downconv/internal/preflight"
	"downconv/internal/services"
)

// Options controls a single folder conversion.
type Options struct {
	SkipUnneeded bool
	// DryRun stops after classification without writing anything.
	DryRun bool
}

// Result summarizes a folder conversion.
type Result struct {
	RunID       string
	Source      string
	Destination Destination
	Plan        Plan
	SceneFiles  []string
	Copied      int
	Converted   int
	BytesCopied int64
}

// InfoSource supplies stream metadata for the files under a folder.
type InfoSource func(ctx context.Context, root string, logger *slog.Logger) (audioinfo.Index, error)

// Converter runs folder conversions with a shared configuration.
type Converter struct {
	cfg      *config.Config
	logger   *slog.Logger
	launcher Launcher
	store    *history.Store
	reporter Reporter
	info     InfoSource

	// requirements are checked before anything is written. Empty when the
	// caller supplied its own launcher.
	requirements []deps.Requirement
}

// Option customizes a Converter.
type Option func(*Converter)

// WithLauncher replaces the SoX launcher.
func WithLauncher(l Launcher) Option {
	return func(c *Converter) { c.launcher = l }
}

// WithHistory records runs in store.
func WithHistory(store *history.Store) Option {
	return func(c *Converter) { c.store = store }
}

// WithReporter receives per-file progress.
func WithReporter(r Reporter) Option {
	return func(c *Converter) { c.reporter = r }
}

// WithInfoSource replaces audioinfo.Gather.
func WithInfoSource(fn InfoSource) Option {
	return func(c *Converter) { c.info = fn }
}

// NewConverter builds a Converter for cfg.
func NewConverter(cfg *config.Config, logger *slog.Logger, opts ...Option) *Converter {
	if logger == nil {
		logger = logging.NewNop()
	}
	c := &Converter{
		cfg:    cfg,
		logger: logger,
		info:   audioinfo.Gather,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.launcher == nil {
		c.launcher = SoxLauncher{Binary: cfg.EncoderBinary(), Grace: c.grace()}
		c.requirements = preflight.SystemRequirements(cfg)
	}
	c.reporter = reporterOrNop(c.reporter)
	return c
}

func (c *Converter) grace() time.Duration {
	return time.Duration(c.cfg.Encoder.TerminateGraceSeconds) * time.Second
}

// Convert produces the 16-bit sibling of source.
//
// It returns an error wrapping ErrDestinationExists, with nothing written,
// when the output folder is already present.
func (c *Converter) Convert(ctx context.Context, source string, opts Options) (result Result, err error) {
	abs, err := filepath.Abs(source)
	if err != nil {
		return Result{}, services.Wrap(services.ErrValidation, "conversion", "resolve source", source, err)
	}
	if check := preflight.CheckReadable("Source folder", abs); !check.Passed {
		return Result{}, services.Wrap(services.ErrNotFound, "conversion", "source folder", check.Detail, nil)
	}

	runID, ok := services.RunIDFromContext(ctx)
	if !ok {
		runID = uuid.NewString()
		ctx = services.WithRunID(ctx, runID)
	}
	ctx = services.WithFolder(ctx, abs)
	base := logging.WithContext(ctx, c.logger)
	logger := logging.NewComponentLogger(base, "converter")

	result = Result{RunID: runID, Source: abs, Destination: DestinationFor(abs)}
	rec := newRecorder(ctx, c.store, runID, abs, c.reporter, logger)
	if opts.DryRun {
		rec.store = nil
	} else {
		rec.begin(abs, result.Destination.Path)
		defer func() { rec.finish(err) }()
	}

	if err := ValidateLossless(abs, c.cfg.LossySet()); err != nil {
		return result, err
	}

	unlock, err := c.lock(abs)
	if err != nil {
		return result, err
	}
	defer unlock()

	dest := result.Destination
	exists, err := fileutil.Exists(dest.Path)
	if err != nil {
		return result, filesystemError("destination", "stat destination", err)
	}
	if exists {
		return result, &DestinationExistsError{Path: dest.Path}
	}
	if check := preflight.CheckDirectoryAccess("Destination parent", filepath.Dir(dest.Path)); !check.Passed {
		return result, services.Wrap(services.ErrFilesystem, "conversion", "destination parent", check.Detail, nil)
	}

	result.SceneFiles, err = DetectScene(abs, c.cfg.SceneSet())
	if err != nil {
		return result, err
	}
	if len(result.SceneFiles) > 0 {
		for _, name := range result.SceneFiles {
			logger.Debug("scene indicator", logging.String(logging.FieldFile, name))
		}
		logging.WarnWithContext(logger, "this may be a scene release", "scene_release",
			logging.Int("indicator_files", len(result.SceneFiles)),
			logging.String(logging.FieldErrorHint, "review the output manually"),
			logging.String(logging.FieldImpact, "manual work may be required after conversion"),
		)
		rec.SceneSuspected(result.SceneFiles)
	}

	info, err := c.info(ctx, abs, logger)
	if err != nil {
		return result, filesystemError("audio info", "read stream metadata", err)
	}
	result.Plan, err = Classify(abs, dest.Path, info, ClassifyOptions{
		SkipUnneeded: opts.SkipUnneeded,
		Keep:         c.cfg.KeepPattern(),
	})
	if err != nil {
		return result, err
	}
	for _, rel := range result.Plan.Skipped {
		rec.FileSkipped(rel)
	}
	logger.Info("folder classified",
		logging.String("destination", dest.Name),
		logging.Int("convert", len(result.Plan.Convert)),
		logging.Int("copy", len(result.Plan.Copy)),
		logging.Int("skip", len(result.Plan.Skipped)),
	)
	if opts.DryRun {
		return result, nil
	}

	if err := c.checkRequirements(); err != nil {
		return result, err
	}
	if err := os.MkdirAll(dest.Path, 0o755); err != nil {
		return result, filesystemError("destination", "create destination folder", err)
	}

	copyCtx := services.WithStage(ctx, "copy")
	result.BytesCopied, err = CopyAll(copyCtx, result.Plan.Copy, rec)
	result.Copied = rec.counts.Copied
	if err != nil {
		return result, err
	}

	pool := NewPool(PoolOptions{
		Size:        c.cfg.Encoder.Concurrency,
		AbortPolicy: c.cfg.Encoder.AbortPolicy,
		Grace:       c.grace(),
		Logger:      base,
	})
	err = Schedule(services.WithStage(ctx, "convert"), pool, result.Plan.Convert, c.launcher, rec)
	result.Converted = rec.counts.Converted
	if err != nil {
		return result, err
	}

	logger.Info("folder converted",
		logging.String("destination", dest.Path),
		logging.Int("converted", result.Converted),
		logging.Int("copied", result.Copied),
		logging.Int64("bytes_copied", result.BytesCopied),
	)
	return result, nil
}

// checkRequirements fails before the destination exists, so a missing
// encoder never leaves a half-built folder that blocks the next run.
func (c *Converter) checkRequirements() error {
	if len(c.requirements) == 0 {
		return nil
	}
	missing := deps.Missing(deps.CheckBinaries(c.requirements))
	if len(missing) == 0 {
		return nil
	}
	return services.Wrap(services.ErrConfiguration, "conversion", "encoder", deps.Describe(missing), nil)
}

// lock takes an exclusive per-source lock in the state directory so two
// invocations never write the same destination.
func (c *Converter) lock(source string) (func(), error) {
	if err := c.cfg.EnsureDirectories(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "conversion", "state directory", "", err)
	}
	name := uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+source)).String() + ".lock"
	fl := flock.New(filepath.Join(c.cfg.LockDir(), name))
	locked, err := fl.TryLock()
	if err != nil {
		return nil, filesystemError("lock", "acquire folder lock", err)
	}
	if !locked {
		return nil, services.Wrap(services.ErrConflict, "conversion", "lock", "folder is already being converted by another downconv process", nil)
	}
	return func() { _ = fl.Unlock() }, nil
}

// recorder forwards progress to the caller's Reporter and mirrors it into
// run history with paths relative to the source folder. History failures
// are logged and never fail the conversion.
type recorder struct {
	ctx    context.Context
	store  *history.Store
	runID  string
	root   string
	next   Reporter
	logger *slog.Logger
	counts history.Counts
}

func newRecorder(ctx context.Context, store *history.Store, runID, root string, next Reporter, logger *slog.Logger) *recorder {
	return &recorder{
		ctx:    context.WithoutCancel(ctx),
		store:  store,
		runID:  runID,
		root:   root,
		next:   next,
		logger: logger,
	}
}

func (r *recorder) begin(source, dest string) {
	if r.store == nil {
		return
	}
	if err := r.store.BeginRun(r.ctx, r.runID, source, dest); err != nil {
		r.logger.Warn("history begin failed", logging.Error(err))
		r.store = nil
	}
}

func (r *recorder) finish(err error) {
	if r.store == nil {
		return
	}
	status := history.StatusCompleted
	if err != nil {
		status = services.FailureStatus(err)
	}
	if ferr := r.store.FinishRun(r.ctx, r.runID, status, r.counts, err); ferr != nil {
		r.logger.Warn("history finish failed", logging.Error(ferr))
	}
}

func (r *recorder) record(path string, action history.Action, status history.Status, detail string) {
	if r.store == nil {
		return
	}
	if filepath.IsAbs(path) {
		if rel, err := filepath.Rel(r.root, path); err == nil {
			path = rel
		}
	}
	err := r.store.RecordFile(r.ctx, history.FileResult{
		RunID:  r.runID,
		Path:   path,
		Action: action,
		Status: status,
		Detail: detail,
	})
	if err != nil {
		r.logger.Warn("history record failed", logging.String(logging.FieldFile, path), logging.Error(err))
	}
}

func (r *recorder) FileCopied(task CopyTask, bytes int64) {
	r.counts.Copied++
	r.counts.BytesCopied += bytes
	r.record(task.Source, history.ActionCopy, history.StatusCompleted, "")
	r.next.FileCopied(task, bytes)
}

func (r *recorder) FileSkipped(rel string) {
	r.counts.Skipped++
	r.record(rel, history.ActionSkip, history.StatusSkipped, "")
	r.next.FileSkipped(rel)
}

func (r *recorder) SceneSuspected(files []string) {
	r.next.SceneSuspected(files)
}

func (r *recorder) ConversionStarted(task Task, slot, remaining int) {
	r.next.ConversionStarted(task, slot, remaining)
}

func (r *recorder) ConversionFinished(task Task, err error) {
	if err == nil {
		r.counts.Converted++
		r.record(task.Source, history.ActionConvert, history.StatusCompleted, "")
	} else {
		r.record(task.Source, history.ActionConvert, history.StatusFailed, err.Error())
	}
	r.next.ConversionFinished(task, err)
}
