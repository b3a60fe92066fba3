package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/gofrs/flock"

	"subburn/internal/api"
	"subburn/internal/config"
	"subburn/internal/jobs"
	"subburn/internal/logging"
	"subburn/internal/metrics"
	"subburn/internal/notifications"
	"subburn/internal/pipeline"
	"subburn/internal/retention"
)

// Runner is the pipeline surface the daemon drives.
type Runner interface {
	api.Processor
	pipeline.JobRunner
}

// Deps carries the daemon collaborators. Notifier and Metrics are optional.
type Deps struct {
	Store    *jobs.Store
	Runner   Runner
	Notifier notifications.Service
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
}

// Daemon coordinates background runs and enforces single-instance execution.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *jobs.Store
	runner   Runner
	notifier notifications.Service
	metrics  *metrics.Metrics

	lockPath string
	lock     *flock.Flock

	executor  *pipeline.Executor
	retention *retention.Scheduler
	server    *apiServer

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	ActiveRuns   int
	Jobs         jobs.HealthSummary
	DatabasePath string
	LockFilePath string
	APIAddress   string
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, deps Deps) (*Daemon, error) {
	if cfg == nil || deps.Store == nil || deps.Runner == nil {
		return nil, errors.New("daemon requires config, store, and pipeline runner")
	}
	notifier := deps.Notifier
	if notifier == nil {
		notifier = notifications.NewService(nil)
	}
	lockPath := cfg.LockPath()
	return &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(deps.Logger, "daemon"),
		store:    deps.Store,
		runner:   deps.Runner,
		notifier: notifier,
		metrics:  deps.Metrics,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start acquires the daemon lock, recovers interrupted jobs and launches the
// executor, the retention scheduler and the API server.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another subburn daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	d.recoverInterrupted(d.ctx)

	d.executor = pipeline.NewExecutor(d.ctx, d.runner, d.logger)
	svc := api.NewJobService(api.JobServiceDeps{
		Store:     d.store,
		Processor: d.runner,
		Submitter: d.executor,
		UploadDir: d.cfg.Paths.UploadDir,
		Uploads:   d.metrics,
		Logger:    d.logger,
	})

	d.retention = retention.NewScheduler(d.cfg, d.store, d.metrics, d.logger)
	if err := d.retention.Start(d.ctx); err != nil {
		d.abortStart()
		return fmt.Errorf("start retention: %w", err)
	}

	server, err := newAPIServer(d.cfg, svc, d.metrics, d.logger)
	if err != nil {
		d.abortStart()
		return err
	}
	if err := server.start(d.ctx); err != nil {
		d.abortStart()
		return err
	}
	d.server = server

	d.running.Store(true)
	d.logger.Info("subburn daemon started",
		logging.String("lock", d.lockPath),
		logging.String("api", d.server.address()),
	)
	return nil
}

func (d *Daemon) abortStart() {
	d.retention.Stop()
	d.cancel()
	d.executor.Wait()
	_ = d.lock.Unlock()
	d.ctx = nil
	d.cancel = nil
}

func (d *Daemon) recoverInterrupted(ctx context.Context) {
	count, err := d.store.FailInterrupted(ctx)
	if err != nil {
		logging.WarnWithContext(d.logger, "failed to recover interrupted jobs", "interrupted_recovery_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "jobs left in processing stay there until reprocessed"),
			logging.String(logging.FieldErrorHint, "check database permissions"),
		)
		return
	}
	if count == 0 {
		return
	}
	d.logger.Info("interrupted jobs marked failed",
		logging.Int64("count", count),
		logging.String(logging.FieldEventType, "interrupted_jobs_failed"),
		logging.String("reason", jobs.InterruptedReason),
	)
	if err := d.notifier.NotifyInterruptedJobs(ctx, count); err != nil {
		d.logger.Debug("interrupted jobs notification failed", logging.Error(err))
	}
}

// Stop stops the API server and scheduler, cancels in-flight runs, waits for
// them to finish and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	d.server.stop()
	d.retention.Stop()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.executor.Wait()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("subburn daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Addr returns the API listen address once started.
func (d *Daemon) Addr() string {
	if !d.running.Load() {
		return ""
	}
	return d.server.address()
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) Status {
	status := Status{
		Running:      d.running.Load(),
		DatabasePath: d.store.Path(),
		LockFilePath: d.lockPath,
	}
	if status.Running {
		status.ActiveRuns = d.executor.Running()
		status.APIAddress = d.server.address()
	}
	if health, err := d.store.Health(ctx); err == nil {
		status.Jobs = health
	} else {
		d.logger.Warn("job health unavailable", logging.Error(err))
	}
	return status
}
