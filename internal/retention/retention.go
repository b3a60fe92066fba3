package retention

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"subburn/internal/audio"
	"subburn/internal/config"
	"subburn/internal/jobs"
	"subburn/internal/logging"
)

// Store is the persistence surface a sweep needs.
type Store interface {
	ListFinishedBefore(ctx context.Context, cutoff time.Time) ([]*jobs.Job, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// Counter receives the number of jobs removed by each sweep.
type Counter interface {
	RetentionRemoved(n int)
}

// Sweeper deletes finished jobs older than maxAge.
type Sweeper struct {
	store   Store
	maxAge  time.Duration
	now     func() time.Time
	counter Counter
	logger  *slog.Logger
}

// NewSweeper constructs a sweeper.
func NewSweeper(store Store, maxAge time.Duration, counter Counter, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		store:   store,
		maxAge:  maxAge,
		now:     time.Now,
		counter: counter,
		logger:  logging.NewComponentLogger(logger, "retention"),
	}
}

// Sweep removes every eligible job and returns how many records were deleted.
// File removal failures are logged and do not keep the record.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.maxAge)
	expired, err := s.store.ListFinishedBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("list expired jobs: %w", err)
	}

	removed := 0
	for _, job := range expired {
		if err := jobs.RemoveFiles(job.SourcePath, job.CaptionPath, job.ProcessedPath, audio.OutputPath(job.SourcePath)); err != nil {
			s.logger.Warn("expired job files not fully removed",
				logging.JobID(job.ID),
				logging.Error(err),
			)
		}
		ok, err := s.store.Delete(ctx, job.ID)
		if err != nil {
			return removed, fmt.Errorf("delete job %s: %w", job.ID, err)
		}
		if ok {
			removed++
		}
	}
	if s.counter != nil {
		s.counter.RetentionRemoved(removed)
	}
	if removed > 0 {
		s.logger.Info("retention sweep removed jobs",
			logging.String(logging.FieldEventType, "retention_sweep"),
			logging.Int("removed", removed),
			logging.String("cutoff", cutoff.UTC().Format(time.RFC3339)),
		)
	}
	return removed, nil
}

// Scheduler runs a Sweeper on a cron schedule.
type Scheduler struct {
	cron     *cron.Cron
	sweeper  *Sweeper
	schedule string
	logger   *slog.Logger
}

// NewScheduler returns nil when retention is disabled.
func NewScheduler(cfg *config.Config, store Store, counter Counter, logger *slog.Logger) *Scheduler {
	if cfg == nil || !cfg.Retention.Enabled {
		return nil
	}
	return &Scheduler{
		cron:     cron.New(cron.WithLocation(time.Local), cron.WithChain(cron.Recover(cron.DefaultLogger))),
		sweeper:  NewSweeper(store, cfg.RetentionMaxAge(), counter, logger),
		schedule: cfg.Retention.Schedule,
		logger:   logging.NewComponentLogger(logger, "retention"),
	}
}

// Start registers the sweep and starts the cron loop. Sweeps run with ctx.
func (s *Scheduler) Start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	if _, err := s.cron.AddFunc(s.schedule, func() {
		if _, err := s.sweeper.Sweep(ctx); err != nil {
			s.logger.Error("retention sweep failed", logging.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("schedule retention %q: %w", s.schedule, err)
	}
	s.cron.Start()
	s.logger.Info("retention scheduled", logging.String("schedule", s.schedule))
	return nil
}

// Stop halts the cron loop and waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	if s == nil {
		return
	}
	<-s.cron.Stop().Done()
}
