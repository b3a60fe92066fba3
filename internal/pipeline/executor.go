package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"subburn/internal/logging"
)

// ErrExecutorStopped is returned by Submit once the base context is done.
var ErrExecutorStopped = errors.New("executor stopped")

// JobRunner runs one job to completion.
type JobRunner interface {
	Run(ctx context.Context, jobID string) error
}

// Executor runs jobs in the background, one goroutine per submission. It
// keeps no queue; callers observe outcomes only through later status reads.
type Executor struct {
	base   context.Context
	runner JobRunner
	logger *slog.Logger

	mu     sync.Mutex
	active map[string]int
	wg     sync.WaitGroup
}

// NewExecutor binds runs to base. Cancelling base cancels every run.
func NewExecutor(base context.Context, runner JobRunner, logger *slog.Logger) *Executor {
	if base == nil {
		base = context.Background()
	}
	return &Executor{
		base:   base,
		runner: runner,
		logger: logging.NewComponentLogger(logger, "executor"),
		active: make(map[string]int),
	}
}

// Submit starts a run for jobID and returns immediately. A submission for a
// job with an active run is accepted and logged; both runs proceed.
func (e *Executor) Submit(jobID string) error {
	if err := e.base.Err(); err != nil {
		return ErrExecutorStopped
	}

	e.mu.Lock()
	e.active[jobID]++
	concurrent := e.active[jobID]
	e.wg.Add(1)
	e.mu.Unlock()

	if concurrent > 1 {
		logging.WarnWithContext(e.logger, "concurrent run submitted for job", "reentrant_submit",
			logging.JobID(jobID),
			logging.Int("active_runs", concurrent),
			logging.String(logging.FieldImpact, "runs race to write the same job record"),
			logging.String(logging.FieldErrorHint, "wait for the current run to finish before reprocessing"),
		)
	}

	go func() {
		defer e.wg.Done()
		defer e.release(jobID)
		if err := e.runner.Run(e.base, jobID); err != nil {
			e.logger.Debug("background run ended with error",
				logging.JobID(jobID),
				logging.Error(err),
			)
		}
	}()
	return nil
}

func (e *Executor) release(jobID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active[jobID] <= 1 {
		delete(e.active, jobID)
		return
	}
	e.active[jobID]--
}

// Active reports whether jobID has at least one run in flight.
func (e *Executor) Active(jobID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active[jobID] > 0
}

// Running returns the number of runs in flight across all jobs.
func (e *Executor) Running() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	total := 0
	for _, n := range e.active {
		total += n
	}
	return total
}

// Wait blocks until every submitted run has returned.
func (e *Executor) Wait() {
	e.wg.Wait()
}
