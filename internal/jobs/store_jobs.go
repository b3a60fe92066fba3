package jobs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"subburn/internal/services"
)

// ErrArtifactInvariant is returned when a write would record artifact paths
// on a job that is not completed, or complete a job without them.
var ErrArtifactInvariant = errors.New("artifact paths must be set exactly when status is completed")

// Create inserts a freshly uploaded job with default settings.
func (s *Store) Create(ctx context.Context, originalName, sourcePath string) (*Job, error) {
	originalName = strings.TrimSpace(originalName)
	sourcePath = strings.TrimSpace(sourcePath)
	if sourcePath == "" {
		return nil, errors.New("create job: source path required")
	}
	if originalName == "" {
		originalName = sourcePath
	}

	now := time.Now().UTC()
	job := &Job{
		ID:           uuid.NewString(),
		OriginalName: originalName,
		SourcePath:   sourcePath,
		Status:       StatusUploaded,
		Settings:     DefaultSettings(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	settingsJSON, err := encodeSettings(job.Settings)
	if err != nil {
		return nil, fmt.Errorf("encode settings: %w", err)
	}

	if _, err := s.execWithRetry(
		ctx, "create",
		`INSERT INTO jobs (
            id, original_name, source_path, status, settings_json,
            transcript, caption_path, processed_path, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, NULL, NULL, NULL, ?, ?)`,
		job.ID,
		job.OriginalName,
		job.SourcePath,
		job.Status,
		settingsJSON,
		formatTime(now),
		formatTime(now),
	); err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}
	return job, nil
}

// Get fetches a job by identifier. A missing job returns (nil, nil).
func (s *Store) Get(ctx context.Context, id string) (*Job, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// Save persists every mutable field of job in a single statement.
func (s *Store) Save(ctx context.Context, job *Job) error {
	if job == nil {
		return errors.New("job is nil")
	}
	if err := checkArtifactInvariant(job); err != nil {
		return err
	}
	settingsJSON, err := encodeSettings(job.Settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	job.UpdatedAt = time.Now().UTC()

	res, err := s.execWithRetry(
		ctx, "update",
		`UPDATE jobs
        SET original_name = ?, source_path = ?, status = ?, settings_json = ?,
            transcript = ?, caption_path = ?, processed_path = ?, updated_at = ?
        WHERE id = ?`,
		job.OriginalName,
		job.SourcePath,
		job.Status,
		settingsJSON,
		nullableString(job.Transcript),
		nullableString(job.CaptionPath),
		nullableString(job.ProcessedPath),
		formatTime(job.UpdatedAt),
		job.ID,
	)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update job rows affected: %w", err)
	}
	if affected == 0 {
		return services.Wrap(services.ErrNotFound, "jobs", "save", "job "+job.ID, nil)
	}
	return nil
}

func checkArtifactInvariant(job *Job) error {
	hasCaption := strings.TrimSpace(job.CaptionPath) != ""
	hasProcessed := strings.TrimSpace(job.ProcessedPath) != ""
	if job.Status == StatusCompleted {
		if !hasCaption || !hasProcessed {
			return fmt.Errorf("%w: job %s completed without artifacts", ErrArtifactInvariant, job.ID)
		}
		return nil
	}
	if hasCaption || hasProcessed {
		return fmt.Errorf("%w: job %s is %s but has artifacts", ErrArtifactInvariant, job.ID, job.Status)
	}
	return nil
}

// List returns jobs newest first, optionally filtered by status.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs`
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		placeholders := make([]string, len(statuses))
		for i, status := range statuses {
			placeholders[i] = "?"
			args = append(args, status)
		}
		query += ` WHERE status IN (` + strings.Join(placeholders, ",") + `)`
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var out []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		out = append(out, job)
	}
	return out, rows.Err()
}

// Delete removes a job record. It reports whether a row was removed.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	res, err := s.execWithRetry(ctx, "delete", `DELETE FROM jobs WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete job: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete job rows affected: %w", err)
	}
	return affected > 0, nil
}

// FailInterrupted marks jobs left in processing by a previous process as failed.
func (s *Store) FailInterrupted(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(
		ctx, "fail interrupted",
		`UPDATE jobs
        SET status = ?, transcript = NULL, caption_path = NULL, processed_path = NULL, updated_at = ?
        WHERE status = ?`,
		StatusFailed,
		formatTime(time.Now()),
		StatusProcessing,
	)
	if err != nil {
		return 0, fmt.Errorf("fail interrupted jobs: %w", err)
	}
	return res.RowsAffected()
}

// ListFinishedBefore returns completed or failed jobs last updated before cutoff.
func (s *Store) ListFinishedBefore(ctx context.Context, cutoff time.Time) ([]*Job, error) {
	rows, err := s.db.QueryContext(
		ensureContext(ctx),
		`SELECT `+jobColumns+` FROM jobs WHERE status IN (?, ?) AND updated_at < ? ORDER BY updated_at`,
		StatusCompleted,
		StatusFailed,
		formatTime(cutoff),
	)
	if err != nil {
		return nil, fmt.Errorf("list finished jobs: %w", err)
	}
	defer rows.Close()

	var out []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		out = append(out, job)
	}
	return out, rows.Err()
}

// Stats returns a count of jobs grouped by status.
func (s *Store) Stats(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), `SELECT status, COUNT(1) FROM jobs GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("job stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Status]int)
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

// Health aggregates job state for diagnostic output.
func (s *Store) Health(ctx context.Context) (HealthSummary, error) {
	stats, err := s.Stats(ctx)
	if err != nil {
		return HealthSummary{}, err
	}
	health := HealthSummary{}
	for status, count := range stats {
		health.Total += count
		switch status {
		case StatusUploaded:
			health.Uploaded += count
		case StatusProcessing:
			health.Processing += count
		case StatusCompleted:
			health.Completed += count
		case StatusFailed:
			health.Failed += count
		}
	}
	return health, nil
}
