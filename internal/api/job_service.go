package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"

	"subburn/internal/audio"
	"subburn/internal/jobs"
	"subburn/internal/logging"
	"subburn/internal/services"
	"subburn/internal/textutil"
)

// JobStore abstracts job persistence needed by the request surface.
type JobStore interface {
	Create(ctx context.Context, originalName, sourcePath string) (*jobs.Job, error)
	Get(ctx context.Context, id string) (*jobs.Job, error)
	Save(ctx context.Context, job *jobs.Job) error
	List(ctx context.Context, statuses ...jobs.Status) ([]*jobs.Job, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// Processor performs the synchronous half of a process request.
type Processor interface {
	Begin(ctx context.Context, jobID string, settings jobs.Settings) (*jobs.Job, error)
}

// Submitter starts the background half of a process request.
type Submitter interface {
	Submit(jobID string) error
}

// RunTracker is implemented by submitters that know which jobs have a
// background run in flight.
type RunTracker interface {
	Active(jobID string) bool
}

// UploadCounter records stored upload volume.
type UploadCounter interface {
	AddUploadBytes(n int64)
}

// JobServiceDeps carries the JobService collaborators. Processor and
// Submitter may be nil for read-only callers such as the CLI.
type JobServiceDeps struct {
	Store     JobStore
	Processor Processor
	Submitter Submitter
	UploadDir string
	Uploads   UploadCounter
	Logger    *slog.Logger
}

// JobService implements upload, process, status, download, list and delete.
type JobService struct {
	store     JobStore
	processor Processor
	submitter Submitter
	uploadDir string
	uploads   UploadCounter
	logger    *slog.Logger
	now       func() time.Time
}

// NewJobService constructs a JobService around deps.
func NewJobService(deps JobServiceDeps) *JobService {
	if deps.Store == nil {
		return nil
	}
	return &JobService{
		store:     deps.Store,
		processor: deps.Processor,
		submitter: deps.Submitter,
		uploadDir: deps.UploadDir,
		uploads:   deps.Uploads,
		logger:    logging.NewComponentLogger(deps.Logger, "jobs-api"),
		now:       time.Now,
	}
}

// StoredFileName names an upload on disk as {unix-millis}-{random}{ext}.
func StoredFileName(now time.Time, originalName string) string {
	return fmt.Sprintf("%d-%d%s", now.UnixMilli(), rand.IntN(1_000_000_000), filepath.Ext(originalName))
}

// Upload stores src under the upload directory and registers an uploaded job.
func (s *JobService) Upload(ctx context.Context, originalName string, src io.Reader) (UploadResult, error) {
	name := filepath.Base(strings.TrimSpace(originalName))
	if src == nil || name == "" || name == "." || name == string(filepath.Separator) {
		return UploadResult{}, services.Wrap(services.ErrValidation, "", "upload", "No video uploaded", nil)
	}
	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return UploadResult{}, services.Wrap(services.ErrPersistence, "", "upload", "create upload dir", err)
	}

	target := filepath.Join(s.uploadDir, StoredFileName(s.now(), name))
	written, err := writeNewFile(target, src)
	if err != nil {
		return UploadResult{}, services.Wrap(services.ErrPersistence, "", "upload", "store upload", err)
	}

	job, err := s.store.Create(ctx, name, target)
	if err != nil {
		_ = os.Remove(target)
		return UploadResult{}, services.Wrap(services.ErrPersistence, "", "upload", "register job", err)
	}
	if s.uploads != nil {
		s.uploads.AddUploadBytes(written)
	}
	logging.WithContext(ctx, s.logger).Info("video uploaded",
		logging.JobID(job.ID),
		logging.String(logging.FieldEventType, "upload_stored"),
		logging.String("original_name", name),
		logging.String("source_file", target),
		logging.Int64("bytes", written),
	)
	return UploadResult{ID: job.ID, FileName: job.OriginalName, Status: string(job.Status)}, nil
}

func writeNewFile(path string, src io.Reader) (int64, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, err
	}
	written, copyErr := io.Copy(file, src)
	closeErr := file.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		_ = os.Remove(path)
		return 0, err
	}
	return written, nil
}

// Process applies presets and defaults to settings, validates them, marks
// the job processing and starts a background run.
func (s *JobService) Process(ctx context.Context, id string, settings jobs.Settings) error {
	if s.processor == nil || s.submitter == nil {
		return services.Wrap(services.ErrConfiguration, "", "process", "processing is not available here", nil)
	}
	settings = ApplyPreset(settings)
	if err := ValidateSettings(settings); err != nil {
		return err
	}
	job, err := s.processor.Begin(ctx, id, settings)
	if err != nil {
		return err
	}
	if err := s.submitter.Submit(job.ID); err != nil {
		job.Status = jobs.StatusFailed
		if saveErr := s.store.Save(context.WithoutCancel(ctx), job); saveErr != nil {
			logging.WithContext(ctx, s.logger).Error("failed to mark unsubmitted job failed",
				logging.JobID(job.ID),
				logging.Error(saveErr),
			)
		}
		return fmt.Errorf("start run for %s: %w", job.ID, err)
	}
	logging.WithContext(ctx, s.logger).Info("processing started",
		logging.JobID(job.ID),
		logging.String(logging.FieldEventType, "process_accepted"),
		logging.String("style", job.Settings.Style),
		logging.Int("font_size", job.Settings.FontSize),
		logging.String("position", job.Settings.Position),
	)
	return nil
}

// Status returns the current view of a job.
func (s *JobService) Status(ctx context.Context, id string) (Video, error) {
	job, err := s.load(ctx, id)
	if err != nil {
		return Video{}, err
	}
	return FromJob(job), nil
}

// List returns every job, newest first.
func (s *JobService) List(ctx context.Context, statuses ...jobs.Status) ([]Video, error) {
	list, err := s.store.List(ctx, statuses...)
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "", "list jobs", "", err)
	}
	return FromJobs(list), nil
}

// Artifact locates a finished file for download. Missing records, paths
// that were never recorded and files gone from disk all report not found.
func (s *JobService) Artifact(ctx context.Context, id string, kind ArtifactKind) (Artifact, error) {
	job, err := s.load(ctx, id)
	if err != nil {
		return Artifact{}, err
	}

	var out Artifact
	switch kind {
	case ArtifactVideo:
		out = Artifact{
			Path:     job.ProcessedPath,
			FileName: textutil.ASCIIFileName("subtitled_"+job.OriginalName, "subtitled_"+job.ID+".mp4"),
		}
	case ArtifactCaptions:
		out = Artifact{
			Path:     job.CaptionPath,
			FileName: textutil.ASCIIFileName(textutil.ReplaceExt(job.OriginalName, ".srt"), job.ID+".srt"),
		}
	default:
		return Artifact{}, services.Wrap(services.ErrValidation, "", "artifact", fmt.Sprintf("unknown artifact %q", kind), nil)
	}

	if strings.TrimSpace(out.Path) == "" {
		return Artifact{}, services.Wrap(services.ErrNotFound, "", "artifact", "Not found", nil)
	}
	if info, err := os.Stat(out.Path); err != nil || info.IsDir() {
		return Artifact{}, services.Wrap(services.ErrNotFound, "", "artifact", "File not found", nil)
	}
	return out, nil
}

// Delete removes a job's files and its record. File removal is best effort.
func (s *JobService) Delete(ctx context.Context, id string) error {
	job, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if s.runInFlight(job) {
		logging.WarnWithContext(logging.WithContext(ctx, s.logger), "deleting job with a run in flight", "delete_processing",
			logging.JobID(job.ID),
			logging.String(logging.FieldImpact, "the run will fail when it saves"),
		)
	}
	if err := jobs.RemoveFiles(job.SourcePath, job.ProcessedPath, job.CaptionPath, audio.OutputPath(job.SourcePath)); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, s.logger), "some job files could not be removed", "delete_files_partial",
			logging.JobID(job.ID),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "remove leftover files manually"),
		)
	}
	removed, err := s.store.Delete(ctx, job.ID)
	if err != nil {
		return services.Wrap(services.ErrPersistence, "", "delete job", job.ID, err)
	}
	if !removed {
		return services.Wrap(services.ErrNotFound, "", "delete job", "Not found", nil)
	}
	logging.WithContext(ctx, s.logger).Info("job deleted",
		logging.JobID(job.ID),
		logging.String(logging.FieldEventType, "job_deleted"),
	)
	return nil
}

// runInFlight prefers the submitter's view; a processing record alone may be
// left over from a crash.
func (s *JobService) runInFlight(job *jobs.Job) bool {
	if tracker, ok := s.submitter.(RunTracker); ok {
		return tracker.Active(job.ID)
	}
	return job.Status == jobs.StatusProcessing
}

func (s *JobService) load(ctx context.Context, id string) (*jobs.Job, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, services.Wrap(services.ErrNotFound, "", "load job", "Not found", nil)
	}
	job, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "", "load job", id, err)
	}
	if job == nil {
		return nil, services.Wrap(services.ErrNotFound, "", "load job", "Not found", nil)
	}
	return job, nil
}
