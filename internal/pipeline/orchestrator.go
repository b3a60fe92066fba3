package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"subburn/internal/jobs"
	"subburn/internal/logging"
	"subburn/internal/services"
	"subburn/internal/transcription"
)

// Stage names used in logs, errors and metrics.
const (
	StageValidate   = "validate"
	StageExtract    = "extract"
	StageTranscribe = "transcribe"
	StageCaptions   = "captions"
	StageRender     = "render"
	StageFinalize   = "finalize"
)

// Orchestrator composes the pipeline stages for a single job.
type Orchestrator struct {
	deps   Deps
	logger *slog.Logger
}

// NewOrchestrator validates deps and returns an orchestrator.
func NewOrchestrator(deps Deps) (*Orchestrator, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if deps.Recorder == nil {
		deps.Recorder = noopRecorder{}
	}
	return &Orchestrator{
		deps:   deps,
		logger: logging.NewComponentLogger(deps.Logger, "pipeline"),
	}, nil
}

// Begin moves a job to processing with the supplied settings, clearing any
// previous results. It is the synchronous half of a process request.
func (o *Orchestrator) Begin(ctx context.Context, jobID string, settings jobs.Settings) (*jobs.Job, error) {
	job, err := o.deps.Store.Get(ctx, jobID)
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, StageValidate, "load job", jobID, err)
	}
	if job == nil {
		return nil, services.Wrap(services.ErrNotFound, StageValidate, "load job", "job "+jobID, nil)
	}
	if !job.Status.CanStartProcessing() {
		return nil, services.Wrap(services.ErrValidation, StageValidate, "begin", fmt.Sprintf("job %s cannot start from status %s", jobID, job.Status), nil)
	}
	if job.Status == jobs.StatusProcessing {
		o.logger.Warn("job already processing; accepting concurrent run",
			logging.JobID(jobID),
			logging.String(logging.FieldEventType, "reentrant_process_request"),
			logging.String(logging.FieldImpact, "two runs may race to write the same job"),
		)
	}

	job.Settings = settings.WithDefaults()
	job.ClearResults()
	job.Status = jobs.StatusProcessing
	if err := o.deps.Store.Save(ctx, job); err != nil {
		return nil, services.Wrap(services.ErrPersistence, StageValidate, "mark processing", jobID, err)
	}
	return job, nil
}

// Run executes every stage for jobID. The returned error is also recorded
// as a failed job status; callers running in the background may ignore it.
func (o *Orchestrator) Run(ctx context.Context, jobID string) error {
	ctx = services.WithJobID(ctx, jobID)
	logger := logging.WithContext(ctx, o.logger)
	started := time.Now()
	o.deps.Recorder.RunStarted()

	job, err := o.deps.Store.Get(ctx, jobID)
	if err != nil {
		err = services.Wrap(services.ErrPersistence, StageValidate, "load job", jobID, err)
		logger.Error("pipeline could not load job", logging.Error(err))
		o.deps.Recorder.RunFinished(string(jobs.StatusFailed), time.Since(started))
		return err
	}
	if job == nil {
		err = services.Wrap(services.ErrNotFound, StageValidate, "load job", "job "+jobID, nil)
		logger.Error("pipeline job vanished before run", logging.Error(err))
		o.deps.Recorder.RunFinished(string(jobs.StatusFailed), time.Since(started))
		return err
	}

	logger.Info("pipeline started",
		logging.String(logging.FieldEventType, "pipeline_start"),
		logging.String("original_name", job.OriginalName),
		logging.String("source_file", job.SourcePath),
	)

	run := &runState{job: job}
	steps := []struct {
		name string
		fn   func(context.Context, *runState) error
	}{
		{StageValidate, o.validate},
		{StageExtract, o.extract},
		{StageTranscribe, o.transcribe},
		{StageCaptions, o.writeCaptions},
		{StageRender, o.render},
		{StageFinalize, o.finalize},
	}
	for _, step := range steps {
		stageCtx := services.WithStage(ctx, step.name)
		stageStart := time.Now()
		stepErr := step.fn(stageCtx, run)
		o.deps.Recorder.ObserveStage(step.name, time.Since(stageStart), services.Kind(stepErr))
		if stepErr != nil {
			o.fail(stageCtx, job, step.name, stepErr, run.audioPath)
			o.deps.Recorder.RunFinished(string(jobs.StatusFailed), time.Since(started))
			return stepErr
		}
	}

	o.cleanupAudio(ctx, run.audioPath)
	elapsed := time.Since(started)
	o.deps.Recorder.RunFinished(string(jobs.StatusCompleted), elapsed)
	logger.Info("pipeline completed",
		logging.String(logging.FieldEventType, "pipeline_complete"),
		logging.String("caption_path", job.CaptionPath),
		logging.String("processed_path", job.ProcessedPath),
		logging.Duration("elapsed", elapsed),
	)
	o.afterSuccess(ctx, job, elapsed)
	return nil
}

type runState struct {
	job       *jobs.Job
	audioPath string
	result    transcription.Result
	caption   string
	processed string
}

func (o *Orchestrator) validate(_ context.Context, run *runState) error {
	source := strings.TrimSpace(run.job.SourcePath)
	if source == "" {
		return services.Wrap(services.ErrMissingSourceFile, StageValidate, "stat source", "job has no source path", nil)
	}
	info, err := os.Stat(source)
	if err != nil {
		return services.Wrap(services.ErrMissingSourceFile, StageValidate, "stat source", source, err)
	}
	if info.IsDir() {
		return services.Wrap(services.ErrMissingSourceFile, StageValidate, "stat source", source+" is a directory", nil)
	}
	return nil
}

func (o *Orchestrator) extract(ctx context.Context, run *runState) error {
	path, err := o.deps.Extractor.Extract(ctx, run.job.SourcePath)
	if err != nil {
		return err
	}
	run.audioPath = path
	return nil
}

func (o *Orchestrator) transcribe(ctx context.Context, run *runState) error {
	result, err := o.deps.Transcriber.Transcribe(ctx, run.audioPath)
	if err != nil {
		return err
	}
	run.result = result
	return nil
}

func (o *Orchestrator) writeCaptions(_ context.Context, run *runState) error {
	path, err := o.deps.Captions.Write(run.result, run.job.ID)
	if err != nil {
		return err
	}
	run.caption = path
	return nil
}

func (o *Orchestrator) render(ctx context.Context, run *runState) error {
	path, err := o.deps.Renderer.Render(ctx, run.job.SourcePath, run.caption, run.job.ID, run.job.Settings)
	if err != nil {
		return err
	}
	run.processed = path
	return nil
}

func (o *Orchestrator) finalize(ctx context.Context, run *runState) error {
	job := run.job
	job.Status = jobs.StatusCompleted
	job.Transcript = run.result.Text
	job.CaptionPath = run.caption
	job.ProcessedPath = run.processed
	if err := o.deps.Store.Save(ctx, job); err != nil {
		return services.Wrap(services.ErrPersistence, StageFinalize, "save job", job.ID, err)
	}
	return nil
}

// fail records the terminal failure. Persistence uses a context detached
// from cancellation so a shutdown still leaves the job marked failed.
func (o *Orchestrator) fail(ctx context.Context, job *jobs.Job, stage string, cause error, audioPath string) {
	logger := logging.WithContext(ctx, o.logger)
	attrs := []logging.Attr{
		logging.String(logging.FieldEventType, "pipeline_failed"),
		logging.ErrorKind(cause),
		logging.String(logging.FieldErrorHint, failureHint(cause)),
		logging.Alert("job_failure"),
		logging.Error(cause),
	}
	if audioPath != "" {
		attrs = append(attrs, logging.String("audio_path", audioPath))
	}
	logger.Error("pipeline stage failed", logging.Args(attrs...)...)

	persistCtx := context.WithoutCancel(ctx)
	job.Status = jobs.StatusFailed
	job.ClearResults()
	if err := o.deps.Store.Save(persistCtx, job); err != nil {
		logger.Error("failed to persist job failure",
			logging.String(logging.FieldErrorKind, "persistence"),
			logging.Error(err),
		)
	}
	if o.deps.Notifier != nil {
		if err := o.deps.Notifier.NotifyJobFailed(persistCtx, job, fmt.Errorf("%s: %w", stage, cause)); err != nil {
			logger.Warn("failure notification not sent", logging.Error(err))
		}
	}
}

func (o *Orchestrator) afterSuccess(ctx context.Context, job *jobs.Job, elapsed time.Duration) {
	logger := logging.WithContext(ctx, o.logger)
	if o.deps.Mirror != nil {
		if err := o.deps.Mirror.Mirror(ctx, job); err != nil {
			logging.WarnWithContext(logger, "artifact mirror failed", "mirror_failed",
				logging.String(logging.FieldImpact, "artifacts remain available locally only"),
				logging.Error(err),
			)
		}
	}
	if o.deps.Notifier != nil {
		if err := o.deps.Notifier.NotifyJobCompleted(ctx, job, elapsed); err != nil {
			logger.Warn("completion notification not sent", logging.Error(err))
		}
	}
}

func (o *Orchestrator) cleanupAudio(ctx context.Context, audioPath string) {
	if audioPath == "" {
		return
	}
	if err := os.Remove(audioPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		logging.WithContext(ctx, o.logger).Warn("failed to remove waveform",
			logging.String("audio_path", audioPath),
			logging.Error(err),
		)
	}
}

func failureHint(err error) string {
	switch {
	case errors.Is(err, services.ErrMissingSourceFile):
		return "re-upload the video; the stored source file is gone"
	case errors.Is(err, services.ErrTranscriptionTimeout):
		return "provider did not finish in time; retry the job"
	case errors.Is(err, services.ErrTranscriptionProvider):
		return "check the transcription API key and provider status"
	case errors.Is(err, services.ErrExternalTool):
		return "run 'subburn check' and inspect the ffmpeg error text"
	case errors.Is(err, services.ErrPersistence):
		return "check disk space and permissions for the data directory"
	default:
		return ""
	}
}
