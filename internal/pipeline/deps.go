package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"subburn/internal/jobs"
	"subburn/internal/transcription"
)

// Store is the persistence surface the orchestrator needs.
type Store interface {
	Get(ctx context.Context, id string) (*jobs.Job, error)
	Save(ctx context.Context, job *jobs.Job) error
}

// AudioExtractor produces a waveform from a source video.
type AudioExtractor interface {
	Extract(ctx context.Context, videoPath string) (string, error)
}

// CaptionWriter turns a transcription into a caption file.
type CaptionWriter interface {
	Write(result transcription.Result, jobID string) (string, error)
}

// CaptionRenderer burns a caption file into a copy of the video.
type CaptionRenderer interface {
	Render(ctx context.Context, videoPath, captionPath, jobID string, settings jobs.Settings) (string, error)
}

// Notifier receives job outcomes.
type Notifier interface {
	NotifyJobCompleted(ctx context.Context, job *jobs.Job, elapsed time.Duration) error
	NotifyJobFailed(ctx context.Context, job *jobs.Job, cause error) error
}

// Recorder receives run and stage measurements.
type Recorder interface {
	RunStarted()
	RunFinished(status string, elapsed time.Duration)
	ObserveStage(stage string, elapsed time.Duration, kind string)
}

// ArtifactMirror copies finished artifacts somewhere else.
type ArtifactMirror interface {
	Mirror(ctx context.Context, job *jobs.Job) error
}

// Deps carries the orchestrator's collaborators. Notifier, Recorder, Mirror
// and Logger are optional.
type Deps struct {
	Store       Store
	Extractor   AudioExtractor
	Transcriber transcription.Transcriber
	Captions    CaptionWriter
	Renderer    CaptionRenderer
	Notifier    Notifier
	Recorder    Recorder
	Mirror      ArtifactMirror
	Logger      *slog.Logger
}

func (d Deps) validate() error {
	switch {
	case d.Store == nil:
		return errors.New("pipeline: store required")
	case d.Extractor == nil:
		return errors.New("pipeline: audio extractor required")
	case d.Transcriber == nil:
		return errors.New("pipeline: transcriber required")
	case d.Captions == nil:
		return errors.New("pipeline: caption writer required")
	case d.Renderer == nil:
		return errors.New("pipeline: caption renderer required")
	}
	return nil
}

type noopRecorder struct{}

func (noopRecorder) RunStarted()                                {}
func (noopRecorder) RunFinished(string, time.Duration)          {}
func (noopRecorder) ObserveStage(string, time.Duration, string) {}
