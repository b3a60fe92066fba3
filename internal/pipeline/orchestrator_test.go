package pipeline_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"subburn/internal/captions"
	"subburn/internal/config"
	"subburn/internal/jobs"
	"subburn/internal/logging"
	"subburn/internal/pipeline"
	"subburn/internal/services"
	"subburn/internal/testsupport"
	"subburn/internal/transcription"
)

type fakeExtractor struct {
	calls int
	err   error
}

func (f *fakeExtractor) Extract(_ context.Context, videoPath string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	out := videoPath + ".wav"
	if err := os.WriteFile(out, []byte("wav"), 0o644); err != nil {
		return "", err
	}
	return out, nil
}

type fakeTranscriber struct {
	calls  int
	result transcription.Result
	err    error
}

func (f *fakeTranscriber) Transcribe(context.Context, string) (transcription.Result, error) {
	f.calls++
	return f.result, f.err
}

type fakeRenderer struct {
	dir      string
	calls    int
	settings jobs.Settings
	err      error
}

func (f *fakeRenderer) Render(_ context.Context, _, captionPath, jobID string, settings jobs.Settings) (string, error) {
	f.calls++
	f.settings = settings
	if f.err != nil {
		return "", f.err
	}
	if _, err := os.Stat(captionPath); err != nil {
		return "", err
	}
	out := filepath.Join(f.dir, jobID+"_subtitled.mp4")
	return out, os.WriteFile(out, []byte("mp4"), 0o644)
}

type fakeNotifier struct {
	mu        sync.Mutex
	completed []string
	failed    []string
}

func (f *fakeNotifier) NotifyJobCompleted(_ context.Context, job *jobs.Job, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completed = append(f.completed, job.ID)
	return nil
}

func (f *fakeNotifier) NotifyJobFailed(_ context.Context, job *jobs.Job, _ error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failed = append(f.failed, job.ID)
	return nil
}

type fakeMirror struct {
	calls int
	err   error
}

func (f *fakeMirror) Mirror(context.Context, *jobs.Job) error {
	f.calls++
	return f.err
}

type fixture struct {
	cfg         *config.Config
	store       *jobs.Store
	extractor   *fakeExtractor
	transcriber *fakeTranscriber
	renderer    *fakeRenderer
	notifier    *fakeNotifier
	mirror      *fakeMirror
	orch        *pipeline.Orchestrator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	f := &fixture{
		cfg:       cfg,
		store:     testsupport.MustOpenStore(t, cfg),
		extractor: &fakeExtractor{},
		transcriber: &fakeTranscriber{result: transcription.Result{
			Text: "hello world",
			Words: []transcription.Word{
				{Text: "hello", Start: 0, End: 0.4},
				{Text: "world", Start: 0.5, End: 0.9},
			},
		}},
		renderer: &fakeRenderer{dir: cfg.Paths.ProcessedDir},
		notifier: &fakeNotifier{},
		mirror:   &fakeMirror{},
	}
	orch, err := pipeline.NewOrchestrator(pipeline.Deps{
		Store:       f.store,
		Extractor:   f.extractor,
		Transcriber: f.transcriber,
		Captions:    captions.NewSynthesizer(cfg.Paths.ProcessedDir, logging.NewNop()),
		Renderer:    f.renderer,
		Notifier:    f.notifier,
		Mirror:      f.mirror,
		Logger:      logging.NewNop(),
	})
	if err != nil {
		t.Fatalf("NewOrchestrator: %v", err)
	}
	f.orch = orch
	return f
}

func (f *fixture) begin(t *testing.T, settings jobs.Settings) *jobs.Job {
	t.Helper()
	job := testsupport.NewUploadedJob(t, f.cfg, f.store, "talk.mp4")
	begun, err := f.orch.Begin(context.Background(), job.ID, settings)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	return begun
}

func TestRunCompletesJob(t *testing.T) {
	f := newFixture(t)
	job := f.begin(t, jobs.Settings{FontSize: 30, BackgroundColor: "#000000"})

	if err := f.orch.Run(context.Background(), job.ID); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	stored, err := f.store.Get(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored.Status != jobs.StatusCompleted {
		t.Fatalf("expected completed, got %s", stored.Status)
	}
	if stored.Transcript != "hello world" {
		t.Fatalf("unexpected transcript %q", stored.Transcript)
	}
	if stored.CaptionPath != filepath.Join(f.cfg.Paths.ProcessedDir, job.ID+".srt") {
		t.Fatalf("unexpected caption path %q", stored.CaptionPath)
	}
	if stored.ProcessedPath != filepath.Join(f.cfg.Paths.ProcessedDir, job.ID+"_subtitled.mp4") {
		t.Fatalf("unexpected processed path %q", stored.ProcessedPath)
	}
	if f.renderer.settings.FontSize != 30 || f.renderer.settings.Position != jobs.PositionBottom {
		t.Fatalf("renderer did not receive effective settings: %#v", f.renderer.settings)
	}
	if testsupport.Exists(job.SourcePath + ".wav") {
		t.Fatal("expected waveform to be removed after success")
	}
	if len(f.notifier.completed) != 1 || f.mirror.calls != 1 {
		t.Fatalf("expected completion notification and mirror, got %v / %d", f.notifier.completed, f.mirror.calls)
	}
}

func TestRunMissingSourceInvokesNoTool(t *testing.T) {
	f := newFixture(t)
	job := f.begin(t, jobs.Settings{})
	if err := os.Remove(job.SourcePath); err != nil {
		t.Fatalf("remove source: %v", err)
	}

	err := f.orch.Run(context.Background(), job.ID)
	if !errors.Is(err, services.ErrMissingSourceFile) {
		t.Fatalf("expected missing source error, got %v", err)
	}
	if f.extractor.calls != 0 || f.transcriber.calls != 0 || f.renderer.calls != 0 {
		t.Fatalf("expected no tool calls, got extract=%d transcribe=%d render=%d",
			f.extractor.calls, f.transcriber.calls, f.renderer.calls)
	}
	stored, _ := f.store.Get(context.Background(), job.ID)
	if stored.Status != jobs.StatusFailed {
		t.Fatalf("expected failed, got %s", stored.Status)
	}
	if len(f.notifier.failed) != 1 {
		t.Fatalf("expected failure notification, got %v", f.notifier.failed)
	}
}

func TestRunTranscriptionFailureKeepsWaveform(t *testing.T) {
	f := newFixture(t)
	f.transcriber.err = services.Wrap(services.ErrTranscriptionTimeout, "transcription", "poll", "exhausted", nil)
	job := f.begin(t, jobs.Settings{})

	err := f.orch.Run(context.Background(), job.ID)
	if !errors.Is(err, services.ErrTranscriptionTimeout) {
		t.Fatalf("expected timeout, got %v", err)
	}
	if f.renderer.calls != 0 {
		t.Fatal("render must not run after a transcription failure")
	}
	stored, _ := f.store.Get(context.Background(), job.ID)
	if stored.Status != jobs.StatusFailed || stored.HasArtifacts() || stored.Transcript != "" {
		t.Fatalf("expected failed job without results, got %#v", stored)
	}
	if !testsupport.Exists(job.SourcePath + ".wav") {
		t.Fatal("expected waveform left behind for diagnosis")
	}
}

func TestRunRenderFailureMarksFailed(t *testing.T) {
	f := newFixture(t)
	f.renderer.err = services.Wrap(services.ErrExternalTool, "burnin", "ffmpeg", "in.mp4", errors.New("exit status 1"))
	job := f.begin(t, jobs.Settings{})

	if err := f.orch.Run(context.Background(), job.ID); !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	stored, _ := f.store.Get(context.Background(), job.ID)
	if stored.Status != jobs.StatusFailed || stored.CaptionPath != "" {
		t.Fatalf("expected failed job without caption path, got %#v", stored)
	}
}

func TestRunMirrorFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	f.mirror.err = errors.New("bucket unreachable")
	job := f.begin(t, jobs.Settings{})

	if err := f.orch.Run(context.Background(), job.ID); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	stored, _ := f.store.Get(context.Background(), job.ID)
	if stored.Status != jobs.StatusCompleted {
		t.Fatalf("expected completed despite mirror failure, got %s", stored.Status)
	}
}

func TestRerunUsesSameArtifactPaths(t *testing.T) {
	f := newFixture(t)
	job := f.begin(t, jobs.Settings{})
	if err := f.orch.Run(context.Background(), job.ID); err != nil {
		t.Fatalf("first run: %v", err)
	}
	first, _ := f.store.Get(context.Background(), job.ID)

	if _, err := f.orch.Begin(context.Background(), job.ID, jobs.Settings{}); err != nil {
		t.Fatalf("Begin again: %v", err)
	}
	reset, _ := f.store.Get(context.Background(), job.ID)
	if reset.Status != jobs.StatusProcessing || reset.HasArtifacts() {
		t.Fatalf("expected processing job with cleared results, got %#v", reset)
	}

	f.transcriber.result = transcription.Result{Text: "Different words."}
	if err := f.orch.Run(context.Background(), job.ID); err != nil {
		t.Fatalf("second run: %v", err)
	}
	second, _ := f.store.Get(context.Background(), job.ID)
	if first.CaptionPath != second.CaptionPath || first.ProcessedPath != second.ProcessedPath {
		t.Fatalf("expected stable paths, got %q/%q then %q/%q",
			first.CaptionPath, first.ProcessedPath, second.CaptionPath, second.ProcessedPath)
	}
	if second.Transcript != "Different words." {
		t.Fatalf("expected transcript from second run, got %q", second.Transcript)
	}
}

func TestBeginUnknownJob(t *testing.T) {
	f := newFixture(t)
	if _, err := f.orch.Begin(context.Background(), "missing", jobs.Settings{}); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := f.orch.Run(context.Background(), "missing"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found from Run, got %v", err)
	}
}

func TestNewOrchestratorRequiresCollaborators(t *testing.T) {
	if _, err := pipeline.NewOrchestrator(pipeline.Deps{}); err == nil {
		t.Fatal("expected error for empty deps")
	}
}
