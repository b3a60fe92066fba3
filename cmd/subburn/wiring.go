package main

import (
	"fmt"
	"log/slog"

	"subburn/internal/audio"
	"subburn/internal/burnin"
	"subburn/internal/captions"
	"subburn/internal/config"
	"subburn/internal/jobs"
	"subburn/internal/metrics"
	"subburn/internal/mirror"
	"subburn/internal/notifications"
	"subburn/internal/pipeline"
	"subburn/internal/transcription"
)

// buildOrchestrator wires every pipeline stage from cfg. m may be nil.
func buildOrchestrator(cfg *config.Config, store *jobs.Store, notifier notifications.Service, m *metrics.Metrics, logger *slog.Logger) (*pipeline.Orchestrator, error) {
	transcriber, err := transcription.New(cfg, logger)
	if err != nil {
		return nil, err
	}
	artifactMirror, err := mirror.New(cfg, m, logger)
	if err != nil {
		return nil, fmt.Errorf("init mirror: %w", err)
	}

	deps := pipeline.Deps{
		Store:       store,
		Extractor:   audio.NewExtractor(cfg.FFmpegBinary(), logger),
		Transcriber: transcriber,
		Captions:    captions.NewSynthesizer(cfg.Paths.ProcessedDir, logger),
		Renderer:    burnin.NewRenderer(cfg.FFmpegBinary(), cfg.Paths.ProcessedDir, logger),
		Notifier:    notifier,
		Logger:      logger,
	}
	if m != nil {
		deps.Recorder = m
	}
	if artifactMirror != nil {
		deps.Mirror = artifactMirror
	}
	return pipeline.NewOrchestrator(deps)
}
