package captions

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"subburn/internal/logging"
	"subburn/internal/services"
	"subburn/internal/transcription"
)

// Synthesizer writes SRT files into a fixed output directory.
type Synthesizer struct {
	outputDir string
	logger    *slog.Logger
}

// NewSynthesizer constructs a synthesizer writing under outputDir.
func NewSynthesizer(outputDir string, logger *slog.Logger) *Synthesizer {
	return &Synthesizer{
		outputDir: outputDir,
		logger:    logging.NewComponentLogger(logger, "captions"),
	}
}

// PathFor returns the caption path for jobID.
func (s *Synthesizer) PathFor(jobID string) string {
	return filepath.Join(s.outputDir, jobID+".srt")
}

// Write builds cues from result and writes them to PathFor(jobID),
// replacing any previous file.
func (s *Synthesizer) Write(result transcription.Result, jobID string) (string, error) {
	if strings.TrimSpace(jobID) == "" {
		return "", services.Wrap(services.ErrValidation, "captions", "write", "job id required", nil)
	}
	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "captions", "ensure output dir", s.outputDir, err)
	}

	cues := BuildCues(result)
	path := s.PathFor(jobID)
	if err := os.WriteFile(path, []byte(FormatSRT(cues)), 0o644); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "captions", "write srt", path, err)
	}

	mode := "empty"
	switch {
	case result.HasWords():
		mode = "words"
	case result.HasText():
		mode = "sentences"
	}
	s.logger.Info("captions written",
		logging.JobID(jobID),
		logging.String("caption_path", path),
		logging.Int("cue_count", len(cues)),
		logging.String("cue_source", mode),
	)
	return path, nil
}
