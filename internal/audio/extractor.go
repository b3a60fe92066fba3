package audio

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"subburn/internal/logging"
	"subburn/internal/media/ffmpeg"
	"subburn/internal/services"
)

// Waveform profile handed to speech providers: 16-bit PCM, mono, 16 kHz.
const (
	Codec      = "pcm_s16le"
	SampleRate = 16000
	Channels   = 1
)

// Extractor runs ffmpeg to produce a waveform next to the source video.
type Extractor struct {
	binary string
	run    ffmpeg.Runner
	logger *slog.Logger
}

// NewExtractor constructs an extractor using the given ffmpeg binary.
func NewExtractor(binary string, logger *slog.Logger) *Extractor {
	return &Extractor{
		binary: ffmpeg.Binary(binary),
		run:    ffmpeg.Run,
		logger: logging.NewComponentLogger(logger, "audio"),
	}
}

// WithRunner swaps the command runner (used in tests).
func (e *Extractor) WithRunner(r ffmpeg.Runner) *Extractor {
	if e != nil && r != nil {
		e.run = r
	}
	return e
}

// OutputPath returns the waveform location for videoPath: same directory and
// base name with a .wav extension. A source that is already .wav gets an
// ".extracted.wav" suffix so ffmpeg never writes over its input.
func OutputPath(videoPath string) string {
	ext := filepath.Ext(videoPath)
	base := strings.TrimSuffix(videoPath, ext)
	if strings.EqualFold(ext, ".wav") {
		return base + ".extracted.wav"
	}
	return base + ".wav"
}

// Args builds the ffmpeg argument vector for extracting videoPath into out.
func Args(videoPath, out string) []string {
	args := ffmpeg.BaseArgs()
	return append(args,
		"-i", videoPath,
		"-vn",
		"-acodec", Codec,
		"-ar", "16000",
		"-ac", "1",
		out,
	)
}

// Extract writes the waveform and returns its path. An existing file at the
// output path is overwritten.
func (e *Extractor) Extract(ctx context.Context, videoPath string) (string, error) {
	if strings.TrimSpace(videoPath) == "" {
		return "", services.Wrap(services.ErrValidation, "audio", "extract", "video path required", nil)
	}
	out := OutputPath(videoPath)
	started := time.Now()
	if err := e.run(ctx, e.binary, Args(videoPath, out)...); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "audio", "ffmpeg extract", filepath.Base(videoPath), err)
	}
	e.logger.Info("audio extracted",
		logging.String(logging.FieldEventType, "audio_extracted"),
		logging.String("audio_path", out),
		logging.Duration("elapsed", time.Since(started)),
	)
	return out, nil
}
