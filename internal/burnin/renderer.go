package burnin

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"subburn/internal/jobs"
	"subburn/internal/logging"
	"subburn/internal/media/ffmpeg"
	"subburn/internal/services"
)

// EscapeFilterPath prepares a file path for the subtitles filter: separators
// become forward slashes and colons are escaped. An apostrophe closes the
// surrounding quote, passes through the graph parser escaped, and reopens it.
func EscapeFilterPath(path string) string {
	path = strings.ReplaceAll(path, "\\", "/")
	path = strings.ReplaceAll(path, "'", `\'\''`)
	return strings.ReplaceAll(path, ":", "\\:")
}

// FilterExpression builds the -vf value for captionPath and style.
func FilterExpression(captionPath string, style Style) string {
	return fmt.Sprintf("subtitles='%s':force_style='%s'", EscapeFilterPath(captionPath), style.String())
}

// Renderer burns captions into a copy of the source video.
type Renderer struct {
	binary    string
	outputDir string
	run       ffmpeg.Runner
	logger    *slog.Logger
}

// NewRenderer constructs a renderer writing into outputDir.
func NewRenderer(binary, outputDir string, logger *slog.Logger) *Renderer {
	return &Renderer{
		binary:    ffmpeg.Binary(binary),
		outputDir: outputDir,
		run:       ffmpeg.Run,
		logger:    logging.NewComponentLogger(logger, "burnin"),
	}
}

// WithRunner swaps the command runner (used in tests).
func (r *Renderer) WithRunner(run ffmpeg.Runner) *Renderer {
	if r != nil && run != nil {
		r.run = run
	}
	return r
}

// PathFor returns the output video path for jobID.
func (r *Renderer) PathFor(jobID string) string {
	return filepath.Join(r.outputDir, jobID+"_subtitled.mp4")
}

// Args builds the ffmpeg argument vector. Video is re-encoded with the
// captions composited in; audio is copied.
func Args(videoPath, captionPath, out string, style Style) []string {
	args := ffmpeg.BaseArgs()
	return append(args,
		"-i", videoPath,
		"-vf", FilterExpression(captionPath, style),
		"-c:a", "copy",
		out,
	)
}

// Render runs ffmpeg once and returns the processed video path.
func (r *Renderer) Render(ctx context.Context, videoPath, captionPath, jobID string, settings jobs.Settings) (string, error) {
	if strings.TrimSpace(jobID) == "" {
		return "", services.Wrap(services.ErrValidation, "burnin", "render", "job id required", nil)
	}
	if err := os.MkdirAll(r.outputDir, 0o755); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "burnin", "ensure output dir", r.outputDir, err)
	}

	style := StyleFor(settings)
	out := r.PathFor(jobID)
	logger := r.logger.With(logging.JobID(jobID))
	logger.Debug("burning captions",
		logging.String("force_style", style.String()),
		logging.Bool("background_box", style.BorderStyle == BorderStyleBox),
	)

	started := time.Now()
	if err := r.run(ctx, r.binary, Args(videoPath, captionPath, out, style)...); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "burnin", "ffmpeg subtitles", filepath.Base(videoPath), err)
	}
	logger.Info("captions burned",
		logging.String(logging.FieldEventType, "captions_burned"),
		logging.String("processed_path", out),
		logging.Duration("elapsed", time.Since(started)),
	)
	return out, nil
}
