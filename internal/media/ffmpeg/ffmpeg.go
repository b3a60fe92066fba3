package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// DefaultBinary is used when no ffmpeg path is configured.
const DefaultBinary = "ffmpeg"

// Runner executes name with args, returning an error carrying the combined
// output when the process exits non-zero.
type Runner func(ctx context.Context, name string, args ...string) error

// Run is the production Runner.
func Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		detail := strings.TrimSpace(string(output))
		if detail == "" {
			return err
		}
		return fmt.Errorf("%w: %s", err, detail)
	}
	return nil
}

// BaseArgs returns the leading flags shared by every invocation: overwrite
// outputs, no banner, errors only.
func BaseArgs() []string {
	return []string{"-y", "-hide_banner", "-loglevel", "error"}
}

// Binary returns name, or DefaultBinary when name is blank.
func Binary(name string) string {
	if trimmed := strings.TrimSpace(name); trimmed != "" {
		return trimmed
	}
	return DefaultBinary
}
