package deps

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// SubtitlesFilter is the libass-backed filter the burn-in stage relies on.
const SubtitlesFilter = "subtitles"

// CheckFFmpeg resolves the configured ffmpeg binary and confirms it was built
// with the subtitles filter. A binary without it can extract audio but
// cannot burn captions.
func CheckFFmpeg(ctx context.Context, binary string) Status {
	status := Resolve(Requirement{Name: "FFmpeg", Command: binary})
	if !status.Available {
		return status
	}

	ok, err := HasFilter(ctx, status.Command, SubtitlesFilter)
	switch {
	case err != nil:
		status.Available = false
		status.Detail = fmt.Sprintf("could not list filters: %v", err)
	case !ok:
		status.Available = false
		status.Detail = "built without the subtitles filter (libass)"
	}
	return status
}

// HasFilter reports whether `binary -filters` lists name.
func HasFilter(ctx context.Context, binary, name string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	output, err := exec.CommandContext(ctx, binary, "-hide_banner", "-filters").Output()
	if err != nil {
		return false, err
	}
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) >= 2 && fields[1] == name {
			return true, nil
		}
	}
	return false, scanner.Err()
}
