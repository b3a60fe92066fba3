package deps

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeStub(t *testing.T, dir, name, script string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func TestCheckBinaries(t *testing.T) {
	present := writeStub(t, t.TempDir(), "present", "#!/bin/sh\nexit 0\n")
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Blank", Command: " "},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available || results[0].Detail != "" {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[1].Available || results[1].Detail == "" {
		t.Fatalf("expected missing binary to be unavailable with detail, got %#v", results[1])
	}
	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}
	if results[2].Detail != "command not configured" {
		t.Fatalf("unexpected detail for blank command: %q", results[2].Detail)
	}
}

func TestCheckFFmpegWithSubtitlesFilter(t *testing.T) {
	script := "#!/bin/sh\necho ' ... subtitles         V->V       Render text subtitles onto input video using the libass library.'\n"
	bin := writeStub(t, t.TempDir(), "ffmpeg", script)

	status := CheckFFmpeg(context.Background(), bin)
	if !status.Available {
		t.Fatalf("expected ffmpeg available, got %#v", status)
	}
}

func TestCheckFFmpegWithoutSubtitlesFilter(t *testing.T) {
	script := "#!/bin/sh\necho ' ... scale             V->V       Scale the input video size.'\n"
	bin := writeStub(t, t.TempDir(), "ffmpeg", script)

	status := CheckFFmpeg(context.Background(), bin)
	if status.Available {
		t.Fatal("expected ffmpeg without libass to be unavailable")
	}
	if status.Detail == "" {
		t.Fatal("expected detail explaining missing filter")
	}
}

func TestCheckFFmpegMissing(t *testing.T) {
	status := CheckFFmpeg(context.Background(), filepath.Join(t.TempDir(), "ffmpeg"))
	if status.Available {
		t.Fatal("expected missing binary to be unavailable")
	}
}
