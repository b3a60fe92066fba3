package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"subburn/internal/config"
	"subburn/internal/testsupport"
)

// ffmpegStub lists filters when asked and otherwise writes its last argument.
const ffmpegStub = `#!/bin/sh
for last; do :; done
case "$last" in
  -filters) echo ' ... subtitles         V->V       Render text subtitles onto input video using the libass library.' ;;
  *) echo data > "$last" ;;
esac
`

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("ASSEMBLYAI_API_KEY", "")
	t.Setenv("SUBBURN_API_TOKEN", "")

	cfg := testsupport.NewConfig(t, opts...)
	installFFmpegStub(t, cfg)

	configPath := filepath.Join(home, ".config", "subburn", "config.toml")
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	writeTestConfig(t, configPath, cfg)
	return &cliTestEnv{cfg: cfg, configPath: configPath}
}

func installFFmpegStub(t *testing.T, cfg *config.Config) {
	t.Helper()
	binDir := filepath.Join(testsupport.BaseDir(cfg), "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatalf("mkdir bin: %v", err)
	}
	if err := os.WriteFile(filepath.Join(binDir, "ffmpeg"), []byte(ffmpegStub), 0o755); err != nil {
		t.Fatalf("write ffmpeg stub: %v", err)
	}
	t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
data_dir = %q
upload_dir = %q
processed_dir = %q
log_dir = %q
api_bind = %q

[transcription]
provider = %q
api_key = %q
base_url = %q
poll_interval_seconds = 1
max_poll_attempts = 3

[metrics]
enabled = false
`,
		cfg.Paths.DataDir,
		cfg.Paths.UploadDir,
		cfg.Paths.ProcessedDir,
		cfg.Paths.LogDir,
		cfg.Paths.APIBind,
		cfg.Transcription.Provider,
		cfg.Transcription.APIKey,
		cfg.Transcription.BaseURL,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
