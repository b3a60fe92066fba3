package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"subburn/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("ASSEMBLYAI_API_KEY", "env-key")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantUploads := filepath.Join(tempHome, ".local", "share", "subburn", "uploads")
	if cfg.Paths.UploadDir != wantUploads {
		t.Fatalf("unexpected upload dir: got %q want %q", cfg.Paths.UploadDir, wantUploads)
	}
	if cfg.Paths.APIBind != "127.0.0.1:5000" {
		t.Fatalf("unexpected api bind: %q", cfg.Paths.APIBind)
	}
	if cfg.Transcription.Provider != config.ProviderAssemblyAI {
		t.Fatalf("unexpected provider: %q", cfg.Transcription.Provider)
	}
	if cfg.Transcription.APIKey != "env-key" {
		t.Fatalf("expected key from env, got %q", cfg.Transcription.APIKey)
	}
	if cfg.PollInterval() != 5*time.Second {
		t.Fatalf("unexpected poll interval: %s", cfg.PollInterval())
	}
	if cfg.Transcription.MaxPollAttempts != 60 {
		t.Fatalf("unexpected max attempts: %d", cfg.Transcription.MaxPollAttempts)
	}
	if cfg.UploadLimitBytes() != 500*1024*1024 {
		t.Fatalf("unexpected upload limit: %d", cfg.UploadLimitBytes())
	}
	if cfg.DatabasePath() != filepath.Join(tempHome, ".local", "share", "subburn", "jobs.db") {
		t.Fatalf("unexpected database path: %q", cfg.DatabasePath())
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.UploadDir, cfg.Paths.ProcessedDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "subburn.toml")

	type payload struct {
		Paths struct {
			ProcessedDir string `toml:"processed_dir"`
		} `toml:"paths"`
		Transcription struct {
			Provider            string `toml:"provider"`
			APIKey              string `toml:"api_key"`
			PollIntervalSeconds int    `toml:"poll_interval_seconds"`
		} `toml:"transcription"`
		Logging struct {
			Format string `toml:"format"`
		} `toml:"logging"`
	}
	custom := payload{}
	custom.Paths.ProcessedDir = filepath.Join(tempDir, "out")
	custom.Transcription.Provider = "OpenAI"
	custom.Transcription.APIKey = "file-key"
	custom.Transcription.PollIntervalSeconds = 2
	custom.Logging.Format = "JSON"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Paths.ProcessedDir != filepath.Join(tempDir, "out") {
		t.Fatalf("unexpected processed dir: %q", cfg.Paths.ProcessedDir)
	}
	if cfg.Transcription.Provider != config.ProviderOpenAI {
		t.Fatalf("expected provider to be normalized, got %q", cfg.Transcription.Provider)
	}
	if cfg.Transcription.APIKey != "file-key" {
		t.Fatalf("expected key from file, got %q", cfg.Transcription.APIKey)
	}
	if cfg.PollInterval() != 2*time.Second {
		t.Fatalf("expected poll interval override, got %s", cfg.PollInterval())
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected lower-cased log format, got %q", cfg.Logging.Format)
	}
}

func TestEnvVarOverridesConfigFileForAPIKey(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "subburn.toml")
	content := "[transcription]\napi_key = \"file-key\"\n\n[paths]\napi_token = \"file-token\"\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("ASSEMBLYAI_API_KEY", "env-key")
	t.Setenv("SUBBURN_API_TOKEN", "env-token")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Transcription.APIKey != "env-key" {
		t.Fatalf("expected env key to win, got %q", cfg.Transcription.APIKey)
	}
	if cfg.Paths.APIToken != "env-token" {
		t.Fatalf("expected env token to win, got %q", cfg.Paths.APIToken)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{
			name:   "unknown provider",
			mutate: func(c *config.Config) { c.Transcription.Provider = "deepgram" },
			want:   "transcription.provider",
		},
		{
			name:   "zero poll attempts",
			mutate: func(c *config.Config) { c.Transcription.MaxPollAttempts = 0 },
			want:   "transcription.max_poll_attempts",
		},
		{
			name:   "mirror without bucket",
			mutate: func(c *config.Config) { c.Mirror.Enabled = true; c.Mirror.Endpoint = "localhost:9000" },
			want:   "mirror.bucket",
		},
		{
			name:   "unknown log format",
			mutate: func(c *config.Config) { c.Logging.Format = "xml" },
			want:   "logging.format",
		},
		{
			name:   "retention without age",
			mutate: func(c *config.Config) { c.Retention.Enabled = true; c.Retention.MaxAgeHours = 0 },
			want:   "retention.max_age_hours",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected %q in %q", tt.want, err.Error())
			}
		})
	}
}

func TestRequireTranscriptionKeyMentionsEnvVar(t *testing.T) {
	cfg := config.Default()
	cfg.Transcription.Provider = config.ProviderOpenAI
	err := cfg.RequireTranscriptionKey()
	if err == nil || !strings.Contains(err.Error(), "OPENAI_API_KEY") {
		t.Fatalf("expected OPENAI_API_KEY hint, got %v", err)
	}
	cfg.Transcription.APIKey = "k"
	if err := cfg.RequireTranscriptionKey(); err != nil {
		t.Fatalf("expected no error with key, got %v", err)
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	if _, _, exists, err := config.Load(path); err != nil || !exists {
		t.Fatalf("expected sample to load, exists=%v err=%v", exists, err)
	}
}

func TestEncodeRedactsSecrets(t *testing.T) {
	cfg := config.Default()
	cfg.Transcription.APIKey = "super-secret"
	cfg.Mirror.SecretKey = "another-secret"
	data, err := cfg.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if strings.Contains(string(data), "super-secret") || strings.Contains(string(data), "another-secret") {
		t.Fatalf("expected secrets to be redacted:\n%s", data)
	}
}
