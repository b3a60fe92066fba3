package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTranscription(); err != nil {
		return err
	}
	if err := ensurePositiveMap(map[string]int{
		"upload.max_mb":                 c.Upload.MaxMB,
		"notifications.request_timeout": c.Notifications.RequestTimeout,
	}); err != nil {
		return err
	}
	if err := c.validateMirror(); err != nil {
		return err
	}
	if err := c.validateRetention(); err != nil {
		return err
	}
	return c.validateLogging()
}

// RequireTranscriptionKey reports a descriptive error when the selected
// provider has no credential. Commands that never transcribe skip this check.
func (c *Config) RequireTranscriptionKey() error {
	if strings.TrimSpace(c.Transcription.APIKey) != "" {
		return nil
	}
	envKey := "ASSEMBLYAI_API_KEY"
	if c.Transcription.Provider == ProviderOpenAI {
		envKey = "OPENAI_API_KEY"
	}
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		defaultPath = "~/.config/subburn/config.toml"
	}
	return fmt.Errorf("transcription.api_key is required. Set %s env var or edit %s (create with 'subburn config init')", envKey, defaultPath)
}

func (c *Config) validateTranscription() error {
	switch c.Transcription.Provider {
	case ProviderAssemblyAI, ProviderOpenAI:
	default:
		return fmt.Errorf("transcription.provider: unsupported value %q", c.Transcription.Provider)
	}
	return ensurePositiveMap(map[string]int{
		"transcription.poll_interval_seconds":   c.Transcription.PollIntervalSeconds,
		"transcription.max_poll_attempts":       c.Transcription.MaxPollAttempts,
		"transcription.request_timeout_seconds": c.Transcription.RequestTimeoutSeconds,
	})
}

func (c *Config) validateMirror() error {
	if !c.Mirror.Enabled {
		return nil
	}
	if c.Mirror.Endpoint == "" {
		return errors.New("mirror.endpoint must be set when mirror.enabled is true")
	}
	if c.Mirror.Bucket == "" {
		return errors.New("mirror.bucket must be set when mirror.enabled is true")
	}
	if c.Mirror.AccessKey == "" || c.Mirror.SecretKey == "" {
		return errors.New("mirror.access_key and mirror.secret_key must be set when mirror.enabled is true")
	}
	return nil
}

func (c *Config) validateRetention() error {
	if !c.Retention.Enabled {
		return nil
	}
	if c.Retention.MaxAgeHours <= 0 {
		return errors.New("retention.max_age_hours must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	if c.Logging.MaxSizeMB < 0 || c.Logging.MaxBackups < 0 || c.Logging.RetentionDays < 0 {
		return errors.New("logging rotation values must not be negative")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
