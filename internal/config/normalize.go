package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTranscription()
	c.normalizeUpload()
	c.normalizeMirror()
	c.normalizeRetention()
	c.normalizeLogging()
	c.FFmpeg.Binary = strings.TrimSpace(c.FFmpeg.Binary)
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.UploadDir) == "" {
		c.Paths.UploadDir = defaultUploadDir
	}
	if c.Paths.UploadDir, err = expandPath(c.Paths.UploadDir); err != nil {
		return fmt.Errorf("paths.upload_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ProcessedDir) == "" {
		c.Paths.ProcessedDir = defaultProcessedDir
	}
	if c.Paths.ProcessedDir, err = expandPath(c.Paths.ProcessedDir); err != nil {
		return fmt.Errorf("paths.processed_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	if value, ok := os.LookupEnv("SUBBURN_API_TOKEN"); ok && strings.TrimSpace(value) != "" {
		c.Paths.APIToken = strings.TrimSpace(value)
	}
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	return nil
}

func (c *Config) normalizeTranscription() {
	t := &c.Transcription
	t.Provider = strings.ToLower(strings.TrimSpace(t.Provider))
	if t.Provider == "" {
		t.Provider = defaultTranscriptionProvider
	}

	envKey := "ASSEMBLYAI_API_KEY"
	if t.Provider == ProviderOpenAI {
		envKey = "OPENAI_API_KEY"
	}
	if value, ok := os.LookupEnv(envKey); ok && strings.TrimSpace(value) != "" {
		t.APIKey = value
	}
	t.APIKey = strings.TrimSpace(t.APIKey)

	t.BaseURL = strings.TrimRight(strings.TrimSpace(t.BaseURL), "/")
	switch {
	case t.BaseURL == "" && t.Provider == ProviderAssemblyAI:
		t.BaseURL = defaultAssemblyAIBaseURL
	case t.BaseURL == defaultAssemblyAIBaseURL && t.Provider == ProviderOpenAI:
		// The OpenAI client supplies its own endpoint.
		t.BaseURL = ""
	}
	t.LanguageCode = strings.TrimSpace(t.LanguageCode)
	if t.LanguageCode == "" {
		t.LanguageCode = defaultLanguageCode
	}
	t.OpenAIModel = strings.TrimSpace(t.OpenAIModel)
	if t.OpenAIModel == "" {
		t.OpenAIModel = defaultOpenAIModel
	}
}

func (c *Config) normalizeUpload() {
	c.Upload.Rate = strings.ToUpper(strings.TrimSpace(c.Upload.Rate))
}

func (c *Config) normalizeMirror() {
	m := &c.Mirror
	m.Endpoint = strings.TrimSpace(m.Endpoint)
	m.Bucket = strings.TrimSpace(m.Bucket)
	m.Prefix = strings.Trim(strings.TrimSpace(m.Prefix), "/")
	if value, ok := os.LookupEnv("MINIO_ACCESS_KEY"); ok && strings.TrimSpace(value) != "" {
		m.AccessKey = value
	}
	if value, ok := os.LookupEnv("MINIO_SECRET_KEY"); ok && strings.TrimSpace(value) != "" {
		m.SecretKey = value
	}
	m.AccessKey = strings.TrimSpace(m.AccessKey)
	m.SecretKey = strings.TrimSpace(m.SecretKey)
}

func (c *Config) normalizeRetention() {
	c.Retention.Schedule = strings.TrimSpace(c.Retention.Schedule)
	if c.Retention.Schedule == "" {
		c.Retention.Schedule = defaultRetentionSchedule
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
