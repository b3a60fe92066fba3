package config

const (
	defaultDataDir               = "~/.local/share/subburn"
	defaultUploadDir             = "~/.local/share/subburn/uploads"
	defaultProcessedDir          = "~/.local/share/subburn/processed"
	defaultLogDir                = "~/.local/share/subburn/logs"
	defaultAPIBind               = "127.0.0.1:5000"
	defaultFFmpegBinary          = "ffmpeg"
	defaultTranscriptionProvider = ProviderAssemblyAI
	defaultAssemblyAIBaseURL     = "https://api.assemblyai.com/v2"
	defaultLanguageCode          = "en"
	defaultPollIntervalSeconds   = 5
	defaultMaxPollAttempts       = 60
	defaultRequestTimeoutSeconds = 120
	defaultOpenAIModel           = "whisper-1"
	defaultUploadMaxMB           = 500
	defaultUploadRate            = "30-M"
	defaultNtfyRequestTimeout    = 10
	defaultMirrorPrefix          = "subburn"
	defaultRetentionSchedule     = "@every 1h"
	defaultRetentionMaxAgeHours  = 168
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
	defaultLogMaxSizeMB          = 50
	defaultLogMaxBackups         = 5
	defaultLogRetentionDays      = 30
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:      defaultDataDir,
			UploadDir:    defaultUploadDir,
			ProcessedDir: defaultProcessedDir,
			LogDir:       defaultLogDir,
			APIBind:      defaultAPIBind,
		},
		FFmpeg: FFmpeg{
			Binary: defaultFFmpegBinary,
		},
		Transcription: Transcription{
			Provider:              defaultTranscriptionProvider,
			BaseURL:               defaultAssemblyAIBaseURL,
			LanguageCode:          defaultLanguageCode,
			PollIntervalSeconds:   defaultPollIntervalSeconds,
			MaxPollAttempts:       defaultMaxPollAttempts,
			RequestTimeoutSeconds: defaultRequestTimeoutSeconds,
			OpenAIModel:           defaultOpenAIModel,
		},
		Upload: Upload{
			MaxMB: defaultUploadMaxMB,
			Rate:  defaultUploadRate,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyRequestTimeout,
		},
		Mirror: Mirror{
			Prefix: defaultMirrorPrefix,
		},
		Retention: Retention{
			Schedule:    defaultRetentionSchedule,
			MaxAgeHours: defaultRetentionMaxAgeHours,
		},
		Metrics: Metrics{
			Enabled: true,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			MaxSizeMB:     defaultLogMaxSizeMB,
			MaxBackups:    defaultLogMaxBackups,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
