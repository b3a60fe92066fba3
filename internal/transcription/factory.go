package transcription

import (
	"fmt"
	"log/slog"

	"subburn/internal/config"
	"subburn/internal/services"
)

// New builds the Transcriber selected by cfg.Transcription.Provider.
func New(cfg *config.Config, logger *slog.Logger) (Transcriber, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "transcription", "new", "config required", nil)
	}
	if err := cfg.RequireTranscriptionKey(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "transcription", "new", "", err)
	}
	t := cfg.Transcription
	switch t.Provider {
	case config.ProviderAssemblyAI:
		return NewAssemblyAI(AssemblyAIConfig{
			APIKey:       t.APIKey,
			BaseURL:      t.BaseURL,
			LanguageCode: t.LanguageCode,
			Poll: PollPolicy{
				Interval:    cfg.PollInterval(),
				MaxAttempts: t.MaxPollAttempts,
			},
			RequestTimeout: cfg.RequestTimeout(),
		}, WithLogger(logger)), nil
	case config.ProviderOpenAI:
		return NewOpenAI(OpenAIConfig{
			APIKey:       t.APIKey,
			BaseURL:      t.BaseURL,
			Model:        t.OpenAIModel,
			LanguageCode: t.LanguageCode,
		}, logger), nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, "transcription", "new", fmt.Sprintf("unsupported provider %q", t.Provider), nil)
	}
}
