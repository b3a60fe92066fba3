package transcription

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"subburn/internal/logging"
	"subburn/internal/services"
)

const defaultOpenAIModel = openai.Whisper1

// OpenAIConfig captures settings for the Whisper transcription endpoint.
type OpenAIConfig struct {
	APIKey       string
	BaseURL      string
	Model        string
	LanguageCode string
}

// OpenAIClient implements Transcriber with a single synchronous request.
type OpenAIClient struct {
	client   *openai.Client
	model    string
	language string
	logger   *slog.Logger
}

// NewOpenAI constructs a Whisper client. BaseURL may point at any
// OpenAI-compatible server.
func NewOpenAI(cfg OpenAIConfig, logger *slog.Logger) *OpenAIClient {
	clientCfg := openai.DefaultConfig(strings.TrimSpace(cfg.APIKey))
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		clientCfg.BaseURL = base
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAIClient{
		client:   openai.NewClientWithConfig(clientCfg),
		model:    model,
		language: strings.TrimSpace(cfg.LanguageCode),
		logger:   logging.NewComponentLogger(logger, "openai"),
	}
}

// Transcribe sends audioPath to the transcription endpoint and requests word
// timestamps.
func (c *OpenAIClient) Transcribe(ctx context.Context, audioPath string) (Result, error) {
	resp, err := c.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.model,
		FilePath: audioPath,
		Language: c.language,
		Format:   openai.AudioResponseFormatVerboseJSON,
		TimestampGranularities: []openai.TranscriptionTimestampGranularity{
			openai.TranscriptionTimestampGranularityWord,
		},
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return Result{}, services.Wrap(services.ErrTranscriptionTimeout, "transcription", "openai", "request aborted", err)
		}
		return Result{}, services.Wrap(services.ErrTranscriptionProvider, "transcription", "openai", "create transcription", err)
	}

	result := Result{Text: resp.Text}
	for _, w := range resp.Words {
		result.Words = append(result.Words, Word{Text: w.Word, Start: w.Start, End: w.End})
	}
	c.logger.Info("transcription received",
		logging.String(logging.FieldEventType, "transcription_received"),
		logging.Int("word_count", len(result.Words)),
	)
	return result, nil
}
