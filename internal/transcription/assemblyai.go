package transcription

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"subburn/internal/logging"
	"subburn/internal/services"
)

const (
	defaultAssemblyAIBaseURL = "https://api.assemblyai.com/v2"
	defaultRequestTimeout    = 120 * time.Second
	maxErrorBodyBytes        = 4096

	statusCompleted = "completed"
	statusError     = "error"
)

// AssemblyAIConfig captures credentials and polling behaviour.
type AssemblyAIConfig struct {
	APIKey         string
	BaseURL        string
	LanguageCode   string
	Poll           PollPolicy
	RequestTimeout time.Duration
}

// AssemblyAIClient implements Transcriber against the AssemblyAI v2 API.
type AssemblyAIClient struct {
	cfg        AssemblyAIConfig
	httpClient *http.Client
	wait       Waiter
	logger     *slog.Logger
}

// AssemblyAIOption customizes the client.
type AssemblyAIOption func(*AssemblyAIClient)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) AssemblyAIOption {
	return func(c *AssemblyAIClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithWaiter overrides how the client pauses between polls (useful for tests).
func WithWaiter(wait Waiter) AssemblyAIOption {
	return func(c *AssemblyAIClient) {
		if wait != nil {
			c.wait = wait
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(logger *slog.Logger) AssemblyAIOption {
	return func(c *AssemblyAIClient) {
		c.logger = logging.NewComponentLogger(logger, "assemblyai")
	}
}

// NewAssemblyAI constructs a client using the supplied configuration.
func NewAssemblyAI(cfg AssemblyAIConfig, opts ...AssemblyAIOption) *AssemblyAIClient {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultAssemblyAIBaseURL
	}
	cfg.LanguageCode = strings.TrimSpace(cfg.LanguageCode)
	cfg.Poll = cfg.Poll.normalized()
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	client := &AssemblyAIClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		wait:       waitContext,
		logger:     logging.NewComponentLogger(nil, "assemblyai"),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

type httpStatusError struct {
	StatusCode int
	Body       string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("http %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

type uploadResponse struct {
	UploadURL string `json:"upload_url"`
}

type transcriptRequest struct {
	AudioURL     string `json:"audio_url"`
	LanguageCode string `json:"language_code,omitempty"`
}

type transcriptWord struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

type transcriptResponse struct {
	ID     string           `json:"id"`
	Status string           `json:"status"`
	Text   string           `json:"text"`
	Words  []transcriptWord `json:"words"`
	Error  string           `json:"error"`
}

// Transcribe uploads audioPath, submits it and polls until a terminal state.
func (c *AssemblyAIClient) Transcribe(ctx context.Context, audioPath string) (Result, error) {
	if c.cfg.APIKey == "" {
		return Result{}, services.Wrap(services.ErrConfiguration, "transcription", "assemblyai", "api key required", nil)
	}

	uploadURL, err := c.upload(ctx, audioPath)
	if err != nil {
		return Result{}, err
	}
	transcriptID, err := c.submit(ctx, uploadURL)
	if err != nil {
		return Result{}, err
	}
	c.logger.Info("transcript submitted",
		logging.String(logging.FieldEventType, "transcript_submitted"),
		logging.String("transcript_id", transcriptID),
	)

	resp, err := c.poll(ctx, transcriptID)
	if err != nil {
		return Result{}, err
	}
	return toResult(resp), nil
}

func (c *AssemblyAIClient) upload(ctx context.Context, audioPath string) (string, error) {
	file, err := os.Open(audioPath)
	if err != nil {
		return "", services.Wrap(services.ErrMissingSourceFile, "transcription", "open audio", audioPath, err)
	}
	defer file.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/upload", file)
	if err != nil {
		return "", fmt.Errorf("build upload request: %w", err)
	}
	if info, statErr := file.Stat(); statErr == nil {
		req.ContentLength = info.Size()
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	var out uploadResponse
	if err := c.do(req, "upload", &out); err != nil {
		return "", err
	}
	if strings.TrimSpace(out.UploadURL) == "" {
		return "", services.Wrap(services.ErrTranscriptionProvider, "transcription", "upload", "response missing upload_url", nil)
	}
	return out.UploadURL, nil
}

func (c *AssemblyAIClient) submit(ctx context.Context, uploadURL string) (string, error) {
	body, err := json.Marshal(transcriptRequest{AudioURL: uploadURL, LanguageCode: c.cfg.LanguageCode})
	if err != nil {
		return "", fmt.Errorf("encode transcript request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/transcript", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build transcript request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var out transcriptResponse
	if err := c.do(req, "submit", &out); err != nil {
		return "", err
	}
	if strings.TrimSpace(out.ID) == "" {
		return "", services.Wrap(services.ErrTranscriptionProvider, "transcription", "submit", "response missing id", nil)
	}
	return out.ID, nil
}

func (c *AssemblyAIClient) poll(ctx context.Context, transcriptID string) (transcriptResponse, error) {
	policy := c.cfg.Poll
	endpoint := c.cfg.BaseURL + "/transcript/" + url.PathEscape(transcriptID)

	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return transcriptResponse{}, fmt.Errorf("build poll request: %w", err)
		}
		var out transcriptResponse
		if err := c.do(req, "poll", &out); err != nil {
			return transcriptResponse{}, err
		}

		c.logger.Debug("transcript status",
			logging.String("transcript_id", transcriptID),
			logging.String("status", out.Status),
			logging.Int("attempt", attempt),
		)
		switch out.Status {
		case statusCompleted:
			return out, nil
		case statusError:
			detail := strings.TrimSpace(out.Error)
			if detail == "" {
				detail = "provider reported error without detail"
			}
			return transcriptResponse{}, services.Wrap(services.ErrTranscriptionProvider, "transcription", "poll", detail, nil)
		}

		if attempt == policy.MaxAttempts {
			break
		}
		if err := c.wait(ctx, policy.Interval); err != nil {
			return transcriptResponse{}, services.Wrap(services.ErrTranscriptionTimeout, "transcription", "poll", "wait interrupted", err)
		}
	}
	return transcriptResponse{}, services.Wrap(
		services.ErrTranscriptionTimeout,
		"transcription",
		"poll",
		fmt.Sprintf("transcript %s not finished after %d attempts over %s", transcriptID, policy.MaxAttempts, policy.Budget()),
		nil,
	)
}

func (c *AssemblyAIClient) do(req *http.Request, op string, out any) error {
	req.Header.Set("Authorization", c.cfg.APIKey)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return services.Wrap(services.ErrTranscriptionTimeout, "transcription", op, "request aborted", err)
		}
		return services.Wrap(services.ErrTranscriptionProvider, "transcription", op, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return services.Wrap(services.ErrTranscriptionProvider, "transcription", op, "", &httpStatusError{
			StatusCode: resp.StatusCode,
			Body:       string(body),
		})
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return services.Wrap(services.ErrTranscriptionProvider, "transcription", op, "decode response", err)
	}
	return nil
}

func toResult(resp transcriptResponse) Result {
	result := Result{Text: resp.Text}
	if len(resp.Words) == 0 {
		return result
	}
	result.Words = make([]Word, 0, len(resp.Words))
	for _, w := range resp.Words {
		result.Words = append(result.Words, Word{
			Text:  w.Text,
			Start: msToSeconds(w.Start),
			End:   msToSeconds(w.End),
		})
	}
	return result
}
