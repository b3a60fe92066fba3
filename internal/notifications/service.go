package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"subburn/internal/config"
	"subburn/internal/jobs"
)

const userAgent = "subburn/0.1.0"

// Service defines the notification surface used by the pipeline and daemon.
type Service interface {
	NotifyJobCompleted(ctx context.Context, job *jobs.Job, elapsed time.Duration) error
	NotifyJobFailed(ctx context.Context, job *jobs.Job, cause error) error
	NotifyInterruptedJobs(ctx context.Context, count int64) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyJobCompleted(ctx context.Context, job *jobs.Job, elapsed time.Duration) error {
	elapsed = elapsed.Round(time.Second)
	if elapsed < 0 {
		elapsed = 0
	}
	data := payload{
		title:   "Subburn - Captions Ready",
		message: fmt.Sprintf("✅ Captions burned: %s (%s)", displayName(job), elapsed),
		tags:    []string{"subburn", "job", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyJobFailed(ctx context.Context, job *jobs.Job, cause error) error {
	var builder strings.Builder
	builder.WriteString("❌ Captioning failed for ")
	builder.WriteString(displayName(job))
	builder.WriteString(": ")
	if cause != nil {
		builder.WriteString(strings.TrimSpace(cause.Error()))
	} else {
		builder.WriteString("unknown")
	}
	data := payload{
		title:    "Subburn - Job Failed",
		message:  builder.String(),
		tags:     []string{"subburn", "job", "failed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyInterruptedJobs(ctx context.Context, count int64) error {
	if count <= 0 {
		return nil
	}
	data := payload{
		title:   "Subburn - Interrupted Jobs",
		message: fmt.Sprintf("%d job(s) were processing when the daemon stopped and are now marked failed", count),
		tags:    []string{"subburn", "daemon", "recovery"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Subburn - Test",
		message:  "🧪 Notification system test",
		tags:     []string{"subburn", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func displayName(job *jobs.Job) string {
	if job == nil {
		return "unknown job"
	}
	if name := strings.TrimSpace(job.OriginalName); name != "" {
		return name
	}
	return job.ID
}

type noopService struct{}

func (noopService) NotifyJobCompleted(context.Context, *jobs.Job, time.Duration) error { return nil }
func (noopService) NotifyJobFailed(context.Context, *jobs.Job, error) error            { return nil }
func (noopService) NotifyInterruptedJobs(context.Context, int64) error                 { return nil }
func (noopService) TestNotification(context.Context) error                             { return nil }
