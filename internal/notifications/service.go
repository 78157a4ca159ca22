package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"frame/internal/config"
)

const userAgent = "Frame-Go/0.1.0"

// Service defines the notification surface exposed to the processing queue
// and the CLI.
type Service interface {
	NotifyJobFailed(ctx context.Context, title, url, message string) error
	NotifyQueueDrained(ctx context.Context, processed, failed int, duration time.Duration) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:     topic,
		client:       &http.Client{Timeout: timeout},
		jobFailed:    cfg.Notifications.JobFailed,
		queueDrained: cfg.Notifications.QueueDrained,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint     string
	client       *http.Client
	jobFailed    bool
	queueDrained bool
}

func (n *ntfyService) NotifyJobFailed(ctx context.Context, title, url, message string) error {
	if !n.jobFailed {
		return nil
	}
	label := strings.TrimSpace(title)
	if label == "" {
		label = strings.TrimSpace(url)
	}
	var builder strings.Builder
	builder.WriteString("❌ Ingestion failed: ")
	builder.WriteString(label)
	if message = strings.TrimSpace(message); message != "" {
		builder.WriteString("\n")
		builder.WriteString(message)
	}
	return n.send(ctx, payload{
		title:    "Frame - Job Failed",
		message:  builder.String(),
		tags:     []string{"frame", "job", "failed"},
		priority: "high",
	})
}

func (n *ntfyService) NotifyQueueDrained(ctx context.Context, processed, failed int, duration time.Duration) error {
	if !n.queueDrained {
		return nil
	}
	duration = duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}

	title := "Frame - Queue Complete"
	message := fmt.Sprintf("Ingestion queue drained: %d videos processed in %s", processed, duration)
	if failed > 0 {
		title = "Frame - Queue Complete (with errors)"
		message = fmt.Sprintf("Ingestion queue drained: %d succeeded, %d failed in %s", processed, failed, duration)
	}
	return n.send(ctx, payload{
		title:   title,
		message: message,
		tags:    []string{"frame", "queue", "completed"},
	})
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.send(ctx, payload{
		title:    "Frame - Test",
		message:  "🧪 Notification system test",
		tags:     []string{"frame", "test"},
		priority: "low",
	})
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

type noopService struct{}

func (noopService) NotifyJobFailed(context.Context, string, string, string) error      { return nil }
func (noopService) NotifyQueueDrained(context.Context, int, int, time.Duration) error { return nil }
func (noopService) TestNotification(context.Context) error                            { return nil }
