package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"scriptdna/internal/config"
	"scriptdna/internal/services"
)

const userAgent = "ScriptDNA/0.1.0"

// Service is the notification surface used by the CLI and the API.
type Service interface {
	NotifyScriptExported(ctx context.Context, topic string, parts int, path string) error
	NotifyStageFailed(ctx context.Context, stage string, err error) error
	TestNotification(ctx context.Context) error
}

// NewService builds an ntfy-backed service, or a no-op when
// notifications.ntfy_topic is empty.
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

func (n *ntfyService) NotifyScriptExported(ctx context.Context, topic string, parts int, path string) error {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		topic = "Untitled script"
	}
	message := fmt.Sprintf("📝 Script ready: %s (%d parts)", topic, parts)
	if path = strings.TrimSpace(path); path != "" {
		message += "\nFile: " + path
	}
	return n.send(ctx, payload{
		title:    "ScriptDNA - Script Ready",
		message:  message,
		tags:     []string{"scriptdna", "script", "exported"},
		priority: "high",
	})
}

func (n *ntfyService) NotifyStageFailed(ctx context.Context, stage string, err error) error {
	var b strings.Builder
	b.WriteString("❌ ")
	if stage = strings.TrimSpace(stage); stage != "" {
		b.WriteString(stage)
		b.WriteString(" failed: ")
	} else {
		b.WriteString("Failed: ")
	}
	if err != nil {
		b.WriteString(strings.TrimSpace(err.Error()))
	} else {
		b.WriteString("unknown")
	}
	tags := []string{"scriptdna", "error"}
	if err != nil {
		tags = append(tags, services.Classify(err))
	}
	return n.send(ctx, payload{
		title:    "ScriptDNA - Error",
		message:  b.String(),
		tags:     tags,
		priority: "high",
	})
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.send(ctx, payload{
		title:    "ScriptDNA - Test",
		message:  "🧪 Notification system test",
		tags:     []string{"scriptdna", "test"},
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

func (noopService) NotifyScriptExported(context.Context, string, int, string) error { return nil }
func (noopService) NotifyStageFailed(context.Context, string, error) error          { return nil }
func (noopService) TestNotification(context.Context) error                          { return nil }

// IsDisabled reports whether svc drops every notification.
func IsDisabled(svc Service) bool {
	if svc == nil {
		return true
	}
	_, ok := svc.(noopService)
	return ok
}
