package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"scriptdna/internal/config"
	"scriptdna/internal/notifications"
	"scriptdna/internal/services"
)

type captured struct {
	title    string
	tags     string
	priority string
	body     string
}

func newNtfy(t *testing.T, status int) (*httptest.Server, *[]captured) {
	t.Helper()
	var got []captured
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got = append(got, captured{
			title:    r.Header.Get("Title"),
			tags:     r.Header.Get("Tags"),
			priority: r.Header.Get("Priority"),
			body:     string(body),
		})
		w.WriteHeader(status)
	}))
	t.Cleanup(server.Close)
	return server, &got
}

func serviceFor(url string) notifications.Service {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = url
	return notifications.NewService(&cfg)
}

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	svc := notifications.NewService(&cfg)
	if !notifications.IsDisabled(svc) {
		t.Fatal("expected noop service")
	}
	if err := svc.NotifyScriptExported(context.Background(), "Topic", 3, ""); err != nil {
		t.Fatalf("noop returned %v", err)
	}
	if !notifications.IsDisabled(notifications.NewService(nil)) {
		t.Fatal("expected noop for nil config")
	}
}

func TestNotifyScriptExported(t *testing.T) {
	server, got := newNtfy(t, http.StatusOK)
	svc := serviceFor(server.URL)

	if err := svc.NotifyScriptExported(context.Background(), "Build a Shed", 5, "/tmp/full.txt"); err != nil {
		t.Fatalf("NotifyScriptExported: %v", err)
	}
	if len(*got) != 1 {
		t.Fatalf("expected one request, got %d", len(*got))
	}
	req := (*got)[0]
	if req.title != "ScriptDNA - Script Ready" || req.priority != "high" || req.tags != "scriptdna,script,exported" {
		t.Fatalf("unexpected headers %+v", req)
	}
	if !strings.Contains(req.body, "Build a Shed (5 parts)") || !strings.Contains(req.body, "File: /tmp/full.txt") {
		t.Fatalf("unexpected body %q", req.body)
	}
}

func TestNotifyStageFailedTagsErrorKind(t *testing.T) {
	server, got := newNtfy(t, http.StatusOK)
	svc := serviceFor(server.URL)

	err := services.Wrap(services.ErrTimeout, "script", "generate", "deadline", errors.New("slow"))
	if err := svc.NotifyStageFailed(context.Background(), "script", err); err != nil {
		t.Fatalf("NotifyStageFailed: %v", err)
	}
	req := (*got)[0]
	if req.tags != "scriptdna,error,timeout" {
		t.Fatalf("tags = %q", req.tags)
	}
	if !strings.HasPrefix(req.body, "❌ script failed: ") {
		t.Fatalf("body = %q", req.body)
	}
}

func TestSendReportsHTTPFailure(t *testing.T) {
	server, _ := newNtfy(t, http.StatusForbidden)
	svc := serviceFor(server.URL)
	err := svc.TestNotification(context.Background())
	if err == nil || !strings.Contains(err.Error(), "ntfy returned 403") {
		t.Fatalf("expected status error, got %v", err)
	}
}
