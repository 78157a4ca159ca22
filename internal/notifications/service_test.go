package notifications_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"frame/internal/config"
	"frame/internal/notifications"
)

type captured struct {
	title    string
	tags     string
	priority string
	body     string
}

func newNtfyServer(t *testing.T, status int) (*httptest.Server, *[]captured) {
	t.Helper()
	var got []captured
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got = append(got, captured{
			title:    r.Header.Get("Title"),
			tags:     r.Header.Get("Tags"),
			priority: r.Header.Get("Priority"),
			body:     string(body),
		})
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, &got
}

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.NotifyJobFailed(context.Background(), "t", "u", "m"); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	srv, got := newNtfyServer(t, http.StatusOK)
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = srv.URL
	cfg.Notifications.JobFailed = true
	cfg.Notifications.QueueDrained = true
	svc := notifications.NewService(&cfg)
	ctx := context.Background()

	if err := svc.NotifyJobFailed(ctx, "", "https://youtu.be/abc", "HTTP 500"); err != nil {
		t.Fatalf("NotifyJobFailed: %v", err)
	}
	if err := svc.NotifyQueueDrained(ctx, 3, 1, 1500*time.Millisecond); err != nil {
		t.Fatalf("NotifyQueueDrained: %v", err)
	}
	if err := svc.NotifyQueueDrained(ctx, 2, 0, 0); err != nil {
		t.Fatalf("NotifyQueueDrained: %v", err)
	}

	tests := []captured{
		{title: "Frame - Job Failed", tags: "frame,job,failed", priority: "high", body: "❌ Ingestion failed: https://youtu.be/abc\nHTTP 500"},
		{title: "Frame - Queue Complete (with errors)", tags: "frame,queue,completed", body: "Ingestion queue drained: 3 succeeded, 1 failed in 2s"},
		{title: "Frame - Queue Complete", tags: "frame,queue,completed", body: "Ingestion queue drained: 2 videos processed in 0s"},
	}
	if len(*got) != len(tests) {
		t.Fatalf("expected %d requests, got %d", len(tests), len(*got))
	}
	for i, want := range tests {
		if (*got)[i] != want {
			t.Fatalf("request %d:\n got %+v\nwant %+v", i, (*got)[i], want)
		}
	}
}

func TestNtfyServiceRespectsEventToggles(t *testing.T) {
	srv, got := newNtfyServer(t, http.StatusOK)
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = srv.URL
	cfg.Notifications.JobFailed = false
	cfg.Notifications.QueueDrained = false
	svc := notifications.NewService(&cfg)

	_ = svc.NotifyJobFailed(context.Background(), "t", "u", "m")
	_ = svc.NotifyQueueDrained(context.Background(), 1, 0, time.Second)
	if len(*got) != 0 {
		t.Fatalf("expected disabled events to be skipped, got %d requests", len(*got))
	}
	if err := svc.TestNotification(context.Background()); err != nil {
		t.Fatalf("TestNotification: %v", err)
	}
	if len(*got) != 1 || (*got)[0].priority != "low" {
		t.Fatalf("expected test notification, got %+v", *got)
	}
}

func TestNtfyServiceReportsHTTPErrors(t *testing.T) {
	srv, _ := newNtfyServer(t, http.StatusForbidden)
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = srv.URL
	svc := notifications.NewService(&cfg)

	err := svc.TestNotification(context.Background())
	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Fatalf("expected status error, got %v", err)
	}
}
