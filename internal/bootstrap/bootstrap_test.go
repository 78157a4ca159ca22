package bootstrap_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"frame/internal/bootstrap"
	"frame/internal/localstore"
	"frame/internal/testsupport"
)

func newYouTubeServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if !strings.Contains(r.URL.Query().Get("id"), "abc12345678") {
			_, _ = w.Write([]byte(`{"items":[]}`))
			return
		}
		_, _ = w.Write([]byte(`{"items":[{"id":"abc12345678",
			"snippet":{"title":"Go Concurrency","description":"Goroutines and channels explained","channelTitle":"Gopher TV"},
			"contentDetails":{"duration":"PT3M30S","caption":"true"},"statistics":{"viewCount":"10"}}]}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

type backendCalls struct {
	mu    sync.Mutex
	paths []string
}

func newBackendServer(t *testing.T, calls *backendCalls) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.mu.Lock()
		calls.paths = append(calls.paths, r.URL.Path)
		calls.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/videos/youtube-upload":
			_, _ = w.Write([]byte(`{"success":true,"gcpUrl":"gs://bucket/abc.mp4"}`))
		case "/videos/process-url":
			_, _ = w.Write([]byte(`{"id":"v1","videoUrl":"gs://bucket/abc.mp4","status":"completed","keyTopics":"goroutines, channels"}`))
		case "/api-keys/generate":
			_, _ = w.Write([]byte(`{"api_key":"key-123","created_at":"2025-01-01T00:00:00Z"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"detail":"not found"}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenBuildsWorkingSession(t *testing.T) {
	calls := &backendCalls{}
	cfg := testsupport.NewConfig(t,
		testsupport.WithYouTubeURL(newYouTubeServer(t).URL),
		testsupport.WithBackendURL(newBackendServer(t, calls).URL),
	)

	ctx := context.Background()
	app, err := bootstrap.Open(ctx, cfg, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { app.Close() })

	sess, err := app.NewSession(ctx)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	rowID := sess.Rows().Snapshot()[0].ID
	result, err := sess.Submit(ctx, rowID, "https://youtu.be/abc12345678")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if result.Err != nil {
		t.Fatalf("unexpected row failure: %v", result.Err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sess.Wait(waitCtx); err != nil {
		t.Fatalf("Wait: %v", err)
	}

	row, _ := sess.Rows().Get(rowID)
	if row.Title != "Go Concurrency" || row.Duration != "3:30" {
		t.Fatalf("unexpected row: %+v", row)
	}
	if row.Status != "Completed (captions)" {
		t.Fatalf("unexpected status %q", row.Status)
	}
	if row.KeyTopics != "goroutines, channels" {
		t.Fatalf("expected backend key topics, got %q", row.KeyTopics)
	}

	jobs, err := app.Store.RecentJobs(ctx, 10)
	if err != nil {
		t.Fatalf("RecentJobs: %v", err)
	}
	if len(jobs) != 1 || jobs[0].Outcome != localstore.OutcomeCompleted {
		t.Fatalf("expected one completed job in history, got %+v", jobs)
	}

	calls.mu.Lock()
	defer calls.mu.Unlock()
	if len(calls.paths) != 2 || calls.paths[0] != "/videos/youtube-upload" || calls.paths[1] != "/videos/process-url" {
		t.Fatalf("unexpected backend calls %v", calls.paths)
	}
}

func TestAppAPIKeysPersist(t *testing.T) {
	calls := &backendCalls{}
	cfg := testsupport.NewConfig(t,
		testsupport.WithYouTubeURL(newYouTubeServer(t).URL),
		testsupport.WithBackendURL(newBackendServer(t, calls).URL),
	)
	ctx := context.Background()
	app, err := bootstrap.Open(ctx, cfg, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { app.Close() })

	key, err := app.APIKeys.Ensure(ctx)
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if key != "key-123" {
		t.Fatalf("unexpected key %q", key)
	}
	again, err := app.APIKeys.Ensure(ctx)
	if err != nil || again != key {
		t.Fatalf("expected stored key reused, got %q %v", again, err)
	}
	calls.mu.Lock()
	defer calls.mu.Unlock()
	if len(calls.paths) != 1 {
		t.Fatalf("expected a single generate call, got %v", calls.paths)
	}
}

func TestNewGatewayWithSearchSummarizes(t *testing.T) {
	search := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" || r.Method != http.MethodPost {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"answer":"Goroutines and channels for concurrent Go","results":[]}`))
	}))
	t.Cleanup(search.Close)

	cfg := testsupport.NewConfig(t,
		testsupport.WithYouTubeURL(newYouTubeServer(t).URL),
		testsupport.WithSearch(search.URL),
	)
	gw, err := bootstrap.NewGateway(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("NewGateway: %v", err)
	}
	summary, ok := gw.FetchTopicSummary(context.Background(), "Go Concurrency", "Gopher TV")
	if !ok || summary != "Goroutines and channels for concurrent Go." {
		t.Fatalf("unexpected summary %q ok=%v", summary, ok)
	}
}

func TestNewGatewayRequiresYouTubeKey(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.YouTube.APIKey = ""
	if _, err := bootstrap.NewGateway(context.Background(), cfg, nil); err == nil {
		t.Fatal("expected error without youtube key")
	}
}
