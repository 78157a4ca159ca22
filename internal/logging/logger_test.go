package logging_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"frame/internal/config"
	"frame/internal/logging"
	"frame/internal/services"
)

func TestNewFromConfigWritesJSONLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Logging.Level = "warn"

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Warn("queue stalled", logging.String("job_id", "j1"))

	content, err := os.ReadFile(cfg.LogPath())
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(content))), &entry); err != nil {
		t.Fatalf("expected JSON log line, got %q: %v", content, err)
	}
	if entry["msg"] != "queue stalled" || entry["job_id"] != "j1" || entry["level"] != "warn" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestConsoleLoggerOmitsCallerForInfo(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-info.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("message without caller")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if strings.Contains(string(content), ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", content)
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-debug.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "debug", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("message with caller")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), ".go:") {
		t.Fatalf("expected caller information in debug logs, got %q", content)
	}
}

func TestConsoleLoggerRendersComponentAndRowSubject(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console.log")
	base, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger := logging.NewComponentLogger(base, "queue")
	logger.Info("job completed", logging.String(logging.FieldRowID, "r-1"), logging.String("status", "Completed"))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(content)
	if !strings.Contains(line, "queue · row r-1: job completed") {
		t.Fatalf("expected subject in console line, got %q", line)
	}
	if !strings.Contains(line, "status=Completed") {
		t.Fatalf("expected status field, got %q", line)
	}
	if strings.Contains(line, "\x1b[") {
		t.Fatalf("expected no colour codes for file output, got %q", line)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWithContextAddsFields(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "ctx.log")
	base, err := logging.New(logging.Options{Format: "json", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := context.Background()
	ctx = services.WithRowID(ctx, "row-9")
	ctx = services.WithJobID(ctx, "job-3")
	ctx = services.WithRequestID(ctx, "req-xyz")
	logging.WithContext(ctx, base).Info("contextual log")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var entry map[string]any
	if err := json.Unmarshal(content, &entry); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	for key, want := range map[string]string{
		logging.FieldRowID:         "row-9",
		logging.FieldJobID:         "job-3",
		logging.FieldCorrelationID: "req-xyz",
	} {
		if entry[key] != want {
			t.Fatalf("field %s = %v, want %s", key, entry[key], want)
		}
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "warn.log")
	base, err := logging.New(logging.Options{Format: "json", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.WarnWithContext(base, "summary unavailable", "summary_failed")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	for _, key := range []string{logging.FieldEventType, logging.FieldErrorHint, logging.FieldImpact} {
		if !strings.Contains(string(content), `"`+key+`"`) {
			t.Fatalf("expected %s in %q", key, content)
		}
	}
}

func TestTeeHandlerDuplicatesRecords(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.log")
	b := filepath.Join(dir, "b.log")
	la, err := logging.New(logging.Options{Format: "json", OutputPaths: []string{a}})
	if err != nil {
		t.Fatalf("New a: %v", err)
	}
	lb, err := logging.New(logging.Options{Format: "console", OutputPaths: []string{b}})
	if err != nil {
		t.Fatalf("New b: %v", err)
	}
	tee := logging.TeeHandler(la.Handler(), lb.Handler())
	if err := tee.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelInfo, "hello", 0)); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	for _, path := range []string{a, b} {
		data, err := os.ReadFile(path)
		if err != nil || !strings.Contains(string(data), "hello") {
			t.Fatalf("expected record in %s, got %q (%v)", path, data, err)
		}
	}
}
