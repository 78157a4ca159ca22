package daemonrun_test

import (
	"context"
	"os"
	"testing"
	"time"

	"frame/internal/daemonrun"
	"frame/internal/testsupport"
)

func TestRunWritesPIDAndStopsOnCancel(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- daemonrun.Run(ctx, cfg, daemonrun.Options{LogLevel: "error", DrainTimeout: time.Second})
	}()

	deadline := time.Now().Add(5 * time.Second)
	for {
		pid, err := daemonrun.ReadPID(cfg)
		if err == nil {
			if pid != os.Getpid() {
				t.Fatalf("unexpected pid %d", pid)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("pid file never appeared: %v", err)
		}
		select {
		case err := <-done:
			t.Fatalf("Run returned early: %v", err)
		case <-time.After(20 * time.Millisecond):
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	if _, err := os.Stat(daemonrun.PIDPath(cfg)); !os.IsNotExist(err) {
		t.Fatalf("expected pid file removed, got %v", err)
	}
	if _, err := os.Lstat(cfg.LogPath()); err != nil {
		t.Fatalf("expected current log pointer: %v", err)
	}
}

func TestRunRequiresConfig(t *testing.T) {
	if err := daemonrun.Run(context.Background(), nil, daemonrun.Options{}); err == nil {
		t.Fatal("expected error for nil config")
	}
}

func TestReadPIDMissing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if _, err := daemonrun.ReadPID(cfg); err == nil {
		t.Fatal("expected error when no pid file")
	}
}
