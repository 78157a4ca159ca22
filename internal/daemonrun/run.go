package daemonrun

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"frame/internal/bootstrap"
	"frame/internal/config"
	"frame/internal/daemon"
	"frame/internal/logging"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel    string
	Development bool
	// DrainTimeout bounds how long shutdown waits for in-flight rows.
	DrainTimeout time.Duration
}

// Run starts the frame daemon and blocks until ctx is cancelled or the
// process receives SIGINT or SIGTERM.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, unix.SIGINT, unix.SIGTERM)
	defer cancel()

	runID := time.Now().UTC().Format("20060102T150405.000Z")
	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("framed-%s.log", runID))
	level := opts.LogLevel
	if level == "" {
		level = cfg.Logging.Level
	}
	logger, err := logging.New(logging.Options{
		Level:       level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stderr", logPath},
		Development: opts.Development,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if err := ensureCurrentLogPointer(cfg.LogPath(), logPath); err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to update %s link: %v\n", filepath.Base(cfg.LogPath()), err)
	}

	pidPath := PIDPath(cfg)
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	app, err := bootstrap.Open(signalCtx, cfg, logger)
	if err != nil {
		logger.Error("open frame services", logging.Error(err))
		return err
	}
	app.LogSnapshot()

	sess, err := app.NewSession(signalCtx)
	if err != nil {
		_ = app.Close()
		return fmt.Errorf("create session: %w", err)
	}

	d, err := daemon.New(cfg, sess, app.Store, logger)
	if err != nil {
		_ = app.Close()
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if err := d.Start(signalCtx); err != nil {
		logging.ErrorWithContext(logger, "daemon start failed", "daemon_start_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check api_bind and that no other framed is running"),
		)
		return err
	}

	<-signalCtx.Done()
	logger.Info("frame daemon shutting down")
	d.Stop()
	drain(logger, sess, opts.DrainTimeout)
	return nil
}

// PIDPath returns the daemon pid file location.
func PIDPath(cfg *config.Config) string {
	return filepath.Join(cfg.Paths.StateDir, "framed.pid")
}

// ReadPID returns the pid recorded by a running daemon.
func ReadPID(cfg *config.Config) (int, error) {
	data, err := os.ReadFile(PIDPath(cfg))
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("parse pid file: %w", err)
	}
	return pid, nil
}

type waiter interface {
	Wait(ctx context.Context) error
}

func drain(logger *slog.Logger, sess waiter, timeout time.Duration) {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := sess.Wait(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Warn("shutdown before background work finished",
			logging.Error(err),
			logging.Duration("timeout", timeout),
		)
	}
}

func ensureCurrentLogPointer(current, target string) error {
	if current == "" || target == "" {
		return nil
	}
	if err := os.Remove(current); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing log pointer: %w", err)
	}
	if err := os.Symlink(target, current); err == nil {
		return nil
	}
	if err := os.Link(target, current); err != nil {
		return fmt.Errorf("link log pointer: %w", err)
	}
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}
