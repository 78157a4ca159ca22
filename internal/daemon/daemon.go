package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"frame/internal/api"
	"frame/internal/config"
	"frame/internal/localstore"
	"frame/internal/logging"
	"frame/internal/notifications"
	"frame/internal/queue"
	"frame/internal/rows"
	"frame/internal/session"
)

// Daemon owns one table session and serves it over HTTP.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	session  *session.Session
	history  *localstore.Store
	hub      *eventHub
	api      *apiServer
	lockPath string
	lock     *flock.Flock

	mu      sync.Mutex
	detach  func()
	running atomic.Bool
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	StateDBPath  string
	LockFilePath string
	RowCount     int
	RowCap       int
	Subscribers  int
	Queue        queue.Status
}

// New constructs a daemon around an existing session and history store.
func New(cfg *config.Config, sess *session.Session, history *localstore.Store, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || sess == nil || history == nil {
		return nil, errors.New("daemon requires config, session, and history store")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	lockPath := cfg.LockPath()
	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		session:  sess,
		history:  history,
		hub:      newEventHub(logger),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	srv, err := newAPIServer(cfg, d, logger)
	if err != nil {
		return nil, err
	}
	d.api = srv
	return d, nil
}

// Start acquires the daemon lock, attaches the event stream and starts the
// API server.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another frame daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.api.start(runCtx); err != nil {
		cancel()
		_ = d.lock.Unlock()
		return fmt.Errorf("start api server: %w", err)
	}

	stopRows := d.session.Rows().Observe(func(evt rows.Event) {
		d.hub.publish(api.FromRowEvent(evt, time.Now()))
	})
	d.session.Columns().OnChange(func(column rows.Field, width float64) {
		d.hub.publish(api.FromColumnChange(column, width, time.Now()))
	})

	d.mu.Lock()
	d.cancel = cancel
	d.detach = func() {
		stopRows()
		d.session.Columns().OnChange(nil)
	}
	d.mu.Unlock()

	d.running.Store(true)
	d.logger.Info("frame daemon started",
		logging.String("lock", d.lockPath),
		logging.String("address", d.api.address()),
	)
	return nil
}

// Stop shuts down the API server, disconnects subscribers and releases the
// daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	d.mu.Lock()
	cancel, detach := d.cancel, d.detach
	d.cancel, d.detach = nil, nil
	d.mu.Unlock()

	if detach != nil {
		detach()
	}
	d.api.stop()
	d.hub.close()
	if cancel != nil {
		cancel()
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("frame daemon stopped")
}

// Close stops the daemon and closes the history store.
func (d *Daemon) Close() error {
	d.Stop()
	return d.history.Close()
}

// Address returns the bound API address once started.
func (d *Daemon) Address() string {
	return d.api.address()
}

// Session exposes the table session.
func (d *Daemon) Session() *session.Session {
	return d.session
}

// TestNotification triggers a test notification using the current configuration.
func (d *Daemon) TestNotification(ctx context.Context) (bool, string, error) {
	if strings.TrimSpace(d.cfg.Notifications.NtfyTopic) == "" {
		return false, "ntfy topic not configured", nil
	}
	notifier := notifications.NewService(d.cfg)
	if err := notifier.TestNotification(ctx); err != nil {
		return false, "failed to send notification", err
	}
	return true, "test notification sent", nil
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	return Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		StateDBPath:  d.history.Path(),
		LockFilePath: d.lockPath,
		RowCount:     d.session.Rows().Len(),
		RowCap:       d.session.Config().Cap,
		Subscribers:  d.hub.count(),
		Queue:        d.session.Queue().Snapshot(),
	}
}
