package queue

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"frame/internal/localstore"
	"frame/internal/logging"
	"frame/internal/rows"
	"frame/internal/services"
	"frame/internal/services/backend"
)

// Job is one queued ingestion request.
type Job struct {
	ID         string    `json:"id"`
	URL        string    `json:"url"`
	RowID      string    `json:"rowId"`
	Title      string    `json:"title,omitempty"`
	Annotation string    `json:"annotation,omitempty"`
	EnqueuedAt time.Time `json:"enqueuedAt"`
}

// RowWriter receives status updates for a job's row.
type RowWriter interface {
	Update(id string, patch rows.Patch) bool
}

// Backend is the ingestion API surface the worker calls.
type Backend interface {
	UploadYouTube(ctx context.Context, req backend.UploadRequest) (*backend.UploadResponse, error)
	ProcessURL(ctx context.Context, req backend.ProcessRequest) (*backend.Video, error)
}

// Recorder persists terminal job outcomes.
type Recorder interface {
	RecordJob(ctx context.Context, rec localstore.JobRecord) error
}

// Notifier is told about failures and drains.
type Notifier interface {
	NotifyJobFailed(ctx context.Context, title, url, message string) error
	NotifyQueueDrained(ctx context.Context, processed, failed int, duration time.Duration) error
}

// Config carries backend processing preferences.
type Config struct {
	FrameInterval    int
	PreferredQuality string
	PreferredFormat  string
}

// Status is a point-in-time view of the queue.
type Status struct {
	Busy      bool  `json:"busy"`
	Pending   []Job `json:"pending"`
	Processed int   `json:"processed"`
	Failed    int   `json:"failed"`
}

// Queue is a FIFO of ingestion jobs with at most one worker.
type Queue struct {
	rows     RowWriter
	backend  Backend
	cfg      Config
	recorder Recorder
	notifier Notifier
	logger   *slog.Logger
	baseCtx  context.Context

	mu        sync.Mutex
	jobs      []Job
	busy      bool
	idle      chan struct{}
	processed int
	failed    int
	runStart  time.Time
	runOK     int
	runFailed int
}

// Option configures a Queue.
type Option func(*Queue)

// WithRecorder records terminal outcomes.
func WithRecorder(r Recorder) Option {
	return func(q *Queue) {
		q.recorder = r
	}
}

// WithNotifier sends failure and drain notifications.
func WithNotifier(n Notifier) Option {
	return func(q *Queue) {
		q.notifier = n
	}
}

// WithLogger sets the queue logger.
func WithLogger(logger *slog.Logger) Option {
	return func(q *Queue) {
		if logger != nil {
			q.logger = logger
		}
	}
}

// WithContext sets the context backend calls run under. Cancelling it aborts
// the in-flight job, which then fails like any other.
func WithContext(ctx context.Context) Option {
	return func(q *Queue) {
		if ctx != nil {
			q.baseCtx = ctx
		}
	}
}

// New builds an idle queue.
func New(rowWriter RowWriter, api Backend, cfg Config, opts ...Option) *Queue {
	q := &Queue{
		rows:    rowWriter,
		backend: api,
		cfg:     cfg,
		logger:  logging.NewNop(),
		baseCtx: context.Background(),
	}
	for _, opt := range opts {
		opt(q)
	}
	q.logger = logging.NewComponentLogger(q.logger, "queue")
	return q
}

// Enqueue appends job and starts the worker if the queue was idle. Missing IDs
// and timestamps are filled in; the stored job is returned.
func (q *Queue) Enqueue(job Job) Job {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.EnqueuedAt.IsZero() {
		job.EnqueuedAt = time.Now()
	}

	q.mu.Lock()
	q.jobs = append(q.jobs, job)
	start := !q.busy
	if start {
		q.busy = true
		q.idle = make(chan struct{})
		q.runStart = time.Now()
		q.runOK = 0
		q.runFailed = 0
	}
	depth := len(q.jobs)
	q.mu.Unlock()

	q.logger.Debug("job enqueued",
		logging.String(logging.FieldJobID, job.ID),
		logging.String(logging.FieldRowID, job.RowID),
		logging.Int("depth", depth),
	)
	if start {
		go q.run()
	}
	return job
}

// Wait blocks until the queue is empty and the worker has exited.
func (q *Queue) Wait(ctx context.Context) error {
	q.mu.Lock()
	if !q.busy {
		q.mu.Unlock()
		return nil
	}
	idle := q.idle
	q.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Snapshot returns the current queue state. The job being processed stays at
// the head of Pending until its terminal status is written.
func (q *Queue) Snapshot() Status {
	q.mu.Lock()
	defer q.mu.Unlock()
	return Status{
		Busy:      q.busy,
		Pending:   append([]Job(nil), q.jobs...),
		Processed: q.processed,
		Failed:    q.failed,
	}
}

// Len returns the number of jobs not yet finished.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

func (q *Queue) run() {
	for {
		q.mu.Lock()
		if len(q.jobs) == 0 {
			ok, failed, elapsed := q.runOK, q.runFailed, time.Since(q.runStart)
			q.mu.Unlock()
			q.drained(ok, failed, elapsed)

			q.mu.Lock()
			if len(q.jobs) == 0 {
				q.busy = false
				close(q.idle)
				q.mu.Unlock()
				return
			}
			// Jobs arrived while the drain was being reported.
			q.runStart = time.Now()
			q.runOK = 0
			q.runFailed = 0
			q.mu.Unlock()
			continue
		}
		job := q.jobs[0]
		q.mu.Unlock()

		succeeded := q.process(job)

		q.mu.Lock()
		q.jobs = q.jobs[1:]
		if succeeded {
			q.processed++
			q.runOK++
		} else {
			q.failed++
			q.runFailed++
		}
		q.mu.Unlock()
	}
}

func (q *Queue) process(job Job) bool {
	ctx := services.WithJobID(services.WithRowID(q.baseCtx, job.RowID), job.ID)
	logger := logging.WithContext(ctx, q.logger)
	started := time.Now()
	logger.Info("job started", logging.String("url", job.URL))

	q.setStatus(job, StatusUploading)
	upload, err := q.backend.UploadYouTube(ctx, backend.UploadRequest{
		URL:              job.URL,
		Title:            job.Title,
		PreferredQuality: q.cfg.PreferredQuality,
		PreferredFormat:  q.cfg.PreferredFormat,
	})
	if err != nil {
		q.fail(ctx, logger, job, "upload", err)
		return false
	}

	q.setStatus(job, StatusProcessing)
	target := job.URL
	if upload != nil && strings.TrimSpace(upload.GCPURL) != "" {
		target = upload.GCPURL
	}
	video, err := q.backend.ProcessURL(ctx, backend.ProcessRequest{
		URL:           target,
		FrameInterval: q.cfg.FrameInterval,
		Title:         job.Title,
	})
	if err != nil {
		q.fail(ctx, logger, job, "process", err)
		return false
	}

	patch := rows.Patch{rows.FieldStatus: CompletedStatus(job.Annotation)}
	var keyTopics string
	if video != nil && strings.TrimSpace(video.KeyTopics) != "" {
		keyTopics = video.KeyTopics
		patch[rows.FieldKeyTopics] = keyTopics
	}
	q.rows.Update(job.RowID, patch)

	logger.Info("job completed",
		logging.String("target_url", target),
		logging.Duration("elapsed", time.Since(started)),
	)
	q.record(ctx, logger, job, localstore.OutcomeCompleted, "", keyTopics)
	return true
}

func (q *Queue) fail(ctx context.Context, logger *slog.Logger, job Job, step string, err error) {
	message := err.Error()
	q.setStatus(job, FailedStatus(message))
	logging.WarnWithContext(logger, "job failed", "job_failed",
		logging.String("step", step),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check backend availability with `frame videos list`"),
		logging.String(logging.FieldImpact, "row shows the failure; the next job continues"),
	)
	q.record(ctx, logger, job, localstore.OutcomeFailed, message, "")
	if q.notifier != nil {
		if nerr := q.notifier.NotifyJobFailed(ctx, job.Title, job.URL, message); nerr != nil {
			logger.Debug("failure notification not sent", logging.Error(nerr))
		}
	}
}

func (q *Queue) setStatus(job Job, status string) {
	q.rows.Update(job.RowID, rows.Patch{rows.FieldStatus: status})
}

func (q *Queue) record(ctx context.Context, logger *slog.Logger, job Job, outcome localstore.Outcome, message, keyTopics string) {
	if q.recorder == nil {
		return
	}
	err := q.recorder.RecordJob(ctx, localstore.JobRecord{
		JobID:      job.ID,
		RowID:      job.RowID,
		URL:        job.URL,
		Title:      job.Title,
		Outcome:    outcome,
		Message:    message,
		KeyTopics:  keyTopics,
		EnqueuedAt: job.EnqueuedAt,
		FinishedAt: time.Now(),
	})
	if err != nil {
		logging.WarnWithContext(logger, "job history not recorded", "history_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "usage series will miss this job"),
		)
	}
}

func (q *Queue) drained(ok, failed int, elapsed time.Duration) {
	q.logger.Info("queue drained",
		logging.Int("succeeded", ok),
		logging.Int("failed", failed),
		logging.Duration("elapsed", elapsed),
	)
	if q.notifier == nil {
		return
	}
	if err := q.notifier.NotifyQueueDrained(q.baseCtx, ok, failed, elapsed); err != nil {
		q.logger.Debug("drain notification not sent", logging.Error(err))
	}
}
