package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"frame/internal/expander"
	"frame/internal/gateway"
	"frame/internal/layout"
	"frame/internal/logging"
	"frame/internal/queue"
	"frame/internal/reveal"
	"frame/internal/rows"
	"frame/internal/services"
	"frame/internal/videoinfo"
)

// ErrRowBusy is returned when a row already has a lookup in flight.
var ErrRowBusy = errors.New("row is already loading")

// Gateway is the metadata surface a session needs.
type Gateway interface {
	expander.Gateway
	FetchPrimaryMetadata(ctx context.Context, videoID string) (gateway.Metadata, error)
	FetchTopicSummary(ctx context.Context, title, channel string) (string, bool)
}

// Deps are the collaborators a session is built from.
type Deps struct {
	Gateway  Gateway
	Backend  queue.Backend
	Recorder queue.Recorder
	Notifier queue.Notifier
	Logger   *slog.Logger
	// Sleep replaces timer waits in the sequencer and expander.
	Sleep reveal.SleepFunc
}

// Result describes the outcome of one Submit.
type Result struct {
	RowID    string            `json:"rowId"`
	VideoID  string            `json:"videoId,omitempty"`
	JobID    string            `json:"jobId,omitempty"`
	Metadata *gateway.Metadata `json:"metadata,omitempty"`
	// Message is the text written into the row when the lookup failed.
	Message string `json:"message,omitempty"`
	Err     error  `json:"-"`
}

// Session is the state container for one table.
type Session struct {
	cfg       Config
	store     *rows.Store
	columns   *layout.Columns
	rowDrag   *layout.RowResizer
	colDrag   *layout.ColumnResizer
	sequencer *reveal.Sequencer
	queue     *queue.Queue
	expander  *expander.Expander
	gateway   Gateway
	sleep     reveal.SleepFunc
	logger    *slog.Logger
	baseCtx   context.Context

	tasks sync.WaitGroup
}

// New builds a session with one empty row ready for input. ctx bounds the
// processing queue and suggestion expansion.
func New(ctx context.Context, cfg Config, deps Deps) (*Session, error) {
	if deps.Gateway == nil {
		return nil, errors.New("session: gateway required")
	}
	if deps.Backend == nil {
		return nil, errors.New("session: backend required")
	}
	if cfg.Cap <= 0 {
		return nil, fmt.Errorf("session: row cap must be positive, got %d", cfg.Cap)
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	sleep := deps.Sleep
	if sleep == nil {
		sleep = reveal.Sleep
	}

	store := rows.NewStore(rows.New(""))
	columns := layout.NewColumns()
	sequencer := reveal.New(store, reveal.WithSleep(sleep))

	queueOpts := []queue.Option{queue.WithLogger(logger), queue.WithContext(ctx)}
	if deps.Recorder != nil {
		queueOpts = append(queueOpts, queue.WithRecorder(deps.Recorder))
	}
	if deps.Notifier != nil {
		queueOpts = append(queueOpts, queue.WithNotifier(deps.Notifier))
	}
	q := queue.New(store, deps.Backend, cfg.Queue, queueOpts...)

	exp := expander.New(store, deps.Gateway, sequencer, q, expander.Config{
		Cap:              cfg.Cap,
		MaxSuggestions:   cfg.MaxSuggestions,
		MountDelay:       cfg.MountDelay,
		Timing:           cfg.SuggestedTiming,
		BlankRowOnEmpty:  cfg.BlankRowOnEmpty,
		TrailingBlankRow: cfg.TrailingBlankRow,
	}, expander.WithLogger(logger), expander.WithSleep(sleep))

	return &Session{
		cfg:       cfg,
		store:     store,
		columns:   columns,
		rowDrag:   layout.NewRowResizer(store, cfg.RowHeightMin, cfg.RowHeightMax),
		colDrag:   layout.NewColumnResizer(columns, cfg.ColumnWidthMin, cfg.ColumnWidthMax),
		sequencer: sequencer,
		queue:     q,
		expander:  exp,
		gateway:   deps.Gateway,
		sleep:     sleep,
		logger:    logging.NewComponentLogger(logger, "session"),
		baseCtx:   ctx,
	}, nil
}

// Config returns the bounds the session was built with.
func (s *Session) Config() Config { return s.cfg }

// Rows exposes the row store.
func (s *Session) Rows() *rows.Store { return s.store }

// Columns exposes the column layout.
func (s *Session) Columns() *layout.Columns { return s.columns }

// RowResizer exposes the row height drag controller.
func (s *Session) RowResizer() *layout.RowResizer { return s.rowDrag }

// ColumnResizer exposes the column width drag controller.
func (s *Session) ColumnResizer() *layout.ColumnResizer { return s.colDrag }

// Queue exposes the processing queue.
func (s *Session) Queue() *queue.Queue { return s.queue }

// AddRow appends an empty row for manual entry. Manual rows are not capped.
func (s *Session) AddRow() rows.Row {
	return s.store.AddBlank()
}

// Submit looks up url for rowID, reveals the result into the row, enqueues
// ingestion and starts enrichment and suggestion expansion in the background.
// The returned error is non-nil only when the row is unknown or already
// loading; lookup failures are carried on Result.
func (s *Session) Submit(ctx context.Context, rowID, url string) (Result, error) {
	if err := s.claim(rowID); err != nil {
		return Result{RowID: rowID}, err
	}
	return s.populate(ctx, rowID, url), nil
}

// SubmitAsync claims rowID and runs the rest of Submit as a background task.
func (s *Session) SubmitAsync(rowID, url string) error {
	if err := s.claim(rowID); err != nil {
		return err
	}
	ctx := services.WithRowID(s.baseCtx, rowID)
	s.goTask(func() {
		s.populate(ctx, rowID, url)
	})
	return nil
}

// Wait blocks until background tasks have finished and the queue has drained.
func (s *Session) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.tasks.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return s.queue.Wait(ctx)
}

func (s *Session) claim(rowID string) error {
	if _, ok := s.store.Get(rowID); !ok {
		return services.Wrap(services.ErrNotFound, "session", "submit", "unknown row "+rowID, nil)
	}
	if !s.store.TryStartLoading(rowID) {
		return ErrRowBusy
	}
	return nil
}

func (s *Session) populate(ctx context.Context, rowID, url string) Result {
	defer s.store.SetLoading(rowID, false)
	ctx = services.WithRowID(ctx, rowID)
	logger := logging.WithContext(ctx, s.logger)
	result := Result{RowID: rowID}

	url = strings.TrimSpace(url)
	other, dup := s.store.ClaimVideo(rowID, url)

	videoID, ok := videoinfo.ExtractID(url)
	if !ok {
		return s.fail(ctx, logger, result, services.Wrap(services.ErrInvalidInput, "session", "submit", "invalid video url", nil))
	}
	result.VideoID = videoID
	logger = logger.With(logging.String(logging.FieldVideoID, videoID))

	if dup {
		return s.fail(ctx, logger, result, services.Wrap(services.ErrDuplicate, "session", "submit", "video already in row "+other, nil))
	}

	meta, err := s.gateway.FetchPrimaryMetadata(ctx, videoID)
	if err != nil {
		return s.fail(ctx, logger, result, err)
	}
	result.Metadata = &meta

	annotation := queue.CaptionAnnotation(meta.HasCaptions)
	data := rows.Patch{
		rows.FieldTitle:     meta.Title,
		rows.FieldDuration:  meta.Duration(),
		rows.FieldStatus:    queue.QueuedStatus(annotation),
		rows.FieldKeyTopics: gateway.DescriptionTopics(meta),
	}
	if err := s.sequencer.Reveal(ctx, rowID, data, s.cfg.Timing); err != nil {
		logger.Warn("reveal interrupted", logging.Error(err))
	}

	job := s.queue.Enqueue(queue.Job{URL: url, RowID: rowID, Title: meta.Title, Annotation: annotation})
	result.JobID = job.ID
	logger.Info("video queued",
		logging.String(logging.FieldJobID, job.ID),
		logging.String("title", meta.Title),
		logging.Bool("captions", meta.HasCaptions),
	)

	s.enrich(ctx, rowID, meta)
	s.expand(rowID, meta)
	return result
}

// enrich replaces the description-derived key topics with a topic summary.
// It is detached from ctx and may land after the row's terminal status.
func (s *Session) enrich(ctx context.Context, rowID string, meta gateway.Metadata) {
	detached := context.WithoutCancel(ctx)
	s.goTask(func() {
		if summary, ok := s.gateway.FetchTopicSummary(detached, meta.Title, meta.Channel); ok {
			s.store.Update(rowID, rows.Patch{rows.FieldKeyTopics: summary})
		}
	})
}

func (s *Session) expand(rowID string, meta gateway.Metadata) {
	ctx := services.WithRowID(s.baseCtx, rowID)
	s.goTask(func() {
		if err := s.sleep(ctx, s.cfg.SuggestionDelay); err != nil {
			return
		}
		_, err := s.expander.Expand(ctx, expander.Seed{VideoID: meta.VideoID, Title: meta.Title, Channel: meta.Channel})
		if err != nil {
			logging.WarnWithContext(logging.WithContext(ctx, s.logger), "suggestion expansion failed", "expansion_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "no related videos were added"),
			)
		}
	})
}

func (s *Session) fail(ctx context.Context, logger *slog.Logger, result Result, err error) Result {
	result.Err = err
	result.Message = RowMessage(err)
	logger.Info("lookup failed",
		logging.String("kind", services.Kind(err)),
		logging.Error(err),
	)
	if rerr := s.sequencer.Reveal(ctx, result.RowID, rows.ErrorPatch(result.Message), s.cfg.Timing); rerr != nil {
		logger.Warn("reveal interrupted", logging.Error(rerr))
	}
	return result
}

func (s *Session) goTask(fn func()) {
	s.tasks.Add(1)
	go func() {
		defer s.tasks.Done()
		fn()
	}()
}

// RowMessage is the text written into a row for a failed lookup.
func RowMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, services.ErrInvalidInput):
		return "Invalid YouTube URL"
	case errors.Is(err, services.ErrDuplicate):
		return "Video already in table"
	case errors.Is(err, services.ErrNotFound):
		return "Video not found"
	case errors.Is(err, services.ErrTransport):
		return "Failed to fetch video data from YouTube API"
	default:
		return err.Error()
	}
}
