// Package expander fills the table with related videos after a successful
// primary lookup, without ever pushing auto-populated rows past the cap.
package expander

import (
	"context"
	"log/slog"
	"time"

	"frame/internal/gateway"
	"frame/internal/logging"
	"frame/internal/queue"
	"frame/internal/reveal"
	"frame/internal/rows"
	"frame/internal/videoinfo"
)

const notFoundMessage = "Video not found"

// Gateway is the metadata surface the expander needs.
type Gateway interface {
	FetchRelatedURLs(ctx context.Context, title, channel string, exclude map[string]struct{}) ([]string, error)
	FetchBatchMetadata(ctx context.Context, ids []string) ([]gateway.Metadata, error)
}

// Revealer paces field writes into a row.
type Revealer interface {
	Reveal(ctx context.Context, rowID string, data rows.Patch, timing reveal.Timing) error
}

// Enqueuer accepts ingestion jobs.
type Enqueuer interface {
	Enqueue(job queue.Job) queue.Job
}

// Config bounds an expansion.
type Config struct {
	Cap              int
	MaxSuggestions   int
	MountDelay       time.Duration
	Timing           reveal.Timing
	BlankRowOnEmpty  bool
	TrailingBlankRow bool
}

// Seed is the video suggestions are derived from.
type Seed struct {
	VideoID string
	Title   string
	Channel string
}

// Result summarizes one expansion.
type Result struct {
	Candidates int      `json:"candidates"`
	Added      []string `json:"added"`
	Skipped    int      `json:"skipped"`
	Missing    int      `json:"missing"`
}

// Expander appends related rows and enqueues their ingestion.
type Expander struct {
	store    *rows.Store
	gateway  Gateway
	revealer Revealer
	queue    Enqueuer
	cfg      Config
	sleep    reveal.SleepFunc
	logger   *slog.Logger
}

// Option configures an Expander.
type Option func(*Expander)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Expander) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithSleep replaces the mount delay wait, mainly for tests.
func WithSleep(fn reveal.SleepFunc) Option {
	return func(e *Expander) {
		if fn != nil {
			e.sleep = fn
		}
	}
}

// New builds an Expander.
func New(store *rows.Store, gw Gateway, revealer Revealer, q Enqueuer, cfg Config, opts ...Option) *Expander {
	e := &Expander{
		store:    store,
		gateway:  gw,
		revealer: revealer,
		queue:    q,
		cfg:      cfg,
		sleep:    reveal.Sleep,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = logging.NewComponentLogger(e.logger, "expander")
	return e
}

// Expand looks up videos related to seed and appends up to the remaining
// capacity as new rows. Every appended row with metadata is revealed and
// enqueued. Candidates that match a row added in the meantime are skipped.
func (e *Expander) Expand(ctx context.Context, seed Seed) (Result, error) {
	var result Result
	logger := logging.WithContext(ctx, e.logger)

	if e.store.Len() >= e.cfg.Cap {
		return result, nil
	}

	exclude := e.store.VideoIDs()
	if seed.VideoID != "" {
		exclude[seed.VideoID] = struct{}{}
	}
	urls, err := e.gateway.FetchRelatedURLs(ctx, seed.Title, seed.Channel, exclude)
	if err != nil {
		return result, err
	}

	type candidate struct {
		url string
		id  string
	}
	candidates := make([]candidate, 0, len(urls))
	for _, u := range urls {
		if id, ok := videoinfo.ExtractID(u); ok {
			candidates = append(candidates, candidate{url: u, id: id})
		}
	}
	result.Candidates = len(candidates)

	if len(candidates) == 0 {
		logger.Info("no related videos found", logging.String("seed_title", seed.Title))
		if e.cfg.BlankRowOnEmpty {
			e.store.AddBlank()
		}
		return result, nil
	}

	toAdd := min(e.cfg.Cap-e.store.Len(), len(candidates), e.cfg.MaxSuggestions)
	if toAdd <= 0 {
		return result, nil
	}
	candidates = candidates[:toAdd]

	ids := make([]string, len(candidates))
	for i, c := range candidates {
		ids[i] = c.id
	}
	metas, err := e.gateway.FetchBatchMetadata(ctx, ids)
	if err != nil {
		return result, err
	}
	byID := make(map[string]gateway.Metadata, len(metas))
	for _, m := range metas {
		byID[m.VideoID] = m
	}

	for _, c := range candidates {
		if _, dup := e.store.RowWithVideo(c.id, ""); dup {
			result.Skipped++
			continue
		}
		row, ok := e.store.AppendBelow(e.cfg.Cap, rows.New(c.url))
		if !ok {
			break
		}
		result.Added = append(result.Added, row.ID)

		if err := e.sleep(ctx, e.cfg.MountDelay); err != nil {
			return result, err
		}

		meta, found := byID[c.id]
		if !found {
			result.Missing++
			if err := e.revealer.Reveal(ctx, row.ID, rows.ErrorPatch(notFoundMessage), e.cfg.Timing); err != nil {
				return result, err
			}
			continue
		}

		annotation := queue.CaptionAnnotation(meta.HasCaptions)
		data := rows.Patch{
			rows.FieldTitle:     meta.Title,
			rows.FieldDuration:  meta.Duration(),
			rows.FieldStatus:    queue.QueuedStatus(annotation),
			rows.FieldKeyTopics: gateway.DescriptionTopics(meta),
		}
		if err := e.revealer.Reveal(ctx, row.ID, data, e.cfg.Timing); err != nil {
			return result, err
		}
		e.queue.Enqueue(queue.Job{
			URL:        c.url,
			RowID:      row.ID,
			Title:      meta.Title,
			Annotation: annotation,
		})
	}

	if e.cfg.TrailingBlankRow && e.store.Len() == e.cfg.Cap {
		e.store.AddBlank()
	}

	logger.Info("suggestions added",
		logging.Int("candidates", result.Candidates),
		logging.Int("added", len(result.Added)),
		logging.Int("skipped", result.Skipped),
		logging.Int("missing", result.Missing),
	)
	return result, nil
}
