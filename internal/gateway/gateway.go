package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"frame/internal/logging"
	"frame/internal/services"
	"frame/internal/services/tavily"
	"frame/internal/services/youtube"
	"frame/internal/videoinfo"
)

const (
	batchLimit           = 50
	summaryMaxResults    = 5
	defaultMaxResults    = 10
	defaultSearchDepth   = "advanced"
	defaultMaxSuggestion = 4
)

var relatedDomains = []string{"youtube.com", "youtu.be"}

// Metadata is the normalized view of one video.
type Metadata struct {
	VideoID     string `json:"videoId"`
	Title       string `json:"title"`
	Channel     string `json:"channel"`
	Description string `json:"description"`
	DurationISO string `json:"durationIso"`
	HasCaptions bool   `json:"hasCaptions"`
	ViewCount   int64  `json:"viewCount"`
}

// Duration renders the ISO duration as a clock string.
func (m Metadata) Duration() string {
	return videoinfo.ParseDuration(m.DurationISO)
}

// VideoSource looks up video metadata by ID in one call.
type VideoSource interface {
	Videos(ctx context.Context, ids []string) ([]youtube.Video, error)
}

// Searcher issues search/answer queries.
type Searcher interface {
	Search(ctx context.Context, req tavily.SearchRequest) (*tavily.Response, error)
}

// Summarizer produces a topic summary when the search provider has no answer.
type Summarizer interface {
	Summarize(ctx context.Context, title, channel string) (string, error)
}

// Config tunes lookups.
type Config struct {
	CacheSize      int
	MaxSuggestions int
	MaxResults     int
	SearchDepth    string
}

// Gateway fetches and normalizes external metadata.
type Gateway struct {
	videos     VideoSource
	search     Searcher
	summarizer Summarizer
	cache      *lru.Cache[string, Metadata]
	cfg        Config
	logger     *slog.Logger
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithSummarizer enables the summary fallback.
func WithSummarizer(s Summarizer) Option {
	return func(g *Gateway) {
		g.summarizer = s
	}
}

// WithLogger sets the logger used for swallowed failures.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// New builds a gateway. search may be nil, in which case no related videos
// are found and summaries come only from the summarizer.
func New(videos VideoSource, search Searcher, cfg Config, opts ...Option) (*Gateway, error) {
	if videos == nil {
		return nil, errors.New("gateway: video source required")
	}
	if cfg.MaxSuggestions <= 0 {
		cfg.MaxSuggestions = defaultMaxSuggestion
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = defaultMaxResults
	}
	if strings.TrimSpace(cfg.SearchDepth) == "" {
		cfg.SearchDepth = defaultSearchDepth
	}
	g := &Gateway{videos: videos, search: search, cfg: cfg, logger: logging.NewNop()}
	if cfg.CacheSize > 0 {
		cache, err := lru.New[string, Metadata](cfg.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("gateway cache: %w", err)
		}
		g.cache = cache
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = logging.NewComponentLogger(g.logger, "gateway")
	return g, nil
}

// FetchPrimaryMetadata looks up a single video. A provider response with no
// items yields services.ErrNotFound; any other provider failure yields
// services.ErrTransport.
func (g *Gateway) FetchPrimaryMetadata(ctx context.Context, videoID string) (Metadata, error) {
	if g.cache != nil {
		if meta, ok := g.cache.Get(videoID); ok {
			return meta, nil
		}
	}
	videos, err := g.videos.Videos(ctx, []string{videoID})
	if err != nil {
		return Metadata{}, services.Wrap(services.ErrTransport, "gateway", "videos", "metadata lookup failed", err)
	}
	for _, v := range videos {
		if v.ID == "" || v.ID == videoID {
			meta := fromVideo(v, videoID)
			g.remember(meta)
			return meta, nil
		}
	}
	return Metadata{}, services.Wrap(services.ErrNotFound, "gateway", "videos", "video not found", nil)
}

// FetchBatchMetadata looks up ids with one provider call for all cache misses.
// Results follow input order; IDs the provider does not know are omitted.
func (g *Gateway) FetchBatchMetadata(ctx context.Context, ids []string) ([]Metadata, error) {
	found := make(map[string]Metadata, len(ids))
	var misses []string
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup || id == "" {
			continue
		}
		seen[id] = struct{}{}
		if g.cache != nil {
			if meta, ok := g.cache.Get(id); ok {
				found[id] = meta
				continue
			}
		}
		misses = append(misses, id)
	}

	for start := 0; start < len(misses); start += batchLimit {
		end := min(start+batchLimit, len(misses))
		videos, err := g.videos.Videos(ctx, misses[start:end])
		if err != nil {
			return nil, services.Wrap(services.ErrTransport, "gateway", "videos", "batch lookup failed", err)
		}
		for _, v := range videos {
			meta := fromVideo(v, v.ID)
			found[meta.VideoID] = meta
			g.remember(meta)
		}
	}

	out := make([]Metadata, 0, len(found))
	for _, id := range ids {
		if meta, ok := found[id]; ok {
			out = append(out, meta)
			delete(found, id)
		}
	}
	return out, nil
}

// FetchRelatedURLs asks the search provider for videos on the same subject
// from other creators. Only video-shaped URLs are kept; a URL is dropped when
// its video ID is in exclude or repeats an earlier result. At most
// MaxSuggestions URLs are returned.
func (g *Gateway) FetchRelatedURLs(ctx context.Context, title, channel string, exclude map[string]struct{}) ([]string, error) {
	if g.search == nil {
		return nil, nil
	}
	resp, err := g.search.Search(ctx, tavily.SearchRequest{
		Query:          RelatedQuery(title, channel),
		SearchDepth:    g.cfg.SearchDepth,
		MaxResults:     g.cfg.MaxResults,
		IncludeDomains: relatedDomains,
	})
	if err != nil {
		return nil, services.Wrap(services.ErrTransport, "gateway", "search", "related lookup failed", err)
	}

	seen := make(map[string]struct{}, len(resp.Results))
	urls := make([]string, 0, g.cfg.MaxSuggestions)
	for _, result := range resp.Results {
		if len(urls) == g.cfg.MaxSuggestions {
			break
		}
		if !videoinfo.IsVideoURL(result.URL) {
			continue
		}
		id, ok := videoinfo.ExtractID(result.URL)
		if !ok {
			continue
		}
		if _, skip := exclude[id]; skip {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		urls = append(urls, result.URL)
	}
	return urls, nil
}

// FetchTopicSummary returns a cleaned topic summary, or false when none could
// be produced. Failures are logged and swallowed.
func (g *Gateway) FetchTopicSummary(ctx context.Context, title, channel string) (string, bool) {
	logger := logging.WithContext(ctx, g.logger)
	if g.search != nil {
		resp, err := g.search.Search(ctx, tavily.SearchRequest{
			Query:         SummaryQuery(title, channel),
			SearchDepth:   g.cfg.SearchDepth,
			MaxResults:    summaryMaxResults,
			IncludeAnswer: true,
		})
		if err != nil {
			logging.WarnWithContext(logger, "topic summary search failed", "summary_search_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "key topics keep the description-derived value"),
			)
		} else if answer := CleanAnswer(resp.Answer); answer != "" {
			return answer, true
		}
	}
	if g.summarizer == nil {
		return "", false
	}
	text, err := g.summarizer.Summarize(ctx, title, channel)
	if err != nil {
		logging.WarnWithContext(logger, "topic summary fallback failed", "summary_fallback_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "key topics keep the description-derived value"),
		)
		return "", false
	}
	if cleaned := CleanAnswer(text); cleaned != "" {
		return cleaned, true
	}
	return "", false
}

// RelatedQuery is the search phrase used for related video discovery.
func RelatedQuery(title, channel string) string {
	return fmt.Sprintf("Find other YouTube videos about similar topics to %q but NOT from %s. Show me different creators covering the same subject.", title, channel)
}

// SummaryQuery is the search phrase used for topic summaries.
func SummaryQuery(title, channel string) string {
	return fmt.Sprintf("YouTube video %q by %s - what are the main topics and key takeaways?", title, channel)
}

func (g *Gateway) remember(meta Metadata) {
	if g.cache != nil && meta.VideoID != "" {
		g.cache.Add(meta.VideoID, meta)
	}
}

func fromVideo(v youtube.Video, fallbackID string) Metadata {
	id := v.ID
	if id == "" {
		id = fallbackID
	}
	return Metadata{
		VideoID:     id,
		Title:       v.Title,
		Channel:     v.Channel,
		Description: v.Description,
		DurationISO: v.DurationISO,
		HasCaptions: v.HasCaptions,
		ViewCount:   v.ViewCount,
	}
}
