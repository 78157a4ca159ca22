package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"frame/internal/apikey"
	"frame/internal/config"
	"frame/internal/gateway"
	"frame/internal/localstore"
	"frame/internal/logging"
	"frame/internal/notifications"
	"frame/internal/services/backend"
	"frame/internal/services/gemini"
	"frame/internal/services/tavily"
	"frame/internal/services/youtube"
	"frame/internal/session"
)

// App holds the long-lived collaborators built from configuration.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Store    *localstore.Store
	Backend  *backend.Client
	Gateway  *gateway.Gateway
	Notifier notifications.Service
	APIKeys  *apikey.Manager
}

// Open builds an App. The local store is opened; callers must Close the App.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if cfg == nil {
		return nil, errors.New("bootstrap: config required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	api, err := backend.New(cfg.Backend.BaseURL, config.Seconds(cfg.Backend.TimeoutSeconds, 10*time.Minute))
	if err != nil {
		return nil, fmt.Errorf("backend client: %w", err)
	}

	gw, err := NewGateway(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	store, err := localstore.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}

	return &App{
		Config:   cfg,
		Logger:   logger,
		Store:    store,
		Backend:  api,
		Gateway:  gw,
		Notifier: notifications.NewService(cfg),
		APIKeys:  apikey.NewManager(store, api),
	}, nil
}

// NewGateway builds the metadata gateway. The search provider and Gemini
// fallback are attached only when their keys are configured.
func NewGateway(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*gateway.Gateway, error) {
	videos, err := youtube.New(cfg.YouTube.APIKey, cfg.YouTube.BaseURL, config.Seconds(cfg.YouTube.TimeoutSeconds, 10*time.Second))
	if err != nil {
		return nil, fmt.Errorf("youtube client: %w (set youtube.api_key or YOUTUBE_API_KEY)", err)
	}

	var search gateway.Searcher
	if strings.TrimSpace(cfg.Search.APIKey) != "" {
		client, err := tavily.New(cfg.Search.APIKey, cfg.Search.BaseURL, config.Seconds(cfg.Search.TimeoutSeconds, 15*time.Second))
		if err != nil {
			return nil, fmt.Errorf("search client: %w", err)
		}
		search = client
	} else {
		logging.WarnWithContext(logger, "search provider not configured", "search_disabled",
			logging.String(logging.FieldImpact, "no suggested videos and no search-based topic summaries"),
			logging.String(logging.FieldErrorHint, "set search.api_key or TAVILY_API_KEY"),
		)
	}

	opts := []gateway.Option{gateway.WithLogger(logger)}
	if strings.TrimSpace(cfg.Summary.GeminiAPIKey) != "" {
		summarizer, err := gemini.New(ctx, gemini.Config{
			APIKey:  cfg.Summary.GeminiAPIKey,
			Model:   cfg.Summary.Model,
			Timeout: config.Seconds(cfg.Summary.TimeoutSeconds, 20*time.Second),
		})
		if err != nil {
			return nil, fmt.Errorf("summary client: %w", err)
		}
		opts = append(opts, gateway.WithSummarizer(summarizer))
	}

	return gateway.New(videos, search, gateway.Config{
		CacheSize:      cfg.YouTube.CacheSize,
		MaxSuggestions: cfg.Session.MaxSuggestions,
		MaxResults:     cfg.Search.MaxResults,
		SearchDepth:    cfg.Search.SearchDepth,
	}, opts...)
}

// NewSession builds a table session wired to the app's gateway, backend,
// history store and notifier. ctx bounds the session's background work.
func (a *App) NewSession(ctx context.Context) (*session.Session, error) {
	return session.New(ctx, session.ConfigFrom(a.Config), session.Deps{
		Gateway:  a.Gateway,
		Backend:  a.Backend,
		Recorder: a.Store,
		Notifier: a.Notifier,
		Logger:   a.Logger,
	})
}

// LogSnapshot records which providers are configured.
func (a *App) LogSnapshot() {
	cfg := a.Config
	a.Logger.Info("provider snapshot",
		logging.String(logging.FieldEventType, "provider_snapshot"),
		logging.Bool("youtube_key_present", strings.TrimSpace(cfg.YouTube.APIKey) != ""),
		logging.Bool("search_key_present", strings.TrimSpace(cfg.Search.APIKey) != ""),
		logging.Bool("gemini_key_present", strings.TrimSpace(cfg.Summary.GeminiAPIKey) != ""),
		logging.String("backend_url", cfg.Backend.BaseURL),
		logging.Bool("ntfy_enabled", strings.TrimSpace(cfg.Notifications.NtfyTopic) != ""),
		logging.String("state_db", a.Store.Path()),
	)
}

// Close releases the local store.
func (a *App) Close() error {
	if a == nil || a.Store == nil {
		return nil
	}
	return a.Store.Close()
}
