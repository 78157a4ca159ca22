package testsupport

import (
	"path/filepath"
	"testing"

	"frame/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Animation and session delays are zeroed so flows run without sleeping.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.YouTube.APIKey = "test"
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.GapAnalysisPath = filepath.Join(base, "gap_analysis.json")
	cfgVal.Paths.APIBind = "127.0.0.1:0"
	cfgVal.Animation = config.Animation{}
	cfgVal.Session.SuggestionDelayMillis = 0
	cfgVal.Session.RowMountDelayMillis = 0

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithBackendURL points the backend client at url, typically an httptest server.
func WithBackendURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Backend.BaseURL = url
	}
}

// WithYouTubeURL points the metadata provider at url.
func WithYouTubeURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.YouTube.BaseURL = url
	}
}

// WithSearch enables the search provider at url.
func WithSearch(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Search.APIKey = "test"
		b.cfg.Search.BaseURL = url
	}
}

// WithAPIToken requires bearer authentication on the daemon API.
func WithAPIToken(token string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.APIToken = token
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
