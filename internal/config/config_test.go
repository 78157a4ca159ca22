package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"frame/internal/config"
)

func clearProviderEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{"YOUTUBE_API_KEY", "TAVILY_API_KEY", "GEMINI_API_KEY", "FRAME_API_URL", "FRAME_API_TOKEN", "NTFY_TOPIC"} {
		t.Setenv(name, "")
	}
}

func TestLoadDefaultConfigUsesEnvKeysAndExpandsPaths(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("YOUTUBE_API_KEY", "yt-key")
	t.Setenv("TAVILY_API_KEY", "tv-key")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantState := filepath.Join(tempHome, ".local", "share", "frame")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if cfg.StateDBPath() != filepath.Join(wantState, "frame.db") {
		t.Fatalf("unexpected db path: %q", cfg.StateDBPath())
	}
	if cfg.Paths.APIBind != "127.0.0.1:7488" {
		t.Fatalf("unexpected api bind: %q", cfg.Paths.APIBind)
	}
	if cfg.YouTube.APIKey != "yt-key" {
		t.Fatalf("expected YouTube key from env, got %q", cfg.YouTube.APIKey)
	}
	if cfg.Search.APIKey != "tv-key" {
		t.Fatalf("expected search key from env, got %q", cfg.Search.APIKey)
	}
	if cfg.Backend.BaseURL != "http://localhost:8000" {
		t.Fatalf("unexpected backend url: %q", cfg.Backend.BaseURL)
	}
	if cfg.Backend.FrameInterval != 5 {
		t.Fatalf("unexpected frame interval: %d", cfg.Backend.FrameInterval)
	}
	if cfg.Session.RowCap != 5 || cfg.Session.MaxSuggestions != 4 {
		t.Fatalf("unexpected session limits: %+v", cfg.Session)
	}
	if cfg.Session.TrailingBlankRow {
		t.Fatal("expected trailing blank row disabled by default")
	}
	if cfg.Animation.HideMillis != 300 || cfg.Animation.SettleMillis != 100 {
		t.Fatalf("unexpected animation timings: %+v", cfg.Animation)
	}
}

func TestLoadBackendURLFromEnvironmentOverridesFile(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("HOME", t.TempDir())
	t.Setenv("FRAME_API_URL", "http://backend.internal:9000/")

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[backend]\nbase_url = \"http://file:1\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if cfg.Backend.BaseURL != "http://backend.internal:9000" {
		t.Fatalf("expected env backend url with trailing slash trimmed, got %q", cfg.Backend.BaseURL)
	}
}

func TestLoadCustomConfigOverrides(t *testing.T) {
	clearProviderEnv(t)
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	path := filepath.Join(t.TempDir(), "config.toml")
	payload := map[string]any{
		"paths": map[string]any{
			"state_dir":         "~/frame-state",
			"gap_analysis_path": "~/gap.json",
		},
		"youtube": map[string]any{"api_key": "  file-key  "},
		"session": map[string]any{"row_cap": 8, "max_suggestions": 2},
		"logging": map[string]any{"format": "JSON"},
	}
	data, err := toml.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.StateDir != filepath.Join(tempHome, "frame-state") {
		t.Fatalf("unexpected state dir: %q", cfg.Paths.StateDir)
	}
	if cfg.Paths.GapAnalysisPath != filepath.Join(tempHome, "gap.json") {
		t.Fatalf("unexpected gap analysis path: %q", cfg.Paths.GapAnalysisPath)
	}
	if cfg.YouTube.APIKey != "file-key" {
		t.Fatalf("expected trimmed key, got %q", cfg.YouTube.APIKey)
	}
	if cfg.Session.RowCap != 8 || cfg.Session.MaxSuggestions != 2 {
		t.Fatalf("unexpected session: %+v", cfg.Session)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected lowercased format, got %q", cfg.Logging.Format)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := map[string]func(*config.Config){
		"row cap":        func(c *config.Config) { c.Session.RowCap = 0 },
		"suggestions":    func(c *config.Config) { c.Session.MaxSuggestions = -1 },
		"frame interval": func(c *config.Config) { c.Backend.FrameInterval = 61 },
		"row heights":    func(c *config.Config) { c.Layout.RowHeightMax = 10 },
		"column widths":  func(c *config.Config) { c.Layout.ColumnWidthMax = 120 },
		"animation":      func(c *config.Config) { c.Animation.SettleMillis = -5 },
		"log format":     func(c *config.Config) { c.Logging.Format = "xml" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := config.Default()
			mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestDefaultValidates(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestCreateSampleWritesLoadableConfig(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[session]") {
		t.Fatal("expected session section in sample config")
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if cfg.Session.RowCap != 5 {
		t.Fatalf("unexpected row cap from sample: %d", cfg.Session.RowCap)
	}
}

func TestEnsureDirectoriesCreatesStateAndLogDirs(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StateDir = filepath.Join(base, "state")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{cfg.Paths.StateDir, cfg.Paths.LogDir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s", dir)
		}
	}
}

func TestMillisAndSeconds(t *testing.T) {
	if config.Millis(-1) != 0 {
		t.Fatal("negative millis should be zero")
	}
	if config.Millis(250).Milliseconds() != 250 {
		t.Fatal("unexpected millis conversion")
	}
	if config.Seconds(0, 7_000_000_000).Seconds() != 7 {
		t.Fatal("expected fallback")
	}
}
