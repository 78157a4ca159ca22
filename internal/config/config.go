package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory, artifact, and bind address configuration.
type Paths struct {
	StateDir        string `toml:"state_dir"`
	LogDir          string `toml:"log_dir"`
	GapAnalysisPath string `toml:"gap_analysis_path"`
	APIBind         string `toml:"api_bind"`
	APIToken        string `toml:"api_token"`
}

// YouTube contains configuration for the video metadata provider.
type YouTube struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	CacheSize      int    `toml:"cache_size"`
}

// Search contains configuration for the search/answer provider.
type Search struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	SearchDepth    string `toml:"search_depth"`
	MaxResults     int    `toml:"max_results"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Summary contains the optional Gemini fallback used when the search provider
// returns no answer for a topic summary.
type Summary struct {
	GeminiAPIKey   string `toml:"gemini_api_key"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Backend contains configuration for the ingestion API.
type Backend struct {
	BaseURL          string `toml:"base_url"`
	FrameInterval    int    `toml:"frame_interval"`
	PreferredQuality string `toml:"preferred_quality"`
	PreferredFormat  string `toml:"preferred_format"`
	TimeoutSeconds   int    `toml:"timeout_seconds"`
}

// Session contains suggestion and row population limits.
type Session struct {
	RowCap                int  `toml:"row_cap"`
	MaxSuggestions        int  `toml:"max_suggestions"`
	SuggestionDelayMillis int  `toml:"suggestion_delay_ms"`
	RowMountDelayMillis   int  `toml:"row_mount_delay_ms"`
	BlankRowOnEmpty       bool `toml:"blank_row_on_empty"`
	TrailingBlankRow      bool `toml:"trailing_blank_row"`
}

// Animation contains field reveal pacing. The suggested variants apply to
// rows appended by the suggestion expander.
type Animation struct {
	HideMillis            int `toml:"hide_ms"`
	SettleMillis          int `toml:"settle_ms"`
	SuggestedHideMillis   int `toml:"suggested_hide_ms"`
	SuggestedSettleMillis int `toml:"suggested_settle_ms"`
}

// Layout contains resize bounds for table rows and columns.
type Layout struct {
	RowHeightMin   int     `toml:"row_height_min"`
	RowHeightMax   int     `toml:"row_height_max"`
	ColumnWidthMin float64 `toml:"column_width_min"`
	ColumnWidthMax float64 `toml:"column_width_max"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	JobFailed      bool   `toml:"job_failed"`
	QueueDrained   bool   `toml:"queue_drained"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for Frame.
//
// Configuration sections by subsystem:
//   - Paths: state directory, gap analysis artifact, API bind address
//   - YouTube: video metadata lookups
//   - Search: related video discovery and topic answers
//   - Summary: Gemini fallback for topic summaries
//   - Backend: ingestion API location and processing preferences
//   - Session: row cap and suggestion pacing
//   - Animation: field reveal timings
//   - Layout: row height and column width bounds
//   - Notifications: ntfy push notification settings
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	YouTube       YouTube       `toml:"youtube"`
	Search        Search        `toml:"search"`
	Summary       Summary       `toml:"summary"`
	Backend       Backend       `toml:"backend"`
	Session       Session       `toml:"session"`
	Animation     Animation     `toml:"animation"`
	Layout        Layout        `toml:"layout"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/frame/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("frame.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon and CLI operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// StateDBPath returns the location of the local SQLite state database.
func (c *Config) StateDBPath() string {
	return filepath.Join(c.Paths.StateDir, "frame.db")
}

// LockPath returns the daemon single-instance lock file location.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "framed.lock")
}

// LogPath returns the daemon log file location.
func (c *Config) LogPath() string {
	return filepath.Join(c.Paths.LogDir, "frame.log")
}

// Millis converts a millisecond config value to a duration, treating negatives as zero.
func Millis(value int) time.Duration {
	if value <= 0 {
		return 0
	}
	return time.Duration(value) * time.Millisecond
}

// Seconds converts a second config value to a duration, falling back when unset.
func Seconds(value int, fallback time.Duration) time.Duration {
	if value <= 0 {
		return fallback
	}
	return time.Duration(value) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
