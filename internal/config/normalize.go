package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeYouTube()
	c.normalizeSearch()
	c.normalizeSummary()
	c.normalizeBackend()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.GapAnalysisPath) == "" {
		c.Paths.GapAnalysisPath = defaultGapAnalysisPath
	}
	if c.Paths.GapAnalysisPath, err = expandPath(c.Paths.GapAnalysisPath); err != nil {
		return fmt.Errorf("paths.gap_analysis_path: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	if c.Paths.APIToken == "" {
		c.Paths.APIToken = envValue("FRAME_API_TOKEN")
	}
	return nil
}

func (c *Config) normalizeYouTube() {
	c.YouTube.APIKey = strings.TrimSpace(c.YouTube.APIKey)
	if c.YouTube.APIKey == "" {
		c.YouTube.APIKey = envValue("YOUTUBE_API_KEY")
	}
	c.YouTube.BaseURL = strings.TrimRight(strings.TrimSpace(c.YouTube.BaseURL), "/")
	if c.YouTube.BaseURL == "" {
		c.YouTube.BaseURL = defaultYouTubeBaseURL
	}
}

func (c *Config) normalizeSearch() {
	c.Search.APIKey = strings.TrimSpace(c.Search.APIKey)
	if c.Search.APIKey == "" {
		c.Search.APIKey = envValue("TAVILY_API_KEY")
	}
	c.Search.BaseURL = strings.TrimRight(strings.TrimSpace(c.Search.BaseURL), "/")
	if c.Search.BaseURL == "" {
		c.Search.BaseURL = defaultSearchBaseURL
	}
	c.Search.SearchDepth = strings.ToLower(strings.TrimSpace(c.Search.SearchDepth))
	if c.Search.SearchDepth == "" {
		c.Search.SearchDepth = defaultSearchDepth
	}
}

func (c *Config) normalizeSummary() {
	c.Summary.GeminiAPIKey = strings.TrimSpace(c.Summary.GeminiAPIKey)
	if c.Summary.GeminiAPIKey == "" {
		c.Summary.GeminiAPIKey = envValue("GEMINI_API_KEY")
	}
	c.Summary.Model = strings.TrimSpace(c.Summary.Model)
	if c.Summary.Model == "" {
		c.Summary.Model = defaultSummaryModel
	}
}

func (c *Config) normalizeBackend() {
	c.Backend.BaseURL = strings.TrimSpace(c.Backend.BaseURL)
	if value := envValue("FRAME_API_URL"); value != "" {
		c.Backend.BaseURL = value
	}
	c.Backend.BaseURL = strings.TrimRight(c.Backend.BaseURL, "/")
	if c.Backend.BaseURL == "" {
		c.Backend.BaseURL = defaultBackendBaseURL
	}
	c.Backend.PreferredQuality = strings.TrimSpace(c.Backend.PreferredQuality)
	if c.Backend.PreferredQuality == "" {
		c.Backend.PreferredQuality = defaultBackendQuality
	}
	c.Backend.PreferredFormat = strings.ToLower(strings.TrimSpace(c.Backend.PreferredFormat))
	if c.Backend.PreferredFormat == "" {
		c.Backend.PreferredFormat = defaultBackendFormat
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.NtfyTopic == "" {
		c.Notifications.NtfyTopic = envValue("NTFY_TOPIC")
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func envValue(name string) string {
	if value, ok := os.LookupEnv(name); ok {
		return strings.TrimSpace(value)
	}
	return ""
}
