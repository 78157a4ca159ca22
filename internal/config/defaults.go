package config

const (
	defaultStateDir              = "~/.local/share/frame"
	defaultLogDir                = "~/.local/share/frame/logs"
	defaultGapAnalysisPath       = "public/gap_analysis.json"
	defaultAPIBind               = "127.0.0.1:7488"
	defaultYouTubeBaseURL        = "https://www.googleapis.com/youtube/v3"
	defaultYouTubeTimeout        = 10
	defaultYouTubeCacheSize      = 256
	defaultSearchBaseURL         = "https://api.tavily.com"
	defaultSearchDepth           = "advanced"
	defaultSearchMaxResults      = 10
	defaultSearchTimeout         = 20
	defaultSummaryModel          = "gemini-2.5-flash"
	defaultSummaryTimeout        = 20
	defaultBackendBaseURL        = "http://localhost:8000"
	defaultBackendFrameInterval  = 5
	defaultBackendQuality        = "480p"
	defaultBackendFormat         = "mp4"
	defaultBackendTimeout        = 600
	defaultRowCap                = 5
	defaultMaxSuggestions        = 4
	defaultSuggestionDelayMillis = 500
	defaultRowMountDelayMillis   = 100
	defaultHideMillis            = 300
	defaultSettleMillis          = 100
	defaultSuggestedHideMillis   = 150
	defaultSuggestedSettleMillis = 80
	defaultRowHeightMin          = 40
	defaultRowHeightMax          = 300
	defaultColumnWidthMin        = 10
	defaultColumnWidthMax        = 50
	defaultNotifyTimeout         = 10
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir:        defaultStateDir,
			LogDir:          defaultLogDir,
			GapAnalysisPath: defaultGapAnalysisPath,
			APIBind:         defaultAPIBind,
		},
		YouTube: YouTube{
			BaseURL:        defaultYouTubeBaseURL,
			TimeoutSeconds: defaultYouTubeTimeout,
			CacheSize:      defaultYouTubeCacheSize,
		},
		Search: Search{
			BaseURL:        defaultSearchBaseURL,
			SearchDepth:    defaultSearchDepth,
			MaxResults:     defaultSearchMaxResults,
			TimeoutSeconds: defaultSearchTimeout,
		},
		Summary: Summary{
			Model:          defaultSummaryModel,
			TimeoutSeconds: defaultSummaryTimeout,
		},
		Backend: Backend{
			BaseURL:          defaultBackendBaseURL,
			FrameInterval:    defaultBackendFrameInterval,
			PreferredQuality: defaultBackendQuality,
			PreferredFormat:  defaultBackendFormat,
			TimeoutSeconds:   defaultBackendTimeout,
		},
		Session: Session{
			RowCap:                defaultRowCap,
			MaxSuggestions:        defaultMaxSuggestions,
			SuggestionDelayMillis: defaultSuggestionDelayMillis,
			RowMountDelayMillis:   defaultRowMountDelayMillis,
		},
		Animation: Animation{
			HideMillis:            defaultHideMillis,
			SettleMillis:          defaultSettleMillis,
			SuggestedHideMillis:   defaultSuggestedHideMillis,
			SuggestedSettleMillis: defaultSuggestedSettleMillis,
		},
		Layout: Layout{
			RowHeightMin:   defaultRowHeightMin,
			RowHeightMax:   defaultRowHeightMax,
			ColumnWidthMin: defaultColumnWidthMin,
			ColumnWidthMax: defaultColumnWidthMax,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			JobFailed:      true,
			QueueDrained:   true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
