package session

import (
	"time"

	"frame/internal/config"
	"frame/internal/queue"
	"frame/internal/reveal"
)

// Config bounds a session.
type Config struct {
	Cap              int
	MaxSuggestions   int
	SuggestionDelay  time.Duration
	MountDelay       time.Duration
	Timing           reveal.Timing
	SuggestedTiming  reveal.Timing
	BlankRowOnEmpty  bool
	TrailingBlankRow bool
	RowHeightMin     int
	RowHeightMax     int
	ColumnWidthMin   float64
	ColumnWidthMax   float64
	Queue            queue.Config
}

// ConfigFrom maps the file configuration onto a session Config.
func ConfigFrom(cfg *config.Config) Config {
	return Config{
		Cap:             cfg.Session.RowCap,
		MaxSuggestions:  cfg.Session.MaxSuggestions,
		SuggestionDelay: config.Millis(cfg.Session.SuggestionDelayMillis),
		MountDelay:      config.Millis(cfg.Session.RowMountDelayMillis),
		Timing: reveal.Timing{
			Hide:   config.Millis(cfg.Animation.HideMillis),
			Settle: config.Millis(cfg.Animation.SettleMillis),
		},
		SuggestedTiming: reveal.Timing{
			Hide:   config.Millis(cfg.Animation.SuggestedHideMillis),
			Settle: config.Millis(cfg.Animation.SuggestedSettleMillis),
		},
		BlankRowOnEmpty:  cfg.Session.BlankRowOnEmpty,
		TrailingBlankRow: cfg.Session.TrailingBlankRow,
		RowHeightMin:     cfg.Layout.RowHeightMin,
		RowHeightMax:     cfg.Layout.RowHeightMax,
		ColumnWidthMin:   cfg.Layout.ColumnWidthMin,
		ColumnWidthMax:   cfg.Layout.ColumnWidthMax,
		Queue: queue.Config{
			FrameInterval:    cfg.Backend.FrameInterval,
			PreferredQuality: cfg.Backend.PreferredQuality,
			PreferredFormat:  cfg.Backend.PreferredFormat,
		},
	}
}
