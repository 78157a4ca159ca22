package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable. Provider credentials are not
// required here; components that need them fail at construction instead, so
// commands such as `frame analytics` run without any keys.
func (c *Config) Validate() error {
	if err := c.validateSession(); err != nil {
		return err
	}
	if err := c.validateAnimation(); err != nil {
		return err
	}
	if err := c.validateLayout(); err != nil {
		return err
	}
	if err := c.validateBackend(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateSession() error {
	if c.Session.RowCap <= 0 {
		return errors.New("session.row_cap must be positive")
	}
	if c.Session.MaxSuggestions <= 0 {
		return errors.New("session.max_suggestions must be positive")
	}
	if c.Session.SuggestionDelayMillis < 0 || c.Session.RowMountDelayMillis < 0 {
		return errors.New("session delays must be >= 0")
	}
	return nil
}

func (c *Config) validateAnimation() error {
	for key, value := range map[string]int{
		"animation.hide_ms":             c.Animation.HideMillis,
		"animation.settle_ms":           c.Animation.SettleMillis,
		"animation.suggested_hide_ms":   c.Animation.SuggestedHideMillis,
		"animation.suggested_settle_ms": c.Animation.SuggestedSettleMillis,
	} {
		if value < 0 {
			return fmt.Errorf("%s must be >= 0", key)
		}
	}
	return nil
}

func (c *Config) validateLayout() error {
	if c.Layout.RowHeightMin <= 0 || c.Layout.RowHeightMax < c.Layout.RowHeightMin {
		return errors.New("layout.row_height_min must be positive and not exceed layout.row_height_max")
	}
	if c.Layout.ColumnWidthMin <= 0 || c.Layout.ColumnWidthMax < c.Layout.ColumnWidthMin || c.Layout.ColumnWidthMax > 100 {
		return errors.New("layout column widths must satisfy 0 < column_width_min <= column_width_max <= 100")
	}
	return nil
}

func (c *Config) validateBackend() error {
	if c.Backend.FrameInterval < 1 || c.Backend.FrameInterval > 60 {
		return errors.New("backend.frame_interval must be between 1 and 60 seconds")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}
