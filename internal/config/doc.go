// Package config loads, normalizes, and validates Frame configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// YOUTUBE_API_KEY and TAVILY_API_KEY. The Config type centralizes every knob
// the daemon and CLI need: provider credentials, backend location, session
// pacing, and table layout bounds.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
