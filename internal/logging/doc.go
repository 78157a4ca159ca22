// Package logging assembles structured slog loggers and formatting helpers used
// across Frame.
//
// It owns the console/JSON handlers, centralizes level and output plumbing, and
// exposes context-aware helpers so session, queue, and daemon code can tag log
// lines with row IDs, job IDs, and correlation IDs. A no-op logger is provided
// for tests and wiring code that cannot fail.
package logging
