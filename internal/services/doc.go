// Package services defines shared utilities consumed by the session, queue, and
// external provider clients.
//
// Key responsibilities:
//   - Context helpers that stamp row IDs, job IDs, and correlation identifiers
//     for logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     (invalid input, not found, duplicate, transport, backend) so callers can
//     decide whether to render them into a row, log them, or fail a job.
//
// Provider clients live in subpackages (youtube, tavily, gemini, backend).
package services
