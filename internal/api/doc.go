// Package api defines wire-format types and converters for the framed HTTP
// API, plus the client the CLI uses to talk to a running daemon.
//
// # Key Types
//
// DaemonStatus: lock, state database, row count and queue counters.
//
// QueueResponse: queue counters with the pending jobs in FIFO order.
//
// RowsResponse: every table row and the current column widths.
//
// Event: one envelope on the /api/events websocket stream, carrying either a
// row change or a column width change.
//
// # Converters
//
// FromQueueStatus: queue.Status -> QueueResponse.
//
// FromRowEvent / FromColumnChange: store and layout callbacks -> Event.
//
// # Design Notes
//
// DTOs use camelCase JSON tags for the browser client. Timestamps use RFC3339
// with milliseconds.
package api
