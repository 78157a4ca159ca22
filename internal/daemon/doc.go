// Package daemon coordinates the long-running Frame process.
//
// It wires configuration, the table session, the local history store and the
// HTTP API into a single lifecycle with flock-based locking to prevent
// multiple instances. Row store changes and column width changes are fanned
// out to websocket subscribers on /api/events so a browser table can follow
// the reveal animation and queue statuses live.
//
// Keep orchestration logic here: lookups, reveals and ingestion live in their
// respective packages while the daemon focuses on startup, shutdown and
// transport.
package daemon
