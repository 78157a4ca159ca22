// Package session owns the state behind the ingestion table: the row store,
// column layout, drag controllers, reveal sequencer, processing queue and
// suggestion expander.
//
// Submit drives one row from a pasted URL to a revealed, queued video. Lookup
// failures are written into the row and reported on the Result; they are not
// returned as errors. Topic enrichment and suggestion expansion run as tracked
// background tasks, so Wait can block until the session is quiescent.
package session
