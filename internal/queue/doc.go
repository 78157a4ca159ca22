// Package queue runs ingestion jobs against the backend strictly one at a time.
//
// Jobs are consumed in FIFO order by a single worker goroutine that starts when
// the queue goes from empty to non-empty and exits when it drains. Each job
// walks its row through Uploading, Processing and a terminal Completed or
// Failed status. A failed job never blocks the jobs behind it.
//
// Terminal outcomes are handed to an optional Recorder (job history) and an
// optional Notifier (push notifications).
package queue
