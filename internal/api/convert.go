package api

import (
	"time"

	"frame/internal/queue"
	"frame/internal/rows"
)

// FromQueueStatus converts a queue snapshot to its API representation.
func FromQueueStatus(status queue.Status) QueueResponse {
	jobs := make([]QueueJob, 0, len(status.Pending))
	for _, job := range status.Pending {
		jobs = append(jobs, QueueJob{
			ID:         job.ID,
			URL:        job.URL,
			RowID:      job.RowID,
			Title:      job.Title,
			Annotation: job.Annotation,
			EnqueuedAt: formatTime(job.EnqueuedAt),
		})
	}
	return QueueResponse{
		Counters: CountersFrom(status),
		Jobs:     jobs,
	}
}

// CountersFrom reduces a queue snapshot to counters.
func CountersFrom(status queue.Status) QueueCounters {
	return QueueCounters{
		Busy:      status.Busy,
		Pending:   len(status.Pending),
		Processed: status.Processed,
		Failed:    status.Failed,
	}
}

// FromRowEvent converts a row store event to a stream envelope.
func FromRowEvent(evt rows.Event, now time.Time) Event {
	row := evt.Row
	out := Event{
		Type:      string(evt.Type),
		Timestamp: formatTime(now),
		RowID:     evt.RowID,
		Row:       &row,
	}
	if len(evt.Fields) > 0 {
		out.Fields = make([]string, len(evt.Fields))
		for i, f := range evt.Fields {
			out.Fields[i] = string(f)
		}
	}
	return out
}

// FromColumnChange converts a column width change to a stream envelope.
func FromColumnChange(column rows.Field, width float64, now time.Time) Event {
	return Event{
		Type:      EventColumnResized,
		Timestamp: formatTime(now),
		Column:    string(column),
		Width:     width,
	}
}

// ColumnWidths converts a layout snapshot to a JSON-friendly map.
func ColumnWidths(widths map[rows.Field]float64) map[string]float64 {
	out := make(map[string]float64, len(widths))
	for k, v := range widths {
		out[string(k)] = v
	}
	return out
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}
