package api

import "frame/internal/rows"

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// QueueCounters summarizes the processing queue.
type QueueCounters struct {
	Busy      bool `json:"busy"`
	Pending   int  `json:"pending"`
	Processed int  `json:"processed"`
	Failed    int  `json:"failed"`
}

// QueueJob is a pending ingestion job.
type QueueJob struct {
	ID         string `json:"id"`
	URL        string `json:"url"`
	RowID      string `json:"rowId"`
	Title      string `json:"title,omitempty"`
	Annotation string `json:"annotation,omitempty"`
	EnqueuedAt string `json:"enqueuedAt,omitempty"`
}

// QueueResponse is returned by GET /api/queue.
type QueueResponse struct {
	Counters QueueCounters `json:"counters"`
	Jobs     []QueueJob    `json:"jobs"`
}

// DaemonStatus aggregates runtime information.
type DaemonStatus struct {
	Running      bool          `json:"running"`
	PID          int           `json:"pid"`
	StateDBPath  string        `json:"stateDbPath"`
	LockFilePath string        `json:"lockFilePath"`
	RowCount     int           `json:"rowCount"`
	RowCap       int           `json:"rowCap"`
	Subscribers  int           `json:"subscribers"`
	Queue        QueueCounters `json:"queue"`
}

// RowsResponse is returned by GET /api/rows.
type RowsResponse struct {
	Rows    []rows.Row         `json:"rows"`
	Columns map[string]float64 `json:"columns"`
}

// RowResponse wraps a single row.
type RowResponse struct {
	Row rows.Row `json:"row"`
}

// SubmitRequest is the body of POST /api/rows/{id}/submit. With Wait unset
// the lookup runs in the background and progress arrives on the event stream.
type SubmitRequest struct {
	URL  string `json:"url"`
	Wait bool   `json:"wait,omitempty"`
}

// SubmitResponse reports the outcome of a submit.
type SubmitResponse struct {
	RowID    string `json:"rowId"`
	Accepted bool   `json:"accepted"`
	VideoID  string `json:"videoId,omitempty"`
	JobID    string `json:"jobId,omitempty"`
	Message  string `json:"message,omitempty"`
}

// Drag phases accepted by the resize endpoints.
const (
	DragBegin = "begin"
	DragMove  = "move"
	DragEnd   = "end"
)

// DragRequest is one pointer event of a resize gesture. Position is the
// pointer Y for rows and X for columns; Viewport is the viewport width and
// is only read on a column begin.
type DragRequest struct {
	Phase    string  `json:"phase"`
	Position float64 `json:"position"`
	Viewport float64 `json:"viewport,omitempty"`
}

// DragResponse reports the size after a drag event.
type DragResponse struct {
	Height int     `json:"height,omitempty"`
	Width  float64 `json:"width,omitempty"`
}

// Event types carried on the websocket stream besides row events.
const (
	EventColumnResized = "column.resized"
	EventHello         = "hello"
)

// Event is one envelope on the /api/events stream.
type Event struct {
	Type      string    `json:"type"`
	Timestamp string    `json:"timestamp"`
	RowID     string    `json:"rowId,omitempty"`
	Fields    []string  `json:"fields,omitempty"`
	Row       *rows.Row `json:"row,omitempty"`
	Column    string    `json:"column,omitempty"`
	Width     float64   `json:"width,omitempty"`
}
