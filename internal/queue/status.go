package queue

import (
	"strings"
	"unicode/utf8"
)

// Row status strings written by the queue.
const (
	StatusQueued     = "Queued"
	StatusUploading  = "Uploading..."
	StatusProcessing = "Processing..."
	StatusCompleted  = "Completed"
	StatusFailed     = "Failed"

	failureMessageLimit = 50
)

// CaptionAnnotation labels whether the source video has captions.
func CaptionAnnotation(hasCaptions bool) string {
	if hasCaptions {
		return "(captions)"
	}
	return "(no captions)"
}

// QueuedStatus is the status revealed for a freshly fetched row.
func QueuedStatus(annotation string) string {
	return withAnnotation(StatusQueued, annotation)
}

// CompletedStatus is the terminal status for a successful job.
func CompletedStatus(annotation string) string {
	return withAnnotation(StatusCompleted, annotation)
}

// FailedStatus renders "Failed: <message>", truncating messages longer than
// 50 characters and appending an ellipsis.
func FailedStatus(message string) string {
	message = strings.TrimSpace(message)
	if message == "" {
		return StatusFailed
	}
	if utf8.RuneCountInString(message) > failureMessageLimit {
		runes := []rune(message)
		message = string(runes[:failureMessageLimit]) + "..."
	}
	return StatusFailed + ": " + message
}

func withAnnotation(status, annotation string) string {
	if annotation = strings.TrimSpace(annotation); annotation != "" {
		return status + " " + annotation
	}
	return status
}
