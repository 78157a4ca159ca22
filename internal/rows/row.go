package rows

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Field names a display column of a row.
type Field string

const (
	FieldVideoURL  Field = "videoUrl"
	FieldTitle     Field = "title"
	FieldDuration  Field = "duration"
	FieldStatus    Field = "status"
	FieldKeyTopics Field = "keyTopics"
)

// RevealOrder is the left-to-right order fields are revealed in.
var RevealOrder = []Field{FieldTitle, FieldDuration, FieldStatus, FieldKeyTopics}

// AllFields is every display field in column order.
var AllFields = []Field{FieldVideoURL, FieldTitle, FieldDuration, FieldStatus, FieldKeyTopics}

// DefaultHeight is the height of a newly created row in pixels.
const DefaultHeight = 40

// Row is one table entry.
type Row struct {
	ID        string         `json:"id"`
	VideoURL  string         `json:"videoUrl"`
	Title     string         `json:"title"`
	Duration  string         `json:"duration"`
	Status    string         `json:"status"`
	KeyTopics string         `json:"keyTopics"`
	Height    int            `json:"height"`
	Loading   bool           `json:"loading"`
	Hidden    map[Field]bool `json:"hidden,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// Patch is a partial row update keyed by field.
type Patch map[Field]string

// Value returns the row's value for f.
func (r Row) Value(f Field) string {
	switch f {
	case FieldVideoURL:
		return r.VideoURL
	case FieldTitle:
		return r.Title
	case FieldDuration:
		return r.Duration
	case FieldStatus:
		return r.Status
	case FieldKeyTopics:
		return r.KeyTopics
	}
	return ""
}

func (r *Row) set(f Field, value string) bool {
	switch f {
	case FieldVideoURL:
		r.VideoURL = value
	case FieldTitle:
		r.Title = value
	case FieldDuration:
		r.Duration = value
	case FieldStatus:
		r.Status = value
	case FieldKeyTopics:
		r.KeyTopics = value
	default:
		return false
	}
	return true
}

func (r Row) clone() Row {
	out := r
	if len(r.Hidden) > 0 {
		out.Hidden = make(map[Field]bool, len(r.Hidden))
		for k, v := range r.Hidden {
			out.Hidden[k] = v
		}
	} else {
		out.Hidden = nil
	}
	return out
}

// NewRowID returns a row identifier made of the creation time in milliseconds
// and eight random hex characters, so rows created in the same millisecond by
// one expansion batch stay distinct.
func NewRowID() string {
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}

// New returns an empty row for videoURL with a fresh ID and default height.
func New(videoURL string) Row {
	return Row{
		ID:        NewRowID(),
		VideoURL:  videoURL,
		Height:    DefaultHeight,
		CreatedAt: time.Now().UTC(),
	}
}

// ErrorTitle is written into the title of a row whose lookup failed.
const ErrorTitle = "Error - Invalid YouTube URL or API issue"

// ErrorPatch renders a failed lookup into the row itself.
func ErrorPatch(message string) Patch {
	return Patch{
		FieldTitle:     ErrorTitle,
		FieldDuration:  "0:00",
		FieldStatus:    "Failed",
		FieldKeyTopics: message,
	}
}
