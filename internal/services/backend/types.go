package backend

import (
	"encoding/json"
	"strings"
)

// UploadRequest is the body of POST /videos/youtube-upload.
type UploadRequest struct {
	URL              string `json:"url"`
	Title            string `json:"title,omitempty"`
	PreferredQuality string `json:"preferredQuality"`
	PreferredFormat  string `json:"preferredFormat"`
}

// UploadResponse is returned once the source video is in storage.
type UploadResponse struct {
	Success  bool            `json:"success"`
	GCPURL   string          `json:"gcpUrl"`
	VideoID  string          `json:"videoId,omitempty"`
	Title    string          `json:"title,omitempty"`
	Metadata json.RawMessage `json:"metadata,omitempty"`
}

// ProcessRequest is the body of POST /videos/process-url.
type ProcessRequest struct {
	URL           string `json:"url"`
	FrameInterval int    `json:"frameInterval"`
	Title         string `json:"title,omitempty"`
}

// Video is a processed video record.
type Video struct {
	ID            string    `json:"id"`
	VideoURL      string    `json:"videoUrl"`
	Title         string    `json:"title,omitempty"`
	Duration      string    `json:"duration"`
	Status        string    `json:"status"`
	KeyTopics     string    `json:"keyTopics,omitempty"`
	FrameInterval int       `json:"frameInterval"`
	TotalFrames   int       `json:"totalFrames"`
	CreatedAt     string    `json:"createdAt"`
	UpdatedAt     string    `json:"updatedAt"`
	Summaries     []Summary `json:"summaries,omitempty"`
}

// Summary describes one sampled frame of a processed video.
type Summary struct {
	ID               string  `json:"id"`
	VideoID          string  `json:"videoId"`
	Timestamp        string  `json:"timestamp"`
	TimestampSeconds float64 `json:"timestampSeconds"`
	Description      string  `json:"description"`
	FrameNumber      int     `json:"frameNumber"`
	CreatedAt        string  `json:"createdAt"`
}

// VideoList is a page of processed videos.
type VideoList struct {
	Videos []Video `json:"videos"`
	Total  int     `json:"total"`
	Skip   int     `json:"skip"`
	Limit  int     `json:"limit"`
}

// APIKey is an issued key. The backend has been seen to answer in both
// camelCase and snake_case; both decode into the same fields.
type APIKey struct {
	ID        string `json:"id"`
	Key       string `json:"apiKey"`
	CreatedAt string `json:"createdAt"`
}

func (k *APIKey) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID             string `json:"id"`
		APIKey         string `json:"apiKey"`
		APIKeySnake    string `json:"api_key"`
		CreatedAt      string `json:"createdAt"`
		CreatedAtSnake string `json:"created_at"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	k.ID = raw.ID
	k.Key = firstNonEmpty(raw.APIKey, raw.APIKeySnake)
	k.CreatedAt = firstNonEmpty(raw.CreatedAt, raw.CreatedAtSnake)
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
