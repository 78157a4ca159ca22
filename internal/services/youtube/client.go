package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	videoParts = "snippet,contentDetails,statistics"
	// maxIDsPerRequest is the provider limit for the id parameter.
	maxIDsPerRequest = 50
)

// Video is a normalized videos.list item.
type Video struct {
	ID          string
	Title       string
	Description string
	Channel     string
	ChannelID   string
	DurationISO string
	HasCaptions bool
	ViewCount   int64
	PublishedAt time.Time
}

type listResponse struct {
	Items []item `json:"items"`
}

type item struct {
	ID      string `json:"id"`
	Snippet struct {
		Title        string `json:"title"`
		Description  string `json:"description"`
		ChannelTitle string `json:"channelTitle"`
		ChannelID    string `json:"channelId"`
		PublishedAt  string `json:"publishedAt"`
	} `json:"snippet"`
	ContentDetails struct {
		Duration string `json:"duration"`
		Caption  string `json:"caption"`
	} `json:"contentDetails"`
	Statistics struct {
		ViewCount string `json:"viewCount"`
	} `json:"statistics"`
}

// StatusError reports a non-2xx response from the provider.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("youtube api returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("youtube api returned %d", e.StatusCode)
}

// Client provides access to the videos endpoint.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates a YouTube client.
func New(apiKey, baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("youtube api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("youtube base url required")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Videos looks up ids in a single request and returns the items the provider
// knows about, in provider order. Unknown IDs are silently absent.
func (c *Client) Videos(ctx context.Context, ids []string) ([]Video, error) {
	cleaned := make([]string, 0, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			cleaned = append(cleaned, id)
		}
	}
	if len(cleaned) == 0 {
		return nil, errors.New("at least one video id required")
	}
	if len(cleaned) > maxIDsPerRequest {
		return nil, fmt.Errorf("too many video ids: %d > %d", len(cleaned), maxIDsPerRequest)
	}

	endpoint, err := url.Parse(c.baseURL + "/videos")
	if err != nil {
		return nil, fmt.Errorf("parse youtube url: %w", err)
	}
	params := url.Values{}
	params.Set("part", videoParts)
	params.Set("id", strings.Join(cleaned, ","))
	params.Set("key", c.apiKey)
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Message: errorMessage(resp.Body)}
	}

	var payload listResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode youtube response: %w", err)
	}

	videos := make([]Video, 0, len(payload.Items))
	for _, it := range payload.Items {
		videos = append(videos, it.normalize())
	}
	return videos, nil
}

func (it item) normalize() Video {
	v := Video{
		ID:          it.ID,
		Title:       it.Snippet.Title,
		Description: it.Snippet.Description,
		Channel:     it.Snippet.ChannelTitle,
		ChannelID:   it.Snippet.ChannelID,
		DurationISO: it.ContentDetails.Duration,
		HasCaptions: strings.EqualFold(it.ContentDetails.Caption, "true"),
	}
	if count, err := strconv.ParseInt(it.Statistics.ViewCount, 10, 64); err == nil {
		v.ViewCount = count
	}
	if ts, err := time.Parse(time.RFC3339, it.Snippet.PublishedAt); err == nil {
		v.PublishedAt = ts
	}
	return v
}

func errorMessage(body io.Reader) string {
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	data, err := io.ReadAll(io.LimitReader(body, 64*1024))
	if err != nil {
		return ""
	}
	if json.Unmarshal(data, &envelope) == nil && envelope.Error.Message != "" {
		return envelope.Error.Message
	}
	return ""
}
