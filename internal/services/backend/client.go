package backend

import (
	"bytes"
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
	defaultQuality       = "480p"
	defaultFormat        = "mp4"
	defaultFrameInterval = 5
	apiKeyHeader         = "X-API-Key"
)

// Client calls the ingestion API.
type Client struct {
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

// New creates a backend client rooted at baseURL.
func New(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("backend base url required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	client := &Client{baseURL: baseURL, httpClient: &http.Client{Timeout: timeout}}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// UploadYouTube copies the source video into storage and returns its storage URL.
func (c *Client) UploadYouTube(ctx context.Context, req UploadRequest) (*UploadResponse, error) {
	if strings.TrimSpace(req.URL) == "" {
		return nil, errors.New("upload: url required")
	}
	if req.PreferredQuality == "" {
		req.PreferredQuality = defaultQuality
	}
	if req.PreferredFormat == "" {
		req.PreferredFormat = defaultFormat
	}
	var out UploadResponse
	if err := c.do(ctx, http.MethodPost, "/videos/youtube-upload", "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ProcessURL requests frame processing for a storage URL or a plain video URL.
func (c *Client) ProcessURL(ctx context.Context, req ProcessRequest) (*Video, error) {
	if strings.TrimSpace(req.URL) == "" {
		return nil, errors.New("process: url required")
	}
	if req.FrameInterval <= 0 {
		req.FrameInterval = defaultFrameInterval
	}
	var out Video
	if err := c.do(ctx, http.MethodPost, "/videos/process-url", "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GenerateAPIKey issues a new API key.
func (c *Client) GenerateAPIKey(ctx context.Context) (*APIKey, error) {
	var out APIKey
	if err := c.do(ctx, http.MethodPost, "/api-keys/generate", "", nil, &out); err != nil {
		return nil, err
	}
	if out.Key == "" {
		return nil, errors.New("generate api key: response missing key")
	}
	return &out, nil
}

// ListVideos returns a page of processed videos visible to apiKey.
func (c *Client) ListVideos(ctx context.Context, apiKey string, skip, limit int) (*VideoList, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = 10
	}
	params := url.Values{}
	params.Set("skip", strconv.Itoa(skip))
	params.Set("limit", strconv.Itoa(limit))
	var out VideoList
	if err := c.do(ctx, http.MethodGet, "/api/videos?"+params.Encode(), apiKey, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetVideo returns one processed video.
func (c *Client) GetVideo(ctx context.Context, apiKey, id string) (*Video, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("get video: id required")
	}
	var out Video
	if err := c.do(ctx, http.MethodGet, "/api/videos/"+url.PathEscape(id), apiKey, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path, apiKey string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if apiKey = strings.TrimSpace(apiKey); apiKey != "" {
		req.Header.Set(apiKeyHeader, apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, strings.SplitN(path, "?", 2)[0], err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp.StatusCode, data)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
