package tavily

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultHTTPTimeout = 20 * time.Second

// SearchRequest describes a single search call. APIKey is filled by the client.
type SearchRequest struct {
	Query          string
	SearchDepth    string
	MaxResults     int
	IncludeAnswer  bool
	IncludeDomains []string
}

// Result is one ranked search hit.
type Result struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// Response is the decoded search payload.
type Response struct {
	Query   string   `json:"query"`
	Answer  string   `json:"answer"`
	Results []Result `json:"results"`
}

type searchPayload struct {
	APIKey         string   `json:"api_key"`
	Query          string   `json:"query"`
	SearchDepth    string   `json:"search_depth,omitempty"`
	MaxResults     int      `json:"max_results,omitempty"`
	IncludeAnswer  bool     `json:"include_answer"`
	IncludeDomains []string `json:"include_domains,omitempty"`
}

// StatusError reports a non-2xx response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("tavily search: http %d", e.StatusCode)
	}
	return fmt.Sprintf("tavily search: http %d: %s", e.StatusCode, body)
}

// Client issues search requests.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New constructs a search client.
func New(apiKey, baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("tavily api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("tavily base url required")
	}
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
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

// Search issues one POST /search call. There are no retries.
func (c *Client) Search(ctx context.Context, req SearchRequest) (*Response, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, errors.New("tavily search: query required")
	}
	endpoint, err := url.JoinPath(c.baseURL, "search")
	if err != nil {
		return nil, fmt.Errorf("tavily search: build url: %w", err)
	}
	encoded, err := json.Marshal(searchPayload{
		APIKey:         c.apiKey,
		Query:          query,
		SearchDepth:    req.SearchDepth,
		MaxResults:     req.MaxResults,
		IncludeAnswer:  req.IncludeAnswer,
		IncludeDomains: req.IncludeDomains,
	})
	if err != nil {
		return nil, fmt.Errorf("tavily search: encode body: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("tavily search: new request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("tavily search: execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("tavily search: read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: snippet(body)}
	}

	var decoded Response
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("tavily search: decode response: %w", err)
	}
	return &decoded, nil
}

func snippet(body []byte) string {
	const limit = 200
	text := strings.TrimSpace(string(body))
	if len(text) > limit {
		return text[:limit] + "..."
	}
	return text
}
