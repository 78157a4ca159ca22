package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"frame/internal/analytics"
)

// ErrAPIUnavailable reports that no daemon API is configured or reachable.
var ErrAPIUnavailable = errors.New("daemon API unavailable")

// Client talks to a running framed over HTTP.
type Client struct {
	base  *url.URL
	http  *http.Client
	token string
}

// NewClient returns a client for bind. An empty bind yields a nil client.
func NewClient(bind, token string) (*Client, error) {
	bind = strings.TrimSpace(bind)
	if bind == "" {
		return nil, nil
	}
	if !strings.Contains(bind, "://") {
		bind = "http://" + bind
	}
	base, err := url.Parse(bind)
	if err != nil {
		return nil, err
	}
	base.Path = ""
	base.RawQuery = ""
	base.Fragment = ""

	return &Client{
		base:  base,
		http:  &http.Client{Timeout: 30 * time.Second},
		token: strings.TrimSpace(token),
	}, nil
}

// Status fetches daemon status.
func (c *Client) Status(ctx context.Context) (DaemonStatus, error) {
	var out DaemonStatus
	err := c.do(ctx, http.MethodGet, "/api/status", nil, nil, &out)
	return out, err
}

// Rows fetches the current table.
func (c *Client) Rows(ctx context.Context) (RowsResponse, error) {
	var out RowsResponse
	err := c.do(ctx, http.MethodGet, "/api/rows", nil, nil, &out)
	return out, err
}

// AddRow appends an empty row and returns it.
func (c *Client) AddRow(ctx context.Context) (RowResponse, error) {
	var out RowResponse
	err := c.do(ctx, http.MethodPost, "/api/rows", nil, nil, &out)
	return out, err
}

// Submit enters url into rowID.
func (c *Client) Submit(ctx context.Context, rowID string, req SubmitRequest) (SubmitResponse, error) {
	var out SubmitResponse
	err := c.do(ctx, http.MethodPost, "/api/rows/"+url.PathEscape(rowID)+"/submit", nil, req, &out)
	return out, err
}

// Queue fetches the processing queue.
func (c *Client) Queue(ctx context.Context) (QueueResponse, error) {
	var out QueueResponse
	err := c.do(ctx, http.MethodGet, "/api/queue", nil, nil, &out)
	return out, err
}

// Usage fetches the usage series for rangeLabel.
func (c *Client) Usage(ctx context.Context, rangeLabel string) (analytics.Usage, error) {
	values := url.Values{}
	if strings.TrimSpace(rangeLabel) != "" {
		values.Set("range", rangeLabel)
	}
	var out analytics.Usage
	err := c.do(ctx, http.MethodGet, "/api/usage", values, nil, &out)
	return out, err
}

// GapAnalysis fetches the reshaped gap analysis document.
func (c *Client) GapAnalysis(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	err := c.do(ctx, http.MethodGet, "/api/gap-analysis", nil, nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	if c == nil {
		return ErrAPIUnavailable
	}
	endpoint := c.base.ResolveReference(&url.URL{Path: path, RawQuery: query.Encode()})

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var payload struct {
			Error string `json:"error"`
		}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if json.Unmarshal(data, &payload) == nil && payload.Error != "" {
			return fmt.Errorf("api %s returned status %d: %s", path, resp.StatusCode, payload.Error)
		}
		return fmt.Errorf("api %s returned status %d", path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// IsAPIUnavailable reports whether err means the daemon could not be reached.
func IsAPIUnavailable(err error) bool {
	if err == nil {
		return false
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		err = urlErr.Err
	}
	var opErr *net.OpError
	return errors.Is(err, ErrAPIUnavailable) || errors.As(err, &opErr)
}
