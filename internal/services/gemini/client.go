// Package gemini produces short topic summaries through the Google GenAI SDK.
// It is the fallback used when the search provider returns no answer.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"
)

const defaultModel = "gemini-2.5-flash"

// Config captures the runtime settings for the summarizer.
type Config struct {
	APIKey  string
	Model   string
	Timeout time.Duration
	// BaseURL overrides the API endpoint; tests point it at an httptest server.
	BaseURL string
}

// Client wraps a genai client bound to one model.
type Client struct {
	genai   *genai.Client
	model   string
	timeout time.Duration
}

// New constructs a summarizer client. An empty API key is an error; callers
// that treat Gemini as optional should skip construction instead.
func New(ctx context.Context, cfg Config) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key required")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	clientCfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: timeout},
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: base}
	}
	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &Client{genai: client, model: model, timeout: timeout}, nil
}

// Summarize asks the model for a one or two sentence description of the main
// topics of a video.
func (c *Client) Summarize(ctx context.Context, title, channel string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", errors.New("gemini summarize: title required")
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.genai.Models.GenerateContent(ctx, c.model, genai.Text(summaryPrompt(title, channel)), nil)
	if err != nil {
		return "", fmt.Errorf("gemini summarize: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.New("gemini summarize: no content")
	}
	return text, nil
}

func summaryPrompt(title, channel string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "In one or two plain sentences, describe the main topics and key takeaways of the YouTube video %q", title)
	if channel = strings.TrimSpace(channel); channel != "" {
		fmt.Fprintf(&b, " by %s", channel)
	}
	b.WriteString(". Respond with the sentences only, no markdown.")
	return b.String()
}
