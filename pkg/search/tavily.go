package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const defaultTavilyBaseURL = "https://api.tavily.com"

// DefaultProjection keeps the fields the model needs from a Tavily response.
var DefaultProjection = MustParseJQ(`{answer: (.answer // ""), results: [(.results // [])[] | {title, url, content}]}`)

// ErrNotConfigured is returned by Search when no API key is set.
var ErrNotConfigured = errors.New("search: tavily api key is not configured")

var _ Searcher = (*Tavily)(nil)

// Tavily searches through the Tavily REST API.
type Tavily struct {
	APIKey     string
	BaseURL    string
	MaxResults int

	// Projection shapes the decoded response; nil means DefaultProjection.
	Projection *JQExpr

	HTTPClient *http.Client
}

func (c *Tavily) Configured() bool {
	return c != nil && strings.TrimSpace(c.APIKey) != ""
}

func (c *Tavily) Search(ctx context.Context, query string) (json.RawMessage, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("search: query is required")
	}
	maxResults := c.MaxResults
	if maxResults <= 0 {
		maxResults = 5
	}
	baseURL := strings.TrimRight(c.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultTavilyBaseURL
	}
	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	body, err := json.Marshal(map[string]any{
		"query":          query,
		"search_depth":   "basic",
		"max_results":    maxResults,
		"include_answer": true,
	})
	if err != nil {
		return nil, fmt.Errorf("search: marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("search: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(c.APIKey))

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 8192))
		return nil, fmt.Errorf("search: tavily error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var decoded any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("search: decode response: %w", err)
	}
	proj := c.Projection
	if proj == nil {
		proj = DefaultProjection
	}
	return proj.Run(decoded)
}
