package config

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"google.golang.org/genai"

	"github.com/interviewai/backend/pkg/genx"
	"github.com/interviewai/backend/pkg/interview"
	"github.com/interviewai/backend/pkg/search"
)

// debugTransport logs request bodies at debug level.
type debugTransport struct {
	base http.RoundTripper
}

func (t *debugTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Body != nil && slog.Default().Enabled(req.Context(), slog.LevelDebug) {
		body, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		req.Body = io.NopCloser(bytes.NewReader(body))
		slog.Debug("config/http: request", "url", req.URL.String(), "bytes", len(body))
	}
	return t.base.RoundTrip(req)
}

// Providers holds the generators and search backend built from a Config.
type Providers struct {
	Text     genx.Generator
	Vision   genx.Generator
	Searcher search.Searcher
}

// Build creates the provider clients. Gemini replaces the OpenAI-compatible
// vision model when a Gemini API key is configured.
func (c *Config) Build(ctx context.Context) (*Providers, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	opts := []option.RequestOption{
		option.WithAPIKey(c.Provider.APIKey),
		option.WithMaxRetries(c.Provider.MaxRetries),
		option.WithHTTPClient(&http.Client{Transport: &debugTransport{base: http.DefaultTransport}}),
	}
	if c.Provider.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(c.Provider.BaseURL))
	}
	client := openai.NewClient(opts...)

	p := &Providers{
		Text: &genx.OpenAIGenerator{Client: &client, Model: c.Provider.TextModel},
	}
	switch {
	case c.Gemini.APIKey != "":
		gc, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  c.Gemini.APIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("config: gemini client: %w", err)
		}
		p.Vision = &genx.GeminiGenerator{Client: gc, Model: c.Gemini.Model}
	case c.Provider.VisionModel != "":
		p.Vision = &genx.OpenAIGenerator{Client: &client, Model: c.Provider.VisionModel}
	default:
		p.Vision = p.Text
	}

	tavily := &search.Tavily{
		APIKey:     c.Search.APIKey,
		BaseURL:    c.Search.BaseURL,
		MaxResults: c.Search.MaxResults,
		Projection: c.Search.Projection,
	}
	if tavily.Configured() {
		p.Searcher = tavily
	} else {
		slog.Warn("config: TAVILY_API_KEY not set, web_search turns will fail")
	}
	return p, nil
}

// Answerer returns the spoken-answer pipeline.
func (p *Providers) Answerer(c *Config) *interview.Answerer {
	return &interview.Answerer{Generator: p.Text, Searcher: p.Searcher, Params: c.Answer}
}

// VisionPipeline returns the screenshot pipeline. The text model solves the
// problem the vision model transcribed.
func (p *Providers) VisionPipeline(c *Config) *interview.Vision {
	return &interview.Vision{
		Extractor:        p.Vision,
		Solver:           p.Text,
		Searcher:         p.Searcher,
		SummaryChunkSize: c.Vision.SummaryChunkSize,
		AnswerChunkSize:  c.Vision.AnswerChunkSize,
		DefaultLanguage:  c.Vision.DefaultLanguage,
	}
}

func (p *Providers) Preparer() *interview.Preparer {
	return &interview.Preparer{Generator: p.Text}
}
