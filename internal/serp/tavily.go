package serp

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/FranksOps/leadscout/pkg/httpclient"
	"github.com/rotisserie/eris"
)

const (
	DefaultTavilyURL     = "https://api.tavily.com/search"
	defaultTavilyTimeout = 30 * time.Second
	maxErrorBody         = 512
)

// TavilyConfig configures the Tavily client.
type TavilyConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	// SearchDepth is "basic" or "advanced". Empty means "advanced".
	SearchDepth string
}

// Tavily queries the Tavily search API.
type Tavily struct {
	apiKey  string
	baseURL string
	depth   string
	client  *httpclient.Client
}

type tavilyRequest struct {
	APIKey            string `json:"api_key"`
	Query             string `json:"query"`
	SearchDepth       string `json:"search_depth"`
	MaxResults        int    `json:"max_results"`
	IncludeAnswer     bool   `json:"include_answer"`
	IncludeRawContent bool   `json:"include_raw_content"`
}

type tavilyResponse struct {
	Results []Result `json:"results"`
}

// NewTavily builds a client. An empty API key is an error; callers that
// want to run without search should not construct a provider at all.
func NewTavily(cfg TavilyConfig) (*Tavily, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, eris.New("serp: tavily api key is empty")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultTavilyURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTavilyTimeout
	}
	if cfg.SearchDepth == "" {
		cfg.SearchDepth = "advanced"
	}

	headers := http.Header{}
	headers.Set("Content-Type", "application/json")
	headers.Set("Accept", "application/json")

	client, err := httpclient.New(httpclient.Config{
		Timeout: cfg.Timeout,
		Headers: headers,
	})
	if err != nil {
		return nil, eris.Wrap(err, "serp: create tavily client")
	}

	return &Tavily{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		depth:   cfg.SearchDepth,
		client:  client,
	}, nil
}

// Search runs one query. Results keep the provider's ranking.
func (t *Tavily) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if limit < 0 {
		return nil, eris.Errorf("serp: limit cannot be negative: %d", limit)
	}

	payload, err := json.Marshal(tavilyRequest{
		APIKey:      t.apiKey,
		Query:       query,
		SearchDepth: t.depth,
		MaxResults:  limit,
	})
	if err != nil {
		return nil, eris.Wrap(err, "serp: encode tavily request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, eris.Wrap(err, "serp: build tavily request")
	}

	resp, err := t.client.Do(ctx, req)
	if err != nil {
		return nil, eris.Wrap(err, "serp: tavily request")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{
			Provider:   "tavily",
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	var decoded tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, eris.Wrap(err, "serp: decode tavily response")
	}

	if limit > 0 && len(decoded.Results) > limit {
		decoded.Results = decoded.Results[:limit]
	}
	return decoded.Results, nil
}
