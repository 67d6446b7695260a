package serp

import (
	"context"
	"fmt"
)

// Result is one web search hit.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// Provider abstracts a search engine that returns ranked results for a query.
// The limit parameter caps the number of results returned.
type Provider interface {
	Search(ctx context.Context, query string, limit int) ([]Result, error)
}

// StatusError is returned when the provider answers with a non-2xx status.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("serp: %s returned status %d", e.Provider, e.StatusCode)
	}
	return fmt.Sprintf("serp: %s returned status %d: %s", e.Provider, e.StatusCode, e.Body)
}
