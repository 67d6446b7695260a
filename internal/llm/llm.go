// Package llm wraps the text generation backends used to normalize scraped
// company data and draft outreach emails.
package llm

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"

	defaultTimeout     = 60 * time.Second
	defaultTemperature = 0.1
)

// Generator turns a prompt into model text. Implementations make exactly one
// attempt per call.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Config selects and tunes a backend.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float64
	Timeout     time.Duration
}

// New builds the configured generator. It returns nil, nil when no provider
// is configured or the selected hosted provider has no API key, so callers
// can fall back to deterministic behavior.
func New(ctx context.Context, cfg Config) (Generator, error) {
	if cfg.Temperature <= 0 {
		cfg.Temperature = defaultTemperature
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "none":
		return nil, nil
	case ProviderGemini:
		if strings.TrimSpace(cfg.APIKey) == "" {
			return nil, nil
		}
		return NewGemini(ctx, cfg)
	case ProviderOpenAI:
		if strings.TrimSpace(cfg.APIKey) == "" {
			return nil, nil
		}
		return NewLangChain(cfg)
	case ProviderOllama:
		return NewLangChain(cfg)
	default:
		return nil, eris.Errorf("llm: unknown provider %q", cfg.Provider)
	}
}

// Name reports the backend name of g for logs and metrics.
func Name(g Generator) string {
	if n, ok := g.(interface{ Name() string }); ok {
		return n.Name()
	}
	return "custom"
}

// TransientError marks a failure that a later attempt could succeed at:
// rate limiting, provider overload, network timeouts.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	if e == nil || e.Err == nil {
		return "transient error"
	}
	return e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Class labels err as "transient" or "permanent".
func Class(err error) string {
	var te *TransientError
	if errors.As(err, &te) {
		return "transient"
	}
	return "permanent"
}

func classifyNetErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &TransientError{Err: err}
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return &TransientError{Err: err}
	}
	return err
}

// StripCodeFence removes a surrounding markdown code fence (``` or ```json)
// from model output.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
