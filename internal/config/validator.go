package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/FranksOps/leadscout/internal/fingerprint"
	"github.com/FranksOps/leadscout/internal/storage"
	_ "github.com/FranksOps/leadscout/internal/storage/backends"
	"go.uber.org/zap/zapcore"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errors = append(errors, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("unknown level %q", c.Log.Level),
		})
	}

	// Validate Search config
	switch strings.ToLower(c.Search.Provider) {
	case "tavily", "none", "":
	default:
		errors = append(errors, ValidationError{
			Field:   "search.provider",
			Message: "provider must be tavily or none",
		})
	}

	if c.Search.Max < 0 {
		errors = append(errors, ValidationError{
			Field:   "search.max",
			Message: "max must not be negative",
		})
	}

	if c.Search.BaseURL != "" {
		if u, err := url.Parse(c.Search.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			errors = append(errors, ValidationError{
				Field:   "search.base_url",
				Message: "invalid search base URL",
			})
		}
	}

	// Validate Scraper config
	if c.Scraper.Timeout <= 0 {
		errors = append(errors, ValidationError{
			Field:   "scraper.timeout",
			Message: "timeout must be positive",
		})
	}

	if _, err := fingerprint.ParseProfile(c.Scraper.Fingerprint); err != nil {
		errors = append(errors, ValidationError{
			Field:   "scraper.fingerprint",
			Message: err.Error(),
		})
	}

	if c.Scraper.MaxPages < 1 {
		errors = append(errors, ValidationError{
			Field:   "scraper.max_pages",
			Message: "max_pages must be positive",
		})
	}

	if c.Scraper.SiteTimeout < 0 {
		errors = append(errors, ValidationError{
			Field:   "scraper.site_timeout",
			Message: "site_timeout must not be negative",
		})
	}

	// Validate LLM config
	switch strings.ToLower(c.LLM.Provider) {
	case "openai", "gemini", "ollama", "none", "":
	default:
		errors = append(errors, ValidationError{
			Field:   "llm.provider",
			Message: "provider must be openai, gemini, ollama or none",
		})
	}

	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errors = append(errors, ValidationError{
			Field:   "llm.temperature",
			Message: "temperature must be between 0 and 2",
		})
	}

	if c.Outreach.Temperature < 0 || c.Outreach.Temperature > 2 {
		errors = append(errors, ValidationError{
			Field:   "outreach.temperature",
			Message: "temperature must be between 0 and 2",
		})
	}

	// Validate Storage config
	if !contains(storage.Kinds(), c.Storage.Kind) {
		errors = append(errors, ValidationError{
			Field:   "storage.kind",
			Message: fmt.Sprintf("unknown backend %q (have %s)", c.Storage.Kind, strings.Join(storage.Kinds(), ", ")),
		})
	}

	if c.Storage.DSN == "" {
		errors = append(errors, ValidationError{
			Field:   "storage.dsn",
			Message: "dsn is required",
		})
	}

	if c.Metrics.Port < 0 || c.Metrics.Port > 65535 {
		errors = append(errors, ValidationError{
			Field:   "metrics.port",
			Message: "port must be between 0 and 65535",
		})
	}

	return errors
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
