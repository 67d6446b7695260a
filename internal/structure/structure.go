// Package structure turns enriched search results into company records.
package structure

import (
	"context"
	"net/url"
	"strings"

	"github.com/FranksOps/leadscout/internal/absorb"
	"github.com/FranksOps/leadscout/internal/enrich"
	"github.com/FranksOps/leadscout/internal/lead"
	"github.com/FranksOps/leadscout/internal/llm"
	"go.uber.org/zap"
)

const (
	// DescriptionRunes bounds the description of a deterministic record.
	DescriptionRunes = 300
	unknownCompany   = "Неизвестная компания"
)

// Structurer produces company records from enriched results. An absorbed
// result means the stage failed and the caller should fall back.
type Structurer interface {
	Structure(ctx context.Context, results []enrich.Result, category string, max int) absorb.Result[[]lead.Company]
}

// New picks the generative variant when gen is non-nil and the
// deterministic one otherwise.
func New(gen llm.Generator, logger *zap.Logger) Structurer {
	if gen == nil {
		return Deterministic{}
	}
	return NewGenerative(gen, logger)
}

// Deterministic maps each result to a record without a model.
type Deterministic struct{}

// Structure emits one record per result, up to max.
func (Deterministic) Structure(_ context.Context, results []enrich.Result, _ string, max int) absorb.Result[[]lead.Company] {
	if max < 0 {
		max = 0
	}
	if max > len(results) {
		max = len(results)
	}
	out := make([]lead.Company, 0, max)
	for _, r := range results[:max] {
		name := strings.TrimSpace(r.Title)
		if name == "" {
			name = unknownCompany
		}
		email := ""
		if len(r.Emails) > 0 {
			email = r.Emails[0]
		}
		out = append(out, lead.Company{
			Name:        name,
			Website:     r.URL,
			Email:       email,
			Description: truncateRunes(r.Content, DescriptionRunes),
		})
	}
	return absorb.Ok(out)
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// siteKey normalizes a URL to lower-case scheme://host. Inputs without a
// scheme are treated as https.
func siteKey(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return strings.TrimRight(strings.ToLower(raw), "/")
	}
	return strings.ToLower(u.Scheme + "://" + u.Host)
}
