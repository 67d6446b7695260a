package structure

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/FranksOps/leadscout/internal/absorb"
	"github.com/FranksOps/leadscout/internal/enrich"
	"github.com/FranksOps/leadscout/internal/lead"
	"github.com/FranksOps/leadscout/internal/llm"
	"github.com/FranksOps/leadscout/internal/metrics"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Generative asks a model to normalize the results, then checks every email
// it returns against what was actually scraped.
type Generative struct {
	gen    llm.Generator
	logger *zap.Logger
}

// NewGenerative wraps gen.
func NewGenerative(gen llm.Generator, logger *zap.Logger) *Generative {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generative{gen: gen, logger: logger}
}

// Structure implements Structurer. The model decides how many records to
// return; truncation to max is left to the caller.
func (g *Generative) Structure(ctx context.Context, results []enrich.Result, category string, _ int) absorb.Result[[]lead.Company] {
	provider := llm.Name(g.gen)

	text, err := g.gen.Generate(ctx, BuildPrompt(results, category))
	if err != nil {
		class := llm.Class(err)
		metrics.RecordGenerationFailure(provider, class)
		g.logger.Warn("company extraction failed",
			zap.String("provider", provider),
			zap.String("class", class),
			zap.Error(err),
		)
		return absorb.Fail[[]lead.Company](err)
	}

	companies, err := parseCompanies(text)
	if err != nil {
		metrics.RecordGenerationFailure(provider, "malformed")
		g.logger.Warn("company extraction returned malformed output",
			zap.String("provider", provider),
			zap.Error(err),
		)
		return absorb.Fail[[]lead.Company](err)
	}

	return absorb.Ok(reconcileEmails(companies, results))
}

func parseCompanies(text string) ([]lead.Company, error) {
	var raw []lead.Company
	if err := json.Unmarshal([]byte(llm.StripCodeFence(text)), &raw); err != nil {
		return nil, eris.Wrap(err, "structure: decode model output")
	}
	out := make([]lead.Company, 0, len(raw))
	for _, c := range raw {
		c.Name = strings.TrimSpace(c.Name)
		c.Website = strings.TrimSpace(c.Website)
		c.Email = strings.ToLower(strings.TrimSpace(c.Email))
		if c.Name == "" && c.Website == "" {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// reconcileEmails checks every model email against the site the record
// came from and clears it when that site never showed it. A record with no
// identifiable source is checked against every scraped address. Only emails
// the model left empty are filled, from the matching site: exact
// scheme+host first, then substring containment.
func reconcileEmails(companies []lead.Company, results []enrich.Result) []lead.Company {
	scraped := make(map[string]struct{})
	for _, r := range results {
		for _, e := range r.Emails {
			scraped[strings.ToLower(e)] = struct{}{}
		}
	}

	for i := range companies {
		c := &companies[i]
		if c.Email != "" {
			if !verified(c, results, scraped) {
				c.Email = ""
			}
			continue
		}
		if c.Website == "" {
			continue
		}
		if src := matchSource(c.Website, results); src != nil {
			c.Email = src.Emails[0]
		}
	}
	return companies
}

// verified reports whether c.Email was scraped from c's own site. Every
// result on that site counts, so two pages of one company share addresses.
func verified(c *lead.Company, results []enrich.Result, scraped map[string]struct{}) bool {
	key := siteKey(c.Website)
	matched := false
	for pass := 0; pass < 2 && !matched; pass++ {
		for _, r := range results {
			same := key != "" && siteKey(r.URL) == key
			if pass == 1 {
				same = c.Website != "" && strings.Contains(r.URL, c.Website)
			}
			if !same {
				continue
			}
			matched = true
			for _, e := range r.Emails {
				if strings.EqualFold(e, c.Email) {
					return true
				}
			}
		}
	}
	if matched {
		return false
	}
	_, ok := scraped[c.Email]
	return ok
}

func matchSource(website string, results []enrich.Result) *enrich.Result {
	key := siteKey(website)
	for i := range results {
		if len(results[i].Emails) > 0 && siteKey(results[i].URL) == key {
			return &results[i]
		}
	}
	for i := range results {
		if len(results[i].Emails) > 0 && strings.Contains(results[i].URL, website) {
			return &results[i]
		}
	}
	return nil
}
