// Package enrich attaches scraped contact emails to search results.
package enrich

import (
	"context"
	"fmt"
	"time"

	"github.com/FranksOps/leadscout/internal/serp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultMaxPages caps how many results are scraped per batch.
const DefaultMaxPages = 8

// EmailScanner finds contact emails for a site. It must not block past ctx.
type EmailScanner interface {
	Emails(ctx context.Context, rawURL string) []string
}

// Result is a search result plus the emails scraped from its site. Emails is
// never nil.
type Result struct {
	serp.Result
	Emails []string `json:"emails"`
}

// Config configures a Stage.
type Config struct {
	// MaxPages is how many leading results get scraped. Zero means
	// DefaultMaxPages.
	MaxPages int
	// SiteTimeout bounds the whole scan of one site. Zero leaves only the
	// per-page fetch timeout in force.
	SiteTimeout time.Duration
	Logger      *zap.Logger
}

// Stage scrapes result sites concurrently.
type Stage struct {
	scanner EmailScanner
	cfg     Config
	logger  *zap.Logger
}

// NewStage builds a Stage around scanner.
func NewStage(scanner EmailScanner, cfg Config) *Stage {
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = DefaultMaxPages
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Stage{scanner: scanner, cfg: cfg, logger: logger}
}

// Run returns one Result per input, in input order. Only the first MaxPages
// inputs are scanned; a scan that fails, panics or runs out of time leaves
// that entry with no emails. The batch itself never fails.
func (s *Stage) Run(ctx context.Context, results []serp.Result) []Result {
	out := make([]Result, len(results))
	for i, r := range results {
		out[i] = Result{Result: r, Emails: []string{}}
	}

	var g errgroup.Group
	for i := range results {
		if i >= s.cfg.MaxPages {
			break
		}
		g.Go(func() error {
			if emails := s.scan(ctx, results[i].URL); len(emails) > 0 {
				out[i].Emails = emails
			}
			return nil
		})
	}
	_ = g.Wait()

	return out
}

func (s *Stage) scan(ctx context.Context, rawURL string) (emails []string) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn("email scan panicked", zap.String("url", rawURL), zap.String("panic", fmt.Sprint(r)))
			emails = nil
		}
	}()

	if s.cfg.SiteTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.SiteTimeout)
		defer cancel()
	}

	emails = s.scanner.Emails(ctx, rawURL)
	if ctx.Err() != nil {
		s.logger.Debug("email scan ran out of time", zap.String("url", rawURL), zap.Error(ctx.Err()))
	}
	return emails
}
