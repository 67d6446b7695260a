// Package pipeline orchestrates company discovery: search, email enrichment
// and structuring, with the fixture dataset as the answer of last resort.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/FranksOps/leadscout/internal/enrich"
	"github.com/FranksOps/leadscout/internal/fixture"
	"github.com/FranksOps/leadscout/internal/lead"
	"github.com/FranksOps/leadscout/internal/metrics"
	"github.com/FranksOps/leadscout/internal/redact"
	"github.com/FranksOps/leadscout/internal/serp"
	"github.com/FranksOps/leadscout/internal/structure"
	"go.uber.org/zap"
)

// DefaultQuerySuffix steers the search provider towards official company
// sites with contact details.
const DefaultQuerySuffix = "компания контакты сайт официальный"

// Path tells which strategy produced an Outcome.
type Path string

const (
	PathLive    Path = "live"
	PathFixture Path = "fixture"
)

var (
	ErrNotConfigured = errors.New("pipeline: search provider not configured")
	ErrSearch        = errors.New("pipeline: search failed")
	ErrNoResults     = errors.New("pipeline: search returned no results")
	ErrStructure     = errors.New("pipeline: structuring failed")
	ErrNoRecords     = errors.New("pipeline: structuring produced no records")
	ErrPanic         = errors.New("pipeline: recovered from panic")
)

// Outcome is the result of one search. Reason explains a fixture answer and
// is nil for a live one.
type Outcome struct {
	Companies []lead.Company
	Path      Path
	Reason    error
}

// Searcher finds companies for a category. It never fails: every failure
// turns into a fixture Outcome.
type Searcher interface {
	Search(ctx context.Context, category string, max int) Outcome
}

// Config wires the collaborators of the live strategy.
type Config struct {
	// Provider is the web search backend. Nil selects the fixture strategy.
	Provider serp.Provider
	// Scanner scrapes contact emails for each search result. Nil skips
	// scraping.
	Scanner enrich.EmailScanner
	// Structurer normalizes enriched results. Nil means deterministic.
	Structurer structure.Structurer
	// Fixture overrides the embedded fixture dataset.
	Fixture *fixture.Dataset
	// QuerySuffix is appended to the category. Empty means DefaultQuerySuffix.
	QuerySuffix string
	Enrich      enrich.Config
	Logger      *zap.Logger
}

// New selects the strategy once: fixture when no search provider is
// configured, live otherwise.
func New(cfg Config) Searcher {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ds := fixture.Default()
	if cfg.Fixture != nil {
		ds = *cfg.Fixture
	}
	fallback := fixtureSearcher{dataset: ds, logger: logger}

	if cfg.Provider == nil {
		return fallback
	}
	scanner := cfg.Scanner
	if scanner == nil {
		scanner = noScanner{}
	}

	structurer := cfg.Structurer
	if structurer == nil {
		structurer = structure.Deterministic{}
	}
	suffix := cfg.QuerySuffix
	if suffix == "" {
		suffix = DefaultQuerySuffix
	}
	if cfg.Enrich.Logger == nil {
		cfg.Enrich.Logger = logger
	}

	return &liveSearcher{
		provider:   cfg.Provider,
		stage:      enrich.NewStage(scanner, cfg.Enrich),
		structurer: structurer,
		suffix:     suffix,
		fallback:   fallback,
		logger:     logger,
	}
}

// SearchCompanies is the plain caller contract: a category and a maximum in,
// at most max company records out.
func SearchCompanies(ctx context.Context, s Searcher, category string, max int) []lead.Company {
	companies := s.Search(ctx, category, max).Companies
	if companies == nil {
		return []lead.Company{}
	}
	return companies
}

type noScanner struct{}

func (noScanner) Emails(context.Context, string) []string { return nil }

type fixtureSearcher struct {
	dataset fixture.Dataset
	logger  *zap.Logger
}

func (f fixtureSearcher) Search(_ context.Context, category string, max int) Outcome {
	f.logger.Info("search provider not configured, serving fixture data",
		zap.String("category", category),
		zap.Int("max", max),
	)
	return f.answer(ErrNotConfigured, max)
}

func (f fixtureSearcher) answer(reason error, max int) Outcome {
	metrics.RecordSearchOutcome(string(PathFixture), reasonLabel(reason))
	return Outcome{
		Companies: f.dataset.Take(max),
		Path:      PathFixture,
		Reason:    reason,
	}
}

type liveSearcher struct {
	provider   serp.Provider
	stage      *enrich.Stage
	structurer structure.Structurer
	suffix     string
	fallback   fixtureSearcher
	logger     *zap.Logger
}

func (l *liveSearcher) Search(ctx context.Context, category string, max int) (out Outcome) {
	log := l.logger.With(zap.String("category", category), zap.Int("max", max))
	defer func() {
		if r := recover(); r != nil {
			out = l.fallBack(log, fmt.Errorf("%w: %v", ErrPanic, r), max)
		}
	}()

	if max <= 0 {
		return Outcome{Companies: []lead.Company{}, Path: PathLive}
	}

	query := strings.TrimSpace(category + " " + l.suffix)
	results, err := l.provider.Search(ctx, query, max)
	if err != nil {
		return l.fallBack(log, fmt.Errorf("%w: %w", ErrSearch, err), max)
	}
	if len(results) == 0 {
		return l.fallBack(log, ErrNoResults, max)
	}
	log.Info("search returned results", zap.Int("results", len(results)))

	enriched := l.stage.Run(ctx, results)

	structured := l.structurer.Structure(ctx, enriched, category, max)
	if structured.Absorbed() {
		return l.fallBack(log, fmt.Errorf("%w: %w", ErrStructure, structured.Reason), max)
	}
	companies := structured.Value
	if len(companies) == 0 {
		return l.fallBack(log, ErrNoRecords, max)
	}
	if len(companies) > max {
		companies = companies[:max]
	}

	metrics.RecordSearchOutcome(string(PathLive), "")
	log.Info("live search finished", zap.Int("companies", len(companies)))
	return Outcome{Companies: companies, Path: PathLive}
}

func (l *liveSearcher) fallBack(log *zap.Logger, reason error, max int) Outcome {
	log.Warn("live search unavailable, serving fixture data",
		zap.String("reason", redact.Secrets(reason.Error())),
	)
	return l.fallback.answer(reason, max)
}

// reasonLabel maps a fallback reason to a low-cardinality metrics label.
func reasonLabel(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotConfigured):
		return "not_configured"
	case errors.Is(err, ErrSearch):
		return "search_error"
	case errors.Is(err, ErrNoResults):
		return "no_results"
	case errors.Is(err, ErrStructure):
		return "structure_error"
	case errors.Is(err, ErrNoRecords):
		return "no_records"
	case errors.Is(err, ErrPanic):
		return "panic"
	default:
		return "unknown"
	}
}
