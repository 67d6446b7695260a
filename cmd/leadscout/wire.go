package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/FranksOps/leadscout/internal/config"
	"github.com/FranksOps/leadscout/internal/enrich"
	"github.com/FranksOps/leadscout/internal/fingerprint"
	"github.com/FranksOps/leadscout/internal/fixture"
	"github.com/FranksOps/leadscout/internal/llm"
	"github.com/FranksOps/leadscout/internal/outreach"
	"github.com/FranksOps/leadscout/internal/pipeline"
	"github.com/FranksOps/leadscout/internal/scraper"
	"github.com/FranksOps/leadscout/internal/serp"
	"github.com/FranksOps/leadscout/internal/storage"
	_ "github.com/FranksOps/leadscout/internal/storage/backends"
	"github.com/FranksOps/leadscout/internal/structure"
	"github.com/FranksOps/leadscout/pkg/proxy"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

// buildSearcher assembles the discovery pipeline. Without a search API key
// the fixture strategy is selected.
func buildSearcher(ctx context.Context, cfg *config.Config, logger *zap.Logger) (pipeline.Searcher, error) {
	pc := pipeline.Config{
		QuerySuffix: cfg.Search.QuerySuffix,
		Enrich: enrich.Config{
			MaxPages:    cfg.Scraper.MaxPages,
			SiteTimeout: cfg.Scraper.SiteTimeout,
		},
		Logger: logger,
	}

	if cfg.Search.FixturePath != "" {
		ds, err := fixture.Load(cfg.Search.FixturePath)
		if err != nil {
			return nil, err
		}
		pc.Fixture = &ds
	}

	provider, err := buildProvider(cfg)
	if err != nil {
		return nil, err
	}
	if provider == nil {
		logger.Info("no search provider configured, using fixture data")
		return pipeline.New(pc), nil
	}
	pc.Provider = provider

	profile, err := fingerprint.ParseProfile(cfg.Scraper.Fingerprint)
	if err != nil {
		return nil, err
	}
	var proxies *proxy.Pool
	if cfg.Scraper.ProxyFile != "" {
		proxies = proxy.NewPool(proxy.Config{})
		if err := proxies.LoadFile(cfg.Scraper.ProxyFile); err != nil {
			return nil, err
		}
		logger.Info("fetching through proxies", zap.Int("count", proxies.Len()))
	}
	fetcher, err := scraper.NewFetcher(scraper.FetchConfig{
		Timeout:      cfg.Scraper.Timeout,
		Fingerprint:  profile,
		VerifyTLS:    cfg.Scraper.VerifyTLS,
		MaxBodyBytes: cfg.Scraper.MaxBodyBytes,
		Proxies:      proxies,
		Logger:       logger,
	})
	if err != nil {
		return nil, err
	}
	var paths []string
	if len(cfg.Scraper.ContactPaths) > 0 {
		paths = cfg.Scraper.ContactPaths
	}
	pc.Scanner = scraper.NewContactScanner(fetcher, paths, logger)

	gen, err := buildGenerator(ctx, cfg, cfg.LLM.Temperature)
	if err != nil {
		return nil, err
	}
	if gen == nil {
		logger.Info("no model configured, structuring results deterministically")
	}
	pc.Structurer = structure.New(gen, logger)

	return pipeline.New(pc), nil
}

// buildProvider returns a nil interface when search is disabled or has no key.
func buildProvider(cfg *config.Config) (serp.Provider, error) {
	if strings.EqualFold(cfg.Search.Provider, "none") || strings.TrimSpace(cfg.Search.TavilyAPIKey) == "" {
		return nil, nil
	}
	t, err := serp.NewTavily(serp.TavilyConfig{
		APIKey:      cfg.Search.TavilyAPIKey,
		BaseURL:     cfg.Search.BaseURL,
		SearchDepth: cfg.Search.Depth,
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

func buildGenerator(ctx context.Context, cfg *config.Config, temperature float64) (llm.Generator, error) {
	return llm.New(ctx, llm.Config{
		Provider:    cfg.LLM.Provider,
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		BaseURL:     cfg.LLM.BaseURL,
		Temperature: temperature,
		Timeout:     cfg.LLM.Timeout,
	})
}

func buildDrafter(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*outreach.Drafter, error) {
	gen, err := buildGenerator(ctx, cfg, cfg.Outreach.Temperature)
	if err != nil {
		return nil, err
	}
	return outreach.New(outreach.Config{
		Sender:    cfg.Outreach.Sender,
		Generator: gen,
		Samples:   cfg.Outreach.Samples,
		Logger:    logger,
	}), nil
}

// storeFlags overrides the configured storage backend for one command.
type storeFlags struct {
	kind string
	dsn  string
}

func (s *storeFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&s.kind, "store-kind", "", "storage backend: "+strings.Join(storage.Kinds(), ", "))
	fs.StringVar(&s.dsn, "dsn", "", "storage DSN or file path")
}

func (s *storeFlags) apply(cfg *config.Config) {
	if s.kind != "" {
		cfg.Storage.Kind = s.kind
	}
	if s.dsn != "" {
		cfg.Storage.DSN = s.dsn
	}
}

func openStore(ctx context.Context, cfg *config.Config) (storage.Backend, error) {
	b, err := storage.Open(ctx, cfg.Storage.Kind, cfg.Storage.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s store %q: %w", cfg.Storage.Kind, cfg.Storage.DSN, err)
	}
	return b, nil
}
