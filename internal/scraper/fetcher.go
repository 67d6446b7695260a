package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/FranksOps/leadscout/internal/bypass"
	"github.com/FranksOps/leadscout/internal/fingerprint"
	"github.com/FranksOps/leadscout/internal/metrics"
	"github.com/FranksOps/leadscout/pkg/httpclient"
	"github.com/FranksOps/leadscout/pkg/proxy"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
)

const (
	// DefaultUserAgent is a current desktop Chrome; many small business
	// sites serve a stripped page or nothing at all to unknown agents.
	DefaultUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36"
	DefaultAcceptLanguage = "ru-RU,ru;q=0.9"
	DefaultTimeout        = 8 * time.Second
	DefaultMaxBodyBytes   = 2 << 20
	defaultMaxRedirects   = 10
)

// FetchConfig configures the page fetcher.
type FetchConfig struct {
	Timeout        time.Duration
	MaxRedirects   int
	Fingerprint    fingerprint.Profile
	UserAgent      string
	AcceptLanguage string
	// MaxBodyBytes caps how much of a response body is read.
	MaxBodyBytes int64
	// VerifyTLS turns certificate verification back on. Off by default:
	// self-signed and expired certificates are common on company sites.
	VerifyTLS bool
	// Proxies, when non-empty, routes each fetch through the next healthy
	// proxy. Otherwise the environment proxy settings apply.
	Proxies *proxy.Pool
	Logger  *zap.Logger
}

// Page is the outcome of one GET. Failures are recorded in Error rather than
// returned.
type Page struct {
	URL          string
	StatusCode   int
	Headers      http.Header
	Body         []byte
	Duration     time.Duration
	DetectedBot  bool
	DetectionSrc string
	Error        string
}

// OK reports whether the page was served normally and is worth mining.
func (p *Page) OK() bool {
	return p != nil && p.Error == "" && p.StatusCode == http.StatusOK && !p.DetectedBot
}

// Fetcher performs single URL fetches.
type Fetcher struct {
	config FetchConfig
	client *httpclient.Client
	logger *zap.Logger
}

// NewFetcher initializes a new Fetcher with the given configuration.
// The client and transport are shared across fetches for connection reuse.
func NewFetcher(cfg FetchConfig) (*Fetcher, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRedirects == 0 {
		cfg.MaxRedirects = defaultMaxRedirects
	}
	if cfg.Fingerprint == "" {
		cfg.Fingerprint = fingerprint.ProfileGo
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.AcceptLanguage == "" {
		cfg.AcceptLanguage = DefaultAcceptLanguage
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := fingerprint.Options{InsecureSkipVerify: !cfg.VerifyTLS}
	if cfg.Proxies.Len() > 0 {
		opts.Proxy = proxy.ProxyFunc
	}
	transport, err := fingerprint.Transport(cfg.Fingerprint, opts)
	if err != nil {
		return nil, fmt.Errorf("scraper: setup transport: %w", err)
	}

	headers := http.Header{}
	headers.Set("User-Agent", cfg.UserAgent)
	headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	headers.Set("Accept-Language", cfg.AcceptLanguage)

	client, err := httpclient.New(httpclient.Config{
		Timeout:      cfg.Timeout,
		MaxRedirects: cfg.MaxRedirects,
		Headers:      headers,
		Transport:    transport,
	})
	if err != nil {
		return nil, fmt.Errorf("scraper: create client: %w", err)
	}

	return &Fetcher{
		config: cfg,
		client: client,
		logger: logger,
	}, nil
}

// Fetch executes a GET request to the target URL, tracking the duration and
// decoding the body to UTF-8.
func (f *Fetcher) Fetch(ctx context.Context, targetURL string) *Page {
	start := time.Now()
	page := &Page{URL: targetURL}
	defer func() {
		page.Duration = time.Since(start)
		f.record(page)
	}()

	ctx, cancel := context.WithTimeout(ctx, f.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		page.Error = fmt.Sprintf("failed to create request: %v", err)
		return page
	}

	if via := f.config.Proxies.Next(); via != nil {
		req = req.WithContext(proxy.WithProxy(ctx, via))
		defer func() {
			_ = f.config.Proxies.Report(via, transportErr(page))
		}()
	}

	resp, err := f.client.Do(req.Context(), req)
	if err != nil {
		page.Error = fmt.Sprintf("request failed: %v", err)
		return page
	}
	defer resp.Body.Close()

	page.StatusCode = resp.StatusCode
	page.Headers = resp.Header

	limited := io.LimitReader(resp.Body, f.config.MaxBodyBytes)
	reader, err := charset.NewReader(limited, resp.Header.Get("Content-Type"))
	if err != nil {
		reader = limited
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		page.Error = fmt.Sprintf("failed to read body: %v", err)
	}
	page.Body = body

	page.DetectedBot, page.DetectionSrc = bypass.Analyze(&bypass.Response{
		StatusCode: page.StatusCode,
		Headers:    page.Headers,
		Body:       page.Body,
	}, bypass.DefaultDetectors())

	return page
}

func (f *Fetcher) record(page *Page) {
	domain := hostOf(page.URL)
	metrics.RecordFetch(domain, metrics.Fetch{
		StatusCode:   page.StatusCode,
		Error:        page.Error,
		DetectedBot:  page.DetectedBot,
		DetectionSrc: page.DetectionSrc,
		Duration:     page.Duration,
		Bytes:        len(page.Body),
	})
	if !page.OK() {
		f.logger.Debug("page skipped",
			zap.String("url", page.URL),
			zap.Int("status", page.StatusCode),
			zap.String("detection", page.DetectionSrc),
			zap.String("error", page.Error),
			zap.Duration("duration", page.Duration),
		)
	}
}

// transportErr reports a request-level failure, which is what a proxy is
// blamed for. HTTP error statuses come from the target site.
func transportErr(page *Page) error {
	if page.StatusCode == 0 && page.Error != "" {
		return errors.New(page.Error)
	}
	return nil
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "unknown"
	}
	return u.Hostname()
}
