package scraper

import (
	"bytes"
	"context"
	"encoding/hex"
	"net/url"
	"strings"

	"github.com/FranksOps/leadscout/internal/extract"
	"github.com/FranksOps/leadscout/internal/metrics"
	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// DefaultContactPaths are tried, in order, after the page a search result
// points at.
var DefaultContactPaths = []string{"/contacts", "/contact", "/о-компании"}

// PageFetcher fetches a single page. *Fetcher implements it.
type PageFetcher interface {
	Fetch(ctx context.Context, targetURL string) *Page
}

// ContactScanner collects contact emails for a company site.
type ContactScanner struct {
	fetcher PageFetcher
	paths   []string
	logger  *zap.Logger
}

// NewContactScanner builds a scanner. Nil paths selects DefaultContactPaths.
func NewContactScanner(fetcher PageFetcher, paths []string, logger *zap.Logger) *ContactScanner {
	if paths == nil {
		paths = DefaultContactPaths
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContactScanner{fetcher: fetcher, paths: paths, logger: logger}
}

// Emails fetches rawURL and then the contact pages under its host, and
// returns the filtered, deduplicated addresses found. Emails on the landing
// page do not stop the scan; the first contact page with emails does.
// Unreachable pages contribute nothing.
func (s *ContactScanner) Emails(ctx context.Context, rawURL string) []string {
	var found []string
	for i, target := range s.candidates(rawURL) {
		if ctx.Err() != nil {
			break
		}
		page := s.fetcher.Fetch(ctx, target)
		if !page.OK() {
			continue
		}
		emails := PageEmails(page.Body)
		found = append(found, emails...)
		if len(emails) > 0 && i > 0 {
			break
		}
	}

	result := extract.Filter(found)
	metrics.RecordEmails(hostOf(rawURL), len(result))
	s.logger.Debug("contact scan finished", zap.String("url", rawURL), zap.Int("emails", len(result)))
	return result
}

func (s *ContactScanner) candidates(rawURL string) []string {
	out := []string{rawURL}
	base := siteRoot(rawURL)
	if base == "" {
		return out
	}
	start := pageKey(rawURL)
	for _, p := range s.paths {
		candidate := base + "/" + strings.TrimPrefix(p, "/")
		if pageKey(candidate) == start {
			continue
		}
		out = append(out, candidate)
	}
	return out
}

// pageKey identifies a page by host and decoded path, ignoring a trailing
// slash, the scheme and the query.
func pageKey(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return raw
	}
	return strings.ToLower(u.Host) + strings.TrimSuffix(u.Path, "/")
}

// siteRoot returns scheme://host for an http(s) URL, or "".
func siteRoot(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return ""
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

// PageEmails extracts addresses from an HTML body: address-shaped text,
// mailto: link targets and Cloudflare-obfuscated addresses.
func PageEmails(body []byte) []string {
	if len(body) == 0 {
		return nil
	}
	raw := extract.Emails(string(body))

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return raw
	}
	doc.Find(`a[href^="mailto:"], a[href^="MAILTO:"]`).Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		raw = append(raw, extract.Emails(strings.Join(mailtoAddresses(href), " "))...)
	})
	doc.Find("[data-cfemail]").Each(func(_ int, sel *goquery.Selection) {
		encoded, _ := sel.Attr("data-cfemail")
		raw = append(raw, extract.Emails(decodeCFEmail(encoded))...)
	})
	return extract.Filter(raw)
}

func mailtoAddresses(href string) []string {
	target := href[len("mailto:"):]
	if i := strings.IndexByte(target, '?'); i >= 0 {
		target = target[:i]
	}
	if unescaped, err := url.PathUnescape(target); err == nil {
		target = unescaped
	}
	var out []string
	for _, addr := range strings.Split(target, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}

// decodeCFEmail reverses Cloudflare's email obfuscation: a hex string whose
// first byte is an XOR key for the rest.
func decodeCFEmail(encoded string) string {
	data, err := hex.DecodeString(strings.TrimSpace(encoded))
	if err != nil || len(data) < 2 {
		return ""
	}
	key := data[0]
	out := make([]byte, len(data)-1)
	for i, b := range data[1:] {
		out[i] = b ^ key
	}
	return string(out)
}
