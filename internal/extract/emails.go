// Package extract pulls contact email addresses out of scraped page text.
package extract

import (
	"regexp"
	"strings"
)

// MaxLength is the longest address kept. Longer matches are almost always
// tracking tokens or minified asset names.
const MaxLength = 80

var emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

// junkDomains never belong to the site owner: analytics, CDN and placeholder
// providers, plus the asset suffixes that retina image names (logo@2x.png)
// produce when matched as an address.
var junkDomains = map[string]struct{}{
	"example.com":    {},
	"domain.com":     {},
	"test.com":       {},
	"email.com":      {},
	"mail.com":       {},
	"sentry.io":      {},
	"wixpress.com":   {},
	"cloudflare.com": {},
	"google.com":     {},
	"yandex-team.ru": {},
	"2x.png":         {},
	"png":            {},
	"jpg":            {},
	"jpeg":           {},
	"gif":            {},
}

var assetExtensions = map[string]struct{}{
	"png":  {},
	"jpg":  {},
	"jpeg": {},
	"gif":  {},
	"svg":  {},
	"webp": {},
	"js":   {},
	"css":  {},
}

var junkSubstrings = []string{"noreply", "no-reply", "example"}

// Emails finds every address-shaped token in text and returns the ones that
// pass Filter, in first-seen order.
func Emails(text string) []string {
	if text == "" {
		return nil
	}
	return Filter(emailRe.FindAllString(text, -1))
}

// Filter normalizes raw candidates (lower case, surrounding punctuation
// trimmed), drops junk and returns the survivors deduplicated in input order.
func Filter(raw []string) []string {
	var out []string
	seen := make(map[string]struct{}, len(raw))
	for _, candidate := range raw {
		email := strings.Trim(strings.ToLower(candidate), ".,;:\"' \t\r\n")
		if _, dup := seen[email]; dup {
			continue
		}
		if !keep(email) {
			continue
		}
		seen[email] = struct{}{}
		out = append(out, email)
	}
	return out
}

func keep(email string) bool {
	if email == "" || len(email) > MaxLength {
		return false
	}
	at := strings.LastIndexByte(email, '@')
	if at <= 0 || at == len(email)-1 {
		return false
	}
	domain := email[at+1:]
	if _, junk := junkDomains[domain]; junk {
		return false
	}
	if dot := strings.LastIndexByte(domain, '.'); dot >= 0 {
		if _, asset := assetExtensions[domain[dot+1:]]; asset {
			return false
		}
	}
	for _, s := range junkSubstrings {
		if strings.Contains(email, s) {
			return false
		}
	}
	return true
}

// Domain returns the part of an address after the last '@', or "".
func Domain(email string) string {
	at := strings.LastIndexByte(email, '@')
	if at < 0 {
		return ""
	}
	return email[at+1:]
}
