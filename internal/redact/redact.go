// Package redact scrubs credentials out of strings before they are logged.
package redact

import (
	"regexp"
	"strings"
)

var (
	// Matches "Bearer <token>" (JWTs and opaque tokens).
	bearerTokenRe = regexp.MustCompile(`(?i)\bBearer\s+[^\s"']+`)

	// Common key=value and JSON formats that leak in upstream error strings.
	apiKeyKVRe = regexp.MustCompile(`(?i)"?\b(api[_-]?key|key|token|password)\b"?\s*[:=]\s*"?[^\s"',}&]+"?`)

	// Well known provider key shapes: OpenAI sk-..., Tavily tvly-..., Google AIza...
	providerKeyRe = regexp.MustCompile(`\b(sk-[A-Za-z0-9_\-]{8,}|tvly-[A-Za-z0-9_\-]{8,}|AIza[0-9A-Za-z_\-]{20,})`)
)

// Secrets removes obvious secret-bearing substrings from error/log strings.
// It is safe to call on any message, including upstream error bodies.
func Secrets(s string) string {
	if s == "" {
		return ""
	}
	out := s
	out = bearerTokenRe.ReplaceAllString(out, "Bearer <redacted>")
	out = apiKeyKVRe.ReplaceAllString(out, "<redacted_kv>")
	out = providerKeyRe.ReplaceAllString(out, "<redacted_key>")
	return strings.TrimSpace(out)
}
