package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/FranksOps/leadscout/internal/fingerprint"
	"github.com/FranksOps/leadscout/pkg/proxy"
)

func TestFetcher_Success(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != DefaultUserAgent {
			t.Errorf("expected default User-Agent header, got %q", r.Header.Get("User-Agent"))
		}
		if r.Header.Get("Accept-Language") != DefaultAcceptLanguage {
			t.Errorf("expected default Accept-Language header, got %q", r.Header.Get("Accept-Language"))
		}
		w.Header().Set("X-Test", "true")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))
	defer ts.Close()

	fetcher, err := NewFetcher(FetchConfig{
		Timeout:     5 * time.Second,
		Fingerprint: fingerprint.ProfileGo,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res := fetcher.Fetch(context.Background(), ts.URL)
	if res.Error != "" {
		t.Fatalf("expected no fetch error, got %s", res.Error)
	}

	if res.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", res.StatusCode)
	}

	if string(res.Body) != "ok" {
		t.Errorf("expected body 'ok', got %s", string(res.Body))
	}

	if len(res.Headers["X-Test"]) == 0 || res.Headers["X-Test"][0] != "true" {
		t.Errorf("expected X-Test header 'true', got %v", res.Headers["X-Test"])
	}

	if res.Duration == 0 {
		t.Errorf("expected non-zero duration")
	}

	if !res.OK() {
		t.Errorf("expected page to be OK")
	}
}

func TestFetcher_Timeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	fetcher, _ := NewFetcher(FetchConfig{
		Timeout:     20 * time.Millisecond,
		Fingerprint: fingerprint.ProfileGo,
	})

	res := fetcher.Fetch(context.Background(), ts.URL)
	if res.Error == "" || !strings.Contains(res.Error, "request failed") {
		t.Errorf("expected timeout error, got %v", res.Error)
	}
	if res.OK() {
		t.Errorf("expected timed out page not to be OK")
	}
}

func TestFetcher_SelfSignedTLS(t *testing.T) {
	ts := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("secure"))
	}))
	defer ts.Close()

	for _, p := range []fingerprint.Profile{fingerprint.ProfileGo, fingerprint.ProfileChrome} {
		fetcher, err := NewFetcher(FetchConfig{Timeout: 5 * time.Second, Fingerprint: p})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		res := fetcher.Fetch(context.Background(), ts.URL)
		if !res.OK() || string(res.Body) != "secure" {
			t.Errorf("profile %s: expected self-signed page to load, got status %d err %q", p, res.StatusCode, res.Error)
		}
	}

	strict, _ := NewFetcher(FetchConfig{Timeout: 5 * time.Second, VerifyTLS: true})
	if res := strict.Fetch(context.Background(), ts.URL); res.Error == "" {
		t.Errorf("expected verification failure with VerifyTLS")
	}
}

func TestFetcher_DecodesCharset(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=windows-1251")
		_, _ = w.Write([]byte("<h1>\xca\xee\xed\xf2\xe0\xea\xf2\xfb</h1>"))
	}))
	defer ts.Close()

	fetcher, _ := NewFetcher(FetchConfig{Timeout: 5 * time.Second})
	res := fetcher.Fetch(context.Background(), ts.URL)
	if got := string(res.Body); got != "<h1>Контакты</h1>" {
		t.Errorf("expected decoded body, got %q", got)
	}
}

func TestFetcher_BodyCap(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(strings.Repeat("a", 4096)))
	}))
	defer ts.Close()

	fetcher, _ := NewFetcher(FetchConfig{Timeout: 5 * time.Second, MaxBodyBytes: 1024})
	res := fetcher.Fetch(context.Background(), ts.URL)
	if len(res.Body) != 1024 {
		t.Errorf("expected body capped at 1024 bytes, got %d", len(res.Body))
	}
}

func TestFetcher_DetectsChallenge(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Server", "cloudflare")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("<div class=\"cf-turnstile\"></div> admin@cdn-provider.net"))
	}))
	defer ts.Close()

	fetcher, _ := NewFetcher(FetchConfig{Timeout: 5 * time.Second})
	res := fetcher.Fetch(context.Background(), ts.URL)
	if !res.DetectedBot || res.DetectionSrc != "Cloudflare" {
		t.Errorf("expected Cloudflare detection, got %v %q", res.DetectedBot, res.DetectionSrc)
	}
	if res.OK() {
		t.Errorf("expected challenge page not to be OK")
	}
}

func TestFetcher_InvalidURL(t *testing.T) {
	fetcher, _ := NewFetcher(FetchConfig{})
	res := fetcher.Fetch(context.Background(), "://nope")
	if res.Error == "" {
		t.Errorf("expected error for malformed URL")
	}
}

func TestNewFetcher_UnknownProfile(t *testing.T) {
	if _, err := NewFetcher(FetchConfig{Fingerprint: "netscape"}); err == nil {
		t.Fatal("expected error for unknown fingerprint profile")
	}
}

func TestFetcher_ThroughProxy(t *testing.T) {
	var target string
	proxySrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		target = r.URL.String()
		_, _ = w.Write([]byte("via proxy"))
	}))
	defer proxySrv.Close()

	pool := proxy.NewPool(proxy.Config{MaxFailures: 1, Cooldown: time.Hour})
	if err := pool.Add(proxySrv.URL); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fetcher, err := NewFetcher(FetchConfig{Timeout: 5 * time.Second, Proxies: pool})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	res := fetcher.Fetch(context.Background(), "http://catering.test/contacts")
	if string(res.Body) != "via proxy" {
		t.Fatalf("expected response from proxy, got %q (err %q)", res.Body, res.Error)
	}
	if target != "http://catering.test/contacts" {
		t.Errorf("expected absolute target URL at the proxy, got %q", target)
	}
}

func TestFetcher_DeadProxyBenched(t *testing.T) {
	dead := httptest.NewServer(http.NotFoundHandler())
	deadURL := dead.URL
	dead.Close()

	pool := proxy.NewPool(proxy.Config{MaxFailures: 1, Cooldown: time.Hour})
	_ = pool.Add(deadURL)

	fetcher, _ := NewFetcher(FetchConfig{Timeout: 2 * time.Second, Proxies: pool})
	res := fetcher.Fetch(context.Background(), "http://catering.test/")
	if res.Error == "" {
		t.Fatal("expected error through a dead proxy")
	}
	if u := pool.Next(); u != nil {
		t.Errorf("expected dead proxy to be benched, got %v", u)
	}
}
