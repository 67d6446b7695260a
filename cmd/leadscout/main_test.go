package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/FranksOps/leadscout/internal/lead"
	"github.com/FranksOps/leadscout/internal/report"
	"github.com/FranksOps/leadscout/internal/storage"
)

// offline points configuration at an empty directory and disables every
// remote service.
func offline(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("LEADSCOUT_SEARCH_PROVIDER", "none")
	t.Setenv("LEADSCOUT_LLM_PROVIDER", "none")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func TestSearch_FixtureJSON(t *testing.T) {
	offline(t)

	out, err := run(t, "search", "--max", "3", "--format", "json", "кейтеринг", "Томск")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}

	var summary report.Summary
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("expected JSON report, got %q: %v", out, err)
	}
	if summary.Category != "кейтеринг Томск" {
		t.Errorf("expected joined category, got %q", summary.Category)
	}
	if summary.Path != "fixture" {
		t.Errorf("expected fixture path, got %s", summary.Path)
	}
	if summary.Total != 3 || len(summary.Companies) != 3 {
		t.Errorf("expected 3 companies, got %d", summary.Total)
	}
}

func TestSearch_UnknownFormat(t *testing.T) {
	offline(t)
	if _, err := run(t, "search", "--format", "xml", "кейтеринг"); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestSearch_InvalidConfig(t *testing.T) {
	offline(t)
	t.Setenv("LEADSCOUT_SCRAPER_FINGERPRINT", "netscape")
	_, err := run(t, "search", "кейтеринг")
	if err == nil || !strings.Contains(err.Error(), "scraper.fingerprint") {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestLeadsLifecycle(t *testing.T) {
	offline(t)
	dsn := filepath.Join(t.TempDir(), "leads.jsonl")
	store := []string{"--store-kind", "json", "--dsn", dsn}

	out, err := run(t, append([]string{"search", "--max", "2", "--store"}, append(store, "кейтеринг")...)...)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if !strings.Contains(out, "Imported:      2 new") {
		t.Errorf("expected import count in report, got:\n%s", out)
	}

	// A second run finds the same companies and adds nothing.
	out, err = run(t, append([]string{"search", "--max", "2", "--store"}, append(store, "кейтеринг")...)...)
	if err != nil {
		t.Fatalf("second search failed: %v", err)
	}
	if strings.Contains(out, "Imported:") {
		t.Errorf("expected no new leads on the second run, got:\n%s", out)
	}

	b, err := storage.Open(context.Background(), "json", dsn)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	leads, err := b.Query(context.Background(), storage.Filter{})
	_ = b.Close()
	if err != nil || len(leads) != 2 {
		t.Fatalf("expected 2 stored leads, got %d (%v)", len(leads), err)
	}
	id := leads[0].ID

	out, err = run(t, append([]string{"leads", "status"}, append(store, id, "email_sent")...)...)
	if err != nil {
		t.Fatalf("status update failed: %v", err)
	}
	if !strings.Contains(out, id) {
		t.Errorf("expected confirmation for %s, got %q", id, out)
	}

	out, err = run(t, append([]string{"leads", "list", "--status", "email_sent"}, store...)...)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out, id) || strings.Contains(out, leads[1].ID) {
		t.Errorf("expected only %s in the filtered list, got:\n%s", id, out)
	}

	if _, err := run(t, append([]string{"leads", "status"}, append(store, id, "archived")...)...); err == nil {
		t.Error("expected error for unknown status")
	}

	out, err = run(t, append([]string{"draft"}, append(store, id)...)...)
	if err != nil {
		t.Fatalf("draft failed: %v", err)
	}
	if !strings.Contains(out, "Добрый день, компания "+leads[0].Company.Name) {
		t.Errorf("expected template draft for %s, got:\n%s", leads[0].Company.Name, out)
	}

	if _, err := run(t, append([]string{"draft"}, append(store, "missing")...)...); err == nil {
		t.Error("expected error for unknown lead")
	}
}

func TestStatusNames(t *testing.T) {
	names := statusNames()
	if len(names) != len(lead.Statuses) || names[0] != "new" {
		t.Errorf("unexpected status names: %v", names)
	}
}
