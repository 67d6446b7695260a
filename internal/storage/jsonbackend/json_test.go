package jsonbackend

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/FranksOps/leadscout/internal/lead"
	"github.com/FranksOps/leadscout/internal/storage"
)

func TestJSONBackend(t *testing.T) {
	tmpDir := t.TempDir()
	filePath := filepath.Join(tmpDir, "leads.jsonl")

	b, err := New(filePath)
	if err != nil {
		t.Fatalf("Failed to create JSON backend: %v", err)
	}
	defer b.Close()

	ctx := context.Background()
	now := time.Now().Truncate(time.Millisecond).UTC() // JSON marshals with precision limits

	l1 := &lead.Lead{
		ID:        "json1",
		Category:  "кейтеринг",
		Company:   lead.Company{Name: "Сытый офис", Email: "info@sitiy-ofis.ru"},
		Status:    lead.StatusNew,
		CreatedAt: now.Add(-2 * time.Hour),
		UpdatedAt: now.Add(-2 * time.Hour),
	}
	l2 := &lead.Lead{
		ID:        "json2",
		Category:  "клининг",
		Company:   lead.Company{Name: "Чистый дом"},
		Status:    lead.StatusNew,
		CreatedAt: now.Add(-1 * time.Hour),
		UpdatedAt: now.Add(-1 * time.Hour),
	}

	if err := b.Save(ctx, l1); err != nil {
		t.Fatalf("Failed to save lead 1: %v", err)
	}
	if err := b.Save(ctx, l2); err != nil {
		t.Fatalf("Failed to save lead 2: %v", err)
	}

	// Test Category Filter
	resultsCat, err := b.Query(ctx, storage.Filter{Category: "клининг"})
	if err != nil {
		t.Fatalf("Failed to query by category: %v", err)
	}
	if len(resultsCat) != 1 || resultsCat[0].ID != "json2" {
		t.Fatalf("Expected json2 for category filter, got %v", resultsCat)
	}

	// Test Since Filter
	past := now.Add(-90 * time.Minute)
	resultsSince, err := b.Query(ctx, storage.Filter{Since: &past})
	if err != nil {
		t.Fatalf("Failed to query by Since: %v", err)
	}
	if len(resultsSince) != 1 || resultsSince[0].ID != "json2" {
		t.Errorf("Expected json2 for Since filter, got %v", resultsSince)
	}

	// Status update appends a newer version
	if err := b.UpdateStatus(ctx, "json1", lead.StatusReplied); err != nil {
		t.Fatalf("Failed to update status: %v", err)
	}

	resultsAll, err := b.Query(ctx, storage.Filter{})
	if err != nil {
		t.Fatalf("Failed to query all: %v", err)
	}
	if len(resultsAll) != 2 {
		t.Fatalf("Expected 2 results after update, got %d", len(resultsAll))
	}
	// Order should be descending (newest first)
	if resultsAll[0].ID != "json2" {
		t.Errorf("Expected json2 first, got %s", resultsAll[0].ID)
	}
	if resultsAll[1].Status != lead.StatusReplied {
		t.Errorf("Expected latest status replied, got %s", resultsAll[1].Status)
	}
	if !resultsAll[1].CreatedAt.Equal(l1.CreatedAt) {
		t.Errorf("Expected CreatedAt to survive the update")
	}

	stale, err := b.Query(ctx, storage.Filter{Status: lead.StatusNew})
	if err != nil {
		t.Fatalf("Failed to query by status: %v", err)
	}
	if len(stale) != 1 || stale[0].ID != "json2" {
		t.Errorf("Expected superseded version to be hidden, got %v", stale)
	}

	// Test offset
	resultsOffset, err := b.Query(ctx, storage.Filter{Offset: 1})
	if err != nil {
		t.Fatalf("Failed to query offset: %v", err)
	}
	if len(resultsOffset) != 1 || resultsOffset[0].ID != "json1" {
		t.Errorf("Expected json1 for offset 1, got %v", resultsOffset)
	}

	if err := b.UpdateStatus(ctx, "missing", lead.StatusClosed); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestJSONBackend_Reopen(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "leads.jsonl")
	ctx := context.Background()

	b, err := New(filePath)
	if err != nil {
		t.Fatalf("Failed to create JSON backend: %v", err)
	}
	if _, err := storage.Import(ctx, b, "кейтеринг", []lead.Company{{Name: "Сытый офис"}}); err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	_ = b.Close()

	b, err = New(filePath)
	if err != nil {
		t.Fatalf("Failed to reopen JSON backend: %v", err)
	}
	defer b.Close()

	n, err := storage.Import(ctx, b, "кейтеринг", []lead.Company{{Name: "Сытый офис"}})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if n != 0 {
		t.Errorf("Expected persisted lead to dedupe, added %d", n)
	}
}
