package csvbackend

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/FranksOps/leadscout/internal/lead"
	"github.com/FranksOps/leadscout/internal/storage"
)

func TestCSVBackend(t *testing.T) {
	tmpDir := t.TempDir()
	filePath := filepath.Join(tmpDir, "leads.csv")

	b, err := New(filePath)
	if err != nil {
		t.Fatalf("Failed to create CSV backend: %v", err)
	}
	defer b.Close()

	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond) // Format truncates precision

	l1 := &lead.Lead{
		ID:       "csv1",
		Category: "кейтеринг",
		Company: lead.Company{
			Name:        "Сытый офис",
			Website:     "https://sitiy-ofis.ru",
			Email:       "info@sitiy-ofis.ru",
			Description: "Обеды, фуршеты, \"кофе-брейки\"",
		},
		Status:    lead.StatusNew,
		CreatedAt: now.Add(-2 * time.Hour),
		UpdatedAt: now.Add(-2 * time.Hour),
	}
	l2 := &lead.Lead{
		ID:        "csv2",
		Category:  "кейтеринг",
		Company:   lead.Company{Name: "Вкус праздника", Address: "Томск, ул. Ленина, 1"},
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

	// Test Name Filter
	resultsName, err := b.Query(ctx, storage.Filter{Name: "Сытый офис"})
	if err != nil {
		t.Fatalf("Failed to query by name: %v", err)
	}
	if len(resultsName) != 1 {
		t.Fatalf("Expected 1 result for name filter, got %d", len(resultsName))
	}
	if resultsName[0].Company != l1.Company {
		t.Errorf("Expected company %+v, got %+v", l1.Company, resultsName[0].Company)
	}

	// Test no filters, ordering
	resultsAll, err := b.Query(ctx, storage.Filter{})
	if err != nil {
		t.Fatalf("Failed to query all: %v", err)
	}
	if len(resultsAll) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(resultsAll))
	}
	// Order should be descending (newest first)
	if resultsAll[0].ID != "csv2" {
		t.Errorf("Expected csv2 first, got %s", resultsAll[0].ID)
	}
	if !resultsAll[0].CreatedAt.Equal(l2.CreatedAt) {
		t.Errorf("Expected CreatedAt %v, got %v", l2.CreatedAt, resultsAll[0].CreatedAt)
	}

	// Test limit
	resultsLimit, err := b.Query(ctx, storage.Filter{Limit: 1})
	if err != nil {
		t.Fatalf("Failed to query limit: %v", err)
	}
	if len(resultsLimit) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(resultsLimit))
	}

	if err := b.UpdateStatus(ctx, "csv1", lead.StatusReplied); !errors.Is(err, storage.ErrUnsupported) {
		t.Errorf("Expected ErrUnsupported, got %v", err)
	}
}

func TestCSVBackend_EmptyFile(t *testing.T) {
	b, err := New(filepath.Join(t.TempDir(), "leads.csv"))
	if err != nil {
		t.Fatalf("Failed to create CSV backend: %v", err)
	}
	defer b.Close()

	results, err := b.Query(context.Background(), storage.Filter{})
	if err != nil {
		t.Fatalf("Failed to query: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Expected no results, got %d", len(results))
	}
}
