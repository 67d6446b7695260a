package fixture

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestDefault(t *testing.T) {
	ds := Default()
	if ds.Len() != 5 {
		t.Fatalf("expected 5 fixture companies, got %d", ds.Len())
	}
	for _, c := range ds.Take(ds.Len()) {
		if c.Name == "" || c.Website == "" || c.Email == "" {
			t.Errorf("incomplete fixture company: %+v", c)
		}
	}
}

func TestTake(t *testing.T) {
	ds := Default()

	tests := []struct {
		n    int
		want int
	}{
		{n: -1, want: 0},
		{n: 0, want: 0},
		{n: 3, want: 3},
		{n: 5, want: 5},
		{n: 50, want: 5},
	}
	for _, tt := range tests {
		got := ds.Take(tt.n)
		if got == nil {
			t.Errorf("Take(%d) returned nil", tt.n)
		}
		if len(got) != tt.want {
			t.Errorf("Take(%d) returned %d companies, want %d", tt.n, len(got), tt.want)
		}
	}
}

func TestTake_Idempotent(t *testing.T) {
	ds := Default()
	first := ds.Take(3)
	first[0].Name = "mutated"

	second := ds.Take(3)
	third := ds.Take(3)
	if second[0].Name == "mutated" {
		t.Fatal("Take must return a copy")
	}
	if !reflect.DeepEqual(second, third) {
		t.Errorf("expected identical results, got %v and %v", second, third)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.yaml")
	data := []byte("- name: Acme Catering\n  website: https://acme.test\n  email: sales@acme.test\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	ds, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := ds.Take(10)
	if len(got) != 1 || got[0].Name != "Acme Catering" || got[0].Email != "sales@acme.test" {
		t.Errorf("unexpected dataset: %+v", got)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected not-exist error for missing file, got %v", err)
	}
	if _, err := Parse([]byte("[]")); err == nil {
		t.Error("expected error for empty dataset")
	}

	ds, err = Load("")
	if err != nil || ds.Len() != Default().Len() {
		t.Errorf("expected default dataset for empty path, got %d (%v)", ds.Len(), err)
	}
}
