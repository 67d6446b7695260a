package lead

import "testing"

func TestParseStatus(t *testing.T) {
	for _, st := range Statuses {
		got, err := ParseStatus(string(st))
		if err != nil {
			t.Errorf("unexpected error for %s: %v", st, err)
		}
		if got != st {
			t.Errorf("expected %s, got %s", st, got)
		}
	}

	if _, err := ParseStatus("archived"); err == nil {
		t.Error("expected error for unknown status")
	}
}
