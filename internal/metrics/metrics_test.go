package metrics

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsServer(t *testing.T) {
	srv := Start(8888, nil)
	// Give it a tiny bit of time to start up
	time.Sleep(100 * time.Millisecond)

	defer srv.Stop(context.Background())

	RecordFetch("catering.test", Fetch{
		StatusCode: 200,
		Bytes:      11,
		Duration:   1 * time.Second,
	})
	RecordEmails("catering.test", 2)
	RecordSearchOutcome("fixture", "no_results")

	resp, err := http.Get("http://localhost:8888/metrics")
	if err != nil {
		t.Fatalf("failed to fetch metrics: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}

	output := string(body)

	if !strings.Contains(output, "leadscout_page_fetches_total") {
		t.Errorf("expected leadscout_page_fetches_total metric")
	}

	if !strings.Contains(output, `leadscout_page_fetch_duration_seconds_bucket`) {
		t.Errorf("expected leadscout_page_fetch_duration_seconds metric")
	}

	if !strings.Contains(output, `leadscout_page_bytes_total{domain="catering.test"}`) {
		t.Errorf("expected leadscout_page_bytes_total metric for catering.test")
	}

	if !strings.Contains(output, `leadscout_search_outcomes_total{path="fixture",reason="no_results"}`) {
		t.Errorf("expected leadscout_search_outcomes_total metric for the fixture path")
	}
}

func TestRecordSearchOutcome_EmptyReason(t *testing.T) {
	before := testutil.ToFloat64(SearchOutcomesTotal.WithLabelValues("live", "none"))
	RecordSearchOutcome("live", "")
	after := testutil.ToFloat64(SearchOutcomesTotal.WithLabelValues("live", "none"))
	if after-before != 1 {
		t.Errorf("expected live/none counter to grow by 1, got %v", after-before)
	}
}

func TestRecordFetch_ErrorStatus(t *testing.T) {
	before := testutil.ToFloat64(PageFetchesTotal.WithLabelValues("down.test", "error", "false", ""))
	RecordFetch("down.test", Fetch{Error: "dial tcp: connection refused"})
	after := testutil.ToFloat64(PageFetchesTotal.WithLabelValues("down.test", "error", "false", ""))
	if after-before != 1 {
		t.Errorf("expected error fetch to be counted under status=error, got %v", after-before)
	}
}
