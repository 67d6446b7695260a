package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var (
	PageFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadscout_page_fetches_total",
			Help: "Total number of company pages fetched",
		},
		[]string{"domain", "status", "detected", "detection_src"},
	)

	PageFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "leadscout_page_fetch_duration_seconds",
			Help:    "Duration of page fetches in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 4, 8, 16},
		},
		[]string{"domain"},
	)

	PageBytesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadscout_page_bytes_total",
			Help: "Total decoded bytes read across all page fetches",
		},
		[]string{"domain"},
	)

	EmailsFoundTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadscout_emails_found_total",
			Help: "Filtered contact emails found per company site",
		},
		[]string{"domain"},
	)

	SearchOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadscout_search_outcomes_total",
			Help: "Search requests by result path and fallback reason",
		},
		[]string{"path", "reason"},
	)

	GenerationFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadscout_generation_failures_total",
			Help: "Failed generation calls by provider and failure class",
		},
		[]string{"provider", "class"},
	)
)

// Fetch is the metrics view of a single page fetch.
type Fetch struct {
	StatusCode   int
	Error        string
	DetectedBot  bool
	DetectionSrc string
	Duration     time.Duration
	Bytes        int
}

// RecordFetch updates the page metrics for one fetch against domain.
func RecordFetch(domain string, f Fetch) {
	detectedStr := "false"
	if f.DetectedBot {
		detectedStr = "true"
	}

	statusStr := strconv.Itoa(f.StatusCode)
	if f.Error != "" {
		statusStr = "error"
	}

	PageFetchesTotal.WithLabelValues(domain, statusStr, detectedStr, f.DetectionSrc).Inc()
	PageFetchDuration.WithLabelValues(domain).Observe(f.Duration.Seconds())
	PageBytesTotal.WithLabelValues(domain).Add(float64(f.Bytes))
}

// RecordEmails counts the filtered emails a site scan produced.
func RecordEmails(domain string, n int) {
	EmailsFoundTotal.WithLabelValues(domain).Add(float64(n))
}

// RecordSearchOutcome counts one orchestrator run. reason is empty for a
// successful live run.
func RecordSearchOutcome(path, reason string) {
	if reason == "" {
		reason = "none"
	}
	SearchOutcomesTotal.WithLabelValues(path, reason).Inc()
}

// RecordGenerationFailure counts one failed generation call.
func RecordGenerationFailure(provider, class string) {
	GenerationFailuresTotal.WithLabelValues(provider, class).Inc()
}

// Server encapsulates an HTTP server for Prometheus metrics.
type Server struct {
	srv *http.Server
}

// Start begins listening on the specified port and exposes /metrics.
func Start(port int, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		// Suppress the error from intentional shutdown
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Int("port", port), zap.Error(err))
		}
	}()

	return &Server{srv: srv}
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) error {
	if s == nil || s.srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}
