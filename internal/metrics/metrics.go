// Package metrics exposes capture-loop health as Prometheus gauges and
// counters, scraped from their own listener (see Serve) kept separate from
// the event/search HTTP surface.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups every counter/gauge the capture loop updates.
type Metrics struct {
	FramesCaptured    *prometheus.CounterVec
	FramesSignificant *prometheus.CounterVec
	OCRFailures       prometheus.Counter
	BackoffDelayMs    *prometheus.GaugeVec
	CaptureErrors     *prometheus.CounterVec
}

// New registers every metric against reg (use prometheus.NewRegistry for
// tests to avoid colliding with the default registry across packages).
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		FramesCaptured: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "memri_frames_captured_total",
			Help: "Total frames grabbed from the platform source, by monitor.",
		}, []string{"monitor_id"}),
		FramesSignificant: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "memri_frames_significant_total",
			Help: "Total frames classified as significant (first frame or changed), by monitor.",
		}, []string{"monitor_id"}),
		OCRFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "memri_ocr_failures_total",
			Help: "Total OCR engine recognition failures across all windows.",
		}),
		BackoffDelayMs: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "memri_backoff_delay_ms",
			Help: "Current inter-tick delay for each monitor's capture loop.",
		}, []string{"monitor_id"}),
		CaptureErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "memri_capture_errors_total",
			Help: "Total capture_frame and persist_batch errors, by monitor.",
		}, []string{"monitor_id"}),
	}
}

// Serve runs a Prometheus scrape endpoint on addr, gathering from reg, until
// ctx is cancelled. It's a dedicated listener (the config field that
// selects addr is MetricsAddr) so a scraper never shares a port with the
// event/search surface.
func Serve(ctx context.Context, addr string, reg *prometheus.Registry) error {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		return srv.Close()
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	}
}
