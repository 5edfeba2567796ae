// Package metrics exposes Prometheus collectors for the research service.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	searchesTotal            *prometheus.CounterVec
	searchDurationSeconds    prometheus.Histogram
	searchesInFlight         prometheus.Gauge
	progressEventsTotal      prometheus.Counter
	notificationsDedupeTotal prometheus.Counter
	httpRequestsTotal        *prometheus.CounterVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		searchesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "research_searches_total",
				Help: "Total number of research submissions, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		searchDurationSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "research_search_duration_seconds",
				Help:    "Histogram of end-to-end research submission latencies.",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 15, 20, 25, 30, 45},
			},
		)

		searchesInFlight = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "research_searches_in_flight",
				Help: "Number of submissions currently pending against the backend.",
			},
		)

		progressEventsTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "research_progress_events_total",
				Help: "Total simulated progress snapshots published.",
			},
		)

		notificationsDedupeTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "research_notifications_deduped_total",
				Help: "Total notifications suppressed by the dedup window.",
			},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveSearch records one finished submission.
func ObserveSearch(outcome string, duration time.Duration) {
	searchesTotal.WithLabelValues(outcome).Inc()
	searchDurationSeconds.Observe(duration.Seconds())
}

// IncInFlight increments the pending submissions gauge.
func IncInFlight() {
	searchesInFlight.Inc()
}

// DecInFlight decrements the pending submissions gauge.
func DecInFlight() {
	searchesInFlight.Dec()
}

// ObserveProgressEvent counts one published progress snapshot.
func ObserveProgressEvent() {
	progressEventsTotal.Inc()
}

// ObserveNotificationDeduped counts one suppressed notification.
func ObserveNotificationDeduped() {
	notificationsDedupeTotal.Inc()
}

// ObserveHTTPRequest increments the HTTP request counter.
func ObserveHTTPRequest(method, code string) {
	httpRequestsTotal.WithLabelValues(method, code).Inc()
}
