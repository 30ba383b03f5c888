package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	authResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notes_auth_results_total",
		Help: "Authentication operations by operation and outcome",
	}, []string{"operation", "outcome"})

	refreshRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notes_refresh_rejections_total",
		Help: "Refresh attempts rejected, by internal reason",
	}, []string{"reason"})

	noteQueryDurationMs = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "notes_note_query_duration_ms",
		Help:    "Latency of note list and search queries in milliseconds",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250},
	}, []string{"source"})

	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notes_response_cache_lookups_total",
		Help: "Response cache lookups by result",
	}, []string{"result"})
)

func AuthResult(operation string, success bool) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	authResults.WithLabelValues(operation, outcome).Inc()
}

func RefreshRejected(reason string) {
	refreshRejections.WithLabelValues(reason).Inc()
}

func ObserveNoteQuery(source string, start time.Time) {
	noteQueryDurationMs.WithLabelValues(source).Observe(float64(time.Since(start).Microseconds()) / 1000.0)
}

func CacheLookup(hit bool) {
	if hit {
		cacheLookups.WithLabelValues("hit").Inc()
		return
	}
	cacheLookups.WithLabelValues("miss").Inc()
}

func Handler() http.Handler {
	return promhttp.Handler()
}
