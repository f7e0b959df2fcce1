// Package metrics exposes Prometheus collectors for the trust service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trust_http_requests_total",
			Help: "HTTP requests by method, route and status code",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trust_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	decisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trust_enforcement_decisions_total",
			Help: "Enforcement decisions by action",
		},
		[]string{"action"},
	)

	confidence = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "trust_scam_confidence",
			Help:    "Distribution of heuristic scam confidence",
			Buckets: []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 0.95, 1},
		},
	)

	enforcementFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trust_enforcement_failures_total",
			Help: "Swallowed enforcement side-effect failures by target",
		},
		[]string{"target"},
	)

	warningsIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trust_user_warnings_created_total",
			Help: "New (user, scam) warnings",
		},
	)

	pendingReviews = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "trust_review_queue_pending",
			Help: "Flagged jobs awaiting admin review",
		},
	)

	bannedEntities = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "trust_banned_entities",
			Help: "Entries per ban registry",
		},
		[]string{"kind"},
	)
)

// RecordDecision counts one enforcement decision and its confidence.
func RecordDecision(action string, c float64) {
	decisionsTotal.WithLabelValues(action).Inc()
	confidence.Observe(c)
}

// RecordEnforcementFailure counts a swallowed side-effect failure.
func RecordEnforcementFailure(target string) {
	enforcementFailures.WithLabelValues(target).Inc()
}

func RecordWarningCreated() {
	warningsIssued.Inc()
}

func SetPendingReviews(n int) {
	pendingReviews.Set(float64(n))
}

func SetBannedEntities(kind string, n int) {
	bannedEntities.WithLabelValues(kind).Set(float64(n))
}

// statusRecorder captures the response code written by the next handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware records request counts and latency. route resolves the
// templated route of a request after it has been served.
func Middleware(route func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			path := route(r)
			httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(rec.status)).Inc()
			httpRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
		})
	}
}
