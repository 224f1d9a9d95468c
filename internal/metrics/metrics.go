// Package metrics exposes Prometheus instrumentation for the HTTP surface
// and the anamnesis workflow counters.
package metrics

import (
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	anamnesesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "anamneses_sent_total",
			Help: "Total number of anamnesis forms sent to guardians",
		},
	)

	anamnesesAnswered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "anamneses_answered_total",
			Help: "Total number of anamnesis submissions",
		},
		[]string{"source"},
	)

	anamnesesExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "anamneses_expired_total",
			Help: "Total number of sent forms expired without an answer",
		},
	)

	statusTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "anamnesis_status_transitions_total",
			Help: "Total number of anamnesis status transitions",
		},
		[]string{"from_status", "to_status"},
	)

	referralsAssigned = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "referrals_assigned_total",
			Help: "Total number of referrals assigned to assistants",
		},
		[]string{"channel"},
	)

	emailsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "emails_sent_total",
			Help: "Total number of e-mails sent",
		},
		[]string{"kind", "status"},
	)

	ibgeLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ibge_lookups_total",
			Help: "Total number of IBGE lookups",
		},
		[]string{"kind", "result"},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware instruments every request with count, duration and in-flight.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		path := normalizePath(r.URL.Path)
		httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.statusCode)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

var idSegment = regexp.MustCompile(`(?i)/([0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}|[0-9a-f]{32,})`)

// normalizePath collapses id/token path segments so the path label stays
// low-cardinality.
func normalizePath(path string) string {
	return idSegment.ReplaceAllString(path, "/:id")
}

func RecordAnamnesisSent() {
	anamnesesSent.Inc()
}

// RecordAnamnesisAnswered counts a submission; source is "public" (token
// link) or "staff".
func RecordAnamnesisAnswered(source string) {
	anamnesesAnswered.WithLabelValues(source).Inc()
}

func RecordAnamnesisExpired() {
	anamnesesExpired.Inc()
}

func RecordStatusTransition(from, to string) {
	statusTransitions.WithLabelValues(from, to).Inc()
}

func RecordReferralAssigned(channel string) {
	referralsAssigned.WithLabelValues(channel).Inc()
}

func RecordEmailSent(kind string, ok bool) {
	status := "error"
	if ok {
		status = "ok"
	}
	emailsSent.WithLabelValues(kind, status).Inc()
}

// RecordIBGELookup counts a state/city lookup; result is "hit" (cache),
// "miss" (upstream fetch) or "error".
func RecordIBGELookup(kind, result string) {
	ibgeLookups.WithLabelValues(kind, result).Inc()
}
