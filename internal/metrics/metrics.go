package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "isstracker_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"path", "method", "code"},
	)

	httpDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "isstracker_http_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	passResolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "isstracker_pass_resolutions_total",
			Help: "Pass resolutions by path taken (live, fallback) and live outcome.",
		},
		[]string{"path", "outcome"},
	)

	upstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "isstracker_upstream_requests_total",
			Help: "Calls to external services by service and result.",
		},
		[]string{"service", "result"},
	)

	upstreamDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "isstracker_upstream_duration_seconds",
			Help:    "Duration of calls to external services in seconds.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"service"},
	)

	quotaUsed = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "isstracker_live_quota_used",
			Help: "Live prediction transactions counted in the current quota window.",
		},
	)

	streamsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "isstracker_streams_active",
			Help: "Open ISS position streams.",
		},
	)

	streamMessagesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "isstracker_stream_messages_total",
			Help: "Position messages sent to stream clients.",
		},
	)

	streamErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "isstracker_stream_errors_total",
			Help: "Stream errors by reason.",
		},
		[]string{"reason"},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpDurationSeconds)
	prometheus.MustRegister(passResolutionsTotal)
	prometheus.MustRegister(upstreamRequestsTotal)
	prometheus.MustRegister(upstreamDurationSeconds)
	prometheus.MustRegister(quotaUsed)
	prometheus.MustRegister(streamsActive)
	prometheus.MustRegister(streamMessagesTotal)
	prometheus.MustRegister(streamErrorsTotal)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObservePassResolution counts one pass resolution.
func ObservePassResolution(path, outcome string) {
	passResolutionsTotal.WithLabelValues(path, outcome).Inc()
}

// ObserveUpstream records one call to an external service.
func ObserveUpstream(service, result string, d time.Duration) {
	upstreamRequestsTotal.WithLabelValues(service, result).Inc()
	upstreamDurationSeconds.WithLabelValues(service).Observe(d.Seconds())
}

// SetQuotaUsed publishes the current quota window usage.
func SetQuotaUsed(n int64) {
	quotaUsed.Set(float64(n))
}

// IncStreamsActive and DecStreamsActive track open streams.
func IncStreamsActive() { streamsActive.Inc() }
func DecStreamsActive() { streamsActive.Dec() }

// IncStreamMessages counts one message sent to a stream client.
func IncStreamMessages() {
	streamMessagesTotal.Inc()
}

// IncStreamErrors counts a stream error ("rate_limit", "upstream", "send_error").
func IncStreamErrors(reason string) {
	streamErrorsTotal.WithLabelValues(reason).Inc()
}

// knownRoutes are the only path labels emitted; anything else is "other".
var knownRoutes = map[string]bool{
	"/":                  true,
	"/healthz":           true,
	"/readyz":            true,
	"/metrics":           true,
	"/api/v1/passes":     true,
	"/api/v1/collisions": true,
	"/api/v1/iss":        true,
	"/api/v1/iss/stream": true,
	"/api/v1/lookup":     true,
}

// normalizeRoute bounds label cardinality for arbitrary request paths.
func normalizeRoute(path string) string {
	if knownRoutes[path] {
		return path
	}
	return "other"
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Middleware records request count and duration for each request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		code := strconv.Itoa(rw.statusCode)
		route := normalizeRoute(r.URL.Path)

		httpRequestsTotal.WithLabelValues(route, r.Method, code).Inc()
		httpDurationSeconds.WithLabelValues(route, r.Method).Observe(duration)
	})
}
