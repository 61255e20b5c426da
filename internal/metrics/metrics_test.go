package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeRoute(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		// Known exact routes.
		{"/", "/"},
		{"/healthz", "/healthz"},
		{"/readyz", "/readyz"},
		{"/metrics", "/metrics"},
		{"/api/v1/passes", "/api/v1/passes"},
		{"/api/v1/collisions", "/api/v1/collisions"},
		{"/api/v1/iss", "/api/v1/iss"},
		{"/api/v1/iss/stream", "/api/v1/iss/stream"},
		{"/api/v1/lookup", "/api/v1/lookup"},

		// Unknown/bot paths collapse to "other".
		{"/wp-admin", "other"},
		{"/robots.txt", "other"},
		{"/.env", "other"},
		{"/api/v2/passes", "other"},
		{"/api/v1/passes/extra", "other"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeRoute(tt.path))
		})
	}
}

func TestMiddlewareCountsRequests(t *testing.T) {
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("other", "GET", "418"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/random-probe", nil))
	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("other", "GET", "418"))

	assert.Equal(t, before+1, after)
}

func TestObservePassResolution(t *testing.T) {
	before := testutil.ToFloat64(passResolutionsTotal.WithLabelValues("fallback", "rate_limited"))
	ObservePassResolution("fallback", "rate_limited")
	assert.Equal(t, before+1, testutil.ToFloat64(passResolutionsTotal.WithLabelValues("fallback", "rate_limited")))
}

func TestHandlerExposesCollectors(t *testing.T) {
	ObserveUpstream("n2yo", "ok", 20*time.Millisecond)
	SetQuotaUsed(7)

	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.True(t, strings.Contains(body, "isstracker_upstream_requests_total"))
	assert.True(t, strings.Contains(body, "isstracker_live_quota_used 7"))
}

func TestStreamCounters(t *testing.T) {
	IncStreamsActive()
	IncStreamsActive()
	DecStreamsActive()
	assert.Equal(t, 1.0, testutil.ToFloat64(streamsActive))
	DecStreamsActive()

	before := testutil.ToFloat64(streamErrorsTotal.WithLabelValues("upstream"))
	IncStreamErrors("upstream")
	assert.Equal(t, before+1, testutil.ToFloat64(streamErrorsTotal.WithLabelValues("upstream")))
}
