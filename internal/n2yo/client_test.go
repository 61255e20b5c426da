package n2yo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vigneswari-developer/isstracker/internal/clock"
	"github.com/vigneswari-developer/isstracker/internal/logging"
	"github.com/vigneswari-developer/isstracker/internal/passes"
)

const samplePasses = `{
  "info": {"satid": 25544, "satname": "SPACE STATION", "transactionscount": 4, "passescount": 3},
  "passes": [
    {"startAz": 310.5, "startAzCompass": "NW", "startUTC": 1739574000, "maxAz": 40.1, "maxEl": 62.3, "maxUTC": 1739574300, "endAz": 120.2, "endUTC": 1739574600, "duration": 600},
    {"startAz": 250.0, "startAzCompass": "WSW", "startUTC": 1739660400, "maxEl": 18.0, "maxUTC": 1739660600, "endAz": 180.0, "endUTC": 1739660800},
    {"startAz": 200.0, "startAzCompass": "SSW", "startUTC": 1739746800, "maxEl": 30.0, "maxUTC": 1739747000, "endAz": 90.0, "endUTC": 1739747300, "duration": 480}
  ]
}`

var ist = time.FixedZone("IST", 5*3600+1800)

func newTestClient(baseURL, key string) *Client {
	return NewClient(Config{
		APIKey:       key,
		BaseURL:      baseURL,
		MinElevation: 10,
		Timeout:      2 * time.Second,
	}, clock.Fixed{At: time.Unix(1739500000, 0), Loc: ist}, logging.Discard())
}

func TestFetchPassesSuccess(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(samplePasses))
	}))
	defer server.Close()

	events, outcome, err := newTestClient(server.URL, "KEY123").FetchPasses(context.Background(), 40.7128, -74.006, 5)
	require.NoError(t, err)
	assert.Equal(t, passes.OutcomeSuccess, outcome)
	require.Len(t, events, 3)

	assert.Equal(t, "/satellite/radiopasses/25544/40.7128/-74.006/0/5/10/&apiKey=KEY123", gotPath)

	first := events[0]
	assert.Equal(t, passes.SourceLive, first.Source)
	assert.Equal(t, 600, first.DurationSeconds)
	assert.True(t, first.UTC.Equal(time.Unix(1739574000, 0)))
	assert.True(t, first.UTC.Equal(first.Local))
	assert.Equal(t, time.UTC, first.UTC.Location())
	assert.Equal(t, ist, first.Local.Location())
	assert.Equal(t, first.Local.Format(clock.DisplayLayout), first.DisplayTime)
	require.NotNil(t, first.MaxElevationDeg)
	assert.Equal(t, 62.3, *first.MaxElevationDeg)

	// Missing duration defaults to zero.
	assert.Equal(t, 0, events[1].DurationSeconds)
}

func TestFetchPassesTruncatesToCount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(samplePasses))
	}))
	defer server.Close()

	events, outcome, err := newTestClient(server.URL, "k").FetchPasses(context.Background(), 0, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, passes.OutcomeSuccess, outcome)
	assert.Len(t, events, 2)
}

func TestFetchPassesDaysClamped(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(samplePasses))
	}))
	defer server.Close()

	_, _, err := newTestClient(server.URL, "k").FetchPasses(context.Background(), 1.5, 2.5, 25)
	require.NoError(t, err)
	assert.Contains(t, gotPath, "/1.5/2.5/0/10/10/")
}

func TestFetchPassesOutcomes(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   passes.Outcome
	}{
		{"rate limited", http.StatusTooManyRequests, `{"error":"limit"}`, passes.OutcomeRateLimited},
		{"forbidden", http.StatusForbidden, `forbidden`, passes.OutcomeForbidden},
		{"server error", http.StatusInternalServerError, `oops`, passes.OutcomeNetworkError},
		{"not found", http.StatusNotFound, ``, passes.OutcomeNetworkError},
		{"invalid json", http.StatusOK, `<html>`, passes.OutcomeParseError},
		{"empty passes", http.StatusOK, `{"info":{"passescount":0},"passes":[]}`, passes.OutcomeEmptyResult},
		{"missing passes", http.StatusOK, `{"info":{"passescount":0}}`, passes.OutcomeEmptyResult},
		{"invalid key", http.StatusOK, `{"error":"Invalid API Key!"}`, passes.OutcomeForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			events, outcome, err := newTestClient(server.URL, "SECRETKEY").FetchPasses(context.Background(), 40, -74, 5)
			assert.Equal(t, tt.want, outcome)
			assert.Nil(t, events)
			require.Error(t, err)
			assert.NotContains(t, err.Error(), "SECRETKEY")
		})
	}
}

func TestFetchPassesNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, outcome, err := newTestClient(url, "SECRETKEY").FetchPasses(context.Background(), 0, 0, 1)
	assert.Equal(t, passes.OutcomeNetworkError, outcome)
	require.Error(t, err)
	assert.False(t, strings.Contains(err.Error(), "SECRETKEY"))
}

func TestFetchPassesWithoutKeySkipsRequest(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	_, outcome, err := newTestClient(server.URL, "").FetchPasses(context.Background(), 0, 0, 1)
	assert.Equal(t, passes.OutcomeForbidden, outcome)
	assert.Error(t, err)
	assert.False(t, called)
}

// TestResolverFallsBackOn429 wires the real client into the resolver.
func TestResolverFallsBackOn429(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	c := clock.Fixed{At: time.Unix(1739500000, 0), Loc: ist}
	r := passes.NewResolver(passes.ResolverConfig{LiveEnabled: true}, newTestClient(server.URL, "k"), passes.NewGenerator(c), nil, logging.Discard())

	res := r.Resolve(context.Background(), 40.7, -74.0, 5)
	assert.Equal(t, passes.OutcomeRateLimited, res.Outcome)
	require.Len(t, res.Passes, 5)
	for _, p := range res.Passes {
		assert.Equal(t, passes.SourceSimulated, p.Source)
	}
}
