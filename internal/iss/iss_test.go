package iss

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vigneswari-developer/isstracker/internal/httputil"
	"github.com/vigneswari-developer/isstracker/internal/logging"
)

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestPositionCurrent(t *testing.T) {
	server := serve(t, http.StatusOK, `{
		"name": "iss", "id": 25544,
		"latitude": 50.11496269845, "longitude": 118.07900427317,
		"altitude": 408.05526028199, "velocity": 27635.971970874,
		"visibility": "daylight", "timestamp": 1364069476
	}`)

	pos, err := NewPositionClient(server.URL, time.Second, logging.Discard()).Current(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 50.11496269845, pos.Lat, 1e-9)
	assert.InDelta(t, 118.07900427317, pos.Lon, 1e-9)
	assert.InDelta(t, 408.06, pos.AltitudeKm, 0.01)
	assert.Equal(t, "daylight", pos.Visibility)
	assert.Equal(t, time.Unix(1364069476, 0).UTC(), pos.Timestamp)
}

func TestPositionErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{}`},
		{"rate limited", http.StatusTooManyRequests, `{"error":"too many"}`},
		{"bad json", http.StatusOK, `not json`},
		{"missing coordinates", http.StatusOK, `{"altitude": 408}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := serve(t, tt.status, tt.body)
			_, err := NewPositionClient(server.URL, time.Second, logging.Discard()).Current(context.Background())
			assert.Error(t, err)
		})
	}
}

func TestPositionMissingCoordinatesIsDecodeError(t *testing.T) {
	server := serve(t, http.StatusOK, `{"latitude": 10}`)
	_, err := NewPositionClient(server.URL, time.Second, logging.Discard()).Current(context.Background())
	assert.ErrorIs(t, err, httputil.ErrDecode)
}

func TestRosterCurrent(t *testing.T) {
	server := serve(t, http.StatusOK, `{
		"message": "success", "number": 3,
		"people": [
			{"name": "Oleg Kononenko", "craft": "ISS"},
			{"name": "Tracy Dyson", "craft": "ISS"},
			{"name": "Li Guangsu", "craft": "Tiangong"}
		]
	}`)

	roster, err := NewRosterClient(server.URL, time.Second, logging.Discard()).Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, roster.Count)
	assert.Equal(t, []string{"Oleg Kononenko", "Tracy Dyson", "Li Guangsu"}, roster.Names())
	assert.Equal(t, "Tiangong", roster.People[2].Craft)
}

func TestRosterError(t *testing.T) {
	server := serve(t, http.StatusBadGateway, ``)
	_, err := NewRosterClient(server.URL, time.Second, logging.Discard()).Current(context.Background())
	assert.Error(t, err)
}

func TestDefaults(t *testing.T) {
	p := NewPositionClient("", 0, logging.Discard())
	assert.Equal(t, DefaultPositionURL, p.url)
	assert.Equal(t, 8*time.Second, p.httpc.Timeout())

	r := NewRosterClient("", 0, logging.Discard())
	assert.Equal(t, DefaultRosterURL, r.url)
	assert.Equal(t, 6*time.Second, r.httpc.Timeout())
}
