package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vigneswari-developer/isstracker/internal/config"
)

func TestRunProbesCountsFailures(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	failed := runProbes(context.Background(), &buf, []probe{
		{"good", func(ctx context.Context) (string, error) { return "fine", nil }},
		{"bad", func(ctx context.Context) (string, error) { return "", errors.New("boom") }},
	})

	assert.Equal(t, 1, failed)
	assert.Contains(t, buf.String(), "good")
	assert.Contains(t, buf.String(), "OK")
	assert.Contains(t, buf.String(), "FAIL")
	assert.Contains(t, buf.String(), "boom")
}

func TestProbesAgainstStubServices(t *testing.T) {
	t.Chdir(t.TempDir())

	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"lat":"51.5","lon":"-0.12","display_name":"London"}]`))
	})
	mux.HandleFunc("/iss", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"latitude": 1, "longitude": 2, "altitude": 410}`))
	})
	mux.HandleFunc("/astros.json", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	t.Setenv("ISSTRACKER_SERVICES_NOMINATIM_URL", server.URL)
	t.Setenv("ISSTRACKER_SERVICES_ISS_POSITION_URL", server.URL+"/iss")
	t.Setenv("ISSTRACKER_SERVICES_ASTRONAUTS_URL", server.URL+"/astros.json")

	cfg, err := config.Load("")
	require.NoError(t, err)

	list := probes(cfg, "London")
	require.Len(t, list, 3, "no n2yo or redis probe without key or redis url")

	var buf bytes.Buffer
	assert.Equal(t, 1, runProbes(context.Background(), &buf, list))
	assert.Contains(t, buf.String(), "ISS at 1.00, 2.00")
}
