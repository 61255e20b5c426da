// Package geocode resolves city names to coordinates and coordinates to
// readable place names using the OpenStreetMap Nominatim API.
package geocode

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/vigneswari-developer/isstracker/internal/httputil"
	"github.com/vigneswari-developer/isstracker/internal/metrics"
)

const (
	DefaultBaseURL   = "https://nominatim.openstreetmap.org"
	DefaultUserAgent = "iss_tracker_project" // Nominatim rejects requests without one
)

// ErrNotFound is returned when a query matches no place.
var ErrNotFound = errors.New("location not found")

// Place is a geocoded location.
type Place struct {
	Lat     float64 `json:"lat" yaml:"lat"`
	Lon     float64 `json:"lon" yaml:"lon"`
	Address string  `json:"address" yaml:"address"`
}

// Config holds Nominatim settings.
type Config struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

// Client talks to Nominatim.
type Client struct {
	baseURL string
	httpc   *httputil.Client
	logger  *slog.Logger
}

// NewClient creates a Client. Empty fields take Nominatim defaults.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpc: httputil.NewClient(
			httputil.WithTimeout(cfg.Timeout),
			httputil.WithUserAgent(cfg.UserAgent),
		),
		logger: logger.With("component", "geocode"),
	}
}

type searchResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Geocode returns the best match for a free-form query such as a city name.
func (c *Client) Geocode(ctx context.Context, query string) (Place, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("format", "json")
	q.Set("limit", "1")

	start := time.Now()
	var results []searchResult
	err := c.httpc.GetJSON(ctx, c.baseURL+"/search?"+q.Encode(), &results)
	metrics.ObserveUpstream("nominatim", resultLabel(err), time.Since(start))
	if err != nil {
		return Place{}, fmt.Errorf("geocoding %q: %w", query, err)
	}
	if len(results) == 0 {
		return Place{}, ErrNotFound
	}

	lat, errLat := strconv.ParseFloat(results[0].Lat, 64)
	lon, errLon := strconv.ParseFloat(results[0].Lon, 64)
	if errLat != nil || errLon != nil {
		return Place{}, fmt.Errorf("geocoding %q: %w: bad coordinates %q,%q",
			query, httputil.ErrDecode, results[0].Lat, results[0].Lon)
	}

	return Place{Lat: lat, Lon: lon, Address: results[0].DisplayName}, nil
}

type reverseResult struct {
	Error   string            `json:"error"`
	Address map[string]string `json:"address"`
}

// Describe returns a short human-readable description of what lies under
// (lat, lon): a body of water, a city, a state or a country. It never fails;
// when Nominatim has no address, or cannot be reached, it falls back to a
// coarse ocean region guess.
func (c *Client) Describe(ctx context.Context, lat, lon float64) string {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("format", "json")
	q.Set("accept-language", "en")

	start := time.Now()
	var res reverseResult
	err := c.httpc.GetJSON(ctx, c.baseURL+"/reverse?"+q.Encode(), &res)
	metrics.ObserveUpstream("nominatim", resultLabel(err), time.Since(start))
	if err != nil {
		c.logger.Warn("reverse geocoding failed, guessing region", "error", err)
		return GuessRegion(lat, lon)
	}

	if name := describeAddress(res.Address); name != "" {
		return name
	}
	return GuessRegion(lat, lon)
}

func describeAddress(addr map[string]string) string {
	for _, key := range []string{"ocean", "sea", "water", "bay"} {
		if v := addr[key]; v != "" {
			return "Over the " + v
		}
	}

	city := firstNonEmpty(addr["city"], addr["town"], addr["village"], addr["municipality"])
	state, country := addr["state"], addr["country"]
	switch {
	case city != "" && country != "":
		return city + ", " + country
	case state != "" && country != "":
		return state + ", " + country
	default:
		return country
	}
}

// GuessRegion maps coordinates with no street address to a broad region.
// The boxes overlap; the first match wins.
func GuessRegion(lat, lon float64) string {
	between := func(v, lo, hi float64) bool { return v >= lo && v <= hi }

	switch {
	case between(lat, -60, 30) && between(lon, 20, 150):
		return "Over the Indian Ocean"
	case between(lat, -60, 60) && between(lon, -180, -70):
		return "Over the South Pacific Ocean"
	case between(lat, 0, 60) && between(lon, -180, -100):
		return "Over the North Pacific Ocean"
	case lat >= 0 && between(lon, -100, -20):
		return "Over the North Atlantic Ocean"
	case lat < 0 && between(lon, -70, 20):
		return "Over the South Atlantic Ocean"
	case lat > 60 || lat < -60:
		return "Over the Polar Region"
	default:
		return "Over an unknown area"
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
