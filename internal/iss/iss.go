// Package iss reads the current ISS ground position and the roster of people
// aboard spacecraft from public no-key APIs.
package iss

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vigneswari-developer/isstracker/internal/httputil"
	"github.com/vigneswari-developer/isstracker/internal/metrics"
)

const (
	DefaultPositionURL = "https://api.wheretheiss.at/v1/satellites/25544"
	DefaultRosterURL   = "http://api.open-notify.org/astros.json"

	defaultPositionTimeout = 8 * time.Second
	defaultRosterTimeout   = 6 * time.Second
)

// Position is the sub-satellite point of the ISS.
type Position struct {
	Lat         float64   `json:"lat" yaml:"lat"`
	Lon         float64   `json:"lon" yaml:"lon"`
	AltitudeKm  float64   `json:"altitude_km" yaml:"altitude_km"`
	VelocityKmh float64   `json:"velocity_kmh" yaml:"velocity_kmh"`
	Visibility  string    `json:"visibility" yaml:"visibility"`
	Timestamp   time.Time `json:"timestamp" yaml:"timestamp"`
}

// PositionClient queries wheretheiss.at.
type PositionClient struct {
	url    string
	httpc  *httputil.Client
	logger *slog.Logger
}

// NewPositionClient creates a PositionClient. An empty url selects the
// public endpoint.
func NewPositionClient(url string, timeout time.Duration, logger *slog.Logger) *PositionClient {
	if url == "" {
		url = DefaultPositionURL
	}
	if timeout <= 0 {
		timeout = defaultPositionTimeout
	}
	return &PositionClient{
		url:    url,
		httpc:  httputil.NewClient(httputil.WithTimeout(timeout)),
		logger: logger.With("component", "iss"),
	}
}

type positionResponse struct {
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
	Altitude   float64  `json:"altitude"`
	Velocity   float64  `json:"velocity"`
	Visibility string   `json:"visibility"`
	Timestamp  int64    `json:"timestamp"`
}

// Current returns the latest reported position.
func (c *PositionClient) Current(ctx context.Context) (Position, error) {
	start := time.Now()
	var resp positionResponse
	err := c.httpc.GetJSON(ctx, c.url, &resp)
	if err == nil && (resp.Latitude == nil || resp.Longitude == nil) {
		err = fmt.Errorf("%w: position missing latitude or longitude", httputil.ErrDecode)
	}
	metrics.ObserveUpstream("wheretheiss", resultLabel(err), time.Since(start))
	if err != nil {
		c.logger.Warn("fetching ISS position failed", "error", err)
		return Position{}, fmt.Errorf("fetching ISS position: %w", err)
	}

	return Position{
		Lat:         *resp.Latitude,
		Lon:         *resp.Longitude,
		AltitudeKm:  resp.Altitude,
		VelocityKmh: resp.Velocity,
		Visibility:  resp.Visibility,
		Timestamp:   time.Unix(resp.Timestamp, 0).UTC(),
	}, nil
}

// Roster lists the people currently in space.
type Roster struct {
	Count  int      `json:"count" yaml:"count"`
	People []Person `json:"people" yaml:"people"`
}

// Person is one roster entry.
type Person struct {
	Name  string `json:"name" yaml:"name"`
	Craft string `json:"craft" yaml:"craft"`
}

// Names returns the names in roster order.
func (r Roster) Names() []string {
	names := make([]string, len(r.People))
	for i, p := range r.People {
		names[i] = p.Name
	}
	return names
}

// RosterClient queries open-notify.
type RosterClient struct {
	url    string
	httpc  *httputil.Client
	logger *slog.Logger
}

// NewRosterClient creates a RosterClient. An empty url selects the public
// endpoint.
func NewRosterClient(url string, timeout time.Duration, logger *slog.Logger) *RosterClient {
	if url == "" {
		url = DefaultRosterURL
	}
	if timeout <= 0 {
		timeout = defaultRosterTimeout
	}
	return &RosterClient{
		url:    url,
		httpc:  httputil.NewClient(httputil.WithTimeout(timeout)),
		logger: logger.With("component", "iss"),
	}
}

type rosterResponse struct {
	Message string   `json:"message"`
	Number  int      `json:"number"`
	People  []Person `json:"people"`
}

// Current returns the current roster.
func (c *RosterClient) Current(ctx context.Context) (Roster, error) {
	start := time.Now()
	var resp rosterResponse
	err := c.httpc.GetJSON(ctx, c.url, &resp)
	metrics.ObserveUpstream("open-notify", resultLabel(err), time.Since(start))
	if err != nil {
		c.logger.Warn("fetching astronaut roster failed", "error", err)
		return Roster{}, fmt.Errorf("fetching astronaut roster: %w", err)
	}

	return Roster{Count: resp.Number, People: resp.People}, nil
}

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
