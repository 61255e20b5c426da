// Package n2yo fetches ISS pass predictions from the N2YO REST API
// (https://www.n2yo.com/api/) and classifies every failure into a
// passes.Outcome so callers can fall back without treating quota limits as
// errors.
package n2yo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/vigneswari-developer/isstracker/internal/clock"
	"github.com/vigneswari-developer/isstracker/internal/httputil"
	"github.com/vigneswari-developer/isstracker/internal/metrics"
	"github.com/vigneswari-developer/isstracker/internal/passes"
)

const (
	DefaultBaseURL = "https://api.n2yo.com/rest/v1"
	ISSNoradID     = 25544

	maxDays = 10 // N2YO caps radiopasses prediction at 10 days
)

// Config holds the live prediction settings.
type Config struct {
	APIKey       string
	BaseURL      string
	SatelliteID  int
	ObserverAlt  float64 // meters above sea level
	MinElevation float64 // degrees
	Timeout      time.Duration
}

// Client calls the N2YO radiopasses endpoint.
type Client struct {
	cfg    Config
	httpc  *httputil.Client
	clock  clock.Clock
	logger *slog.Logger
}

// NewClient creates a Client. Zero values in cfg take N2YO defaults.
func NewClient(cfg Config, c clock.Clock, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.SatelliteID == 0 {
		cfg.SatelliteID = ISSNoradID
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		cfg:    cfg,
		httpc:  httputil.NewClient(httputil.WithTimeout(cfg.Timeout)),
		clock:  c,
		logger: logger.With("component", "n2yo"),
	}
}

// response mirrors the subset of the radiopasses payload we use.
type response struct {
	Error string `json:"error"`

	Info struct {
		SatID             int    `json:"satid"`
		SatName           string `json:"satname"`
		TransactionsCount int    `json:"transactionscount"`
		PassesCount       int    `json:"passescount"`
	} `json:"info"`
	Passes []struct {
		StartUTC int64    `json:"startUTC"`
		EndUTC   int64    `json:"endUTC"`
		MaxEl    *float64 `json:"maxEl"`
		Duration *int     `json:"duration"`
	} `json:"passes"`
}

// passesURL builds the request URL. N2YO expects the key appended to the
// path as "&apiKey=".
func (c *Client) passesURL(lat, lon float64, days int) string {
	return fmt.Sprintf("%s/satellite/radiopasses/%d/%s/%s/%s/%d/%s/&apiKey=%s",
		c.cfg.BaseURL,
		c.cfg.SatelliteID,
		strconv.FormatFloat(lat, 'f', -1, 64),
		strconv.FormatFloat(lon, 'f', -1, 64),
		strconv.FormatFloat(c.cfg.ObserverAlt, 'f', -1, 64),
		days,
		strconv.FormatFloat(c.cfg.MinElevation, 'f', -1, 64),
		c.cfg.APIKey,
	)
}

// FetchPasses issues one request for up to count passes over (lat, lon).
func (c *Client) FetchPasses(ctx context.Context, lat, lon float64, count int) ([]passes.PassEvent, passes.Outcome, error) {
	if c.cfg.APIKey == "" {
		return nil, passes.OutcomeForbidden, errors.New("no N2YO API key configured")
	}

	days := max(1, min(maxDays, count))
	start := time.Now()

	var resp response
	err := c.httpc.GetJSON(ctx, c.passesURL(lat, lon, days), &resp)
	outcome := classify(err)
	switch {
	case outcome != passes.OutcomeSuccess:
	case resp.Error != "":
		// N2YO reports a bad key as 200 {"error": "Invalid API Key!"}.
		outcome = passes.OutcomeForbidden
		err = fmt.Errorf("upstream error: %s", resp.Error)
	case len(resp.Passes) == 0:
		outcome = passes.OutcomeEmptyResult
	}
	metrics.ObserveUpstream("n2yo", string(outcome), time.Since(start))

	if outcome != passes.OutcomeSuccess {
		if err == nil {
			err = errors.New("no pass entries in response")
		}
		return nil, outcome, err
	}

	c.logger.Debug("fetched live passes",
		"passes", len(resp.Passes),
		"transactions", resp.Info.TransactionsCount,
	)

	loc := c.clock.Location()
	n := min(count, len(resp.Passes))
	events := make([]passes.PassEvent, 0, n)
	for _, p := range resp.Passes[:n] {
		utc := time.Unix(p.StartUTC, 0).UTC()
		local := utc.In(loc)

		duration := 0
		if p.Duration != nil && *p.Duration > 0 {
			duration = *p.Duration
		}

		events = append(events, passes.PassEvent{
			DisplayTime:     local.Format(clock.DisplayLayout),
			UTC:             utc,
			Local:           local,
			DurationSeconds: duration,
			MaxElevationDeg: p.MaxEl,
			Source:          passes.SourceLive,
		})
	}

	return events, passes.OutcomeSuccess, nil
}

// classify maps a GetJSON error to a live outcome.
func classify(err error) passes.Outcome {
	if err == nil {
		return passes.OutcomeSuccess
	}

	var se *httputil.StatusError
	switch {
	case errors.As(err, &se) && se.StatusCode == http.StatusTooManyRequests:
		return passes.OutcomeRateLimited
	case errors.As(err, &se) && se.StatusCode == http.StatusForbidden:
		return passes.OutcomeForbidden
	case errors.Is(err, httputil.ErrDecode):
		return passes.OutcomeParseError
	default:
		return passes.OutcomeNetworkError
	}
}
