package passes

import (
	"context"
	"time"
)

// Source tags where a PassEvent came from.
type Source string

const (
	SourceSimulated Source = "simulated"
	SourceLive      Source = "live"
)

// PassEvent describes one predicted visibility window. UTC and Local are the
// same instant; DisplayTime is Local rendered for people.
type PassEvent struct {
	DisplayTime     string    `json:"display_time" yaml:"display_time"`
	UTC             time.Time `json:"utc_timestamp" yaml:"utc_timestamp"`
	Local           time.Time `json:"local_timestamp" yaml:"local_timestamp"`
	DurationSeconds int       `json:"duration_seconds" yaml:"duration_seconds"`
	MaxElevationDeg *float64  `json:"max_elevation_deg,omitempty" yaml:"max_elevation_deg,omitempty"`
	Source          Source    `json:"source" yaml:"source"`
}

// Outcome is the result of a live prediction attempt.
type Outcome string

const (
	OutcomeSuccess      Outcome = "success"
	OutcomeRateLimited  Outcome = "rate_limited"
	OutcomeForbidden    Outcome = "forbidden"
	OutcomeEmptyResult  Outcome = "empty_result"
	OutcomeNetworkError Outcome = "network_error"
	OutcomeParseError   Outcome = "parse_error"
	OutcomeLiveDisabled Outcome = "live_disabled"
)

// Path is the branch the resolver took.
type Path string

const (
	PathLive     Path = "live"
	PathFallback Path = "fallback"
)

// LiveSource fetches passes from an external prediction service. Every
// non-success outcome is an expected operating condition; err only carries
// detail for diagnostics.
type LiveSource interface {
	FetchPasses(ctx context.Context, lat, lon float64, count int) ([]PassEvent, Outcome, error)
}

// Resolution is the normalized answer to a pass request.
type Resolution struct {
	Passes    []PassEvent `json:"passes" yaml:"passes"`
	Path      Path        `json:"path" yaml:"path"`
	Outcome   Outcome     `json:"outcome" yaml:"outcome"`
	QuotaUsed int64       `json:"quota_used" yaml:"quota_used"`
}
