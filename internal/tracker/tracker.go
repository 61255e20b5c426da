// Package tracker assembles the full lookup report for a city: where it is,
// when the ISS passes over it, where the ISS is now and who is aboard.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/vigneswari-developer/isstracker/internal/collision"
	"github.com/vigneswari-developer/isstracker/internal/geocode"
	"github.com/vigneswari-developer/isstracker/internal/iss"
	"github.com/vigneswari-developer/isstracker/internal/passes"
	"github.com/vigneswari-developer/isstracker/internal/transform"
)

const (
	// UnavailablePlace is shown when the ISS position could not be read.
	UnavailablePlace = "Unavailable (Network Error)"

	untracked = "—"
)

var (
	ErrEmptyCity        = errors.New("please enter a valid city name")
	ErrLocationNotFound = errors.New("could not find location")
)

// Geocoder resolves names to places and places to descriptions.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (geocode.Place, error)
	Describe(ctx context.Context, lat, lon float64) string
}

// PassResolver produces upcoming passes.
type PassResolver interface {
	Resolve(ctx context.Context, lat, lon float64, count int) passes.Resolution
}

// PositionSource reports the current ISS position.
type PositionSource interface {
	Current(ctx context.Context) (iss.Position, error)
}

// RosterSource reports who is in space.
type RosterSource interface {
	Current(ctx context.Context) (iss.Roster, error)
}

// RiskEstimator screens for close approaches.
type RiskEstimator interface {
	Estimate(rng *rand.Rand, windowDays int) []collision.RiskEvent
}

// Config holds lookup parameters.
type Config struct {
	PassCount  int
	WindowDays int
	Seed       *uint64
}

// Report is everything the results page shows.
type Report struct {
	City           string                `json:"city" yaml:"city"`
	Address        string                `json:"full_address" yaml:"full_address"`
	User           transform.Point       `json:"user" yaml:"user"`
	ISS            *iss.Position         `json:"iss,omitempty" yaml:"iss,omitempty"`
	PlaceName      string                `json:"place_name" yaml:"place_name"`
	Relation       *transform.Relation   `json:"relation,omitempty" yaml:"relation,omitempty"`
	MapCenter      transform.Point       `json:"map_center" yaml:"map_center"`
	Passes         passes.Resolution     `json:"passes" yaml:"passes"`
	Risks          []collision.RiskEvent `json:"collision_risks" yaml:"collision_risks"`
	AstronautCount *int                  `json:"astronaut_count,omitempty" yaml:"astronaut_count,omitempty"`
	AstronautNames []string              `json:"astronaut_names" yaml:"astronaut_names"`
	APICount       string                `json:"api_count" yaml:"api_count"`
}

// Service runs lookups.
type Service struct {
	cfg      Config
	geocoder Geocoder
	resolver PassResolver
	position PositionSource
	roster   RosterSource
	risks    RiskEstimator
	logger   *slog.Logger
}

// NewService wires a Service.
func NewService(cfg Config, g Geocoder, r PassResolver, p PositionSource, ro RosterSource, e RiskEstimator, logger *slog.Logger) *Service {
	if cfg.PassCount <= 0 {
		cfg.PassCount = 5
	}
	return &Service{
		cfg:      cfg,
		geocoder: g,
		resolver: r,
		position: p,
		roster:   ro,
		risks:    e,
		logger:   logger.With("component", "tracker"),
	}
}

// Lookup builds the report for city. It fails only when the city is blank
// or cannot be geocoded; every later step degrades on its own.
func (s *Service) Lookup(ctx context.Context, city string) (*Report, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return nil, ErrEmptyCity
	}

	place, err := s.geocoder.Geocode(ctx, city)
	if err != nil {
		if !errors.Is(err, geocode.ErrNotFound) {
			s.logger.Warn("geocoding failed", "city", city, "error", err)
		}
		return nil, fmt.Errorf("%w for %q: %w", ErrLocationNotFound, city, err)
	}

	user := transform.Point{Lat: place.Lat, Lon: place.Lon}
	rep := &Report{
		City:           city,
		Address:        place.Address,
		User:           user,
		PlaceName:      UnavailablePlace,
		AstronautNames: []string{},
	}

	rep.Passes = s.resolver.Resolve(ctx, place.Lat, place.Lon, s.cfg.PassCount)
	rep.APICount = apiCount(rep.Passes.QuotaUsed)

	var issPoint *transform.Point
	if pos, err := s.position.Current(ctx); err == nil {
		rep.ISS = &pos
		issPoint = &transform.Point{Lat: pos.Lat, Lon: pos.Lon}
		rel := transform.Relate(user, *issPoint)
		rep.Relation = &rel
		rep.PlaceName = s.geocoder.Describe(ctx, pos.Lat, pos.Lon)
	} else {
		s.logger.Warn("iss position unavailable", "error", err)
	}
	rep.MapCenter = transform.MapCenter(user, issPoint)

	rep.Risks = s.risks.Estimate(s.rng(), s.cfg.WindowDays)

	if roster, err := s.roster.Current(ctx); err == nil {
		n := roster.Count
		rep.AstronautCount = &n
		rep.AstronautNames = roster.Names()
	} else {
		s.logger.Warn("astronaut roster unavailable", "error", err)
	}

	s.logger.Info("lookup complete",
		"city", city,
		"pass_path", string(rep.Passes.Path),
		"pass_outcome", string(rep.Passes.Outcome),
		"iss_known", rep.ISS != nil,
	)
	return rep, nil
}

func (s *Service) rng() *rand.Rand {
	if s.cfg.Seed != nil {
		return passes.SeededRand(*s.cfg.Seed)
	}
	return passes.NewRand()
}

func apiCount(used int64) string {
	if used < 0 {
		return untracked
	}
	return strconv.FormatInt(used, 10)
}
