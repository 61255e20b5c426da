// Package collision produces a simulated conjunction screening of the ISS
// against a small fixed catalog. The "miss distance" is a heuristic score in
// km-like units, not an orbital computation.
package collision

import (
	"math"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/vigneswari-developer/isstracker/internal/clock"
)

// Level is a coarse risk classification.
type Level string

const (
	LevelHigh   Level = "High"
	LevelMedium Level = "Medium"
	LevelLow    Level = "Low"
)

const (
	highThresholdKm   = 10.0
	mediumThresholdKm = 30.0

	inclinationScale = 10.0 // degrees of inclination to km-like units
	probabilitySigma = 20.0
	probabilityPeak  = 1e-3
	probabilityFloor = 1e-6 // smallest value that survives rounding to 6 decimals

	minLeadHours = 6

	eventLayout = "On Monday, Jan 02 at 03:04 PM UTC"
)

// RiskEvent is one simulated close approach.
type RiskEvent struct {
	ObjectName     string    `json:"object_name" yaml:"object_name"`
	MissDistanceKm float64   `json:"miss_distance_km" yaml:"miss_distance_km"`
	Level          Level     `json:"risk_level" yaml:"risk_level"`
	Probability    float64   `json:"probability" yaml:"probability"`
	EventTime      time.Time `json:"event_time" yaml:"event_time"`
	EventTimeStr   string    `json:"event_time_str" yaml:"event_time_str"`
	Simulated      bool      `json:"simulated" yaml:"simulated"`
}

// Estimator screens a catalog against its reference object.
type Estimator struct {
	catalog Catalog
	clock   clock.Clock
}

// NewEstimator creates an Estimator over cat.
func NewEstimator(cat Catalog, c clock.Clock) *Estimator {
	return &Estimator{catalog: cat, clock: c}
}

// Catalog returns the catalog being screened.
func (e *Estimator) Catalog() Catalog {
	return e.catalog
}

// Estimate returns one event per catalog object, closest first. Event times
// fall between 6 hours and windowDays from now.
func (e *Estimator) Estimate(rng *rand.Rand, windowDays int) []RiskEvent {
	now := e.clock.Now()
	maxLead := max(minLeadHours, windowDays*24)
	ref := e.catalog.Reference

	type scored struct {
		event    RiskEvent
		distance float64
	}
	results := make([]scored, 0, len(e.catalog.Objects))

	for _, obj := range e.catalog.Objects {
		d := Distance(ref, obj)
		at := now.Add(time.Duration(minLeadHours+rng.IntN(maxLead-minLeadHours+1)) * time.Hour)

		results = append(results, scored{
			distance: d,
			event: RiskEvent{
				ObjectName:     obj.Name,
				MissDistanceKm: round(d, 2),
				Level:          Classify(d),
				Probability:    Probability(d),
				EventTime:      at,
				EventTimeStr:   at.UTC().Format(eventLayout),
				Simulated:      true,
			},
		})
	}

	slices.SortStableFunc(results, func(a, b scored) int {
		switch {
		case a.distance < b.distance:
			return -1
		case a.distance > b.distance:
			return 1
		default:
			return 0
		}
	})

	events := make([]RiskEvent, len(results))
	for i, r := range results {
		events[i] = r.event
	}
	return events
}

// Distance combines altitude and scaled inclination differences:
// sqrt(dAlt^2 + (dInc*10)^2).
func Distance(ref, obj Object) float64 {
	altDiff := math.Abs(obj.AltitudeKm - ref.AltitudeKm)
	incDiff := math.Abs(obj.InclinationDeg-ref.InclinationDeg) * inclinationScale
	return math.Sqrt(altDiff*altDiff + incDiff*incDiff)
}

// Classify maps a heuristic distance to a risk level.
func Classify(distance float64) Level {
	switch {
	case distance < highThresholdKm:
		return LevelHigh
	case distance < mediumThresholdKm:
		return LevelMedium
	default:
		return LevelLow
	}
}

// Probability is exp(-d^2 / (2*20^2)) * 1e-3 rounded to 6 decimals and kept
// within (0, 0.001].
func Probability(distance float64) float64 {
	p := math.Exp(-(distance*distance)/(2*probabilitySigma*probabilitySigma)) * probabilityPeak
	return math.Max(probabilityFloor, round(p, 6))
}

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
