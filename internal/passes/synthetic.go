package passes

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/vigneswari-developer/isstracker/internal/clock"
)

const (
	eveningStartProb = 0.65 // chance the first pass falls in the evening window
	keepPhaseProb    = 0.85 // chance consecutive passes stay in the same window

	minDurationSec = 120
	maxDurationSec = 900
	minElevation   = 10.0
	maxElevation   = 85.0
)

// dayGaps is sampled uniformly; duplicates bias spacing toward 1-2 days.
var dayGaps = []int{1, 1, 2, 2, 3, 4}

// SeededRand returns a deterministic random source for reproducible output.
func SeededRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// NewRand returns a nondeterministically seeded random source.
func NewRand() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// Generator produces plausible pass windows without orbital computation:
// evening or early-morning passes spaced a few days apart.
type Generator struct {
	clock clock.Clock
}

// NewGenerator creates a Generator using c for "now" and the display zone.
func NewGenerator(c clock.Clock) *Generator {
	return &Generator{clock: c}
}

// Generate returns count synthetic passes after start. A zero start means the
// clock's current instant. Output depends only on rng's state, count, start
// and the display zone.
func (g *Generator) Generate(rng *rand.Rand, count int, start time.Time) []PassEvent {
	if count <= 0 {
		return []PassEvent{}
	}
	if start.IsZero() {
		start = g.clock.Now()
	}
	loc := g.clock.Location()

	current := start.UTC()
	evening := rng.Float64() < eveningStartProb
	events := make([]PassEvent, 0, count)

	for i := 0; i < count; i++ {
		current = current.AddDate(0, 0, dayGaps[rng.IntN(len(dayGaps))])

		if rng.Float64() >= keepPhaseProb {
			evening = !evening
		}

		var hour int
		if evening {
			hour = 18 + rng.IntN(6) // 18:00-23:59
		} else {
			hour = 4 + rng.IntN(4) // 04:00-07:59
		}
		minute := rng.IntN(60)
		second := rng.IntN(60)

		utc := time.Date(current.Year(), current.Month(), current.Day(), hour, minute, second, 0, time.UTC)
		local := utc.In(loc)

		elev := math.Round(clampFloat(rng.NormFloat64()*15+45, minElevation, maxElevation)*10) / 10
		jitter := rng.IntN(121) - 60
		duration := clampInt(int(120+elev*6+float64(jitter)), minDurationSec, maxDurationSec)

		events = append(events, PassEvent{
			DisplayTime:     local.Format(clock.DisplayLayout),
			UTC:             utc,
			Local:           local,
			DurationSeconds: duration,
			MaxElevationDeg: &elev,
			Source:          SourceSimulated,
		})
	}

	return events
}

func clampFloat(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(hi, v))
}
