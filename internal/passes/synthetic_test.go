package passes

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vigneswari-developer/isstracker/internal/clock"
)

var (
	testStart = time.Date(2025, 2, 14, 12, 0, 0, 0, time.UTC)
	testIST   = time.FixedZone("IST", 5*3600+1800)
)

func testGenerator() *Generator {
	return NewGenerator(clock.Fixed{At: testStart, Loc: testIST})
}

func TestGenerateDeterministicWithSeed(t *testing.T) {
	g := testGenerator()
	for _, count := range []int{0, 1, 5, 25} {
		a := g.Generate(SeededRand(42), count, testStart)
		b := g.Generate(SeededRand(42), count, testStart)
		assert.Equal(t, a, b, "count=%d", count)
		assert.Len(t, a, count)
	}
}

func TestGenerateDifferentSeedsDiffer(t *testing.T) {
	g := testGenerator()
	a := g.Generate(SeededRand(1), 10, testStart)
	b := g.Generate(SeededRand(2), 10, testStart)
	assert.NotEqual(t, a, b)
}

func TestGenerateBounds(t *testing.T) {
	g := testGenerator()
	for seed := uint64(0); seed < 200; seed++ {
		for i, p := range g.Generate(SeededRand(seed), 20, testStart) {
			require.NotNil(t, p.MaxElevationDeg)
			elev := *p.MaxElevationDeg
			assert.GreaterOrEqual(t, p.DurationSeconds, 120, "seed %d pass %d", seed, i)
			assert.LessOrEqual(t, p.DurationSeconds, 900, "seed %d pass %d", seed, i)
			assert.GreaterOrEqual(t, elev, 10.0, "seed %d pass %d", seed, i)
			assert.LessOrEqual(t, elev, 85.0, "seed %d pass %d", seed, i)
			assert.InDelta(t, elev, float64(int(elev*10+0.5))/10, 1e-9, "elevation rounded to 0.1")
			assert.Equal(t, SourceSimulated, p.Source)
		}
	}
}

func TestGenerateTimeWindowsAndSpacing(t *testing.T) {
	g := testGenerator()
	events := g.Generate(SeededRand(7), 50, testStart)

	prevDay := testStart.Truncate(24 * time.Hour)
	for i, p := range events {
		h := p.UTC.Hour()
		evening := h >= 18 && h <= 23
		morning := h >= 4 && h <= 7
		assert.True(t, evening || morning, "pass %d hour %d outside windows", i, h)

		day := p.UTC.Truncate(24 * time.Hour)
		gap := int(day.Sub(prevDay).Hours() / 24)
		assert.GreaterOrEqual(t, gap, 1, "pass %d", i)
		assert.LessOrEqual(t, gap, 4, "pass %d", i)
		prevDay = day
	}
}

func TestGenerateDualTimestamps(t *testing.T) {
	g := testGenerator()
	for _, p := range g.Generate(SeededRand(3), 5, testStart) {
		assert.True(t, p.UTC.Equal(p.Local), "UTC and local must be the same instant")
		assert.Equal(t, time.UTC, p.UTC.Location())
		assert.Equal(t, testIST, p.Local.Location())
		assert.Equal(t, p.Local.Format(clock.DisplayLayout), p.DisplayTime)
	}
}

func TestGenerateZeroStartUsesClock(t *testing.T) {
	g := testGenerator()
	a := g.Generate(SeededRand(9), 3, time.Time{})
	b := g.Generate(SeededRand(9), 3, testStart)
	assert.Equal(t, b, a)
}

func TestGenerateNegativeCount(t *testing.T) {
	assert.Empty(t, testGenerator().Generate(SeededRand(1), -3, testStart))
}
