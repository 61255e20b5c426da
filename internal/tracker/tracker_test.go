package tracker

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vigneswari-developer/isstracker/internal/clock"
	"github.com/vigneswari-developer/isstracker/internal/collision"
	"github.com/vigneswari-developer/isstracker/internal/geocode"
	"github.com/vigneswari-developer/isstracker/internal/iss"
	"github.com/vigneswari-developer/isstracker/internal/logging"
	"github.com/vigneswari-developer/isstracker/internal/passes"
	"github.com/vigneswari-developer/isstracker/internal/transform"
)

type fakeGeocoder struct {
	place       geocode.Place
	err         error
	describeArg *transform.Point
}

func (f *fakeGeocoder) Geocode(ctx context.Context, q string) (geocode.Place, error) {
	return f.place, f.err
}

func (f *fakeGeocoder) Describe(ctx context.Context, lat, lon float64) string {
	f.describeArg = &transform.Point{Lat: lat, Lon: lon}
	return "Over the Pacific Ocean"
}

type fakeResolver struct {
	calls int
	count int
}

func (f *fakeResolver) Resolve(ctx context.Context, lat, lon float64, count int) passes.Resolution {
	f.calls++
	f.count = count
	gen := passes.NewGenerator(clock.Fixed{At: time.Date(2025, 2, 14, 0, 0, 0, 0, time.UTC)})
	return passes.Resolution{
		Passes:    gen.Generate(passes.SeededRand(1), count, time.Time{}),
		Path:      passes.PathFallback,
		Outcome:   passes.OutcomeLiveDisabled,
		QuotaUsed: -1,
	}
}

type fakePosition struct {
	pos   iss.Position
	err   error
	calls int
}

func (f *fakePosition) Current(ctx context.Context) (iss.Position, error) {
	f.calls++
	return f.pos, f.err
}

type fakeRoster struct {
	roster iss.Roster
	err    error
}

func (f *fakeRoster) Current(ctx context.Context) (iss.Roster, error) {
	return f.roster, f.err
}

type fakeRisks struct{ days int }

func (f *fakeRisks) Estimate(rng *rand.Rand, days int) []collision.RiskEvent {
	f.days = days
	return []collision.RiskEvent{{ObjectName: "ATLAS V R/B", MissDistanceKm: 12.04, Level: collision.LevelMedium}}
}

type fixture struct {
	geo      *fakeGeocoder
	resolver *fakeResolver
	position *fakePosition
	roster   *fakeRoster
	risks    *fakeRisks
	svc      *Service
}

func newFixture() *fixture {
	f := &fixture{
		geo:      &fakeGeocoder{place: geocode.Place{Lat: 40, Lon: -74, Address: "New York, United States"}},
		resolver: &fakeResolver{},
		position: &fakePosition{pos: iss.Position{Lat: 20, Lon: 10, AltitudeKm: 420}},
		roster: &fakeRoster{roster: iss.Roster{Count: 2, People: []iss.Person{
			{Name: "A", Craft: "ISS"}, {Name: "B", Craft: "ISS"},
		}}},
		risks: &fakeRisks{},
	}
	f.svc = NewService(Config{PassCount: 5, WindowDays: 3}, f.geo, f.resolver, f.position, f.roster, f.risks, logging.Discard())
	return f
}

func TestLookupFullReport(t *testing.T) {
	f := newFixture()

	rep, err := f.svc.Lookup(context.Background(), "  New York ")
	require.NoError(t, err)

	assert.Equal(t, "New York", rep.City)
	assert.Equal(t, "New York, United States", rep.Address)
	assert.Equal(t, transform.Point{Lat: 40, Lon: -74}, rep.User)
	assert.Len(t, rep.Passes.Passes, 5)
	assert.Equal(t, 5, f.resolver.count)

	require.NotNil(t, rep.ISS)
	assert.Equal(t, "Over the Pacific Ocean", rep.PlaceName)
	assert.Equal(t, &transform.Point{Lat: 20, Lon: 10}, f.geo.describeArg)
	assert.Equal(t, transform.Point{Lat: 30, Lon: -32}, rep.MapCenter)
	require.NotNil(t, rep.Relation)
	assert.Greater(t, rep.Relation.DistanceKm, 0.0)

	assert.Len(t, rep.Risks, 1)
	assert.Equal(t, 3, f.risks.days)

	require.NotNil(t, rep.AstronautCount)
	assert.Equal(t, 2, *rep.AstronautCount)
	assert.Equal(t, []string{"A", "B"}, rep.AstronautNames)
	assert.Equal(t, "—", rep.APICount)
}

func TestLookupEmptyCity(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Lookup(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyCity)
	assert.Zero(t, f.resolver.calls)
}

func TestLookupStopsWhenNotFound(t *testing.T) {
	for _, cause := range []error{geocode.ErrNotFound, errors.New("timeout")} {
		f := newFixture()
		f.geo.err = cause

		_, err := f.svc.Lookup(context.Background(), "Atlantis")
		assert.ErrorIs(t, err, ErrLocationNotFound)
		assert.ErrorIs(t, err, cause)
		assert.Zero(t, f.resolver.calls, "no pass resolution after geocoding failure")
		assert.Zero(t, f.position.calls)
	}
}

func TestLookupDegradesWithoutISSAndRoster(t *testing.T) {
	f := newFixture()
	f.position.err = errors.New("unreachable")
	f.roster.err = errors.New("unreachable")

	rep, err := f.svc.Lookup(context.Background(), "Paris")
	require.NoError(t, err)

	assert.Nil(t, rep.ISS)
	assert.Nil(t, rep.Relation)
	assert.Equal(t, UnavailablePlace, rep.PlaceName)
	assert.Nil(t, f.geo.describeArg, "no reverse geocode without a position")
	assert.Equal(t, rep.User, rep.MapCenter)
	assert.Nil(t, rep.AstronautCount)
	assert.Empty(t, rep.AstronautNames)
	assert.Len(t, rep.Passes.Passes, 5)
	assert.Len(t, rep.Risks, 1)
}

func TestAPICount(t *testing.T) {
	assert.Equal(t, "—", apiCount(-1))
	assert.Equal(t, "0", apiCount(0))
	assert.Equal(t, "42", apiCount(42))
}
