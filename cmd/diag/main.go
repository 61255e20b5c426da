// Command diag probes every upstream service once with the configured
// settings and prints one OK/FAIL line per service.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/vigneswari-developer/isstracker/internal/clock"
	"github.com/vigneswari-developer/isstracker/internal/config"
	"github.com/vigneswari-developer/isstracker/internal/geocode"
	"github.com/vigneswari-developer/isstracker/internal/iss"
	"github.com/vigneswari-developer/isstracker/internal/logging"
	"github.com/vigneswari-developer/isstracker/internal/n2yo"
	"github.com/vigneswari-developer/isstracker/internal/output"
	"github.com/vigneswari-developer/isstracker/internal/passes"
	"github.com/vigneswari-developer/isstracker/internal/quota"
)

type probe struct {
	name string
	run  func(ctx context.Context) (string, error)
}

func main() {
	cfgPath := flag.String("config", "", "config file")
	city := flag.String("city", "London", "city used for the geocoding probe")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		output.Error(os.Stderr, "config: %v", err)
		os.Exit(1)
	}

	if failed := runProbes(context.Background(), os.Stdout, probes(cfg, *city)); failed > 0 {
		os.Exit(1)
	}
}

func probes(cfg *config.Config, city string) []probe {
	logger := logging.Discard()
	c := clock.NewSystem(nil)
	s := cfg.Services

	geo := geocode.NewClient(geocode.Config{BaseURL: s.NominatimURL, UserAgent: s.UserAgent, Timeout: s.GeocodeTimeout}, logger)
	pos := iss.NewPositionClient(s.ISSPositionURL, s.ISSTimeout, logger)
	roster := iss.NewRosterClient(s.AstronautsURL, s.AstronautsTimeout, logger)

	list := []probe{
		{"nominatim", func(ctx context.Context) (string, error) {
			p, err := geo.Geocode(ctx, city)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%s -> %.4f, %.4f", city, p.Lat, p.Lon), nil
		}},
		{"wheretheiss", func(ctx context.Context) (string, error) {
			p, err := pos.Current(ctx)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("ISS at %.2f, %.2f (%.0f km)", p.Lat, p.Lon, p.AltitudeKm), nil
		}},
		{"open-notify", func(ctx context.Context) (string, error) {
			r, err := roster.Current(ctx)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%d people in space", r.Count), nil
		}},
	}

	if cfg.Passes.APIKey != "" {
		live := n2yo.NewClient(n2yo.Config{
			APIKey:       cfg.Passes.APIKey,
			BaseURL:      cfg.Passes.BaseURL,
			SatelliteID:  cfg.Passes.SatelliteID,
			MinElevation: cfg.Passes.MinElevation,
			Timeout:      cfg.Passes.Timeout,
		}, c, logger)
		list = append(list, probe{"n2yo", func(ctx context.Context) (string, error) {
			events, outcome, err := live.FetchPasses(ctx, 51.5074, -0.1278, 1)
			if outcome == passes.OutcomeEmptyResult {
				return "reachable, no passes in window", nil
			}
			if err != nil {
				return "", fmt.Errorf("%s: %w", outcome, err)
			}
			return "next pass " + events[0].DisplayTime, nil
		}})
	}

	if cfg.Quota.Enabled && cfg.Quota.RedisURL != "" {
		list = append(list, probe{"redis", func(ctx context.Context) (string, error) {
			r, err := quota.NewRedis(cfg.Quota.RedisURL, cfg.Quota.Limit, cfg.Quota.Window)
			if err != nil {
				return "", err
			}
			defer r.Close()
			u, err := r.Usage(ctx)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("quota %d/%d used", u.Used, u.Limit), nil
		}})
	}

	return list
}

// runProbes executes each probe and returns the number that failed.
func runProbes(ctx context.Context, w io.Writer, list []probe) int {
	failed := 0
	for _, p := range list {
		start := time.Now()
		detail, err := p.run(ctx)
		elapsed := time.Since(start).Round(time.Millisecond)
		if err != nil {
			failed++
			output.Error(w, "%-12s FAIL %6s  %v", p.name, elapsed, err)
			continue
		}
		output.Success(w, "%-12s OK   %6s  %s", p.name, elapsed, detail)
	}
	return failed
}
