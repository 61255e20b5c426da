package main

import (
	"io"
	"log/slog"

	"github.com/vigneswari-developer/isstracker/internal/clock"
	"github.com/vigneswari-developer/isstracker/internal/collision"
	"github.com/vigneswari-developer/isstracker/internal/config"
	"github.com/vigneswari-developer/isstracker/internal/geocode"
	"github.com/vigneswari-developer/isstracker/internal/iss"
	"github.com/vigneswari-developer/isstracker/internal/logging"
	"github.com/vigneswari-developer/isstracker/internal/n2yo"
	"github.com/vigneswari-developer/isstracker/internal/passes"
	"github.com/vigneswari-developer/isstracker/internal/quota"
	"github.com/vigneswari-developer/isstracker/internal/tracker"
)

// app owns the services built from one loaded config.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	clock   clock.System
	closers []func() error
}

func newApp(cfgPath, logLevel string, logOut io.Writer) (*app, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	loc, err := clock.LoadLocation(cfg.Time.Zone)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:    cfg,
		logger: logging.New(logOut, logging.ParseLevel(cfg.Logging.Level), cfg.Logging.Format),
		clock:  clock.NewSystem(loc),
	}, nil
}

func (a *app) Close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.logger.Warn("closing resource failed", "error", err)
		}
	}
}

// quotaTracker returns nil when quota accounting is disabled.
func (a *app) quotaTracker() (quota.Tracker, error) {
	q := a.cfg.Quota
	if !q.Enabled {
		return nil, nil
	}
	if q.RedisURL == "" {
		return quota.NewMemory(q.Limit, q.Window), nil
	}

	r, err := quota.NewRedis(q.RedisURL, q.Limit, q.Window)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, r.Close)
	a.logger.Info("quota tracking via redis", "limit", q.Limit, "window", q.Window.String())
	return r, nil
}

// resolver builds the pass pipeline. simulated forces the fallback path.
func (a *app) resolver(simulated bool) (*passes.Resolver, error) {
	p := a.cfg.Passes
	liveEnabled := p.LiveEnabled && !simulated

	var live passes.LiveSource
	if liveEnabled {
		if p.APIKey == "" {
			a.logger.Warn("live passes enabled without passes.api_key; every request will fall back")
		}
		live = n2yo.NewClient(n2yo.Config{
			APIKey:       p.APIKey,
			BaseURL:      p.BaseURL,
			SatelliteID:  p.SatelliteID,
			ObserverAlt:  p.ObserverAlt,
			MinElevation: p.MinElevation,
			Timeout:      p.Timeout,
		}, a.clock, a.logger)
	}

	tr, err := a.quotaTracker()
	if err != nil {
		return nil, err
	}

	return passes.NewResolver(
		passes.ResolverConfig{LiveEnabled: liveEnabled, Seed: p.Seed},
		live,
		passes.NewGenerator(a.clock),
		tr,
		a.logger,
	), nil
}

func (a *app) estimator() (*collision.Estimator, error) {
	cat := collision.DefaultCatalog()
	if path := a.cfg.Collision.CatalogFile; path != "" {
		loaded, err := collision.LoadCatalog(path)
		if err != nil {
			return nil, err
		}
		cat = loaded
		a.logger.Info("loaded collision catalog", "path", path, "objects", len(cat.Objects))
	}
	return collision.NewEstimator(cat, a.clock), nil
}

func (a *app) geocoder() *geocode.Client {
	s := a.cfg.Services
	return geocode.NewClient(geocode.Config{
		BaseURL:   s.NominatimURL,
		UserAgent: s.UserAgent,
		Timeout:   s.GeocodeTimeout,
	}, a.logger)
}

func (a *app) position() *iss.PositionClient {
	return iss.NewPositionClient(a.cfg.Services.ISSPositionURL, a.cfg.Services.ISSTimeout, a.logger)
}

func (a *app) roster() *iss.RosterClient {
	return iss.NewRosterClient(a.cfg.Services.AstronautsURL, a.cfg.Services.AstronautsTimeout, a.logger)
}

func (a *app) trackerService(res *passes.Resolver, est *collision.Estimator) *tracker.Service {
	return tracker.NewService(tracker.Config{
		PassCount:  a.cfg.Passes.Count,
		WindowDays: a.cfg.Collision.WindowDays,
		Seed:       a.cfg.Passes.Seed,
	}, a.geocoder(), res, a.position(), a.roster(), est, a.logger)
}
