package passes

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/vigneswari-developer/isstracker/internal/metrics"
	"github.com/vigneswari-developer/isstracker/internal/quota"
)

// ResolverConfig controls which path the resolver attempts first.
type ResolverConfig struct {
	LiveEnabled bool
	Seed        *uint64 // fixed seed for reproducible synthetic output
}

// Resolver turns a pass request into a non-empty list of passes. It tries
// the live source when enabled and falls back to the synthetic generator on
// any non-success outcome.
//
//	LiveAttempt --success--> done
//	LiveAttempt --failure/disabled--> Fallback --> done
type Resolver struct {
	cfg    ResolverConfig
	live   LiveSource
	gen    *Generator
	quota  quota.Tracker
	logger *slog.Logger
}

// NewResolver creates a Resolver. live may be nil when live prediction is
// disabled; tracker may be nil to skip quota accounting.
func NewResolver(cfg ResolverConfig, live LiveSource, gen *Generator, tracker quota.Tracker, logger *slog.Logger) *Resolver {
	return &Resolver{
		cfg:    cfg,
		live:   live,
		gen:    gen,
		quota:  tracker,
		logger: logger.With("component", "passes"),
	}
}

// LiveEnabled reports whether live prediction will be attempted.
func (r *Resolver) LiveEnabled() bool {
	return r.cfg.LiveEnabled && r.live != nil
}

// Resolve returns upcoming passes for (lat, lon). It never fails: every
// live failure becomes a synthetic list of the same length.
func (r *Resolver) Resolve(ctx context.Context, lat, lon float64, count int) Resolution {
	if !r.LiveEnabled() {
		return r.fallback(ctx, count, OutcomeLiveDisabled, nil)
	}

	if r.quota != nil {
		usage, err := r.quota.Reserve(ctx)
		switch {
		case err != nil:
			r.logger.Warn("quota tracker unavailable, attempting live prediction", "error", err)
		case !usage.Allowed:
			r.logger.Warn("live quota exhausted, using simulated passes",
				"used", usage.Used,
				"limit", usage.Limit,
			)
			return r.fallback(ctx, count, OutcomeRateLimited, nil)
		default:
			metrics.SetQuotaUsed(usage.Used)
		}
	}

	events, outcome, err := r.live.FetchPasses(ctx, lat, lon, count)
	if outcome != OutcomeSuccess || len(events) == 0 {
		if outcome == OutcomeSuccess {
			outcome = OutcomeEmptyResult
		}
		return r.fallback(ctx, count, outcome, err)
	}

	r.logger.Info("resolved live passes", "count", len(events))
	metrics.ObservePassResolution(string(PathLive), string(OutcomeSuccess))

	return Resolution{
		Passes:    events,
		Path:      PathLive,
		Outcome:   OutcomeSuccess,
		QuotaUsed: r.quotaUsed(ctx),
	}
}

func (r *Resolver) fallback(ctx context.Context, count int, outcome Outcome, cause error) Resolution {
	attrs := []any{"reason", string(outcome), "count", count}
	if cause != nil {
		attrs = append(attrs, "error", cause)
	}
	if outcome == OutcomeLiveDisabled {
		r.logger.Debug("live prediction disabled, using simulated passes", attrs...)
	} else {
		r.logger.Warn("live prediction unavailable, falling back to simulated passes", attrs...)
	}
	metrics.ObservePassResolution(string(PathFallback), string(outcome))

	return Resolution{
		Passes:    r.gen.Generate(r.rng(), count, time.Time{}),
		Path:      PathFallback,
		Outcome:   outcome,
		QuotaUsed: r.quotaUsed(ctx),
	}
}

func (r *Resolver) rng() *rand.Rand {
	if r.cfg.Seed != nil {
		return SeededRand(*r.cfg.Seed)
	}
	return NewRand()
}

// quotaUsed reports the current window usage, or -1 when untracked.
func (r *Resolver) quotaUsed(ctx context.Context) int64 {
	if r.quota == nil {
		return -1
	}
	u, err := r.quota.Usage(ctx)
	if err != nil {
		return -1
	}
	return u.Used
}
