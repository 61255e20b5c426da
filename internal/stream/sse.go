// Package stream serves the live ISS position as Server-Sent Events on
// GET /api/v1/iss/stream.
//
// Message format:
//
//	data: {"type":"position","position":{...},"place_name":"Over the Indian Ocean"}\n\n
//	data: {"type":"error","error":"ISS position unavailable"}\n\n
//
// A retry hint is sent first, then a position immediately and one every
// interval. Keep-alive comments (:\n\n) fill gaps longer than
// KeepaliveInterval.
package stream

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/vigneswari-developer/isstracker/internal/httputil"
	"github.com/vigneswari-developer/isstracker/internal/iss"
	"github.com/vigneswari-developer/isstracker/internal/metrics"
)

// PositionSource reports where the ISS is now.
type PositionSource interface {
	Current(ctx context.Context) (iss.Position, error)
}

// Describer names the place under a coordinate.
type Describer interface {
	Describe(ctx context.Context, lat, lon float64) string
}

// Config holds streaming settings.
type Config struct {
	Interval           time.Duration // Default time between positions (default: 5s).
	KeepaliveInterval  time.Duration // Keep-alive ping interval (default: 30s).
	MaxConcurrentPerIP int           // Max concurrent streams per IP (default: 2).
	MaxConcurrent      int           // Max concurrent streams overall (default: 50).
	TrustProxy         bool
}

// Handler manages SSE streaming connections.
type Handler struct {
	source    PositionSource
	describer Describer
	config    Config
	limiter   *httputil.Limiter
	logger    *slog.Logger
}

// NewHandler creates a streaming handler. describer may be nil, in which case
// messages carry no place name.
func NewHandler(source PositionSource, describer Describer, config Config, logger *slog.Logger) *Handler {
	if config.Interval <= 0 {
		config.Interval = 5 * time.Second
	}
	if config.KeepaliveInterval <= 0 {
		config.KeepaliveInterval = 30 * time.Second
	}
	if config.MaxConcurrentPerIP <= 0 {
		config.MaxConcurrentPerIP = 2
	}
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = 50
	}
	return &Handler{
		source:    source,
		describer: describer,
		config:    config,
		limiter:   httputil.NewLimiter(config.MaxConcurrentPerIP, config.MaxConcurrent),
		logger:    logger.With("component", "stream"),
	}
}

type positionMessage struct {
	Type      string        `json:"type"`
	Position  *iss.Position `json:"position,omitempty"`
	PlaceName string        `json:"place_name,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// HandlePosition serves the SSE position stream.
// GET /api/v1/iss/stream?interval=5
func (h *Handler) HandlePosition(w http.ResponseWriter, r *http.Request) {
	interval := h.config.Interval
	if r.URL.Query().Get("interval") != "" {
		n, err := httputil.IntQuery(r, "interval", 0, 1, 60)
		if err != nil {
			httputil.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		interval = time.Duration(n) * time.Second
	}

	ip := httputil.ClientIP(r, h.config.TrustProxy)
	if !h.limiter.Acquire(ip) {
		metrics.IncStreamErrors("rate_limit")
		h.logger.Warn("stream rate limit exceeded",
			"remote_ip", ip,
			"current_count", h.limiter.Count(ip),
		)
		w.Header().Set("Retry-After", "30")
		httputil.WriteError(w, http.StatusTooManyRequests, "too many concurrent streams")
		return
	}

	metrics.IncStreamsActive()
	startTime := time.Now()
	h.logger.Info("stream connected",
		"remote_ip", ip,
		"user_agent", r.Header.Get("User-Agent"),
		"interval", interval.String(),
	)

	c := &client{
		w:      w,
		rc:     http.NewResponseController(w),
		ip:     ip,
		logger: h.logger,
	}

	defer func() {
		h.limiter.Release(ip)
		metrics.DecStreamsActive()
		h.logger.Info("stream disconnected",
			"remote_ip", ip,
			"duration_seconds", int(time.Since(startTime).Seconds()),
			"messages", c.messagesSent,
		)
	}()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering.
	w.WriteHeader(http.StatusOK)
	if err := c.rc.Flush(); err != nil {
		if errors.Is(err, http.ErrNotSupported) {
			h.logger.Error("streaming not supported by response writer")
		}
		return
	}

	// Jittered retry (3-7s) spreads reconnects after a restart.
	if err := c.sendRetry(3000 + rand.IntN(4000)); err != nil {
		metrics.IncStreamErrors("send_error")
		return
	}

	ctx := r.Context()
	if err := h.sendPosition(ctx, c); err != nil {
		metrics.IncStreamErrors("send_error")
		h.logger.Warn("stream send error", "remote_ip", ip, "error", err)
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	keepaliveTicker := time.NewTicker(h.config.KeepaliveInterval)
	defer keepaliveTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			if err := h.sendPosition(ctx, c); err != nil {
				metrics.IncStreamErrors("send_error")
				h.logger.Warn("stream send error", "remote_ip", ip, "error", err)
				return
			}
			keepaliveTicker.Reset(h.config.KeepaliveInterval)

		case <-keepaliveTicker.C:
			if err := c.sendKeepalive(); err != nil {
				metrics.IncStreamErrors("send_error")
				h.logger.Warn("stream keepalive error", "remote_ip", ip, "error", err)
				return
			}
		}
	}
}

// sendPosition fetches and sends one position. An upstream failure is sent
// to the client as an error message and does not end the stream.
func (h *Handler) sendPosition(ctx context.Context, c *client) error {
	pos, err := h.source.Current(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		metrics.IncStreamErrors("upstream")
		h.logger.Debug("stream position fetch failed", "remote_ip", c.ip, "error", err)
		return c.sendJSON(positionMessage{Type: "error", Error: "ISS position unavailable"})
	}

	msg := positionMessage{Type: "position", Position: &pos}
	if h.describer != nil {
		msg.PlaceName = h.describer.Describe(ctx, pos.Lat, pos.Lon)
	}
	return c.sendJSON(msg)
}
