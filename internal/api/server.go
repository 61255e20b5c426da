package api

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/cors"

	"github.com/vigneswari-developer/isstracker/internal/health"
	"github.com/vigneswari-developer/isstracker/internal/httputil"
	"github.com/vigneswari-developer/isstracker/internal/metrics"
	"github.com/vigneswari-developer/isstracker/internal/tracker"
)

// Config holds server settings.
type Config struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	TrustProxy   bool
	CORSOrigins  []string

	// MaxLookupsPerIP caps concurrent lookups per client; <= 0 disables it.
	MaxLookupsPerIP int
	MaxLookups      int

	PassCount  int // default for /api/v1/passes
	WindowDays int // default for /api/v1/collisions
	Seed       *uint64
}

// Lookuper runs a full city lookup.
type Lookuper interface {
	Lookup(ctx context.Context, city string) (*tracker.Report, error)
}

// Describer names the place under a coordinate.
type Describer interface {
	Describe(ctx context.Context, lat, lon float64) string
}

// Resolver resolves passes and reports the active mode.
type Resolver interface {
	tracker.PassResolver
	LiveEnabled() bool
}

// Deps are the services the handlers call.
type Deps struct {
	Tracker   Lookuper
	Resolver  Resolver
	Risks     tracker.RiskEstimator
	Position  tracker.PositionSource
	Describer Describer

	// Stream serves GET /api/v1/iss/stream when set.
	Stream http.HandlerFunc
}

// Server holds the HTTP server and its dependencies.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates a configured HTTP server. content must hold
// templates/*.html and static/.
func NewServer(cfg Config, deps Deps, content fs.FS, logger *slog.Logger) (*Server, error) {
	logger = logger.With("component", "api")

	pages, err := parsePages(content)
	if err != nil {
		return nil, err
	}
	static, err := fs.Sub(content, "static")
	if err != nil {
		return nil, fmt.Errorf("static assets: %w", err)
	}

	h := &handlers{cfg: cfg, deps: deps, pages: pages, logger: logger}

	var limiter *httputil.Limiter
	if cfg.MaxLookupsPerIP > 0 {
		maxTotal := cfg.MaxLookups
		if maxTotal <= 0 {
			maxTotal = 100
		}
		limiter = httputil.NewLimiter(cfg.MaxLookupsPerIP, maxTotal)
	}

	mux := http.NewServeMux()

	// Register routes.
	mux.HandleFunc("GET /healthz", health.Healthz)
	mux.HandleFunc("GET /readyz", health.Readyz(deps.Resolver.LiveEnabled))
	mux.Handle("GET /metrics", metrics.Handler())
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))

	mux.HandleFunc("GET /{$}", h.indexPage)
	mux.HandleFunc("POST /{$}", limiter.Limit(cfg.TrustProxy, "too many concurrent lookups", h.lookupPage))

	mux.HandleFunc("GET /api/v1/passes", h.passes)
	mux.HandleFunc("GET /api/v1/collisions", h.collisions)
	mux.HandleFunc("GET /api/v1/iss", h.issPosition)
	if deps.Stream != nil {
		mux.HandleFunc("GET /api/v1/iss/stream", deps.Stream)
	}
	mux.HandleFunc("GET /api/v1/lookup", limiter.Limit(cfg.TrustProxy, "too many concurrent lookups", h.lookup))

	// Build middleware chain: metrics -> logging -> request id -> cors -> mux.
	var handler http.Handler = mux
	if len(cfg.CORSOrigins) > 0 {
		handler = cors.New(cors.Options{
			AllowedOrigins: cfg.CORSOrigins,
			AllowedMethods: []string{http.MethodGet},
		}).Handler(handler)
	}
	handler = requestIDMiddleware(handler)
	handler = loggingMiddleware(logger, cfg.TrustProxy)(handler)
	handler = metrics.Middleware(handler)

	return &Server{
		httpServer: &http.Server{
			Addr:              cfg.Addr,
			Handler:           handler,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
		},
		logger: logger,
	}, nil
}

// HTTPServer returns the underlying *http.Server for external control (e.g. shutdown).
func (s *Server) HTTPServer() *http.Server {
	return s.httpServer
}

// Handler returns the root handler with all middleware applied.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

func parsePages(content fs.FS) (*template.Template, error) {
	funcs := template.FuncMap{
		"coord": func(v float64) string { return strconv.FormatFloat(v, 'f', 4, 64) },
		"duration": func(sec int) string {
			if sec <= 0 {
				return "—"
			}
			return fmt.Sprintf("%dm %02ds", sec/60, sec%60)
		},
		"elevation": func(v *float64) string {
			if v == nil {
				return "—"
			}
			return fmt.Sprintf("%.1f°", *v)
		},
		"deref": func(v *int) int {
			if v == nil {
				return 0
			}
			return *v
		},
	}
	t, err := template.New("pages").Funcs(funcs).ParseFS(content, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}
	return t, nil
}

// probePath returns true for health/readiness probe paths that should not log at INFO.
func probePath(path string) bool {
	return path == "/healthz" || path == "/readyz"
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.statusCode = code
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Unwrap() http.ResponseWriter {
	return sr.ResponseWriter
}

func loggingMiddleware(logger *slog.Logger, trustProxy bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sr := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(sr, r)

			duration := time.Since(start)
			level := slog.LevelInfo
			if probePath(r.URL.Path) {
				level = slog.LevelDebug
			}

			logger.Log(r.Context(), level, "request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", strconv.Itoa(sr.statusCode),
				"duration_ms", duration.Milliseconds(),
				"remote_ip", httputil.ClientIP(r, trustProxy),
				"request_id", sr.Header().Get(requestIDHeader),
			)
		})
	}
}

const requestIDHeader = "X-Request-ID"

type contextKey string

const requestIDKey = contextKey("request-id")

// requestIDMiddleware propagates X-Request-ID or assigns a new UUID.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

// RequestID returns the request ID stored by the middleware, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
