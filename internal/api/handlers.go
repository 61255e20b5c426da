package api

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strings"

	"github.com/vigneswari-developer/isstracker/internal/collision"
	"github.com/vigneswari-developer/isstracker/internal/httputil"
	"github.com/vigneswari-developer/isstracker/internal/iss"
	"github.com/vigneswari-developer/isstracker/internal/passes"
	"github.com/vigneswari-developer/isstracker/internal/tracker"
)

const (
	errEmptyCityMsg = "Please enter a valid city name."
	maxWindowDays   = 30
)

type handlers struct {
	cfg    Config
	deps   Deps
	pages  *template.Template
	logger *slog.Logger
}

type indexData struct {
	City  string
	Error string
}

func (h *handlers) indexPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "index.html", indexData{})
}

func (h *handlers) lookupPage(w http.ResponseWriter, r *http.Request) {
	city := strings.TrimSpace(r.PostFormValue("city"))

	rep, err := h.deps.Tracker.Lookup(r.Context(), city)
	switch {
	case errors.Is(err, tracker.ErrEmptyCity):
		h.render(w, r, http.StatusBadRequest, "index.html", indexData{Error: errEmptyCityMsg})
		return
	case err != nil:
		h.render(w, r, http.StatusNotFound, "index.html", indexData{
			City:  city,
			Error: fmt.Sprintf("Could not find location for '%s'.", city),
		})
		return
	}

	h.render(w, r, http.StatusOK, "results.html", rep)
}

// render executes into a buffer so a template error never leaves a
// half-written page.
func (h *handlers) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := h.pages.ExecuteTemplate(&buf, name, data); err != nil {
		h.logger.Error("rendering page failed", "page", name, "error", err, "request_id", RequestID(r.Context()))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func (h *handlers) passes(w http.ResponseWriter, r *http.Request) {
	lat, err := httputil.FloatQuery(r, "lat", -90, 90)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	lon, err := httputil.FloatQuery(r, "lon", -180, 180)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	count, err := httputil.IntQuery(r, "count", h.cfg.PassCount, 1, 10)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	httputil.WriteJSON(w, http.StatusOK, h.deps.Resolver.Resolve(r.Context(), lat, lon, count))
}

type collisionsResponse struct {
	WindowDays int                   `json:"window_days"`
	Risks      []collision.RiskEvent `json:"risks"`
}

func (h *handlers) collisions(w http.ResponseWriter, r *http.Request) {
	days, err := httputil.IntQuery(r, "days", h.cfg.WindowDays, 0, maxWindowDays)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	httputil.WriteJSON(w, http.StatusOK, collisionsResponse{
		WindowDays: days,
		Risks:      h.deps.Risks.Estimate(h.rng(), days),
	})
}

type issResponse struct {
	Position  iss.Position `json:"position"`
	PlaceName string       `json:"place_name"`
}

func (h *handlers) issPosition(w http.ResponseWriter, r *http.Request) {
	pos, err := h.deps.Position.Current(r.Context())
	if err != nil {
		httputil.WriteError(w, http.StatusServiceUnavailable, "ISS position unavailable")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, issResponse{
		Position:  pos,
		PlaceName: h.deps.Describer.Describe(r.Context(), pos.Lat, pos.Lon),
	})
}

func (h *handlers) lookup(w http.ResponseWriter, r *http.Request) {
	city := r.URL.Query().Get("city")

	rep, err := h.deps.Tracker.Lookup(r.Context(), city)
	switch {
	case errors.Is(err, tracker.ErrEmptyCity):
		httputil.WriteError(w, http.StatusBadRequest, "missing city parameter")
	case err != nil:
		httputil.WriteError(w, http.StatusNotFound, fmt.Sprintf("could not find location for %q", strings.TrimSpace(city)))
	default:
		httputil.WriteJSON(w, http.StatusOK, rep)
	}
}

func (h *handlers) rng() *rand.Rand {
	if h.cfg.Seed != nil {
		return passes.SeededRand(*h.cfg.Seed)
	}
	return passes.NewRand()
}
