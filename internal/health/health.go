package health

import (
	"encoding/json"
	"net/http"
)

// Healthz returns 200 "ok\n" unconditionally.
func Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok\n"))
}

// Status is the readiness body.
type Status struct {
	Status   string `json:"status"`
	PassMode string `json:"pass_mode"` // "live" or "simulated"
}

// Readyz reports readiness and which pass mode is active. The service is
// ready as soon as config is valid: the simulated path needs no upstream.
func Readyz(liveEnabled func() bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st := Status{Status: "ready", PassMode: "simulated"}
		if liveEnabled != nil && liveEnabled() {
			st.PassMode = "live"
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(st)
	}
}
