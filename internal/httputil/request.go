package httputil

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
)

// ClientIP returns the caller's address for logging. Forwarding headers
// (X-Forwarded-For first hop, then X-Real-IP) are honoured only when
// trustProxy is set; otherwise RemoteAddr is used as is.
func ClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		xff, _, _ := strings.Cut(r.Header.Get("X-Forwarded-For"), ",")
		if ip := strings.TrimSpace(xff); ip != "" {
			return ip
		}
		if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// FloatQuery parses a required float query parameter within [min, max].
func FloatQuery(r *http.Request, name string, min, max float64) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, fmt.Errorf("missing %s parameter", name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < min || v > max {
		return 0, fmt.Errorf("invalid %s parameter, must be %g to %g", name, min, max)
	}
	return v, nil
}

// IntQuery parses an optional int query parameter within [min, max],
// returning def when the parameter is absent.
func IntQuery(r *http.Request, name string, def, min, max int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < min || v > max {
		return 0, fmt.Errorf("invalid %s parameter, must be %d-%d", name, min, max)
	}
	return v, nil
}
