package httputil

import (
	"net/http"
	"sync"
)

// Limiter tracks in-flight requests per client IP and globally.
type Limiter struct {
	mu       sync.Mutex
	inFlight map[string]int
	total    int
	maxPerIP int
	maxTotal int
}

// NewLimiter returns a Limiter allowing maxPerIP concurrent requests per IP
// and maxTotal overall.
func NewLimiter(maxPerIP, maxTotal int) *Limiter {
	return &Limiter{
		inFlight: make(map[string]int),
		maxPerIP: maxPerIP,
		maxTotal: maxTotal,
	}
}

// Acquire registers a request for ip. Returns false if the IP or global
// limit has been reached.
func (l *Limiter) Acquire(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.total >= l.maxTotal {
		return false
	}
	if l.inFlight[ip] >= l.maxPerIP {
		return false
	}

	l.inFlight[ip]++
	l.total++
	return true
}

// Release frees a slot taken by Acquire.
func (l *Limiter) Release(ip string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.inFlight[ip]--
	l.total--
	if l.inFlight[ip] <= 0 {
		delete(l.inFlight, ip)
	}
}

// Count returns the in-flight requests for ip.
func (l *Limiter) Count(ip string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inFlight[ip]
}

// Limit wraps next so that callers over the limit get 429 with msg.
// A nil Limiter disables limiting.
func (l *Limiter) Limit(trustProxy bool, msg string, next http.HandlerFunc) http.HandlerFunc {
	if l == nil {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ip := ClientIP(r, trustProxy)
		if !l.Acquire(ip) {
			w.Header().Set("Retry-After", "1")
			WriteError(w, http.StatusTooManyRequests, msg)
			return
		}
		defer l.Release(ip)
		next(w, r)
	}
}
