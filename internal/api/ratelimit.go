// Per-IP fixed-window request counting for the play endpoints.
package api

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RateLimiter allows at most limit requests per client within each window.
// A client's window opens on its first request and closes window later.
type RateLimiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu        sync.Mutex
	clients   map[string]*clientWindow
	lastSweep time.Time
}

type clientWindow struct {
	opened time.Time
	used   int
}

// NewRateLimiter returns a limiter admitting limit requests per window.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:   limit,
		window:  window,
		now:     time.Now,
		clients: make(map[string]*clientWindow),
	}
}

// Allow records a request from ip and reports whether it is admitted.
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.sweepLocked(now)

	cw := rl.clients[ip]
	if cw == nil || now.Sub(cw.opened) >= rl.window {
		cw = &clientWindow{opened: now}
		rl.clients[ip] = cw
	}
	if cw.used >= rl.limit {
		return false
	}
	cw.used++
	return true
}

// RetryAfter returns whole seconds until ip's current window closes.
func (rl *RateLimiter) RetryAfter(ip string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cw := rl.clients[ip]
	if cw == nil {
		return 0
	}
	left := cw.opened.Add(rl.window).Sub(rl.now())
	if left <= 0 {
		return 0
	}
	return int(left.Seconds()) + 1
}

// sweepLocked forgets clients whose window closed, at most once per window.
func (rl *RateLimiter) sweepLocked(now time.Time) {
	if now.Sub(rl.lastSweep) < rl.window {
		return
	}
	rl.lastSweep = now
	for ip, cw := range rl.clients {
		if now.Sub(cw.opened) >= rl.window {
			delete(rl.clients, ip)
		}
	}
}

// RateLimitMiddleware answers 429 with Retry-After once a client is over its limit.
func RateLimitMiddleware(rl *RateLimiter, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !rl.Allow(ip) {
			w.Header().Set("Retry-After", strconv.Itoa(rl.RetryAfter(ip)))
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}

// clientIP prefers the first X-Forwarded-For hop, then the remote address.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
