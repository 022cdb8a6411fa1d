package http

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Retention window for idle visitor buckets; the sweeper runs on the same
// period.
const visitorRetention = 10 * time.Minute

// visitor is one IP's token bucket plus the last time it was seen.
type visitor struct {
	bucket   *rate.Limiter
	lastSeen time.Time
}

// RateLimiter throttles an endpoint per client IP. Buckets idle past the
// retention window are swept so the map cannot grow with one-off visitors.
type RateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	rate      rate.Limit
	burst     int
	retention time.Duration
}

// newSuggestLimiter throttles the suggestion endpoint, which fires on every
// keystroke in the search box.
func newSuggestLimiter() *RateLimiter {
	return newRateLimiter(rate.Limit(10), 20, visitorRetention)
}

// newRefreshLimiter throttles manual refreshes, each of which re-reads the
// source CSVs from disk.
func newRefreshLimiter() *RateLimiter {
	return newRateLimiter(rate.Every(5*time.Second), 2, visitorRetention)
}

func newRateLimiter(r rate.Limit, burst int, retention time.Duration) *RateLimiter {
	rl := &RateLimiter{
		visitors:  make(map[string]*visitor),
		rate:      r,
		burst:     burst,
		retention: retention,
	}

	go rl.sweep()

	return rl
}

func (rl *RateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, ok := rl.visitors[ip]
	if !ok {
		v = &visitor{bucket: rate.NewLimiter(rl.rate, rl.burst)}
		rl.visitors[ip] = v
	}
	v.lastSeen = time.Now()

	return v.bucket.Allow()
}

func (rl *RateLimiter) sweep() {
	ticker := time.NewTicker(rl.retention)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-rl.retention)
		rl.mu.Lock()
		for ip, v := range rl.visitors {
			if v.lastSeen.Before(cutoff) {
				delete(rl.visitors, ip)
			}
		}
		rl.mu.Unlock()
	}
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(clientIP(r)) {
			writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "too many requests"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP trusts only RemoteAddr; forwarding headers are spoofable without a
// trusted reverse proxy in front of this server.
func clientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
