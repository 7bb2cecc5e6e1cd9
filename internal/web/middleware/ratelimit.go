package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// RateLimiter is a fixed-window request limiter keyed by client IP.
type RateLimiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu       sync.Mutex
	visitors map[string]*visitor

	stop     chan struct{}
	stopOnce sync.Once
}

type visitor struct {
	remaining   int
	windowStart time.Time
}

// NewRateLimiter allows limit requests per window for each client IP and
// starts a goroutine that evicts idle clients until Stop is called.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		limit:    limit,
		window:   window,
		now:      time.Now,
		visitors: make(map[string]*visitor),
		stop:     make(chan struct{}),
	}
	go rl.evictLoop()
	return rl
}

// Stop ends the eviction goroutine. Safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) evictLoop() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.evict()
		}
	}
}

func (rl *RateLimiter) evict() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := rl.now()
	for ip, v := range rl.visitors {
		if now.Sub(v.windowStart) > 2*rl.window {
			delete(rl.visitors, ip)
		}
	}
}

// Allow consumes one request for ip and reports whether it is within limit.
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	v, ok := rl.visitors[ip]
	if !ok || now.Sub(v.windowStart) >= rl.window {
		rl.visitors[ip] = &visitor{remaining: rl.limit - 1, windowStart: now}
		return rl.limit > 0
	}
	if v.remaining <= 0 {
		return false
	}
	v.remaining--
	return true
}

// Middleware rejects requests over the limit with 429 and Retry-After.
// It keys on r.RemoteAddr, so it belongs after TrustedRealIP.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr
		if host, _, err := net.SplitHostPort(ip); err == nil {
			ip = host
		}

		if !rl.Allow(ip) {
			w.Header().Set("Retry-After", strconv.Itoa(int(rl.window.Seconds())))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]string{
				"error":   "rate limit exceeded",
				"message": "Too many requests",
				"code":    "RATE001",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}
