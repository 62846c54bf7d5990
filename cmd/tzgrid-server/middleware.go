package main

import (
	"net"
	"net/http"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// rateLimiter hands out a token bucket per client IP.
type rateLimiter struct {
	limiters map[string]*rate.Limiter
	lastSeen map[string]time.Time
	limit    rate.Limit
	burst    int
	idle     time.Duration
	mu       sync.Mutex
}

func newRateLimiter(requests int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		limiters: make(map[string]*rate.Limiter),
		lastSeen: make(map[string]time.Time),
		limit:    rate.Every(window / time.Duration(requests)),
		burst:    requests,
		idle:     10 * window,
	}
}

func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	l, ok := rl.limiters[ip]
	if !ok {
		rl.evict(now)
		l = rate.NewLimiter(rl.limit, rl.burst)
		rl.limiters[ip] = l
	}
	rl.lastSeen[ip] = now
	return l.AllowN(now, 1)
}

// evict drops clients idle for longer than rl.idle. Callers hold rl.mu.
func (rl *rateLimiter) evict(now time.Time) {
	for ip, seen := range rl.lastSeen {
		if now.Sub(seen) > rl.idle {
			delete(rl.limiters, ip)
			delete(rl.lastSeen, ip)
		}
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *server) wrap(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()
		w.Header().Set("X-Request-ID", requestID)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		defer func() {
			if err := recover(); err != nil {
				const size = 64 << 10
				buf := make([]byte, size)
				buf = buf[:runtime.Stack(buf, false)]

				s.logger.Error("PANIC: request handler crashed",
					"error", err,
					"path", r.URL.Path,
					"method", r.Method,
					"request_id", requestID,
					"client_ip", clientIP(r),
					"user_agent", r.Header.Get("User-Agent"),
					"stack", string(buf))
				rec.status = http.StatusInternalServerError
				http.Error(w, "Internal server error", http.StatusInternalServerError)
			}

			route := r.Pattern
			if route == "" {
				route = "unmatched"
			}
			s.metrics.Requests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
			s.logger.Debug("request completed",
				"request_id", requestID,
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration_ms", time.Since(start).Milliseconds())
		}()

		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")

		if strings.HasPrefix(r.URL.Path, "/api/") {
			w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, private")
			w.Header().Set("Pragma", "no-cache")
			w.Header().Set("Expires", "0")

			if !s.limiter.allow(clientIP(r)) {
				s.metrics.RateLimited.Inc()
				s.logger.Warn("rate limit exceeded",
					"request_id", requestID,
					"client_ip", clientIP(r),
					"path", r.URL.Path)
				w.Header().Set("Retry-After", "60")
				s.writeError(rec, r, http.StatusTooManyRequests, apiError{
					Error:   "Rate limit exceeded",
					Details: "Too many requests from this address. Please slow down.",
					Code:    "RATE_LIMITED",
				})
				return
			}
		}

		handler.ServeHTTP(rec, r)
	})
}
