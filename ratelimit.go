package minapi

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig configures the RateLimit middleware.
type RateLimitConfig struct {
	Rate    float64                      // requests per second per key
	Burst   int                          // max burst
	KeyFunc func(r *http.Request) string // default: remote IP
	// OnLimit produces the result written when a key is over its limit.
	// Default: a 429 problem.
	OnLimit         func(r *http.Request) Result
	CleanupInterval time.Duration // how often to prune idle limiters (default: 1m)
	MaxIdle         time.Duration // remove limiters idle longer than this (default: 5m)
}

// RateLimit returns middleware that applies per-key token bucket limits.
// Rejected requests get a Retry-After header and the OnLimit result.
func RateLimit(cfg RateLimitConfig) Middleware {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = remoteIP
	}
	if cfg.OnLimit == nil {
		cfg.OnLimit = func(*http.Request) Result {
			return Problem{Status: http.StatusTooManyRequests, Detail: "rate limit exceeded"}
		}
	}
	set := &limiterSet{
		limit:    rate.Limit(cfg.Rate),
		burst:    cfg.Burst,
		interval: cmpOr(cfg.CleanupInterval, time.Minute),
		maxIdle:  cmpOr(cfg.MaxIdle, 5*time.Minute),
		entries:  make(map[string]*limiterEntry),
	}
	retryAfter := "1"
	if cfg.Rate > 0 && cfg.Rate < 1 {
		retryAfter = strconv.Itoa(int(math.Ceil(1 / cfg.Rate)))
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !set.get(cfg.KeyFunc(r), time.Now()).Allow() {
				w.Header().Set("Retry-After", retryAfter)
				writeProblem(w, r, cfg.OnLimit(r))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type limiterSet struct {
	limit    rate.Limit
	burst    int
	interval time.Duration
	maxIdle  time.Duration

	mu          sync.Mutex
	entries     map[string]*limiterEntry
	lastCleanup time.Time
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// get returns the limiter for key, pruning idle ones at most once per interval.
func (s *limiterSet) get(key string, now time.Time) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	if now.Sub(s.lastCleanup) >= s.interval {
		for k, e := range s.entries {
			if now.Sub(e.lastSeen) > s.maxIdle {
				delete(s.entries, k)
			}
		}
		s.lastCleanup = now
	}

	e, ok := s.entries[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.entries[key] = e
	}
	e.lastSeen = now
	return e.limiter
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func cmpOr(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}
