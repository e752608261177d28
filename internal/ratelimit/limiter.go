// Package ratelimit throttles API callers with one token bucket per key,
// built on golang.org/x/time/rate.
package ratelimit

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
	"report-router/internal/routing"
)

// Config controls the per-key buckets.
type Config struct {
	RequestsPerSecond float64
	Burst             int
	// MaxKeys bounds the number of tracked buckets; idle ones are evicted first.
	MaxKeys int
	// IdleTimeout is how long an unused bucket is kept.
	IdleTimeout time.Duration
}

// Enabled reports whether the configuration actually limits anything.
func (c Config) Enabled() bool {
	return c.RequestsPerSecond > 0 && c.Burst > 0
}

type entry struct {
	limiter  *rate.Limiter
	lastUsed time.Time
}

// Limiter keeps a token bucket per key.
type Limiter struct {
	mu          sync.Mutex
	config      Config
	buckets     map[string]*entry
	lastCleanup time.Time
	now         func() time.Time
}

// NewLimiter creates a Limiter. Zero MaxKeys and IdleTimeout take defaults
// of 10000 and 10 minutes.
func NewLimiter(config Config) *Limiter {
	if config.MaxKeys <= 0 {
		config.MaxKeys = 10000
	}
	if config.IdleTimeout <= 0 {
		config.IdleTimeout = 10 * time.Minute
	}
	return &Limiter{
		config:      config,
		buckets:     make(map[string]*entry),
		lastCleanup: time.Now(),
		now:         time.Now,
	}
}

// Allow consumes a token from key's bucket.
func (l *Limiter) Allow(key string) bool {
	if !l.config.Enabled() {
		return true
	}
	now := l.now()
	return l.bucket(key, now).AllowN(now, 1)
}

// Keys returns the number of tracked buckets.
func (l *Limiter) Keys() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

func (l *Limiter) bucket(key string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastCleanup) > l.config.IdleTimeout {
		l.cleanup(now)
	}

	e, ok := l.buckets[key]
	if !ok {
		if len(l.buckets) >= l.config.MaxKeys {
			l.cleanup(now)
			if len(l.buckets) >= l.config.MaxKeys {
				l.evictOldest()
			}
		}
		e = &entry{limiter: rate.NewLimiter(rate.Limit(l.config.RequestsPerSecond), l.config.Burst)}
		l.buckets[key] = e
	}
	e.lastUsed = now
	return e.limiter
}

func (l *Limiter) cleanup(now time.Time) {
	cutoff := now.Add(-l.config.IdleTimeout)
	for key, e := range l.buckets {
		if e.lastUsed.Before(cutoff) {
			delete(l.buckets, key)
		}
	}
	l.lastCleanup = now
}

func (l *Limiter) evictOldest() {
	var oldestKey string
	var oldest time.Time
	for key, e := range l.buckets {
		if oldestKey == "" || e.lastUsed.Before(oldest) {
			oldestKey, oldest = key, e.lastUsed
		}
	}
	delete(l.buckets, oldestKey)
}

// Middleware rejects requests over the limit with 429. Requests are keyed by
// keyFunc; an empty key is never limited.
func (l *Limiter) Middleware(keyFunc func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !l.config.Enabled() {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyFunc(r)
			if key != "" && !l.Allow(key) {
				w.Header().Set("X-RateLimit-Limit", strconv.FormatFloat(l.config.RequestsPerSecond, 'f', -1, 64))
				w.Header().Set("X-RateLimit-Remaining", "0")
				w.Header().Set("Retry-After", "1")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "Rate limit exceeded"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// PrincipalKey keys authenticated callers by email and everyone else by
// client IP. It must run after the auth middleware.
func PrincipalKey(r *http.Request) string {
	if p := routing.PrincipalFromContext(r.Context()); p != routing.SystemPrincipal {
		return "user:" + strings.ToLower(p.Email)
	}
	return "ip:" + ClientIP(r)
}

// ClientIP returns the first X-Forwarded-For hop, then X-Real-IP, then the
// host part of RemoteAddr.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
