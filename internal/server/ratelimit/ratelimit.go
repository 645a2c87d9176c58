// Package ratelimit applies a token-bucket budget per API token (or per
// client IP for anonymous callers) to the RPC endpoint.
package ratelimit

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type Config struct {
	Rate            rate.Limit
	Burst           int
	CleanupInterval time.Duration
}

type entry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// Limiter tracks one rate.Limiter per caller key.
type Limiter struct {
	config Config
	now    func() time.Time

	mu      sync.Mutex
	entries map[string]*entry

	// OnReject is called for every rejected request.
	OnReject func(key string)
}

func New(cfg Config) *Limiter {
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 5 * time.Minute
	}
	return &Limiter{
		config:  cfg,
		now:     time.Now,
		entries: make(map[string]*entry),
	}
}

// Allow reports whether the caller identified by key may proceed.
func (l *Limiter) Allow(key string) bool {
	now := l.now()

	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(l.config.Rate, l.config.Burst)}
		l.entries[key] = e
	}
	e.lastAccess = now
	l.mu.Unlock()

	return e.limiter.AllowN(now, 1)
}

// Middleware rejects over-budget requests with 429 and a Retry-After header.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := callerKey(r)
		if !l.Allow(key) {
			if l.OnReject != nil {
				l.OnReject(key)
			}
			writeTooManyRequests(w, l.config.Rate)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Run drops limiters idle for two cleanup intervals until ctx ends.
func (l *Limiter) Run(ctx context.Context) {
	ticker := time.NewTicker(l.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.cleanup()
		case <-ctx.Done():
			return
		}
	}
}

func (l *Limiter) cleanup() {
	ttl := 2 * l.config.CleanupInterval
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()
	for k, e := range l.entries {
		if now.Sub(e.lastAccess) > ttl {
			delete(l.entries, k)
		}
	}
}

func (l *Limiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func callerKey(r *http.Request) string {
	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok && token != "" {
		return "token:" + token
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}

func writeTooManyRequests(w http.ResponseWriter, r rate.Limit) {
	retry := 1
	if r > 0 {
		retry = max(int(math.Ceil(1/float64(r))), 1)
	}
	w.Header().Set("Retry-After", strconv.Itoa(retry))
	http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
}
