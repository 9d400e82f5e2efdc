// ABOUTME: Per-user and per-IP rate limiting using token bucket algorithm.
// ABOUTME: Slows online passphrase guessing and protects the blob store from abuse.

package main

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig holds rate limiter settings.
type RateLimitConfig struct {
	Interval time.Duration // Time between allowed requests
	Burst    int           // Max burst size
}

// DefaultRateLimitConfig returns ~60 req/min with burst of 10 for
// authenticated backup operations.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Interval: time.Second,
		Burst:    10,
	}
}

// AuthRateLimitConfig is stricter: unauthenticated callers get ~10 req/min.
func AuthRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Interval: 6 * time.Second,
		Burst:    5,
	}
}

// rateLimiterStore manages per-key rate limiters.
type rateLimiterStore struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
	config   RateLimitConfig
}

func newRateLimiterStore(config RateLimitConfig) *rateLimiterStore {
	return &rateLimiterStore{
		limiters: make(map[string]*rate.Limiter),
		config:   config,
	}
}

func (s *rateLimiterStore) get(key string) *rate.Limiter {
	s.mu.RLock()
	limiter, ok := s.limiters[key]
	s.mu.RUnlock()
	if ok {
		return limiter
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Double-check after acquiring write lock
	if limiter, ok := s.limiters[key]; ok {
		return limiter
	}
	limiter = rate.NewLimiter(rate.Every(s.config.Interval), s.config.Burst)
	s.limiters[key] = limiter
	return limiter
}

// retryAfterSeconds is the Retry-After hint for throttled responses: the
// refill interval rounded up to whole seconds, never less than one.
func (s *rateLimiterStore) retryAfterSeconds() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	secs := int(s.config.Interval / time.Second)
	if s.config.Interval%time.Second != 0 || secs < 1 {
		secs++
	}
	return secs
}

func (s *rateLimiterStore) setConfig(interval time.Duration, burst int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config = RateLimitConfig{Interval: interval, Burst: burst}
	// Clear existing limiters so they pick up new config
	s.limiters = make(map[string]*rate.Limiter)
}
