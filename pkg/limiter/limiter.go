package limiter

import (
	"sync"
	"time"
)

// RateLimiter defines a token bucket rate limiter keyed by client
type RateLimiter struct {
	mu           sync.Mutex
	tokens       map[string]*bucket
	rate         int           // tokens per interval
	interval     time.Duration // refill interval
	maxTokens    int           // maximum tokens per bucket
	cleanupAfter time.Duration // how long to keep buckets in memory
	now          func() time.Time
	done         chan struct{}
	stopOnce     sync.Once
}

type bucket struct {
	tokens     int
	lastSeen   time.Time
	lastRefill time.Time
}

// NewRateLimiter creates a new rate limiter and starts its cleanup loop
func NewRateLimiter(rate int, interval time.Duration, maxTokens int) *RateLimiter {
	limiter := newRateLimiter(rate, interval, maxTokens, time.Now)
	go limiter.cleanup(10 * time.Minute)
	return limiter
}

// PerMinute allows requestsPerMinute requests a minute with bursts of up to burst.
func PerMinute(requestsPerMinute, burst int) *RateLimiter {
	if burst <= 0 {
		burst = requestsPerMinute
	}
	return NewRateLimiter(1, time.Minute/time.Duration(requestsPerMinute), burst)
}

func newRateLimiter(rate int, interval time.Duration, maxTokens int, now func() time.Time) *RateLimiter {
	return &RateLimiter{
		tokens:       make(map[string]*bucket),
		rate:         rate,
		interval:     interval,
		maxTokens:    maxTokens,
		cleanupAfter: time.Hour,
		now:          now,
		done:         make(chan struct{}),
	}
}

// Allow checks if the given key can perform an action
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b, exists := rl.tokens[key]

	if !exists {
		rl.tokens[key] = &bucket{
			tokens:     rl.maxTokens - 1, // Use one token immediately
			lastSeen:   now,
			lastRefill: now,
		}
		return rl.maxTokens > 0
	}

	b.lastSeen = now
	rl.refill(b, now)

	if b.tokens > 0 {
		b.tokens--
		return true
	}

	return false
}

// refill adds whole intervals worth of tokens and keeps the partial interval
// so slow trickles of requests still accumulate.
func (rl *RateLimiter) refill(b *bucket, now time.Time) {
	intervals := int(now.Sub(b.lastRefill) / rl.interval)
	if intervals <= 0 {
		return
	}
	b.tokens = min(b.tokens+intervals*rl.rate, rl.maxTokens)
	b.lastRefill = b.lastRefill.Add(time.Duration(intervals) * rl.interval)
}

// RemainingTokens returns the number of tokens remaining for a key
func (rl *RateLimiter) RemainingTokens(key string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, exists := rl.tokens[key]
	if !exists {
		return rl.maxTokens
	}

	elapsed := rl.now().Sub(b.lastRefill)
	tokensToAdd := int(elapsed/rl.interval) * rl.rate

	return min(b.tokens+tokensToAdd, rl.maxTokens)
}

// NextAvailable returns the duration until the next token becomes available
func (rl *RateLimiter) NextAvailable(key string) time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, exists := rl.tokens[key]
	if !exists || b.tokens > 0 {
		return 0
	}

	elapsed := rl.now().Sub(b.lastRefill)
	if elapsed >= rl.interval {
		return 0
	}
	return rl.interval - elapsed
}

// Stop ends the cleanup loop
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.done) })
}

// cleanup periodically removes inactive buckets to prevent memory leaks
func (rl *RateLimiter) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.evictIdle()
		}
	}
}

func (rl *RateLimiter) evictIdle() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for key, b := range rl.tokens {
		if now.Sub(b.lastSeen) > rl.cleanupAfter {
			delete(rl.tokens, key)
		}
	}
}
