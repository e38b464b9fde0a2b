// rate_limiter.go - Rate limiting for Gemini API calls

package ratelimit

import (
	"sync"
	"time"
)

// RateLimiter is a token bucket: every model call consumes one token,
// tokens refill at a fixed interval up to the bucket size.
type RateLimiter struct {
	tokens         int
	maxTokens      int
	refillInterval time.Duration
	lastRefill     time.Time
	mu             sync.Mutex
}

// NewRateLimiter creates a limiter holding maxTokens with one token
// refilled every refillInterval.
func NewRateLimiter(maxTokens int, refillInterval time.Duration) *RateLimiter {
	return &RateLimiter{
		tokens:         maxTokens,
		maxTokens:      maxTokens,
		refillInterval: refillInterval,
		lastRefill:     time.Now(),
	}
}

// Wait blocks until a token is available, then consumes it.
func (rl *RateLimiter) Wait() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.refill()
	for rl.tokens <= 0 {
		rl.mu.Unlock()
		time.Sleep(100 * time.Millisecond)
		rl.mu.Lock()
		rl.refill()
	}

	rl.tokens--
}

// refill adds tokens owed since the last refill. Caller holds mu.
func (rl *RateLimiter) refill() {
	now := time.Now()
	owed := int(now.Sub(rl.lastRefill) / rl.refillInterval)
	if owed <= 0 {
		return
	}
	rl.tokens += owed
	if rl.tokens > rl.maxTokens {
		rl.tokens = rl.maxTokens
	}
	rl.lastRefill = now
}

// Shared limiter for all Gemini calls (OCR and parsing). The flash models
// allow 15 RPM on the free tier; 12 tokens at one per 5s leaves headroom
// for latency and bursts.
var modelQuotaLimiter = NewRateLimiter(12, 5*time.Second)

// WaitForModelQuota blocks until the shared Gemini quota allows a call.
func WaitForModelQuota() {
	modelQuotaLimiter.Wait()
}
