package admission

import (
	"sync"
	"time"
)

// TokenBucket is a thread-safe token bucket with discrete replenishment
// ticks. Each admitted request consumes exactly one token; tokens are
// restored in whole batches of refillAmount once per refillPeriod, capped
// at capacity.
//
// Unlike a leaky-bucket or continuous-rate limiter, replenishment here is
// quantized: a partial period credits nothing. This keeps the Retry-After
// hint honest - a rejected caller that waits one full period is guaranteed
// at least refillAmount fresh tokens.
//
// # Algorithm
//
//  1. Compute whole periods elapsed since the last refill
//  2. Credit periods * refillAmount tokens, capped at capacity
//  3. Advance the refill clock by the credited periods only
//  4. Grant iff at least one token remains, consuming it
//
// # Thread Safety
//
// All state (token count and refill clock) is guarded by a single
// sync.Mutex, so grant/deny decisions are linearizable: two concurrent
// TryAcquire calls can never both succeed on one remaining token.
type TokenBucket struct {
	capacity     int64
	tokens       int64
	refillAmount int64
	refillPeriod time.Duration
	lastRefill   time.Time
	mu           sync.Mutex
}

// NewTokenBucket creates a token bucket that starts full.
//
// Parameters:
//   - capacity: maximum (and initial) number of tokens
//   - refillAmount: tokens restored per refill period
//   - refillPeriod: interval between replenishment ticks
//
// Example:
//
//	// 10 requests per 10 seconds, burst up to 10
//	bucket := NewTokenBucket(10, 10, 10*time.Second)
func NewTokenBucket(capacity, refillAmount int64, refillPeriod time.Duration) *TokenBucket {
	return &TokenBucket{
		capacity:     capacity,
		tokens:       capacity,
		refillAmount: refillAmount,
		refillPeriod: refillPeriod,
		lastRefill:   time.Now(),
	}
}

// TryAcquire attempts to consume one token. It returns true and decrements
// the count iff a token is available; a denial mutates nothing beyond the
// lazily computed refill.
func (tb *TokenBucket) TryAcquire() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refillLocked()

	if tb.tokens >= 1 {
		tb.tokens--
		return true
	}

	return false
}

// Remaining returns the number of tokens currently available, after
// applying any pending refill.
func (tb *TokenBucket) Remaining() int64 {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refillLocked()
	return tb.tokens
}

// Capacity returns the maximum bucket capacity.
func (tb *TokenBucket) Capacity() int64 {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return tb.capacity
}

// RefillPeriod returns the replenishment interval. The admission gate uses
// this as the Retry-After hint on rejected requests.
func (tb *TokenBucket) RefillPeriod() time.Duration {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return tb.refillPeriod
}

// Reconfigure swaps the bucket's policy in place and restores it to the
// new capacity. Used by the config watcher to hot-apply admission
// settings without dropping the shared bucket reference.
func (tb *TokenBucket) Reconfigure(capacity, refillAmount int64, refillPeriod time.Duration) {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.capacity = capacity
	tb.refillAmount = refillAmount
	tb.refillPeriod = refillPeriod
	tb.tokens = capacity
	tb.lastRefill = time.Now()
}

// Reset restores the bucket to full capacity. Primarily for tests.
func (tb *TokenBucket) Reset() {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.tokens = tb.capacity
	tb.lastRefill = time.Now()
}

// refillLocked credits whole elapsed periods. Caller must hold mu.
//
// The refill clock advances only by credited periods, never to "now", so
// a fractional period in progress keeps accruing toward the next tick.
func (tb *TokenBucket) refillLocked() {
	elapsed := time.Since(tb.lastRefill)
	if elapsed < tb.refillPeriod {
		return
	}

	periods := int64(elapsed / tb.refillPeriod)
	tb.tokens += periods * tb.refillAmount
	if tb.tokens > tb.capacity {
		tb.tokens = tb.capacity
	}

	tb.lastRefill = tb.lastRefill.Add(time.Duration(periods) * tb.refillPeriod)
}
