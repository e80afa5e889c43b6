package governor

import "time"

// tokenBucket is the request-admission bucket. The level is fractional so
// that refill credit accumulates smoothly between admissions; it is
// bounded to [0, capacity].
//
// The bucket carries no lock of its own: every method must be called with
// the Governor's mutex held, so that refill, the daily ceiling check, and
// the decrement form one atomic sequence.
type tokenBucket struct {
	capacity   float64
	tokens     float64
	lastRefill time.Time
}

// newTokenBucket creates a full bucket.
func newTokenBucket(capacity int, now time.Time) *tokenBucket {
	return &tokenBucket{
		capacity:   float64(capacity),
		tokens:     float64(capacity),
		lastRefill: now,
	}
}

// refill credits tokens for the time elapsed since the last refill at a
// rate of capacity/60 per second, capped at capacity. Refill is computed
// lazily at each admission attempt; there is no background tick.
func (b *tokenBucket) refill(now time.Time) {
	elapsed := now.Sub(b.lastRefill).Seconds()
	if elapsed > 0 {
		b.tokens += elapsed * (b.capacity / 60.0)
		if b.tokens > b.capacity {
			b.tokens = b.capacity
		}
	}
	b.lastRefill = now
}

// take consumes one unit if a full unit is available.
func (b *tokenBucket) take() bool {
	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// available returns the current fractional level.
func (b *tokenBucket) available() float64 {
	return b.tokens
}

// resize changes the capacity, clamping the level into the new bound.
func (b *tokenBucket) resize(capacity int) {
	b.capacity = float64(capacity)
	if b.tokens > b.capacity {
		b.tokens = b.capacity
	}
}
