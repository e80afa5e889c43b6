package governor

import "sync/atomic"

// Gate limits the number of simultaneous in-flight LLM calls. It is a
// counting semaphore implemented with atomics, independent of the
// request-rate bucket.
//
// A slot must be acquired before dispatching the outbound call and
// released unconditionally after the call completes, on every exit path:
//
//	if gate.TryAcquire() {
//	    defer gate.Release()
//	    // ... perform the call ...
//	}
type Gate struct {
	limit   atomic.Int64
	current atomic.Int64
}

// NewGate creates a gate admitting up to limit concurrent holders.
func NewGate(limit int) *Gate {
	g := &Gate{}
	g.limit.Store(int64(limit))
	return g
}

// TryAcquire claims a slot without blocking. Returns false when the gate
// is full. A true return obligates the caller to call Release.
func (g *Gate) TryAcquire() bool {
	current := g.current.Add(1)
	if current > g.limit.Load() {
		g.current.Add(-1)
		return false
	}
	return true
}

// Release returns a slot claimed by a successful TryAcquire.
func (g *Gate) Release() {
	g.current.Add(-1)
}

// InFlight returns the number of currently held slots.
func (g *Gate) InFlight() int64 {
	return g.current.Load()
}

// Limit returns the configured slot count.
func (g *Gate) Limit() int64 {
	return g.limit.Load()
}

// SetLimit adjusts the slot count. In-flight holders are unaffected; a
// lowered limit takes effect as slots are released.
func (g *Gate) SetLimit(limit int) {
	g.limit.Store(int64(limit))
}
