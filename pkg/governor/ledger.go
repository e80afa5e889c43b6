package governor

import "sync"

const (
	// DefaultLedgerCapacity is the record count that triggers compaction.
	DefaultLedgerCapacity = 10000

	// DefaultLedgerTail is the number of newest records kept by compaction.
	DefaultLedgerTail = 5000
)

// Ledger is the bounded in-memory log of UsageRecords. Appends arrive
// from many concurrent callers; once the ledger grows past its capacity
// it is compacted to a tail of the newest records to bound memory.
//
// Compaction happens inside the same critical section as the append that
// crossed the capacity, so a concurrent snapshot never loses records
// newer than the trim point.
type Ledger struct {
	mu       sync.RWMutex
	records  []UsageRecord
	capacity int
	tail     int
}

// NewLedger creates a ledger with the default capacity and tail.
func NewLedger() *Ledger {
	return NewLedgerWithCapacity(DefaultLedgerCapacity, DefaultLedgerTail)
}

// NewLedgerWithCapacity creates a ledger compacting to tail records once
// capacity is exceeded. Non-positive values fall back to the defaults;
// a tail at or above capacity is halved to keep compaction meaningful.
func NewLedgerWithCapacity(capacity, tail int) *Ledger {
	if capacity <= 0 {
		capacity = DefaultLedgerCapacity
	}
	if tail <= 0 || tail >= capacity {
		tail = capacity / 2
	}
	return &Ledger{
		records:  make([]UsageRecord, 0, 256),
		capacity: capacity,
		tail:     tail,
	}
}

// Append adds a record, compacting the oldest entries when the ledger
// exceeds its capacity.
func (l *Ledger) Append(rec UsageRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.records = append(l.records, rec)
	if len(l.records) > l.capacity {
		kept := make([]UsageRecord, l.tail)
		copy(kept, l.records[len(l.records)-l.tail:])
		l.records = kept
	}
}

// Snapshot returns a copy of the current records, oldest first.
func (l *Ledger) Snapshot() []UsageRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]UsageRecord, len(l.records))
	copy(out, l.records)
	return out
}

// Len returns the current record count.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}
