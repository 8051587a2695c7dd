package feed

import (
	"sort"
	"sync"
	"time"
)

// Record is any persisted entry that can appear in a live feed. All three
// record types order by their creation timestamp.
type Record interface {
	RecordTime() time.Time
}

// Projection maintains a materialized, sorted snapshot of one per-user
// collection. Every delivery replaces the whole set (the store hands out
// full-state snapshots, not deltas), so redelivering an identical batch is a
// no-op from the consumer's point of view. Replace and the read methods are
// safe for concurrent use; readers never observe a partially applied batch.
type Projection struct {
	mu      sync.RWMutex
	records []Record
	err     error
}

// Replace installs a new snapshot, sorted ascending by timestamp, and clears
// any previous error state. The input slice is not retained.
func (p *Projection) Replace(batch []Record) {
	sorted := make([]Record, len(batch))
	copy(sorted, batch)
	sortByTime(sorted)

	p.mu.Lock()
	p.records = sorted
	p.err = nil
	p.mu.Unlock()
}

// Fail records a subscription error and substitutes an empty set. The
// projection stays usable: a later Replace clears the error.
func (p *Projection) Fail(err error) {
	p.mu.Lock()
	p.records = nil
	p.err = err
	p.mu.Unlock()
}

// Err returns the current error state, if any.
func (p *Projection) Err() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.err
}

// Ascending returns a copy of the snapshot ordered oldest-first, the order
// progress views consume.
func (p *Projection) Ascending() []Record {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Record, len(p.records))
	copy(out, p.records)
	return out
}

// Descending returns a copy of the snapshot ordered newest-first, the order
// history views consume.
func (p *Projection) Descending() []Record {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Record, len(p.records))
	for i, r := range p.records {
		out[len(p.records)-1-i] = r
	}
	return out
}

// Len returns the current snapshot size.
func (p *Projection) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.records)
}

// sortByTime orders records oldest-first; stability keeps equal timestamps
// in delivery order.
func sortByTime(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].RecordTime().Before(records[j].RecordTime())
	})
}
