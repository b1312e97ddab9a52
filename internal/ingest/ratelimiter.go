package ingest

import "time"

// RateLimiter enforces a minimum interval between accepted reports per
// vessel. It is owned by a single ingester goroutine and is not safe for
// concurrent use.
type RateLimiter struct {
	minInterval time.Duration
	last        map[int64]time.Time
}

func NewRateLimiter(minInterval time.Duration) *RateLimiter {
	return &RateLimiter{
		minInterval: minInterval,
		last:        make(map[int64]time.Time),
	}
}

// Seed replaces the state with the newest stored report time per vessel.
func (r *RateLimiter) Seed(last map[int64]time.Time) {
	r.last = make(map[int64]time.Time, len(last))
	for id, ts := range last {
		r.last[id] = ts
	}
}

// Admit reports whether a report at ts may be persisted. It does not change
// state; call Accept once the report is stored.
func (r *RateLimiter) Admit(id int64, ts time.Time) bool {
	prev, ok := r.last[id]
	if !ok {
		return true
	}
	return ts.Sub(prev) >= r.minInterval
}

func (r *RateLimiter) Accept(id int64, ts time.Time) {
	r.last[id] = ts
}

func (r *RateLimiter) Len() int {
	return len(r.last)
}
