// Package ratelimit provides the process-wide minimum-interval limiter for
// triggered notes. The simulation is single-threaded, so the limiter is a
// plain last-write-wins timestamp: a request arriving inside the interval is
// dropped entirely, never queued or coalesced.
package ratelimit

import "time"

// IntervalLimiter allows at most one event per fixed interval.
type IntervalLimiter struct {
	interval time.Duration
	last     time.Time
}

// NewIntervalLimiter creates a limiter with the given minimum spacing.
// The first Allow call always succeeds.
func NewIntervalLimiter(interval time.Duration) *IntervalLimiter {
	return &IntervalLimiter{interval: interval}
}

// Allow reports whether an event at now is permitted. On success the window
// restarts at now; on failure the previous window is left untouched.
func (l *IntervalLimiter) Allow(now time.Time) bool {
	if !l.last.IsZero() && now.Sub(l.last) < l.interval {
		return false
	}
	l.last = now
	return true
}

// Last returns the timestamp of the most recent allowed event, or the zero
// time if none has been allowed yet.
func (l *IntervalLimiter) Last() time.Time {
	return l.last
}
