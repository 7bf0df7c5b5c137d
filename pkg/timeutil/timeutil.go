// Package timeutil provides the clock abstraction and time-window helpers
// used by schedule computations. Everything that depends on "now" takes a
// Clock so handlers stay deterministic under test.
// No external dependencies - uses only standard library.
package timeutil

import (
	"sync"
	"time"
)

// Clock returns the current instant.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a plain function to Clock.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time {
	return f()
}

// SystemClock is the wall clock in UTC.
type SystemClock struct{}

// Now returns time.Now in UTC.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// FixedClock is a settable clock for tests and replays.
type FixedClock struct {
	mu  sync.RWMutex
	now time.Time
}

// NewFixedClock creates a clock frozen at t.
func NewFixedClock(t time.Time) *FixedClock {
	return &FixedClock{now: t}
}

// Now returns the frozen instant.
func (c *FixedClock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.now
}

// Set moves the clock to t.
func (c *FixedClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

// Advance moves the clock forward by d.
func (c *FixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// OrSystem returns c, or SystemClock when c is nil.
func OrSystem(c Clock) Clock {
	if c == nil {
		return SystemClock{}
	}
	return c
}

// Hours converts a whole number of hours to a Duration.
func Hours(h int) time.Duration {
	return time.Duration(h) * time.Hour
}

// HoursAgo returns now minus h hours.
func HoursAgo(now time.Time, h int) time.Time {
	return now.Add(-Hours(h))
}

// HoursAhead returns now plus h hours.
func HoursAhead(now time.Time, h int) time.Time {
	return now.Add(Hours(h))
}

// ShiftPtr shifts t by d. A nil instant stays nil.
func ShiftPtr(t *time.Time, d time.Duration) *time.Time {
	if t == nil {
		return nil
	}
	shifted := t.Add(d)
	return &shifted
}

// UnixMilli returns t as Unix milliseconds.
func UnixMilli(t time.Time) int64 {
	return t.UnixMilli()
}

// FormatDateStr formats a date as YYYY-MM-DD.
func FormatDateStr(t time.Time) string {
	return t.Format("2006-01-02")
}

// FormatTimeStr formats a time as HH:MM.
func FormatTimeStr(t time.Time) string {
	return t.Format("15:04")
}
