package testutil

import (
	"sync"

	"cloud.google.com/go/civil"
)

// AnchorDate is the anchor most tests resolve against: Thursday 2025-06-12.
var AnchorDate = civil.Date{Year: 2025, Month: 6, Day: 12}

// SteppingClock is an anchor clock that only moves when told to.
//
// Unlike clock.Fixed, SteppingClock can be advanced between requests, which
// lets tests prove that every request reads the anchor afresh.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type SteppingClock struct {
	mu   sync.Mutex
	date civil.Date
}

// NewSteppingClock creates a clock at start.
func NewSteppingClock(start civil.Date) *SteppingClock {
	return &SteppingClock{date: start}
}

// Today returns the current date without advancing.
func (c *SteppingClock) Today() civil.Date {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.date
}

// Advance moves the clock forward by days and returns the new date.
func (c *SteppingClock) Advance(days int) civil.Date {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.date = c.date.AddDays(days)
	return c.date
}
