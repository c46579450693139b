// Package clock supplies the anchor date that relative date phrases are
// resolved against.
//
// The anchor is always an explicit calendar date. Production code uses
// System; tests and pinned deployments use Fixed so that resolution never
// depends on wall-clock time.
package clock

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/cockroachdb/errors"
)

// Clock returns the current anchor date.
//
// Thread-safety: implementations must be safe for concurrent use.
type Clock interface {
	Today() civil.Date
}

// System reads the wall clock in a fixed location.
type System struct {
	loc *time.Location
	now func() time.Time
}

// NewSystem creates a wall-clock anchor in loc. A nil loc means UTC.
func NewSystem(loc *time.Location) *System {
	if loc == nil {
		loc = time.UTC
	}
	return &System{loc: loc, now: time.Now}
}

// NewSystemIn creates a wall-clock anchor for an IANA timezone name.
func NewSystemIn(timezone string) (*System, error) {
	if timezone == "" {
		return NewSystem(time.UTC), nil
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, errors.Wrapf(err, "load timezone %q", timezone)
	}
	return NewSystem(loc), nil
}

// Today returns the calendar date of "now" in the clock's location.
func (c *System) Today() civil.Date {
	return civil.DateOf(c.now().In(c.loc))
}

// Location returns the clock's timezone.
func (c *System) Location() *time.Location {
	return c.loc
}

// Fixed always returns the same date.
//
// Thread-safety: Fixed is immutable and safe for concurrent use.
type Fixed struct {
	date civil.Date
}

// NewFixed creates a clock pinned to date.
func NewFixed(date civil.Date) *Fixed {
	return &Fixed{date: date}
}

// ParseFixed creates a clock pinned to a YYYY-MM-DD date.
func ParseFixed(s string) (*Fixed, error) {
	d, err := civil.ParseDate(s)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid anchor date %q", s)
	}
	return NewFixed(d), nil
}

// Today returns the pinned date.
func (c *Fixed) Today() civil.Date {
	return c.date
}
