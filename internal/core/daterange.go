package core

import (
	"fmt"
	"time"
)

// DateRange is a half-open interval [Start, End).
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the range.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

func (r DateRange) String() string {
	return r.Start.Format(time.RFC3339) + "/" + r.End.Format(time.RFC3339)
}

// ResolveRange maps a month number to the whole calendar month in the year
// of now. End is the first instant of the following month.
func ResolveRange(month int, now time.Time) (DateRange, error) {
	if month < 1 || month > 12 {
		return DateRange{}, fmt.Errorf("%w: %d (must be between 1 and 12)", ErrInvalidMonth, month)
	}
	start := time.Date(now.Year(), time.Month(month), 1, 0, 0, 0, 0, now.Location())
	return DateRange{Start: start, End: start.AddDate(0, 1, 0)}, nil
}

// Resolver resolves month ranges against a clock and a location.
type Resolver struct {
	Now      func() time.Time
	Location *time.Location
}

// NewResolver returns a Resolver on the wall clock in loc (time.Local if nil).
func NewResolver(loc *time.Location) Resolver {
	if loc == nil {
		loc = time.Local
	}
	return Resolver{Now: time.Now, Location: loc}
}

// Resolve returns the range of month in the current year.
func (r Resolver) Resolve(month int) (DateRange, error) {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	loc := r.Location
	if loc == nil {
		loc = time.Local
	}
	return ResolveRange(month, now().In(loc))
}
