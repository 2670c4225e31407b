package query

import (
	"fmt"
	"time"
)

// TemporalKind identifies the variant of a temporal constraint.
type TemporalKind string

const (
	// Before bounds results strictly before a date.
	Before TemporalKind = "before"
	// After bounds results at or after a date.
	After TemporalKind = "after"
	// Between bounds results inside an inclusive date range.
	Between TemporalKind = "between"
	// Relative bounds results by a signed offset from now.
	Relative TemporalKind = "relative"
	// InQuarter bounds results to one calendar quarter.
	InQuarter TemporalKind = "in_quarter"
)

// Unit is the unit of a relative offset.
type Unit string

const (
	Days   Unit = "days"
	Weeks  Unit = "weeks"
	Months Unit = "months"
	Years  Unit = "years"
)

// Direction of a relative offset from the current instant.
type Direction int

const (
	// Past offsets reach backward from now.
	Past Direction = -1
	// Future offsets reach forward from now.
	Future Direction = 1
)

// Relative month/year offsets use fixed day multipliers rather than
// calendar arithmetic. An explicit approximation, not a bug.
const (
	daysPerMonth = 30
	daysPerYear  = 365
)

// Temporal is a tagged temporal constraint. At most one per parsed query.
type Temporal struct {
	kind      TemporalKind
	start     time.Time
	end       time.Time
	unit      Unit
	count     int
	direction Direction
	year      int
	quarter   int
}

// NewBefore creates a before(date) constraint.
func NewBefore(date time.Time) Temporal {
	return Temporal{kind: Before, end: date}
}

// NewAfter creates an after(date) constraint.
func NewAfter(date time.Time) Temporal {
	return Temporal{kind: After, start: date}
}

// NewBetween creates a between(start,end) constraint.
func NewBetween(start, end time.Time) (Temporal, error) {
	if end.Before(start) {
		return Temporal{}, fmt.Errorf("range end %s precedes start %s",
			end.Format(time.DateOnly), start.Format(time.DateOnly))
	}
	return Temporal{kind: Between, start: start, end: end}, nil
}

// NewRelative creates a relative(unit,count,direction) constraint.
func NewRelative(unit Unit, count int, direction Direction) (Temporal, error) {
	if count <= 0 {
		return Temporal{}, fmt.Errorf("relative count must be positive, got %d", count)
	}
	switch unit {
	case Days, Weeks, Months, Years:
	default:
		return Temporal{}, fmt.Errorf("invalid relative unit %q", unit)
	}
	return Temporal{kind: Relative, unit: unit, count: count, direction: direction}, nil
}

// NewInQuarter creates an in_quarter(year,quarter) constraint.
func NewInQuarter(year, quarter int) (Temporal, error) {
	if quarter < 1 || quarter > 4 {
		return Temporal{}, fmt.Errorf("quarter must be 1-4, got %d", quarter)
	}
	return Temporal{kind: InQuarter, year: year, quarter: quarter}, nil
}

// Kind returns the constraint variant.
func (t Temporal) Kind() TemporalKind { return t.kind }

// Start returns the lower bound for before/after/between.
func (t Temporal) Start() time.Time { return t.start }

// End returns the upper bound for before/between.
func (t Temporal) End() time.Time { return t.end }

// Unit returns the relative unit.
func (t Temporal) Unit() Unit { return t.unit }

// Count returns the relative magnitude.
func (t Temporal) Count() int { return t.count }

// Direction returns the relative direction.
func (t Temporal) Direction() Direction { return t.direction }

// Year returns the quarter's year.
func (t Temporal) Year() int { return t.year }

// Quarter returns the quarter number (1-4).
func (t Temporal) Quarter() int { return t.quarter }

// IsZero reports whether no constraint is set.
func (t Temporal) IsZero() bool { return t.kind == "" }

// Bounds resolves the constraint to an absolute [start, end) window
// relative to now. Open bounds are returned as zero times. Between
// dates name whole days, so the window extends through the end of the
// named end day.
func (t Temporal) Bounds(now time.Time) (start, end time.Time) {
	switch t.kind {
	case Before:
		return time.Time{}, t.end
	case After:
		return t.start, time.Time{}
	case Between:
		return t.start, t.end.AddDate(0, 0, 1)
	case Relative:
		offset := t.offsetDuration()
		if t.direction == Past {
			return now.Add(-offset), now
		}
		return now, now.Add(offset)
	case InQuarter:
		start = time.Date(t.year, time.Month((t.quarter-1)*3+1), 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 3, 0)
	}
	return time.Time{}, time.Time{}
}

func (t Temporal) offsetDuration() time.Duration {
	day := 24 * time.Hour
	switch t.unit {
	case Days:
		return time.Duration(t.count) * day
	case Weeks:
		return time.Duration(t.count) * 7 * day
	case Months:
		return time.Duration(t.count) * daysPerMonth * day
	case Years:
		return time.Duration(t.count) * daysPerYear * day
	}
	return 0
}
