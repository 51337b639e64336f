// Package dates provides calendar-day values and inclusive day ranges.
//
// Lab records are keyed by (animal_id, calendar date) with no time
// component, so everything here works on whole days in UTC. The wire
// format is YYYY-MM-DD throughout.
package dates

import (
	"errors"
	"fmt"
	"time"
)

// DayFormat is the canonical wire format for calendar days.
const DayFormat = "2006-01-02"

var (
	ErrDayFormat     = errors.New("day must be YYYY-MM-DD")
	ErrInvertedRange = errors.New("range max precedes min")
)

// Day is a calendar date with no time-of-day component, always UTC.
type Day struct {
	t time.Time
}

// NewDay builds a Day from year, month and day numbers.
func NewDay(year int, month time.Month, day int) Day {
	return Day{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DayOf truncates a timestamp to its calendar day.
func DayOf(t time.Time) Day {
	return NewDay(t.Year(), t.Month(), t.Day())
}

// ParseDay parses a YYYY-MM-DD string.
func ParseDay(value string) (Day, error) {
	t, err := time.Parse(DayFormat, value)
	if err != nil {
		return Day{}, fmt.Errorf("%w: %q", ErrDayFormat, value)
	}

	return DayOf(t), nil
}

// Today returns the current calendar day.
func Today() Day {
	return DayOf(time.Now().UTC())
}

func (d Day) String() string          { return d.t.Format(DayFormat) }
func (d Day) Time() time.Time         { return d.t }
func (d Day) IsZero() bool            { return d.t.IsZero() }
func (d Day) Before(other Day) bool   { return d.t.Before(other.t) }
func (d Day) After(other Day) bool    { return d.t.After(other.t) }
func (d Day) Equal(other Day) bool    { return d.t.Equal(other.t) }
func (d Day) AddDays(n int) Day       { return Day{t: d.t.AddDate(0, 0, n)} }
func (d Day) Prev() Day               { return d.AddDays(-1) }

// Compare orders two days: -1 if d is earlier, 0 if equal, 1 if later.
func (d Day) Compare(other Day) int {
	return d.t.Compare(other.t)
}

// Range is an inclusive [Min, Max] span of calendar days.
type Range struct {
	Min Day
	Max Day
}

// NewRange validates and builds an inclusive day range.
func NewRange(min, max Day) (Range, error) {
	if max.Before(min) {
		return Range{}, fmt.Errorf("%w: %s > %s", ErrInvertedRange, min, max)
	}

	return Range{Min: min, Max: max}, nil
}

// ParseRange parses two YYYY-MM-DD strings into a range.
func ParseRange(min, max string) (Range, error) {
	lo, err := ParseDay(min)
	if err != nil {
		return Range{}, err
	}

	hi, err := ParseDay(max)
	if err != nil {
		return Range{}, err
	}

	return NewRange(lo, hi)
}

// Contains reports whether the day falls inside the range, inclusive.
func (r Range) Contains(d Day) bool {
	return !d.Before(r.Min) && !d.After(r.Max)
}

// Days returns every day of the range in ascending order.
func (r Range) Days() []Day {
	var days []Day
	for d := r.Min; !d.After(r.Max); d = d.AddDays(1) {
		days = append(days, d)
	}

	return days
}

// Len returns the number of days the range covers.
func (r Range) Len() int {
	return int(r.Max.t.Sub(r.Min.t).Hours()/24) + 1
}

func (r Range) String() string {
	return fmt.Sprintf("%s..%s", r.Min, r.Max)
}

// Window builds a range ending at latest and reaching nDaysBack days
// into the past. A zero latest means today. nDaysBack of zero yields a
// single-day range.
func Window(latest Day, nDaysBack int) Range {
	if latest.IsZero() {
		latest = Today()
	}

	if nDaysBack < 0 {
		nDaysBack = 0
	}

	return Range{Min: latest.AddDays(-nDaysBack), Max: latest}
}
