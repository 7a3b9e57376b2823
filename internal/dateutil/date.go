// Package dateutil provides a timezone-naive calendar date value used by all
// scheduling and streak calculations. A Date identifies a civil day (YYYY-MM-DD)
// with no wall-clock time attached; arithmetic is plain calendar math and never
// crosses DST or timezone boundaries.
package dateutil

import (
	"fmt"
	"time"
)

const layout = "2006-01-02"

// Date is a civil calendar date. The zero value is invalid; construct via
// NewDate, ParseDate, or FromTime.
type Date struct {
	t time.Time // midnight UTC, used purely as calendar storage
}

// NewDate builds a date from year/month/day. Out-of-range days normalize the
// same way time.Date does (Jan 32 becomes Feb 1), which is what the calendar
// arithmetic here relies on.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(layout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{t: t}, nil
}

// MustParseDate is ParseDate for literals in tests and constants.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// FromTime converts a wall-clock instant to the calendar date it falls on in
// the instant's own location.
func FromTime(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

func (d Date) String() string { return d.t.Format(layout) }

func (d Date) IsZero() bool { return d.t.IsZero() }

func (d Date) Year() int          { return d.t.Year() }
func (d Date) Month() time.Month  { return d.t.Month() }
func (d Date) Day() int           { return d.t.Day() }
func (d Date) Weekday() time.Weekday { return d.t.Weekday() }

// AddDays returns the date n calendar days later (earlier for negative n).
func (d Date) AddDays(n int) Date {
	return Date{t: d.t.AddDate(0, 0, n)}
}

// Compare returns -1, 0, or 1 like strings.Compare over the YYYY-MM-DD form.
func (d Date) Compare(o Date) int {
	switch {
	case d.t.Before(o.t):
		return -1
	case d.t.After(o.t):
		return 1
	default:
		return 0
	}
}

func (d Date) Before(o Date) bool { return d.t.Before(o.t) }
func (d Date) After(o Date) bool  { return d.t.After(o.t) }
func (d Date) Equal(o Date) bool  { return d.t.Equal(o.t) }

// DaysBetween returns b - a in whole days (negative when b precedes a).
func DaysBetween(a, b Date) int {
	return int(b.t.Sub(a.t) / (24 * time.Hour))
}

// Min returns the earlier of two dates.
func Min(a, b Date) Date {
	if b.Before(a) {
		return b
	}
	return a
}

// Max returns the later of two dates.
func Max(a, b Date) Date {
	if b.After(a) {
		return b
	}
	return a
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	// Day zero of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// NthWeekdayOfMonth returns the n-th (1-4) occurrence of weekday in the month,
// or false when the month has no n-th occurrence.
func NthWeekdayOfMonth(year int, month time.Month, n int, weekday time.Weekday) (Date, bool) {
	if n < 1 || n > 4 {
		return Date{}, false
	}
	count := 0
	for day := 1; day <= DaysInMonth(year, month); day++ {
		d := NewDate(year, month, day)
		if d.Weekday() == weekday {
			count++
			if count == n {
				return d, true
			}
		}
	}
	return Date{}, false
}

// LastWeekdayOfMonth returns the final occurrence of weekday in the month.
func LastWeekdayOfMonth(year int, month time.Month, weekday time.Weekday) Date {
	for day := DaysInMonth(year, month); day >= 1; day-- {
		d := NewDate(year, month, day)
		if d.Weekday() == weekday {
			return d
		}
	}
	return Date{} // unreachable: every weekday occurs in every month
}

// WeekStart returns the most recent date on or before d whose weekday is
// weekStartDay (the user's week-start preference).
func (d Date) WeekStart(weekStartDay time.Weekday) Date {
	back := (int(d.Weekday()) - int(weekStartDay) + 7) % 7
	return d.AddDays(-back)
}
