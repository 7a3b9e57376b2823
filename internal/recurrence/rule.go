// Package recurrence computes calendar occurrences for repeating task rules.
// It supports the product's rule shapes only: daily/weekly/monthly/yearly with
// intervals, weekday sets, one day-of-month or one nth-weekday rule per month,
// and one month/day pair per year. It is not an RFC 5545 implementation.
package recurrence

import (
	"errors"
	"fmt"
	"time"
)

type Frequency string

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

type WeekPosition string

const (
	First  WeekPosition = "first"
	Second WeekPosition = "second"
	Third  WeekPosition = "third"
	Fourth WeekPosition = "fourth"
	Last   WeekPosition = "last"
)

var ErrInvalidRule = errors.New("invalid recurrence rule")

// Rule describes a repeating schedule. Which optional fields apply depends on
// Frequency; Validate enforces the combinations. A monthly rule carries either
// DayOfMonth or the WeekPosition/DayOfWeekMonthly pair, never both.
type Rule struct {
	Frequency Frequency `json:"frequency"`
	Interval  int       `json:"interval"`

	// weekly
	DaysOfWeek []int `json:"days_of_week,omitempty"` // 0-6, Sunday = 0

	// monthly by date, also the day for yearly
	DayOfMonth int `json:"day_of_month,omitempty"` // 1-31

	// monthly by weekday position
	WeekPosition     WeekPosition `json:"week_position,omitempty"`
	DayOfWeekMonthly *int         `json:"day_of_week_monthly,omitempty"` // 0-6; pointer because Sunday is 0

	// yearly
	MonthOfYear int `json:"month_of_year,omitempty"` // 1-12
}

// byWeekday reports whether a monthly rule targets an nth weekday rather than
// a day of the month.
func (r Rule) byWeekday() bool {
	return r.WeekPosition != "" && r.DayOfWeekMonthly != nil
}

// Validate checks that the rule carries the fields its frequency requires.
// It fails fast at the boundary so the calculators never see a malformed rule.
func (r Rule) Validate() error {
	if r.Interval < 1 {
		return fmt.Errorf("%w: interval must be >= 1, got %d", ErrInvalidRule, r.Interval)
	}

	switch r.Frequency {
	case Daily:
		return nil

	case Weekly:
		if len(r.DaysOfWeek) == 0 {
			return fmt.Errorf("%w: weekly rule needs at least one day of week", ErrInvalidRule)
		}
		for _, d := range r.DaysOfWeek {
			if d < 0 || d > 6 {
				return fmt.Errorf("%w: day of week %d out of range", ErrInvalidRule, d)
			}
		}
		return nil

	case Monthly:
		hasDay := r.DayOfMonth >= 1
		hasWeekday := r.WeekPosition != "" || r.DayOfWeekMonthly != nil
		if hasDay == hasWeekday {
			return fmt.Errorf("%w: monthly rule needs day_of_month or a week_position pair, not both", ErrInvalidRule)
		}
		if hasDay {
			if r.DayOfMonth > 31 {
				return fmt.Errorf("%w: day_of_month %d out of range", ErrInvalidRule, r.DayOfMonth)
			}
			return nil
		}
		if !r.byWeekday() {
			return fmt.Errorf("%w: monthly rule needs both week_position and day_of_week_monthly", ErrInvalidRule)
		}
		switch r.WeekPosition {
		case First, Second, Third, Fourth, Last:
		default:
			return fmt.Errorf("%w: unknown week position %q", ErrInvalidRule, r.WeekPosition)
		}
		if d := *r.DayOfWeekMonthly; d < 0 || d > 6 {
			return fmt.Errorf("%w: day_of_week_monthly %d out of range", ErrInvalidRule, d)
		}
		return nil

	case Yearly:
		if r.MonthOfYear < 1 || r.MonthOfYear > 12 {
			return fmt.Errorf("%w: month_of_year %d out of range", ErrInvalidRule, r.MonthOfYear)
		}
		if r.DayOfMonth < 1 || r.DayOfMonth > 31 {
			return fmt.Errorf("%w: day_of_month %d out of range", ErrInvalidRule, r.DayOfMonth)
		}
		return nil

	default:
		return fmt.Errorf("%w: unknown frequency %q", ErrInvalidRule, r.Frequency)
	}
}

// nth maps a week position to its ordinal; Last is handled separately.
func (p WeekPosition) nth() (int, bool) {
	switch p {
	case First:
		return 1, true
	case Second:
		return 2, true
	case Third:
		return 3, true
	case Fourth:
		return 4, true
	default:
		return 0, false
	}
}

func weekdayName(d int) string {
	return time.Weekday(d).String()[:3]
}
