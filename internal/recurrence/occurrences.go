package recurrence

import (
	"sort"
	"time"

	"betterr/internal/dateutil"
)

// nextOccurrenceWindow bounds the forward search in NextOccurrence. Two years
// plus a day covers every supported rule with interval 1; rules with very
// large intervals can legitimately have no occurrence inside the window.
const nextOccurrenceWindow = 731

// OccurrencesInRange returns every occurrence of the rule within
// [rangeStart, rangeEnd], both ends inclusive, in ascending order. Occurrences
// never precede ruleStart. Wide ranges are handled by skipping forward whole
// periods instead of stepping day by day from the rule's epoch. The rule must
// already be validated.
func OccurrencesInRange(r Rule, ruleStart, rangeStart, rangeEnd dateutil.Date) []dateutil.Date {
	var out []dateutil.Date

	switch r.Frequency {
	case Daily:
		current := ruleStart
		if current.Before(rangeStart) {
			// Jump ahead by whole intervals to land just before the range.
			diff := dateutil.DaysBetween(ruleStart, rangeStart)
			current = ruleStart.AddDays(diff / r.Interval * r.Interval)
			if current.Before(rangeStart) {
				current = current.AddDays(r.Interval)
			}
		}
		for !current.After(rangeEnd) {
			if !current.Before(rangeStart) {
				out = append(out, current)
			}
			current = current.AddDays(r.Interval)
		}

	case Weekly:
		// Anchor to the Sunday of the week containing ruleStart.
		anchor := ruleStart.AddDays(-int(ruleStart.Weekday()))
		week := anchor
		if week.Before(rangeStart) {
			weeks := dateutil.DaysBetween(anchor, rangeStart) / 7
			week = anchor.AddDays(weeks / r.Interval * r.Interval * 7)
		}
		for !week.After(rangeEnd) {
			for _, dow := range r.DaysOfWeek {
				d := week.AddDays(dow)
				if !d.Before(ruleStart) && !d.Before(rangeStart) && !d.After(rangeEnd) {
					out = append(out, d)
				}
			}
			week = week.AddDays(7 * r.Interval)
		}
		// Per-week emission order follows the weekday set, not the calendar.
		sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })

	case Monthly:
		startMonths := ruleStart.Year()*12 + int(ruleStart.Month()) - 1
		rangeMonths := rangeStart.Year()*12 + int(rangeStart.Month()) - 1
		offset := 0
		if rangeMonths > startMonths {
			offset = (rangeMonths - startMonths) / r.Interval * r.Interval
		}
		for i := offset; ; i += r.Interval {
			first := dateutil.NewDate(ruleStart.Year(), ruleStart.Month()+time.Month(i), 1)
			year, month := first.Year(), first.Month()

			var target dateutil.Date
			ok := true
			if r.byWeekday() {
				weekday := time.Weekday(*r.DayOfWeekMonthly)
				if r.WeekPosition == Last {
					target = dateutil.LastWeekdayOfMonth(year, month, weekday)
				} else {
					n, _ := r.WeekPosition.nth()
					// A month without an nth occurrence is skipped, not an error.
					target, ok = dateutil.NthWeekdayOfMonth(year, month, n, weekday)
				}
			} else {
				day := r.DayOfMonth
				if last := dateutil.DaysInMonth(year, month); day > last {
					day = last
				}
				target = dateutil.NewDate(year, month, day)
			}

			if ok {
				if target.After(rangeEnd) {
					break
				}
				if !target.Before(ruleStart) && !target.Before(rangeStart) {
					out = append(out, target)
				}
			}
			if year > rangeEnd.Year()+1 {
				break
			}
		}

	case Yearly:
		offset := 0
		if diff := rangeStart.Year() - ruleStart.Year(); diff > 0 {
			offset = diff / r.Interval * r.Interval
		}
		for i := offset; ; i += r.Interval {
			year := ruleStart.Year() + i
			month := time.Month(r.MonthOfYear)
			day := r.DayOfMonth
			if last := dateutil.DaysInMonth(year, month); day > last {
				day = last
			}
			target := dateutil.NewDate(year, month, day)

			if target.After(rangeEnd) {
				break
			}
			if !target.Before(ruleStart) && !target.Before(rangeStart) {
				out = append(out, target)
			}
			if year > rangeEnd.Year()+1 {
				break
			}
		}
	}

	return out
}

// NextOccurrence returns the first occurrence strictly after afterDate, or
// false when none falls within the bounded forward window.
func NextOccurrence(r Rule, ruleStart, afterDate dateutil.Date) (dateutil.Date, bool) {
	from := afterDate.AddDays(1)
	to := afterDate.AddDays(nextOccurrenceWindow)
	occ := OccurrencesInRange(r, ruleStart, from, to)
	if len(occ) == 0 {
		return dateutil.Date{}, false
	}
	return occ[0], true
}
