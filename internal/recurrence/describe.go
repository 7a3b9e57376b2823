package recurrence

import (
	"fmt"
	"strings"
	"time"
)

// Describe renders a rule as a short English phrase for display, e.g.
// "Every 2 weeks on Mon, Wed" or "Every month on the 15th". Localization is
// the presentation layer's concern; this is the default-locale form.
func Describe(r Rule) string {
	switch r.Frequency {
	case Daily:
		if r.Interval == 1 {
			return "Every day"
		}
		return fmt.Sprintf("Every %d days", r.Interval)

	case Weekly:
		prefix := "Every week"
		if r.Interval != 1 {
			prefix = fmt.Sprintf("Every %d weeks", r.Interval)
		}
		if len(r.DaysOfWeek) == 0 {
			return prefix
		}
		names := make([]string, len(r.DaysOfWeek))
		for i, d := range r.DaysOfWeek {
			names[i] = weekdayName(d)
		}
		return prefix + " on " + strings.Join(names, ", ")

	case Monthly:
		prefix := "Every month"
		if r.Interval != 1 {
			prefix = fmt.Sprintf("Every %d months", r.Interval)
		}
		if r.byWeekday() {
			return fmt.Sprintf("%s on the %s %s", prefix, r.WeekPosition, weekdayName(*r.DayOfWeekMonthly))
		}
		return fmt.Sprintf("%s on the %s", prefix, ordinal(r.DayOfMonth))

	case Yearly:
		prefix := "Every year"
		if r.Interval != 1 {
			prefix = fmt.Sprintf("Every %d years", r.Interval)
		}
		return fmt.Sprintf("%s on %s %d", prefix, time.Month(r.MonthOfYear), r.DayOfMonth)
	}
	return ""
}

func ordinal(n int) string {
	suffix := "th"
	if n%100 < 11 || n%100 > 13 {
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}
