package habit

import (
	"time"

	"betterr/internal/dateutil"
)

type AbsenceUnit string

const (
	UnitDays  AbsenceUnit = "days"
	UnitWeeks AbsenceUnit = "weeks"
)

// Absence summarizes how long a habit has gone unattended, for re-engagement
// messaging. MissedPeriods counts consecutive missed scheduled days or weeks
// ending yesterday (or last week); PreviousStreak is the run that the gap
// broke.
type Absence struct {
	MissedPeriods  int         `json:"missed_scheduled_periods"`
	PreviousStreak int         `json:"previous_streak"`
	Unit           AbsenceUnit `json:"absence_unit"`
}

// absenceWindowWeeks bounds the week-based walk to roughly a year.
const absenceWindowWeeks = 53

// ComputeAbsence computes missed scheduled periods and the broken streak for
// a habit. Day-scheduled frequencies (daily, weekdays, custom) walk backward
// day by day from yesterday; week-aggregate frequencies (weekly,
// times_per_week) walk whole weeks, always skipping the in-progress week.
// The walk never looks before the habit's creation date, so the caller's
// completed set only needs to cover the window back to creation (the service
// fetches a year of logs, which exceeds both walk bounds). Degenerate inputs
// (zero creation date, habit created today) yield zeros in the frequency's
// unit.
func ComputeAbsence(freq Frequency, completed DateSet, today, createdAt dateutil.Date, weekStartDay time.Weekday) Absence {
	target, weekly := freq.WeeklyTarget()
	if createdAt.IsZero() || today.IsZero() {
		if weekly {
			return Absence{Unit: UnitWeeks}
		}
		return Absence{Unit: UnitDays}
	}

	if weekly {
		return missedWeeks(freq, completed, today, createdAt, weekStartDay, target)
	}
	return missedDays(freq, completed, today, createdAt)
}

func missedDays(freq Frequency, completed DateSet, today, createdAt dateutil.Date) Absence {
	a := Absence{Unit: UnitDays}
	countingMissed := true

	check := today.AddDays(-1) // today is still in progress, never missed
	for i := 0; i < streakWindowDays; i++ {
		if check.Before(createdAt) {
			break
		}
		if freq.ShouldTrackOn(check) {
			done := completed.Has(check)
			if countingMissed {
				if done {
					countingMissed = false
					a.PreviousStreak++
				} else {
					a.MissedPeriods++
				}
			} else {
				if !done {
					break
				}
				a.PreviousStreak++
			}
		}
		check = check.AddDays(-1)
	}
	return a
}

func missedWeeks(freq Frequency, completed DateSet, today, createdAt dateutil.Date, weekStartDay time.Weekday, target int) Absence {
	a := Absence{Unit: UnitWeeks}
	countingMissed := true

	// The current week is always in progress and never counted.
	week := today.WeekStart(weekStartDay).AddDays(-7)
	for i := 0; i < absenceWindowWeeks; i++ {
		// A week that starts before the habit existed is not applicable.
		if week.Before(createdAt) {
			break
		}
		met := weekMet(freq, completed, week, target)
		if countingMissed {
			if met {
				countingMissed = false
				a.PreviousStreak++
			} else {
				a.MissedPeriods++
			}
		} else {
			if !met {
				break
			}
			a.PreviousStreak++
		}
		week = week.AddDays(-7)
	}
	return a
}

func weekMet(freq Frequency, completed DateSet, weekStart dateutil.Date, target int) bool {
	count := 0
	for i := 0; i < 7; i++ {
		if completed.Has(weekStart.AddDays(i)) {
			count++
			if count >= target {
				return true
			}
		}
	}
	return false
}
