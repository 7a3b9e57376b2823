package habit

import (
	"betterr/internal/dateutil"
)

// streakWindowDays bounds the backward walk; a streak older than a year is
// capped rather than recomputed from the full history.
const streakWindowDays = 365

// DateSet is a membership set of completed calendar dates.
type DateSet map[string]struct{}

func NewDateSet(dates ...string) DateSet {
	s := make(DateSet, len(dates))
	for _, d := range dates {
		s[d] = struct{}{}
	}
	return s
}

func (s DateSet) Add(d dateutil.Date)      { s[d.String()] = struct{}{} }
func (s DateSet) Has(d dateutil.Date) bool { _, ok := s[d.String()]; return ok }

// CalculateStreak walks backward from today counting consecutive scheduled
// days that were completed. Today never breaks the streak while incomplete
// (the day is still in progress), but it does not extend it either. The walk
// stops at the habit's creation date or after a year. Best streak is
// monotonic: it never drops below its previous value.
func CalculateStreak(freq Frequency, completed DateSet, today, createdAt dateutil.Date, previousBest int) (current, best int) {
	check := today
	for i := 0; i <= streakWindowDays; i++ {
		if check.Before(createdAt) {
			break
		}
		if freq.ShouldTrackOn(check) {
			if completed.Has(check) {
				current++
			} else if !check.Equal(today) {
				break
			}
		}
		check = check.AddDays(-1)
	}

	best = previousBest
	if current > best {
		best = current
	}
	return current, best
}
