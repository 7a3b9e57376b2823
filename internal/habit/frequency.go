package habit

import (
	"errors"
	"fmt"
	"time"

	"betterr/internal/dateutil"
)

type FrequencyType string

const (
	FreqDaily        FrequencyType = "daily"
	FreqWeekdays     FrequencyType = "weekdays"
	FreqWeekly       FrequencyType = "weekly"
	FreqTimesPerWeek FrequencyType = "times_per_week"
	FreqCustom       FrequencyType = "custom"
)

var ErrInvalidFrequency = errors.New("invalid habit frequency")

// Frequency is the habit scheduling model. Count applies to times_per_week,
// Days (0-6, Sunday = 0) to custom.
type Frequency struct {
	Type  FrequencyType `json:"type"`
	Count int           `json:"count,omitempty"`
	Days  []int         `json:"days,omitempty"`
}

func (f Frequency) Validate() error {
	switch f.Type {
	case FreqDaily, FreqWeekdays, FreqWeekly:
		return nil
	case FreqTimesPerWeek:
		if f.Count < 2 || f.Count > 3 {
			return fmt.Errorf("%w: times_per_week count must be 2 or 3, got %d", ErrInvalidFrequency, f.Count)
		}
		return nil
	case FreqCustom:
		if len(f.Days) == 0 {
			return fmt.Errorf("%w: custom frequency needs at least one day", ErrInvalidFrequency)
		}
		for _, d := range f.Days {
			if d < 0 || d > 6 {
				return fmt.Errorf("%w: day %d out of range", ErrInvalidFrequency, d)
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidFrequency, f.Type)
	}
}

// ShouldTrackOn reports whether the habit is scheduled on the given date.
// weekly anchors to Monday (not per-habit configurable); times_per_week treats
// every day as trackable and is evaluated as a weekly aggregate only by the
// absence walk. Both are long-standing product behavior.
func (f Frequency) ShouldTrackOn(d dateutil.Date) bool {
	dow := d.Weekday()
	switch f.Type {
	case FreqDaily:
		return true
	case FreqWeekdays:
		return dow >= time.Monday && dow <= time.Friday
	case FreqWeekly:
		return dow == time.Monday
	case FreqTimesPerWeek:
		return true
	case FreqCustom:
		for _, day := range f.Days {
			if time.Weekday(day) == dow {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// WeeklyTarget returns how many completions satisfy one week of the habit,
// and whether the frequency is evaluated per week at all.
func (f Frequency) WeeklyTarget() (int, bool) {
	switch f.Type {
	case FreqWeekly:
		return 1, true
	case FreqTimesPerWeek:
		target := f.Count
		if target < 1 {
			target = 1
		}
		return target, true
	default:
		return 0, false
	}
}
