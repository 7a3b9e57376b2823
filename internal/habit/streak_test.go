package habit

import (
	"testing"

	"betterr/internal/dateutil"
)

// 2026-02-09 is a Monday.
var (
	testToday   = dateutil.MustParseDate("2026-02-09")
	testCreated = dateutil.MustParseDate("2026-01-01")
)

func TestCalculateStreakDaily(t *testing.T) {
	daily := Frequency{Type: FreqDaily}

	t.Run("five consecutive days ending yesterday", func(t *testing.T) {
		completed := NewDateSet("2026-02-04", "2026-02-05", "2026-02-06", "2026-02-07", "2026-02-08")
		current, best := CalculateStreak(daily, completed, testToday, testCreated, 0)
		if current != 5 || best != 5 {
			t.Errorf("got current=%d best=%d, want 5/5", current, best)
		}
	})

	t.Run("today completed extends the streak", func(t *testing.T) {
		completed := NewDateSet("2026-02-08", "2026-02-09")
		current, _ := CalculateStreak(daily, completed, testToday, testCreated, 0)
		if current != 2 {
			t.Errorf("got current=%d, want 2", current)
		}
	})

	t.Run("incomplete today does not break the streak", func(t *testing.T) {
		completed := NewDateSet("2026-02-07", "2026-02-08")
		current, _ := CalculateStreak(daily, completed, testToday, testCreated, 0)
		if current != 2 {
			t.Errorf("got current=%d, want 2", current)
		}
	})

	t.Run("gap resets the count", func(t *testing.T) {
		// Feb 6 missing: only Feb 7-8 count.
		completed := NewDateSet("2026-02-04", "2026-02-05", "2026-02-07", "2026-02-08")
		current, _ := CalculateStreak(daily, completed, testToday, testCreated, 0)
		if current != 2 {
			t.Errorf("got current=%d, want 2", current)
		}
	})

	t.Run("best streak never decreases", func(t *testing.T) {
		current, best := CalculateStreak(daily, NewDateSet(), testToday, testCreated, 12)
		if current != 0 {
			t.Errorf("got current=%d, want 0", current)
		}
		if best != 12 {
			t.Errorf("got best=%d, want 12", best)
		}
	})

	t.Run("stops at creation date", func(t *testing.T) {
		created := dateutil.MustParseDate("2026-02-07")
		completed := NewDateSet("2026-02-01", "2026-02-07", "2026-02-08")
		current, _ := CalculateStreak(daily, completed, testToday, created, 0)
		if current != 2 {
			t.Errorf("got current=%d, want 2 (Feb 1 precedes creation)", current)
		}
	})
}

func TestCalculateStreakWeekdays(t *testing.T) {
	weekdays := Frequency{Type: FreqWeekdays}
	// Friday Feb 6 and Thursday Feb 5 completed; weekend is not scheduled, so
	// walking back from Monday the streak crosses it untouched.
	completed := NewDateSet("2026-02-05", "2026-02-06")
	current, _ := CalculateStreak(weekdays, completed, testToday, testCreated, 0)
	if current != 2 {
		t.Errorf("got current=%d, want 2", current)
	}
}

func TestCalculateStreakWeeklyAnchorsMonday(t *testing.T) {
	weekly := Frequency{Type: FreqWeekly}
	// Only Mondays are scheduled. Feb 2 and Jan 26 completed; today (Monday)
	// incomplete but in progress.
	completed := NewDateSet("2026-02-02", "2026-01-26")
	current, _ := CalculateStreak(weekly, completed, testToday, testCreated, 0)
	if current != 2 {
		t.Errorf("got current=%d, want 2", current)
	}
}

func TestCalculateStreakCustomDays(t *testing.T) {
	mwf := Frequency{Type: FreqCustom, Days: []int{1, 3, 5}}
	// Mon Feb 2, Wed Feb 4, Fri Feb 6 completed; Sat/Sun unscheduled.
	completed := NewDateSet("2026-02-02", "2026-02-04", "2026-02-06")
	current, _ := CalculateStreak(mwf, completed, testToday, testCreated, 0)
	if current != 3 {
		t.Errorf("got current=%d, want 3", current)
	}
}

func TestCalculateStreakTimesPerWeekWalksEveryDay(t *testing.T) {
	// times_per_week streak-walks day by day; weekly targets are not
	// evaluated here. Preserved behavior, encoded deliberately.
	f := Frequency{Type: FreqTimesPerWeek, Count: 3}
	completed := NewDateSet("2026-02-07", "2026-02-08")
	current, _ := CalculateStreak(f, completed, testToday, testCreated, 0)
	if current != 2 {
		t.Errorf("got current=%d, want 2", current)
	}
}

func TestFrequencyValidate(t *testing.T) {
	valid := []Frequency{
		{Type: FreqDaily},
		{Type: FreqWeekdays},
		{Type: FreqWeekly},
		{Type: FreqTimesPerWeek, Count: 2},
		{Type: FreqTimesPerWeek, Count: 3},
		{Type: FreqCustom, Days: []int{0, 6}},
	}
	for _, f := range valid {
		if err := f.Validate(); err != nil {
			t.Errorf("Validate(%+v) unexpected error: %v", f, err)
		}
	}
	invalid := []Frequency{
		{Type: "hourly"},
		{Type: FreqTimesPerWeek, Count: 1},
		{Type: FreqTimesPerWeek, Count: 4},
		{Type: FreqCustom},
		{Type: FreqCustom, Days: []int{7}},
	}
	for _, f := range invalid {
		if err := f.Validate(); err == nil {
			t.Errorf("Validate(%+v) expected error", f)
		}
	}
}

func TestNextMilestone(t *testing.T) {
	tests := []struct {
		streak int
		want   int
		ok     bool
	}{
		{0, 7, true},
		{6, 7, true},
		{7, 14, true},
		{29, 30, true},
		{365, 0, false},
	}
	for _, tt := range tests {
		got, ok := NextMilestone(tt.streak)
		if got != tt.want || ok != tt.ok {
			t.Errorf("NextMilestone(%d) = %d, %v; want %d, %v", tt.streak, got, ok, tt.want, tt.ok)
		}
	}
	if !IsMilestone(7) || IsMilestone(8) {
		t.Error("IsMilestone wrong")
	}
}
