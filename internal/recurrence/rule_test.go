package recurrence

import (
	"errors"
	"testing"
)

func TestRuleValidate(t *testing.T) {
	valid := []Rule{
		{Frequency: Daily, Interval: 1},
		{Frequency: Daily, Interval: 14},
		{Frequency: Weekly, Interval: 1, DaysOfWeek: []int{0, 6}},
		{Frequency: Monthly, Interval: 2, DayOfMonth: 31},
		{Frequency: Monthly, Interval: 1, WeekPosition: Last, DayOfWeekMonthly: intp(0)},
		{Frequency: Yearly, Interval: 1, MonthOfYear: 12, DayOfMonth: 25},
	}
	for _, r := range valid {
		if err := r.Validate(); err != nil {
			t.Errorf("Validate(%+v) unexpected error: %v", r, err)
		}
	}

	invalid := []Rule{
		{Frequency: Daily, Interval: 0},
		{Frequency: "hourly", Interval: 1},
		{Frequency: Weekly, Interval: 1},
		{Frequency: Weekly, Interval: 1, DaysOfWeek: []int{7}},
		{Frequency: Monthly, Interval: 1},
		{Frequency: Monthly, Interval: 1, DayOfMonth: 32},
		{Frequency: Monthly, Interval: 1, WeekPosition: First},                                       // missing weekday
		{Frequency: Monthly, Interval: 1, DayOfMonth: 5, WeekPosition: First, DayOfWeekMonthly: intp(1)}, // both shapes
		{Frequency: Monthly, Interval: 1, WeekPosition: "fifth", DayOfWeekMonthly: intp(1)},
		{Frequency: Yearly, Interval: 1, MonthOfYear: 13, DayOfMonth: 1},
		{Frequency: Yearly, Interval: 1, MonthOfYear: 6},
	}
	for _, r := range invalid {
		err := r.Validate()
		if err == nil {
			t.Errorf("Validate(%+v) expected error", r)
			continue
		}
		if !errors.Is(err, ErrInvalidRule) {
			t.Errorf("Validate(%+v) error %v is not ErrInvalidRule", r, err)
		}
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		rule Rule
		want string
	}{
		{Rule{Frequency: Daily, Interval: 1}, "Every day"},
		{Rule{Frequency: Daily, Interval: 3}, "Every 3 days"},
		{Rule{Frequency: Weekly, Interval: 1, DaysOfWeek: []int{1, 3, 5}}, "Every week on Mon, Wed, Fri"},
		{Rule{Frequency: Weekly, Interval: 2, DaysOfWeek: []int{1}}, "Every 2 weeks on Mon"},
		{Rule{Frequency: Monthly, Interval: 1, DayOfMonth: 15}, "Every month on the 15th"},
		{Rule{Frequency: Monthly, Interval: 1, DayOfMonth: 1}, "Every month on the 1st"},
		{Rule{Frequency: Monthly, Interval: 1, DayOfMonth: 22}, "Every month on the 22nd"},
		{Rule{Frequency: Monthly, Interval: 1, DayOfMonth: 23}, "Every month on the 23rd"},
		{Rule{Frequency: Monthly, Interval: 1, DayOfMonth: 11}, "Every month on the 11th"},
		{Rule{Frequency: Monthly, Interval: 1, WeekPosition: First, DayOfWeekMonthly: intp(1)}, "Every month on the first Mon"},
		{Rule{Frequency: Monthly, Interval: 6, WeekPosition: Last, DayOfWeekMonthly: intp(5)}, "Every 6 months on the last Fri"},
		{Rule{Frequency: Yearly, Interval: 1, MonthOfYear: 12, DayOfMonth: 25}, "Every year on December 25"},
		{Rule{Frequency: Yearly, Interval: 2, MonthOfYear: 3, DayOfMonth: 3}, "Every 2 years on March 3"},
	}
	for _, tt := range tests {
		if got := Describe(tt.rule); got != tt.want {
			t.Errorf("Describe(%+v) = %q, want %q", tt.rule, got, tt.want)
		}
	}
}
