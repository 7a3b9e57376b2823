package recurrence

import (
	"testing"

	"betterr/internal/dateutil"
)

func dates(ss ...string) []string { return ss }

func occurrences(t *testing.T, r Rule, ruleStart, rangeStart, rangeEnd string) []string {
	t.Helper()
	if err := r.Validate(); err != nil {
		t.Fatalf("rule invalid: %v", err)
	}
	got := OccurrencesInRange(r,
		dateutil.MustParseDate(ruleStart),
		dateutil.MustParseDate(rangeStart),
		dateutil.MustParseDate(rangeEnd),
	)
	out := make([]string, len(got))
	for i, d := range got {
		out[i] = d.String()
	}
	return out
}

func equalDates(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func intp(n int) *int { return &n }

func TestDailyOccurrences(t *testing.T) {
	tests := []struct {
		name       string
		interval   int
		ruleStart  string
		rangeStart string
		rangeEnd   string
		want       []string
	}{
		{
			name: "every day", interval: 1,
			ruleStart: "2026-01-01", rangeStart: "2026-01-01", rangeEnd: "2026-01-05",
			want: dates("2026-01-01", "2026-01-02", "2026-01-03", "2026-01-04", "2026-01-05"),
		},
		{
			name: "every other day", interval: 2,
			ruleStart: "2026-01-01", rangeStart: "2026-01-01", rangeEnd: "2026-01-07",
			want: dates("2026-01-01", "2026-01-03", "2026-01-05", "2026-01-07"),
		},
		{
			name: "skips dates before range start", interval: 1,
			ruleStart: "2026-01-01", rangeStart: "2026-01-03", rangeEnd: "2026-01-05",
			want: dates("2026-01-03", "2026-01-04", "2026-01-05"),
		},
		{
			name: "interval phase preserved across fast-forward", interval: 3,
			ruleStart: "2026-01-01", rangeStart: "2026-02-01", rangeEnd: "2026-02-10",
			// Jan 1 + 3k: Feb 3 (k=11), Feb 6, Feb 9
			want: dates("2026-02-03", "2026-02-06", "2026-02-09"),
		},
		{
			name: "month boundary", interval: 1,
			ruleStart: "2026-01-30", rangeStart: "2026-01-30", rangeEnd: "2026-02-02",
			want: dates("2026-01-30", "2026-01-31", "2026-02-01", "2026-02-02"),
		},
		{
			name: "empty when range precedes rule start", interval: 1,
			ruleStart: "2026-02-01", rangeStart: "2026-01-01", rangeEnd: "2026-01-31",
			want: nil,
		},
		{
			name: "degenerate single-day range returns rule start", interval: 7,
			ruleStart: "2026-01-01", rangeStart: "2026-01-01", rangeEnd: "2026-01-01",
			want: dates("2026-01-01"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := occurrences(t, Rule{Frequency: Daily, Interval: tt.interval},
				tt.ruleStart, tt.rangeStart, tt.rangeEnd)
			if !equalDates(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWeeklyOccurrences(t *testing.T) {
	t.Run("specified days sorted ascending", func(t *testing.T) {
		// Mondays and Wednesdays; Feb 2 2026 is a Monday.
		r := Rule{Frequency: Weekly, Interval: 1, DaysOfWeek: []int{3, 1}}
		got := occurrences(t, r, "2026-02-02", "2026-02-02", "2026-02-15")
		want := dates("2026-02-02", "2026-02-04", "2026-02-09", "2026-02-11")
		if !equalDates(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("biweekly skips in-between weeks", func(t *testing.T) {
		r := Rule{Frequency: Weekly, Interval: 2, DaysOfWeek: []int{1}}
		got := occurrences(t, r, "2026-02-02", "2026-02-02", "2026-03-02")
		want := dates("2026-02-02", "2026-02-16", "2026-03-02")
		if !equalDates(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("weekday set Mon-Fri", func(t *testing.T) {
		r := Rule{Frequency: Weekly, Interval: 1, DaysOfWeek: []int{1, 2, 3, 4, 5}}
		got := occurrences(t, r, "2026-02-02", "2026-02-02", "2026-02-08")
		want := dates("2026-02-02", "2026-02-03", "2026-02-04", "2026-02-05", "2026-02-06")
		if !equalDates(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("excludes same-week days before rule start", func(t *testing.T) {
		// Rule starts Wednesday Feb 4; the Monday of that week must not appear.
		r := Rule{Frequency: Weekly, Interval: 1, DaysOfWeek: []int{1, 3}}
		got := occurrences(t, r, "2026-02-04", "2026-02-01", "2026-02-10")
		want := dates("2026-02-04", "2026-02-09")
		if !equalDates(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})
}

func TestMonthlyByDateOccurrences(t *testing.T) {
	t.Run("same day each month", func(t *testing.T) {
		r := Rule{Frequency: Monthly, Interval: 1, DayOfMonth: 15}
		got := occurrences(t, r, "2026-01-15", "2026-01-15", "2026-04-15")
		want := dates("2026-01-15", "2026-02-15", "2026-03-15", "2026-04-15")
		if !equalDates(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("day 31 clamps to month length", func(t *testing.T) {
		r := Rule{Frequency: Monthly, Interval: 1, DayOfMonth: 31}
		got := occurrences(t, r, "2026-01-31", "2026-01-31", "2026-04-30")
		want := dates("2026-01-31", "2026-02-28", "2026-03-31", "2026-04-30")
		if !equalDates(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("leap year Feb 29", func(t *testing.T) {
		r := Rule{Frequency: Monthly, Interval: 1, DayOfMonth: 29}
		got := occurrences(t, r, "2028-01-29", "2028-01-29", "2028-03-29")
		want := dates("2028-01-29", "2028-02-29", "2028-03-29")
		if !equalDates(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("quarterly interval", func(t *testing.T) {
		r := Rule{Frequency: Monthly, Interval: 3, DayOfMonth: 1}
		got := occurrences(t, r, "2026-01-01", "2026-01-01", "2026-12-31")
		want := dates("2026-01-01", "2026-04-01", "2026-07-01", "2026-10-01")
		if !equalDates(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})
}

func TestMonthlyByWeekdayOccurrences(t *testing.T) {
	t.Run("first Monday", func(t *testing.T) {
		r := Rule{Frequency: Monthly, Interval: 1, WeekPosition: First, DayOfWeekMonthly: intp(1)}
		got := occurrences(t, r, "2026-01-05", "2026-01-05", "2026-03-31")
		want := dates("2026-01-05", "2026-02-02", "2026-03-02")
		if !equalDates(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("last Friday", func(t *testing.T) {
		r := Rule{Frequency: Monthly, Interval: 1, WeekPosition: Last, DayOfWeekMonthly: intp(5)}
		got := occurrences(t, r, "2026-01-30", "2026-01-30", "2026-03-31")
		want := dates("2026-01-30", "2026-02-27", "2026-03-27")
		if !equalDates(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})
}

func TestYearlyOccurrences(t *testing.T) {
	t.Run("same date each year", func(t *testing.T) {
		r := Rule{Frequency: Yearly, Interval: 1, MonthOfYear: 3, DayOfMonth: 15}
		got := occurrences(t, r, "2024-03-15", "2024-03-15", "2027-03-15")
		want := dates("2024-03-15", "2025-03-15", "2026-03-15", "2027-03-15")
		if !equalDates(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("every two years", func(t *testing.T) {
		r := Rule{Frequency: Yearly, Interval: 2, MonthOfYear: 6, DayOfMonth: 1}
		got := occurrences(t, r, "2024-06-01", "2024-06-01", "2030-12-31")
		want := dates("2024-06-01", "2026-06-01", "2028-06-01", "2030-06-01")
		if !equalDates(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("Feb 29 clamps on non-leap years", func(t *testing.T) {
		r := Rule{Frequency: Yearly, Interval: 1, MonthOfYear: 2, DayOfMonth: 29}
		got := occurrences(t, r, "2028-02-29", "2028-02-29", "2030-03-01")
		want := dates("2028-02-29", "2029-02-28", "2030-02-28")
		if !equalDates(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})
}

func TestNextOccurrence(t *testing.T) {
	tests := []struct {
		name      string
		rule      Rule
		ruleStart string
		after     string
		want      string
	}{
		{
			name: "next daily", rule: Rule{Frequency: Daily, Interval: 1},
			ruleStart: "2026-01-01", after: "2026-01-05", want: "2026-01-06",
		},
		{
			name: "next weekly Monday", rule: Rule{Frequency: Weekly, Interval: 1, DaysOfWeek: []int{1}},
			ruleStart: "2026-02-02", after: "2026-02-04", want: "2026-02-09",
		},
		{
			name: "next monthly", rule: Rule{Frequency: Monthly, Interval: 1, DayOfMonth: 15},
			ruleStart: "2026-01-15", after: "2026-01-16", want: "2026-02-15",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NextOccurrence(tt.rule, dateutil.MustParseDate(tt.ruleStart), dateutil.MustParseDate(tt.after))
			if !ok {
				t.Fatal("expected an occurrence")
			}
			if got.String() != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
			if !got.After(dateutil.MustParseDate(tt.after)) {
				t.Error("next occurrence must be strictly after afterDate")
			}
		})
	}

	t.Run("none within window for huge interval", func(t *testing.T) {
		r := Rule{Frequency: Yearly, Interval: 10, MonthOfYear: 1, DayOfMonth: 1}
		if _, ok := NextOccurrence(r, dateutil.MustParseDate("2026-01-01"), dateutil.MustParseDate("2026-01-01")); ok {
			t.Error("expected no occurrence inside the bounded window")
		}
	})
}
