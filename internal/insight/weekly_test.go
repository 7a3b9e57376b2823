package insight

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"betterr/internal/dateutil"
	"betterr/internal/habit"
)

// Weeks under test with a Sunday week start and today = Monday 2026-02-09:
// previous full week is Feb 1..7, the one before is Jan 25..31.
var insightToday = dateutil.MustParseDate("2026-02-09")

func dailyHabit(name string, streak int) habit.Habit {
	h := habit.Habit{
		ID:            uuid.New(),
		Name:          name,
		Status:        habit.StatusActive,
		CurrentStreak: streak,
	}
	h.SetFrequency(habit.Frequency{Type: habit.FreqDaily})
	return h
}

func logsOn(h habit.Habit, dates ...string) []CompletionLog {
	logs := make([]CompletionLog, 0, len(dates))
	for _, d := range dates {
		logs = append(logs, CompletionLog{HabitID: h.ID.String(), Date: dateutil.MustParseDate(d)})
	}
	return logs
}

func TestWeeklyNoHabits(t *testing.T) {
	got := Weekly(nil, nil, insightToday, time.Sunday)
	if len(got) != 0 {
		t.Fatalf("expected no insights, got %d", len(got))
	}
}

func TestWeeklyStreakProximityOutranksEverything(t *testing.T) {
	h := dailyHabit("Read", 5)
	logs := logsOn(h,
		"2026-02-01", "2026-02-02", "2026-02-03", "2026-02-04",
		"2026-02-05", "2026-02-06", "2026-02-07",
		"2026-01-25", "2026-01-26", "2026-01-27", "2026-01-28",
		"2026-01-29", "2026-01-30",
	)

	got := Weekly([]habit.Habit{h}, logs, insightToday, time.Sunday)
	if len(got) != 2 {
		t.Fatalf("expected 2 insights, got %d", len(got))
	}
	if got[0].Type != TypeStreakProximity {
		t.Fatalf("first insight = %s, want streak_proximity", got[0].Type)
	}
	if got[0].Params["days"] != 2 || got[0].Params["milestone"] != 7 {
		t.Fatalf("proximity params = %v", got[0].Params)
	}
}

func TestWeeklyNoProximityWhenMilestoneFar(t *testing.T) {
	h := dailyHabit("Read", 3) // 4 days out from 7
	got := Weekly([]habit.Habit{h}, nil, insightToday, time.Sunday)
	for _, in := range got {
		if in.Type == TypeStreakProximity {
			t.Fatalf("unexpected streak_proximity insight")
		}
	}
}

func TestWeeklyBestHabitAndBestWeek(t *testing.T) {
	h := dailyHabit("Meditate", 0)
	logs := logsOn(h,
		// perfect previous week
		"2026-02-01", "2026-02-02", "2026-02-03", "2026-02-04",
		"2026-02-05", "2026-02-06", "2026-02-07",
		// 6 of 7 the week before
		"2026-01-25", "2026-01-26", "2026-01-27", "2026-01-28",
		"2026-01-29", "2026-01-30",
	)

	got := Weekly([]habit.Habit{h}, logs, insightToday, time.Sunday)
	if len(got) != 2 {
		t.Fatalf("expected 2 insights, got %d", len(got))
	}
	if got[0].Type != TypeBestHabit || got[1].Type != TypeBestWeek {
		t.Fatalf("got types %s, %s; want best_habit, best_week", got[0].Type, got[1].Type)
	}
	if got[0].Params["habit"] != "Meditate" || got[0].Params["percent"] != 100 {
		t.Fatalf("best habit params = %v", got[0].Params)
	}
	if got[1].Params["percent"] != 100 {
		t.Fatalf("best week params = %v", got[1].Params)
	}
}

func TestWeeklyWorstDay(t *testing.T) {
	h := dailyHabit("Run", 0)
	// 4 of 7 last week, nothing before. Thursday through Saturday missed;
	// Thursday is the first unmet day scanned.
	logs := logsOn(h, "2026-02-01", "2026-02-02", "2026-02-03", "2026-02-04")

	got := Weekly([]habit.Habit{h}, logs, insightToday, time.Sunday)
	if len(got) != 1 {
		t.Fatalf("expected 1 insight, got %d", len(got))
	}
	if got[0].Type != TypeWorstDay {
		t.Fatalf("insight type = %s, want worst_day", got[0].Type)
	}
	if got[0].Params["day"] != "thursday" {
		t.Fatalf("worst day = %v, want thursday", got[0].Params["day"])
	}
}

func TestWeeklyDecline(t *testing.T) {
	h := dailyHabit("Journal", 0)
	logs := logsOn(h,
		// 3 of 7 last week
		"2026-02-01", "2026-02-02", "2026-02-03",
		// perfect the week before
		"2026-01-25", "2026-01-26", "2026-01-27", "2026-01-28",
		"2026-01-29", "2026-01-30", "2026-01-31",
	)

	got := Weekly([]habit.Habit{h}, logs, insightToday, time.Sunday)
	var decline *Insight
	for i := range got {
		if got[i].Type == TypeDecline {
			decline = &got[i]
		}
	}
	if decline == nil {
		t.Fatalf("expected a decline insight, got %v", got)
	}
	if decline.Params["percent"] != 43 || decline.Params["lastPercent"] != 100 {
		t.Fatalf("decline params = %v", decline.Params)
	}
}

func TestWeeklyImprovement(t *testing.T) {
	h := dailyHabit("Stretch", 0)
	logs := logsOn(h,
		// 5 of 7 last week
		"2026-02-01", "2026-02-02", "2026-02-03", "2026-02-04", "2026-02-05",
		// 3 of 7 the week before
		"2026-01-25", "2026-01-26", "2026-01-27",
	)

	got := Weekly([]habit.Habit{h}, logs, insightToday, time.Sunday)
	var improvement *Insight
	for i := range got {
		if got[i].Type == TypeImprovement {
			improvement = &got[i]
		}
	}
	if improvement == nil {
		t.Fatalf("expected an improvement insight, got %v", got)
	}
	if improvement.Params["change"] != 28 {
		t.Fatalf("improvement change = %v, want 28", improvement.Params["change"])
	}
}

func TestWeeklyCapsAtTwo(t *testing.T) {
	a := dailyHabit("A", 6) // proximity candidate
	b := dailyHabit("B", 13)
	logs := append(
		logsOn(a, "2026-02-01", "2026-02-02", "2026-02-03", "2026-02-04",
			"2026-02-05", "2026-02-06", "2026-02-07"),
		logsOn(b, "2026-02-01", "2026-02-02", "2026-02-03", "2026-02-04",
			"2026-02-05", "2026-02-06", "2026-02-07")...,
	)

	got := Weekly([]habit.Habit{a, b}, logs, insightToday, time.Sunday)
	if len(got) != 2 {
		t.Fatalf("expected cap of 2 insights, got %d", len(got))
	}
	if got[0].Type != TypeStreakProximity || got[1].Type != TypeStreakProximity {
		t.Fatalf("got types %s, %s; want two streak_proximity", got[0].Type, got[1].Type)
	}
}
