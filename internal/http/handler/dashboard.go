package handler

import (
	"net/http"
	"time"

	"betterr/internal/auth"
	"betterr/internal/dateutil"
	"betterr/internal/habit"
	"betterr/internal/task"
)

type DashboardHandler struct {
	Tasks      *task.Service
	Habits     *habit.Service
	Users      *auth.Service
	Gen        *task.Generator
	WindowDays int
}

// Dashboard returns one day's view: the tasks due that day and the next (with
// recurring instances materialized first), every active habit with its
// completion state and absence summary, and aggregate counts.
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	today := dateutil.FromTime(time.Now())
	date := today
	if s := r.URL.Query().Get("date"); s != "" {
		parsed, err := dateutil.ParseDate(s)
		if err != nil {
			http.Error(w, "bad date", http.StatusBadRequest)
			return
		}
		date = parsed
	}

	through := dateutil.Max(date.AddDays(1), today.AddDays(h.WindowDays))
	if err := h.Gen.EnsureInstances(r.Context(), uid, through); err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	due := date.String()
	tasksToday, err := h.Tasks.List(r.Context(), uid, task.ListFilter{DueDate: &due})
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	tomorrow := date.AddDays(1).String()
	incomplete := false
	tasksTomorrow, err := h.Tasks.List(r.Context(), uid, task.ListFilter{
		DueDate:   &tomorrow,
		Completed: &incomplete,
	})
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	totalTasks, err := h.Tasks.Count(r.Context(), uid, task.ListFilter{})
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	u, err := h.Users.GetUser(r.Context(), uid)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	active := habit.StatusActive
	habits, err := h.Habits.List(r.Context(), uid, &active)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	type habitEntry struct {
		Habit          habit.Habit   `json:"habit"`
		TrackedToday   bool          `json:"tracked_today"`
		CompletedToday bool          `json:"completed_today"`
		Absence        habit.Absence `json:"absence"`
	}
	entries := make([]habitEntry, 0, len(habits))
	completedHabits := 0
	bestStreak := 0
	for i := range habits {
		hb := &habits[i]
		completed, err := h.Habits.CompletedDates(r.Context(), uid, hb.ID, date, date)
		if err != nil {
			http.Error(w, "server error", http.StatusInternalServerError)
			return
		}
		absence, err := h.Habits.AbsenceFor(r.Context(), hb, date, u.WeekStartDay())
		if err != nil {
			http.Error(w, "server error", http.StatusInternalServerError)
			return
		}
		entry := habitEntry{
			Habit:          *hb,
			TrackedToday:   hb.Frequency().ShouldTrackOn(date),
			CompletedToday: completed.Has(date),
			Absence:        absence,
		}
		if entry.CompletedToday {
			completedHabits++
		}
		if hb.CurrentStreak > bestStreak {
			bestStreak = hb.CurrentStreak
		}
		entries = append(entries, entry)
	}

	completedToday := 0
	for i := range tasksToday {
		if tasksToday[i].IsCompleted {
			completedToday++
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"date":           due,
		"tasks_today":    tasksToday,
		"tasks_tomorrow": tasksTomorrow,
		"habits":         entries,
		"stats": map[string]any{
			"total_habits":          len(entries),
			"habits_completed":      completedHabits,
			"current_best_streak":   bestStreak,
			"total_tasks":           totalTasks,
			"tasks_due_today":       len(tasksToday),
			"tasks_completed_today": completedToday,
		},
	})
}
