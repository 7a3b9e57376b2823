// Package insight derives short, ranked dashboard messages from the last two
// full weeks of habit completion logs.
package insight

import (
	"math"
	"sort"
	"strings"
	"time"

	"betterr/internal/dateutil"
	"betterr/internal/habit"
)

type Type string

const (
	TypeStreakProximity Type = "streak_proximity"
	TypeBestHabit       Type = "best_habit"
	TypeBestWeek        Type = "best_week"
	TypeWorstDay        Type = "worst_day"
	TypeDecline         Type = "decline"
	TypeImprovement     Type = "improvement"
)

// Insight is a derived, never-persisted dashboard message. Message is an i18n
// key; Params feed its placeholders.
type Insight struct {
	Type     Type           `json:"type"`
	Message  string         `json:"message"`
	Params   map[string]any `json:"params"`
	Priority int            `json:"priority"`
}

// Product-tuned thresholds. The values have no derivation beyond tuning;
// change only with product sign-off.
const (
	bestHabitMinRate    = 80 // percent
	bestWeekMinRate     = 80
	worstDayMaxRate     = 50
	declineDropPoints   = 15
	improvementUpPoints = 10
	milestoneWithinDays = 3
	maxInsights         = 2
)

const (
	priorityStreakProximity = 100
	priorityBestHabit       = 80
	priorityBestWeek        = 80
	priorityWorstDay        = 60
	priorityDecline         = 60
	priorityImprovement     = 40
)

// CompletionLog is the one fact the aggregator needs from a habit log.
type CompletionLog struct {
	HabitID string
	Date    dateutil.Date
}

// Weekly computes the top insights for the two full weeks preceding the week
// containing today. logs must contain completed logs only. With no habits the
// result is empty; at most maxInsights are returned, highest priority first,
// ties broken by generation order.
func Weekly(habits []habit.Habit, logs []CompletionLog, today dateutil.Date, weekStartDay time.Weekday) []Insight {
	if len(habits) == 0 {
		return nil
	}

	thisWeekStart := today.WeekStart(weekStartDay)
	prevWeekStart := thisWeekStart.AddDays(-7)
	prevWeekEnd := thisWeekStart.AddDays(-1)
	twoWeeksAgoStart := prevWeekStart.AddDays(-7)
	twoWeeksAgoEnd := prevWeekStart.AddDays(-1)

	var prevLogs, olderLogs []CompletionLog
	for _, l := range logs {
		switch {
		case !l.Date.Before(prevWeekStart) && !l.Date.After(prevWeekEnd):
			prevLogs = append(prevLogs, l)
		case !l.Date.Before(twoWeeksAgoStart) && !l.Date.After(twoWeeksAgoEnd):
			olderLogs = append(olderLogs, l)
		}
	}

	prevRates := perHabitRates(habits, prevLogs, prevWeekStart, prevWeekEnd)
	olderRates := perHabitRates(habits, olderLogs, twoWeeksAgoStart, twoWeeksAgoEnd)
	dayRates := perDayRates(habits, prevLogs, prevWeekStart, prevWeekEnd)

	prevOverall := overallRate(prevRates)
	olderOverall := overallRate(olderRates)

	var candidates []Insight

	// Streak proximity: a habit within reach of its closest milestone.
	for i := range habits {
		h := &habits[i]
		for _, milestone := range habit.MilestoneThresholds {
			remaining := milestone - h.CurrentStreak
			if remaining > 0 && remaining <= milestoneWithinDays {
				candidates = append(candidates, Insight{
					Type:    TypeStreakProximity,
					Message: "streakProximity",
					Params: map[string]any{
						"habit":     h.Name,
						"days":      remaining,
						"milestone": milestone,
					},
					Priority: priorityStreakProximity,
				})
				break // closest milestone only
			}
		}
	}

	// Best habit: highest last-week rate at or above the bar.
	bestRate, bestName := 0, ""
	for i := range habits {
		rate, ok := prevRates[habits[i].ID.String()]
		if ok && rate >= bestHabitMinRate && rate > bestRate {
			bestRate, bestName = rate, habits[i].Name
		}
	}
	if bestName != "" {
		candidates = append(candidates, Insight{
			Type:     TypeBestHabit,
			Message:  "bestHabit",
			Params:   map[string]any{"habit": bestName, "percent": bestRate},
			Priority: priorityBestHabit,
		})
	}

	// Best week: strong overall rate that improved on the prior week.
	if prevOverall >= bestWeekMinRate && prevOverall > olderOverall && olderOverall > 0 {
		candidates = append(candidates, Insight{
			Type:     TypeBestWeek,
			Message:  "bestWeek",
			Params:   map[string]any{"percent": prevOverall},
			Priority: priorityBestWeek,
		})
	}

	// Worst day: the weekday with the lowest aggregate rate under the bar.
	worstRate, worstDay := 101, -1
	for day := 0; day < 7; day++ {
		rate, ok := dayRates[day]
		if ok && rate <= worstDayMaxRate && rate < worstRate {
			worstRate, worstDay = rate, day
		}
	}
	if worstDay >= 0 {
		candidates = append(candidates, Insight{
			Type:     TypeWorstDay,
			Message:  "worstDay",
			Params:   map[string]any{"day": strings.ToLower(time.Weekday(worstDay).String())},
			Priority: priorityWorstDay,
		})
	}

	// Decline / improvement versus two weeks ago.
	if olderOverall > 0 {
		if olderOverall-prevOverall > declineDropPoints {
			candidates = append(candidates, Insight{
				Type:     TypeDecline,
				Message:  "decline",
				Params:   map[string]any{"percent": prevOverall, "lastPercent": olderOverall},
				Priority: priorityDecline,
			})
		}
		if prevOverall-olderOverall > improvementUpPoints {
			candidates = append(candidates, Insight{
				Type:     TypeImprovement,
				Message:  "improvement",
				Params:   map[string]any{"change": prevOverall - olderOverall},
				Priority: priorityImprovement,
			})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Priority > candidates[j].Priority
	})
	if len(candidates) > maxInsights {
		candidates = candidates[:maxInsights]
	}
	return candidates
}

// perHabitRates computes each habit's rounded completion percentage over one
// week. Habits with no scheduled day that week are omitted.
func perHabitRates(habits []habit.Habit, logs []CompletionLog, weekStart, weekEnd dateutil.Date) map[string]int {
	byHabit := make(map[string]habit.DateSet)
	for _, l := range logs {
		set, ok := byHabit[l.HabitID]
		if !ok {
			set = habit.NewDateSet()
			byHabit[l.HabitID] = set
		}
		set.Add(l.Date)
	}

	rates := make(map[string]int, len(habits))
	for i := range habits {
		h := &habits[i]
		freq := h.Frequency()
		set := byHabit[h.ID.String()]

		scheduled, completed := 0, 0
		for d := weekStart; !d.After(weekEnd); d = d.AddDays(1) {
			if freq.ShouldTrackOn(d) {
				scheduled++
				if set != nil && set.Has(d) {
					completed++
				}
			}
		}
		if scheduled > 0 {
			rates[h.ID.String()] = roundPercent(completed, scheduled)
		}
	}
	return rates
}

// perDayRates aggregates completion rates per weekday across all habits.
func perDayRates(habits []habit.Habit, logs []CompletionLog, weekStart, weekEnd dateutil.Date) map[int]int {
	done := make(map[string]struct{}, len(logs))
	for _, l := range logs {
		done[l.HabitID+":"+l.Date.String()] = struct{}{}
	}

	scheduled := make(map[int]int)
	completed := make(map[int]int)
	for d := weekStart; !d.After(weekEnd); d = d.AddDays(1) {
		day := int(d.Weekday())
		for i := range habits {
			h := &habits[i]
			if h.Frequency().ShouldTrackOn(d) {
				scheduled[day]++
				if _, ok := done[h.ID.String()+":"+d.String()]; ok {
					completed[day]++
				}
			}
		}
	}

	rates := make(map[int]int, len(scheduled))
	for day, n := range scheduled {
		rates[day] = roundPercent(completed[day], n)
	}
	return rates
}

// overallRate is the mean of per-habit rates, rounded.
func overallRate(rates map[string]int) int {
	if len(rates) == 0 {
		return 0
	}
	sum := 0
	for _, r := range rates {
		sum += r
	}
	return int(math.Round(float64(sum) / float64(len(rates))))
}

func roundPercent(part, whole int) int {
	return int(math.Round(float64(part) / float64(whole) * 100))
}
