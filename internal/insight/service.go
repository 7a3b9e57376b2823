package insight

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"betterr/internal/dateutil"
	"betterr/internal/habit"
)

type Service struct {
	DB *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{DB: db}
}

// WeeklyFor loads the user's active habits and the completed logs covering the
// two full weeks before today's week, then runs the aggregator.
func (s *Service) WeeklyFor(ctx context.Context, userID string, today dateutil.Date, weekStartDay time.Weekday) ([]Insight, error) {
	var habits []habit.Habit
	err := s.DB.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, habit.StatusActive).
		Find(&habits).Error
	if err != nil {
		return nil, fmt.Errorf("load habits: %w", err)
	}
	if len(habits) == 0 {
		return nil, nil
	}

	thisWeekStart := today.WeekStart(weekStartDay)
	windowStart := thisWeekStart.AddDays(-14)
	windowEnd := thisWeekStart.AddDays(-1)

	var rows []habit.HabitLog
	err = s.DB.WithContext(ctx).
		Where("user_id = ? AND completed = ? AND logged_date BETWEEN ? AND ?",
			userID, true, windowStart.String(), windowEnd.String()).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load habit logs: %w", err)
	}

	logs := make([]CompletionLog, 0, len(rows))
	for _, r := range rows {
		d, err := dateutil.ParseDate(r.LoggedDate)
		if err != nil {
			continue
		}
		logs = append(logs, CompletionLog{HabitID: r.HabitID.String(), Date: d})
	}

	return Weekly(habits, logs, today, weekStartDay), nil
}
