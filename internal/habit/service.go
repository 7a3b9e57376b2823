package habit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"betterr/internal/dateutil"
)

var (
	ErrNotFound           = errors.New("habit not found")
	ErrHabitLimit         = errors.New("habit limit reached")
	ErrEditWindowExceeded = errors.New("log date outside the edit window")
)

// editWindowDays is how far back a habit log may be toggled.
const editWindowDays = 7

type Service struct {
	DB *gorm.DB
}

type CreateInput struct {
	Name        string
	Description *string
	CategoryID  *uuid.UUID
	Frequency   Frequency
}

type UpdateInput struct {
	Name        *string
	Description *string
	CategoryID  *uuid.UUID
	Frequency   *Frequency
	Status      *Status
}

func (s *Service) Create(ctx context.Context, userID uuid.UUID, in CreateInput) (*Habit, error) {
	if err := in.Frequency.Validate(); err != nil {
		return nil, err
	}

	var count int64
	if err := s.DB.WithContext(ctx).Model(&Habit{}).
		Where("user_id = ? AND status <> ?", userID, StatusArchived).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("count habits: %w", err)
	}
	if count >= MaxHabitsPerUser {
		return nil, ErrHabitLimit
	}

	h := Habit{
		UserID:      userID,
		Name:        in.Name,
		Description: in.Description,
		CategoryID:  in.CategoryID,
		Status:      StatusActive,
	}
	h.SetFrequency(in.Frequency)
	if err := s.DB.WithContext(ctx).Create(&h).Error; err != nil {
		return nil, fmt.Errorf("create habit: %w", err)
	}
	return &h, nil
}

func (s *Service) Get(ctx context.Context, userID, habitID uuid.UUID) (*Habit, error) {
	var h Habit
	err := s.DB.WithContext(ctx).Where("id = ? AND user_id = ?", habitID, userID).First(&h).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find habit: %w", err)
	}
	return &h, nil
}

func (s *Service) List(ctx context.Context, userID uuid.UUID, status *Status) ([]Habit, error) {
	q := s.DB.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC")
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	var habits []Habit
	if err := q.Find(&habits).Error; err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}
	return habits, nil
}

func (s *Service) Update(ctx context.Context, userID, habitID uuid.UUID, in UpdateInput) (*Habit, error) {
	h, err := s.Get(ctx, userID, habitID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		h.Name = *in.Name
	}
	if in.Description != nil {
		h.Description = in.Description
	}
	if in.CategoryID != nil {
		h.CategoryID = in.CategoryID
	}
	if in.Frequency != nil {
		if err := in.Frequency.Validate(); err != nil {
			return nil, err
		}
		h.SetFrequency(*in.Frequency)
	}
	if in.Status != nil {
		if *in.Status == StatusPaused && h.Status != StatusPaused {
			now := time.Now()
			h.PausedAt = &now
		}
		if *in.Status == StatusActive {
			h.PausedAt = nil
		}
		h.Status = *in.Status
	}

	if err := s.DB.WithContext(ctx).Save(h).Error; err != nil {
		return nil, fmt.Errorf("update habit: %w", err)
	}
	return h, nil
}

func (s *Service) Archive(ctx context.Context, userID, habitID uuid.UUID) error {
	res := s.DB.WithContext(ctx).Model(&Habit{}).
		Where("id = ? AND user_id = ?", habitID, userID).
		Update("status", StatusArchived)
	if res.Error != nil {
		return fmt.Errorf("archive habit: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, userID, habitID uuid.UUID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("habit_id = ? AND user_id = ?", habitID, userID).Delete(&HabitLog{}).Error; err != nil {
			return fmt.Errorf("delete habit logs: %w", err)
		}
		if err := tx.Where("habit_id = ? AND user_id = ?", habitID, userID).Delete(&HabitMilestone{}).Error; err != nil {
			return fmt.Errorf("delete habit milestones: %w", err)
		}
		res := tx.Where("id = ? AND user_id = ?", habitID, userID).Delete(&Habit{})
		if res.Error != nil {
			return fmt.Errorf("delete habit: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// Logs returns a habit's logs within [from, to], newest first.
func (s *Service) Logs(ctx context.Context, userID, habitID uuid.UUID, from, to dateutil.Date) ([]HabitLog, error) {
	var logs []HabitLog
	err := s.DB.WithContext(ctx).
		Where("habit_id = ? AND user_id = ? AND logged_date >= ? AND logged_date <= ?",
			habitID, userID, from.String(), to.String()).
		Order("logged_date DESC").
		Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("list habit logs: %w", err)
	}
	return logs, nil
}

// CompletedDates returns the set of completed dates within [from, to].
func (s *Service) CompletedDates(ctx context.Context, userID, habitID uuid.UUID, from, to dateutil.Date) (DateSet, error) {
	var dates []string
	err := s.DB.WithContext(ctx).Model(&HabitLog{}).
		Where("habit_id = ? AND user_id = ? AND completed = ? AND logged_date >= ? AND logged_date <= ?",
			habitID, userID, true, from.String(), to.String()).
		Pluck("logged_date", &dates).Error
	if err != nil {
		return nil, fmt.Errorf("load completed dates: %w", err)
	}
	return NewDateSet(dates...), nil
}

// ToggleResult reports the new log state and recomputed streaks.
type ToggleResult struct {
	Log           HabitLog `json:"log"`
	CurrentStreak int      `json:"current_streak"`
	BestStreak    int      `json:"best_streak"`
}

// Toggle flips a habit's completion for the given date, recomputes the streak
// from the full log window, persists the new streak fields, and records any
// newly reached milestone. Dates more than editWindowDays in the past are
// rejected with ErrEditWindowExceeded.
func (s *Service) Toggle(ctx context.Context, userID, habitID uuid.UUID, date, today dateutil.Date) (*ToggleResult, error) {
	if date.Before(today.AddDays(-editWindowDays)) {
		return nil, ErrEditWindowExceeded
	}

	h, err := s.Get(ctx, userID, habitID)
	if err != nil {
		return nil, err
	}

	var result ToggleResult
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing HabitLog
		completed := true
		findErr := tx.Where("habit_id = ? AND user_id = ? AND logged_date = ?",
			habitID, userID, date.String()).First(&existing).Error
		switch {
		case findErr == nil:
			completed = !existing.Completed
		case errors.Is(findErr, gorm.ErrRecordNotFound):
		default:
			return fmt.Errorf("find log: %w", findErr)
		}

		logRow := HabitLog{
			HabitID:    habitID,
			UserID:     userID,
			LoggedDate: date.String(),
			Completed:  completed,
		}
		// Unique (habit_id, logged_date) makes concurrent toggles converge.
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "habit_id"}, {Name: "logged_date"}},
			DoUpdates: clause.AssignmentColumns([]string{"completed", "updated_at"}),
		}).Create(&logRow).Error; err != nil {
			return fmt.Errorf("upsert log: %w", err)
		}

		var dates []string
		if err := tx.Model(&HabitLog{}).
			Where("habit_id = ? AND user_id = ? AND completed = ? AND logged_date >= ?",
				habitID, userID, true, today.AddDays(-streakWindowDays).String()).
			Pluck("logged_date", &dates).Error; err != nil {
			return fmt.Errorf("load completed dates: %w", err)
		}

		current, best := CalculateStreak(h.Frequency(), NewDateSet(dates...),
			today, dateutil.FromTime(h.CreatedAt), h.BestStreak)

		if err := tx.Model(&Habit{}).Where("id = ?", habitID).
			Updates(map[string]any{
				"current_streak": current,
				"best_streak":    best,
			}).Error; err != nil {
			return fmt.Errorf("update streak: %w", err)
		}

		if IsMilestone(current) {
			ms := HabitMilestone{
				HabitID:    habitID,
				UserID:     userID,
				Milestone:  current,
				AchievedAt: time.Now(),
			}
			// First achievement only; repeats hit the unique index and are dropped.
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&ms).Error; err != nil {
				return fmt.Errorf("record milestone: %w", err)
			}
		}

		result = ToggleResult{Log: logRow, CurrentStreak: current, BestStreak: best}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// AbsenceFor computes the absence summary for one habit as of today.
func (s *Service) AbsenceFor(ctx context.Context, h *Habit, today dateutil.Date, weekStartDay time.Weekday) (Absence, error) {
	completed, err := s.CompletedDates(ctx, h.UserID, h.ID, today.AddDays(-streakWindowDays), today)
	if err != nil {
		return Absence{Unit: UnitDays}, err
	}
	return ComputeAbsence(h.Frequency(), completed, today, dateutil.FromTime(h.CreatedAt), weekStartDay), nil
}
