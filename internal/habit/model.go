package habit

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusPaused   Status = "paused"
	StatusArchived Status = "archived"
)

// MaxHabitsPerUser caps active + paused habits per user. Archived habits do
// not count toward the limit.
const MaxHabitsPerUser = 20

// Habit is a tracked recurring practice. The frequency union is stored flat:
// FrequencyType discriminates, FrequencyCount applies to times_per_week, and
// FrequencyDays carries the custom weekday set.
type Habit struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID  `gorm:"type:uuid;index;not null" json:"user_id"`
	Name        string     `gorm:"not null" json:"name"`
	Description *string    `gorm:"type:text" json:"description,omitempty"`
	CategoryID  *uuid.UUID `gorm:"type:uuid;index" json:"category_id,omitempty"`

	FrequencyType  FrequencyType `gorm:"type:text;not null" json:"frequency_type"`
	FrequencyCount int           `gorm:"not null;default:0" json:"frequency_count"`
	FrequencyDays  pq.Int64Array `gorm:"type:integer[]" json:"frequency_days,omitempty"`

	Status        Status `gorm:"type:text;index;not null;default:'active'" json:"status"`
	CurrentStreak int    `gorm:"not null;default:0" json:"current_streak"`
	BestStreak    int    `gorm:"not null;default:0" json:"best_streak"`

	PausedAt  *time.Time `json:"paused_at,omitempty"`
	CreatedAt time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time  `gorm:"not null" json:"updated_at"`
}

func (h *Habit) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}

// Frequency assembles the stored columns back into the value type the
// calculators take.
func (h *Habit) Frequency() Frequency {
	f := Frequency{Type: h.FrequencyType, Count: h.FrequencyCount}
	for _, d := range h.FrequencyDays {
		f.Days = append(f.Days, int(d))
	}
	return f
}

// SetFrequency flattens a frequency value into the stored columns.
func (h *Habit) SetFrequency(f Frequency) {
	h.FrequencyType = f.Type
	h.FrequencyCount = f.Count
	h.FrequencyDays = nil
	for _, d := range f.Days {
		h.FrequencyDays = append(h.FrequencyDays, int64(d))
	}
}

// HabitLog records one completion fact per habit per calendar day. LoggedDate
// holds the YYYY-MM-DD form so comparisons stay lexicographic; the unique
// index makes toggles idempotent.
type HabitLog struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	HabitID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_habit_logs_habit_date,priority:1" json:"habit_id"`
	UserID     uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	LoggedDate string    `gorm:"size:10;not null;uniqueIndex:uq_habit_logs_habit_date,priority:2" json:"logged_date"`
	Completed  bool      `gorm:"not null;default:false" json:"completed"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

func (l *HabitLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// HabitMilestone records the first time a streak reached a threshold.
type HabitMilestone struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	HabitID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_habit_milestones,priority:1" json:"habit_id"`
	UserID     uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	Milestone  int       `gorm:"not null;uniqueIndex:uq_habit_milestones,priority:2" json:"milestone"`
	AchievedAt time.Time `gorm:"not null" json:"achieved_at"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
}

func (m *HabitMilestone) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
