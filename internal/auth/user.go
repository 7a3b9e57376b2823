package auth

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Preferences is the per-user settings blob. WeekStartDay is 0 (Sunday)
// through 6 (Saturday) and drives every week-aligned calculation.
type Preferences struct {
	WeekStartDay int    `json:"week_start_day"`
	Timezone     string `json:"timezone,omitempty"`
}

type User struct {
	ID           uuid.UUID                       `gorm:"type:uuid;primaryKey"`
	Email        string                          `gorm:"uniqueIndex;not null"`
	PasswordHash string                          `gorm:"not null"`
	DisplayName  string                          `gorm:"not null;default:''"`
	Preferences  datatypes.JSONType[Preferences] `gorm:"not null"`
	CreatedAt    time.Time                       `gorm:"not null"`
	UpdatedAt    time.Time                       `gorm:"not null"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// WeekStartDay returns the stored preference as a weekday, defaulting to
// Sunday for out-of-range values.
func (u *User) WeekStartDay() time.Weekday {
	d := u.Preferences.Data().WeekStartDay
	if d < 0 || d > 6 {
		return time.Sunday
	}
	return time.Weekday(d)
}
