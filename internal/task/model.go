// Package task holds one-off tasks, recurring-task templates, and the
// generator that materializes template occurrences into concrete task rows.
package task

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"betterr/internal/recurrence"
)

type Status string

const (
	StatusBacklog    Status = "backlog"
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

type TemplateStatus string

const (
	TemplateActive   TemplateStatus = "active"
	TemplatePaused   TemplateStatus = "paused"
	TemplateArchived TemplateStatus = "archived"
)

type EndType string

const (
	EndNever      EndType = "never"
	EndAfterCount EndType = "after_count"
	EndOnDate     EndType = "on_date"
)

// Task is a single actionable item. Rows generated from a template carry
// RecurringTaskID and OriginalDate; the unique index over that pair is what
// makes generation idempotent, so it must exist wherever tasks are stored.
type Task struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID  `gorm:"type:uuid;index;not null" json:"user_id"`
	Title       string     `gorm:"not null" json:"title"`
	Description *string    `gorm:"type:text" json:"description,omitempty"`
	CategoryID  *uuid.UUID `gorm:"type:uuid;index" json:"category_id,omitempty"`
	Priority    int        `gorm:"not null;default:0" json:"priority"`

	DueDate *string `gorm:"size:10;index" json:"due_date,omitempty"`
	DueTime *string `gorm:"size:5" json:"due_time,omitempty"`

	Status      Status     `gorm:"type:text;not null;default:'todo'" json:"status"`
	IsCompleted bool       `gorm:"not null;default:false" json:"is_completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	RecurringTaskID *uuid.UUID `gorm:"type:uuid;uniqueIndex:uq_tasks_recurring_original,priority:1" json:"recurring_task_id,omitempty"`
	OriginalDate    *string    `gorm:"size:10;uniqueIndex:uq_tasks_recurring_original,priority:2" json:"original_date,omitempty"`
	IsException     bool       `gorm:"not null;default:false" json:"is_exception"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// RecurringTask is a template for generated task rows. NextGenerateDate is the
// generation watermark: dates before it have already been considered.
type RecurringTask struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID  `gorm:"type:uuid;index;not null" json:"user_id"`
	Title       string     `gorm:"not null" json:"title"`
	Description *string    `gorm:"type:text" json:"description,omitempty"`
	CategoryID  *uuid.UUID `gorm:"type:uuid" json:"category_id,omitempty"`
	Priority    int        `gorm:"not null;default:0" json:"priority"`
	DueTime     *string    `gorm:"size:5" json:"due_time,omitempty"`

	Rule      datatypes.JSONType[recurrence.Rule] `gorm:"not null" json:"rule"`
	StartDate string                              `gorm:"size:10;not null" json:"start_date"`

	EndType  EndType `gorm:"type:text;not null;default:'never'" json:"end_type"`
	EndDate  *string `gorm:"size:10" json:"end_date,omitempty"`
	EndCount *int    `json:"end_count,omitempty"`

	InstancesGenerated int    `gorm:"not null;default:0" json:"instances_generated"`
	NextGenerateDate   string `gorm:"size:10;not null;index" json:"next_generate_date"`

	Status    TemplateStatus `gorm:"type:text;index;not null;default:'active'" json:"status"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
}

func (r *RecurringTask) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
