// Package jobs is a small postgres-backed work queue. The nightly sweep
// enqueues instance-generation jobs; workers claim them with SKIP LOCKED so
// multiple processes never double-run a job.
package jobs

import (
	"time"

	"github.com/google/uuid"
)

const TypeGenerateInstances = "GENERATE_INSTANCES"

type Job struct {
	ID     uint64    `gorm:"primaryKey"`
	UserID uuid.UUID `gorm:"type:uuid;index;not null"`

	Type    string `gorm:"type:text;not null"` // GENERATE_INSTANCES
	Payload []byte `gorm:"type:jsonb;not null;default:'{}'::jsonb"`

	RunAt  time.Time `gorm:"index;not null"`
	Status string    `gorm:"index;not null;default:'PENDING'"` // PENDING/RUNNING/DONE/FAILED/CANCELLED

	Attempts    int `gorm:"not null;default:0"`
	MaxAttempts int `gorm:"not null;default:8"`

	LockedBy *string    `gorm:"type:text"`
	LockedAt *time.Time `gorm:"type:timestamptz"`

	LastError *string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}
