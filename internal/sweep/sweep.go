// Package sweep schedules the nightly instance-generation pass. At the
// configured time it finds every user with a due recurring-task template and
// enqueues one generation job per user; the jobs workers do the actual work.
package sweep

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"betterr/internal/dateutil"
	"betterr/internal/jobs"
	"betterr/internal/task"
)

type Sweeper struct {
	DB         *gorm.DB
	Repo       *jobs.Repo
	WindowDays int

	cron *cron.Cron
}

func New(db *gorm.DB, repo *jobs.Repo, windowDays int) *Sweeper {
	return &Sweeper{DB: db, Repo: repo, WindowDays: windowDays}
}

// Start registers the nightly run at "HH:MM" local time and starts the
// scheduler.
func (s *Sweeper) Start(at string) error {
	spec, err := dailySpec(at)
	if err != nil {
		return err
	}

	s.cron = cron.New()
	if _, err := s.cron.AddFunc(spec, s.runOnce); err != nil {
		return fmt.Errorf("schedule sweep: %w", err)
	}
	s.cron.Start()
	return nil
}

func (s *Sweeper) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// runOnce enqueues a generation job for every user owning a template whose
// watermark falls inside the window. Duplicate enqueues are harmless: the
// generator itself is idempotent.
func (s *Sweeper) runOnce() {
	through := dateutil.FromTime(time.Now()).AddDays(s.WindowDays)

	var userIDs []uuid.UUID
	err := s.DB.Model(&task.RecurringTask{}).
		Where("status = ? AND next_generate_date <= ?", task.TemplateActive, through.String()).
		Distinct().
		Pluck("user_id", &userIDs).Error
	if err != nil {
		log.Printf("sweep: list users: %v\n", err)
		return
	}

	now := time.Now()
	for _, uid := range userIDs {
		if err := s.Repo.EnqueueGeneration(uid, through.String(), now); err != nil {
			log.Printf("sweep: enqueue user=%s: %v\n", uid, err)
		}
	}
	if len(userIDs) > 0 {
		log.Printf("sweep: enqueued %d generation jobs through %s\n", len(userIDs), through)
	}
}

// dailySpec turns "HH:MM" into a cron spec.
func dailySpec(at string) (string, error) {
	parts := strings.SplitN(at, ":", 2)
	if len(parts) != 2 {
		return "", fmt.Errorf("bad sweep time %q, want HH:MM", at)
	}
	var hour, minute int
	if _, err := fmt.Sscanf(at, "%d:%d", &hour, &minute); err != nil {
		return "", fmt.Errorf("bad sweep time %q: %w", at, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return "", fmt.Errorf("sweep time %q out of range", at)
	}
	return fmt.Sprintf("%d %d * * *", minute, hour), nil
}
