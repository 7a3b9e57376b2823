package db

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"betterr/internal/auth"
	"betterr/internal/category"
	"betterr/internal/habit"
	"betterr/internal/jobs"
	"betterr/internal/task"
)

func Connect(dsn string) (*gorm.DB, error) {
	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, err
	}
	return gdb, nil
}

func AutoMigrateAndIndexes(gdb *gorm.DB) error {
	// Tables
	if err := gdb.AutoMigrate(
		&auth.User{},
		&category.Category{},
		&task.Task{},
		&task.RecurringTask{},
		&habit.Habit{},
		&habit.HabitLog{},
		&habit.HabitMilestone{},
		&jobs.Job{},
	); err != nil {
		return err
	}

	// Generation idempotency: one instance per template per original date.
	// AutoMigrate declares this too, but a partial index keeps plain tasks
	// (null recurring_task_id) out of it on postgres.
	if err := gdb.Exec(`
create unique index if not exists uq_tasks_recurring_original
on tasks(recurring_task_id, original_date)
where recurring_task_id is not null and original_date is not null;
`).Error; err != nil {
		return err
	}

	// Helpful indexes
	stmts := []string{
		`create index if not exists idx_tasks_user_due on tasks(user_id, due_date);`,
		`create index if not exists idx_templates_due on recurring_tasks(user_id, status, next_generate_date);`,
		`create index if not exists idx_habit_logs_user_date on habit_logs(user_id, logged_date desc);`,
		`create index if not exists idx_jobs_due on jobs(status, run_at);`,
		`create index if not exists idx_jobs_lock on jobs(status, locked_at);`,
	}
	for _, s := range stmts {
		if err := gdb.Exec(s).Error; err != nil {
			return fmt.Errorf("index exec failed: %w (sql=%s)", err, s)
		}
	}

	return nil
}
