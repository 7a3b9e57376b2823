package category

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"betterr/internal/habit"
	"betterr/internal/task"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&Category{}, &task.Task{}, &task.RecurringTask{}, &habit.Habit{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestGetOrCreateIsIdempotent(t *testing.T) {
	db := testDB(t)
	svc := NewService(db)
	userID := uuid.New()
	ctx := context.Background()

	first, err := svc.GetOrCreate(ctx, userID, "Health")
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := svc.GetOrCreate(ctx, userID, "Health")
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("got distinct categories %s and %s", first.ID, second.ID)
	}

	// Same name for another user is a separate category.
	other, err := svc.GetOrCreate(ctx, uuid.New(), "Health")
	if err != nil {
		t.Fatalf("other user: %v", err)
	}
	if other.ID == first.ID {
		t.Fatalf("categories shared across users")
	}
}

func TestDeleteDetachesReferences(t *testing.T) {
	db := testDB(t)
	svc := NewService(db)
	userID := uuid.New()
	ctx := context.Background()

	c, err := svc.Create(ctx, userID, "Work", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	tk := task.Task{UserID: userID, Title: "Report", CategoryID: &c.ID, Status: task.StatusTodo}
	if err := db.Create(&tk).Error; err != nil {
		t.Fatalf("create task: %v", err)
	}

	if err := svc.Delete(ctx, userID, c.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var fresh task.Task
	if err := db.First(&fresh, "id = ?", tk.ID).Error; err != nil {
		t.Fatalf("reload task: %v", err)
	}
	if fresh.CategoryID != nil {
		t.Fatalf("task still references deleted category")
	}

	if err := svc.Delete(ctx, userID, c.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete err = %v, want ErrNotFound", err)
	}
}
