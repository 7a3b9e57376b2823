package habit

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"betterr/internal/dateutil"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&Habit{}, &HabitLog{}, &HabitMilestone{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func createHabit(t *testing.T, svc *Service, userID uuid.UUID, name string) *Habit {
	t.Helper()
	h, err := svc.Create(context.Background(), userID, CreateInput{
		Name:      name,
		Frequency: Frequency{Type: FreqDaily},
	})
	if err != nil {
		t.Fatalf("create habit: %v", err)
	}
	// Backdate creation so streak walks over the fixed test dates are not
	// floored at the real clock.
	createdAt := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	if err := svc.DB.Model(&Habit{}).Where("id = ?", h.ID).
		Update("created_at", createdAt).Error; err != nil {
		t.Fatalf("backdate habit: %v", err)
	}
	h.CreatedAt = createdAt
	return h
}

func TestCreateEnforcesLimit(t *testing.T) {
	db := testDB(t)
	svc := &Service{DB: db}
	userID := uuid.New()
	ctx := context.Background()

	for i := 0; i < MaxHabitsPerUser; i++ {
		createHabit(t, svc, userID, fmt.Sprintf("Habit %d", i))
	}

	_, err := svc.Create(ctx, userID, CreateInput{Name: "One too many", Frequency: Frequency{Type: FreqDaily}})
	if !errors.Is(err, ErrHabitLimit) {
		t.Fatalf("err = %v, want ErrHabitLimit", err)
	}

	// Archived habits free a slot.
	var victim Habit
	if err := db.Where("user_id = ?", userID).First(&victim).Error; err != nil {
		t.Fatalf("load habit: %v", err)
	}
	if err := svc.Archive(ctx, userID, victim.ID); err != nil {
		t.Fatalf("archive: %v", err)
	}
	if _, err := svc.Create(ctx, userID, CreateInput{Name: "Replacement", Frequency: Frequency{Type: FreqDaily}}); err != nil {
		t.Fatalf("create after archive: %v", err)
	}
}

func TestToggleEditWindow(t *testing.T) {
	db := testDB(t)
	svc := &Service{DB: db}
	userID := uuid.New()
	h := createHabit(t, svc, userID, "Read")
	today := dateutil.MustParseDate("2026-02-09")

	// Seven days back is the last editable date.
	if _, err := svc.Toggle(context.Background(), userID, h.ID, today.AddDays(-7), today); err != nil {
		t.Fatalf("toggle at window edge: %v", err)
	}
	_, err := svc.Toggle(context.Background(), userID, h.ID, today.AddDays(-8), today)
	if !errors.Is(err, ErrEditWindowExceeded) {
		t.Fatalf("err = %v, want ErrEditWindowExceeded", err)
	}
}

func TestToggleUpdatesStreak(t *testing.T) {
	db := testDB(t)
	svc := &Service{DB: db}
	userID := uuid.New()
	h := createHabit(t, svc, userID, "Meditate")
	ctx := context.Background()
	today := dateutil.MustParseDate("2026-02-09")

	for days := 2; days >= 0; days-- {
		res, err := svc.Toggle(ctx, userID, h.ID, today.AddDays(-days), today)
		if err != nil {
			t.Fatalf("toggle -%d: %v", days, err)
		}
		if want := 3 - days; res.CurrentStreak != want {
			t.Fatalf("streak after day -%d = %d, want %d", days, res.CurrentStreak, want)
		}
	}

	fresh, err := svc.Get(ctx, userID, h.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if fresh.CurrentStreak != 3 || fresh.BestStreak != 3 {
		t.Fatalf("persisted streaks = %d/%d, want 3/3", fresh.CurrentStreak, fresh.BestStreak)
	}

	// Un-completing today drops the current streak but best stays.
	res, err := svc.Toggle(ctx, userID, h.ID, today, today)
	if err != nil {
		t.Fatalf("untoggle: %v", err)
	}
	if res.Log.Completed {
		t.Fatalf("log still completed after second toggle")
	}
	if res.CurrentStreak != 2 || res.BestStreak != 3 {
		t.Fatalf("streaks after untoggle = %d/%d, want 2/3", res.CurrentStreak, res.BestStreak)
	}
}

func TestToggleRecordsMilestoneOnce(t *testing.T) {
	db := testDB(t)
	svc := &Service{DB: db}
	userID := uuid.New()
	h := createHabit(t, svc, userID, "Run")
	ctx := context.Background()

	// Reaching a 7-day streak writes one milestone row.
	today := dateutil.MustParseDate("2026-02-09")
	for days := 6; days >= 0; days-- {
		if _, err := svc.Toggle(ctx, userID, h.ID, today.AddDays(-days), today); err != nil {
			t.Fatalf("toggle -%d: %v", days, err)
		}
	}

	var count int64
	if err := db.Model(&HabitMilestone{}).Where("habit_id = ? AND milestone = ?", h.ID, 7).
		Count(&count).Error; err != nil {
		t.Fatalf("count milestones: %v", err)
	}
	if count != 1 {
		t.Fatalf("milestone rows = %d, want 1", count)
	}

	// Bouncing the streak off 7 again must not duplicate the row.
	if _, err := svc.Toggle(ctx, userID, h.ID, today, today); err != nil {
		t.Fatalf("untoggle: %v", err)
	}
	if _, err := svc.Toggle(ctx, userID, h.ID, today, today); err != nil {
		t.Fatalf("retoggle: %v", err)
	}
	db.Model(&HabitMilestone{}).Where("habit_id = ? AND milestone = ?", h.ID, 7).Count(&count)
	if count != 1 {
		t.Fatalf("milestone rows after retoggle = %d, want 1", count)
	}
}

func TestDeleteRemovesLogsAndMilestones(t *testing.T) {
	db := testDB(t)
	svc := &Service{DB: db}
	userID := uuid.New()
	h := createHabit(t, svc, userID, "Stretch")
	ctx := context.Background()
	today := dateutil.MustParseDate("2026-02-09")

	if _, err := svc.Toggle(ctx, userID, h.ID, today, today); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if err := svc.Delete(ctx, userID, h.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var logs int64
	db.Model(&HabitLog{}).Where("habit_id = ?", h.ID).Count(&logs)
	if logs != 0 {
		t.Fatalf("orphaned logs = %d", logs)
	}
	if _, err := svc.Get(ctx, userID, h.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get err = %v, want ErrNotFound", err)
	}
}
