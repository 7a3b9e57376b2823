package task

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"betterr/internal/dateutil"
	"betterr/internal/recurrence"
)

var (
	ErrNotFound            = errors.New("task not found")
	ErrTemplateNotFound    = errors.New("recurring task not found")
	ErrNotPartOfSeries     = errors.New("task is not part of a recurring series")
	ErrMissingOriginalDate = errors.New("recurring instance has no original date")
)

// Scope selects how far a change to a recurring instance reaches.
type Scope string

const (
	ScopeThis      Scope = "this"
	ScopeFollowing Scope = "following"
	ScopeAll       Scope = "all"
)

type Service struct {
	DB *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{DB: db}
}

type CreateInput struct {
	Title       string
	Description *string
	CategoryID  *uuid.UUID
	Priority    int
	DueDate     *string
	DueTime     *string
	Status      Status
}

type UpdateInput struct {
	Title       *string
	Description *string
	CategoryID  *uuid.UUID
	Priority    *int
	DueDate     *string
	DueTime     *string
	Status      *Status
}

func (s *Service) Create(ctx context.Context, userID uuid.UUID, in CreateInput) (*Task, error) {
	if in.Status == "" {
		in.Status = StatusTodo
	}
	t := Task{
		UserID:      userID,
		Title:       in.Title,
		Description: in.Description,
		CategoryID:  in.CategoryID,
		Priority:    in.Priority,
		DueDate:     in.DueDate,
		DueTime:     in.DueTime,
		Status:      in.Status,
	}
	if err := s.DB.WithContext(ctx).Create(&t).Error; err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return &t, nil
}

func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*Task, error) {
	var t Task
	err := s.DB.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListFilter narrows List and Count. Nil fields match everything.
type ListFilter struct {
	DueDate    *string
	Completed  *bool
	Status     *Status
	Priority   *int
	HasDueDate *bool
}

func (f ListFilter) apply(q *gorm.DB) *gorm.DB {
	if f.DueDate != nil {
		q = q.Where("due_date = ?", *f.DueDate)
	}
	if f.Completed != nil {
		q = q.Where("is_completed = ?", *f.Completed)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	if f.Priority != nil {
		q = q.Where("priority = ?", *f.Priority)
	}
	if f.HasDueDate != nil {
		if *f.HasDueDate {
			q = q.Where("due_date IS NOT NULL")
		} else {
			q = q.Where("due_date IS NULL")
		}
	}
	return q
}

// List returns the user's tasks matching the filter.
func (s *Service) List(ctx context.Context, userID uuid.UUID, f ListFilter) ([]Task, error) {
	q := f.apply(s.DB.WithContext(ctx).Where("user_id = ?", userID))
	var tasks []Task
	if err := q.Order("due_date, priority desc, created_at").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// Count counts the user's tasks matching the filter without loading rows.
func (s *Service) Count(ctx context.Context, userID uuid.UUID, f ListFilter) (int64, error) {
	q := f.apply(s.DB.WithContext(ctx).Model(&Task{}).Where("user_id = ?", userID))
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (s *Service) Update(ctx context.Context, userID, id uuid.UUID, in UpdateInput) (*Task, error) {
	t, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	changes := rowChanges(in, true)
	if len(changes) == 0 {
		return t, nil
	}
	if err := s.DB.WithContext(ctx).Model(t).Updates(changes).Error; err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return t, nil
}

func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	res := s.DB.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&Task{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Toggle flips completion. Completing moves the row to done; un-completing
// returns it to todo.
func (s *Service) Toggle(ctx context.Context, userID, id uuid.UUID, now time.Time) (*Task, error) {
	t, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	changes := map[string]any{}
	if t.IsCompleted {
		changes["is_completed"] = false
		changes["completed_at"] = nil
		changes["status"] = StatusTodo
	} else {
		changes["is_completed"] = true
		changes["completed_at"] = now
		changes["status"] = StatusDone
	}
	if err := s.DB.WithContext(ctx).Model(t).Updates(changes).Error; err != nil {
		return nil, fmt.Errorf("toggle task: %w", err)
	}
	return t, nil
}

type TemplateInput struct {
	Title       string
	Description *string
	CategoryID  *uuid.UUID
	Priority    int
	DueTime     *string
	Rule        recurrence.Rule
	StartDate   string
	EndType     EndType
	EndDate     *string
	EndCount    *int
}

func (s *Service) CreateTemplate(ctx context.Context, userID uuid.UUID, in TemplateInput) (*RecurringTask, error) {
	if err := in.Rule.Validate(); err != nil {
		return nil, err
	}
	if _, err := dateutil.ParseDate(in.StartDate); err != nil {
		return nil, fmt.Errorf("bad start date: %w", err)
	}
	if in.EndType == "" {
		in.EndType = EndNever
	}

	tpl := RecurringTask{
		UserID:           userID,
		Title:            in.Title,
		Description:      in.Description,
		CategoryID:       in.CategoryID,
		Priority:         in.Priority,
		DueTime:          in.DueTime,
		Rule:             datatypes.NewJSONType(in.Rule),
		StartDate:        in.StartDate,
		EndType:          in.EndType,
		EndDate:          in.EndDate,
		EndCount:         in.EndCount,
		NextGenerateDate: in.StartDate,
		Status:           TemplateActive,
	}
	if err := s.DB.WithContext(ctx).Create(&tpl).Error; err != nil {
		return nil, fmt.Errorf("create recurring task: %w", err)
	}
	return &tpl, nil
}

// TemplateUpdateInput carries optional template edits. Nil fields are left
// untouched.
type TemplateUpdateInput struct {
	Title       *string
	Description *string
	CategoryID  *uuid.UUID
	Priority    *int
	DueTime     *string
	Rule        *recurrence.Rule
	StartDate   *string
	EndType     *EndType
	EndDate     *string
	EndCount    *int
}

// UpdateTemplate edits the template directly. Already-generated instances
// keep their dates; rule and end-condition changes take effect from the
// watermark forward on the next generation pass.
func (s *Service) UpdateTemplate(ctx context.Context, userID, id uuid.UUID, in TemplateUpdateInput) (*RecurringTask, error) {
	tpl, err := s.GetTemplate(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	changes := map[string]any{}
	if in.Title != nil {
		changes["title"] = *in.Title
	}
	if in.Description != nil {
		changes["description"] = *in.Description
	}
	if in.CategoryID != nil {
		changes["category_id"] = *in.CategoryID
	}
	if in.Priority != nil {
		changes["priority"] = *in.Priority
	}
	if in.DueTime != nil {
		changes["due_time"] = *in.DueTime
	}
	if in.Rule != nil {
		if err := in.Rule.Validate(); err != nil {
			return nil, err
		}
		changes["rule"] = datatypes.NewJSONType(*in.Rule)
	}
	if in.StartDate != nil {
		if _, err := dateutil.ParseDate(*in.StartDate); err != nil {
			return nil, fmt.Errorf("bad start date: %w", err)
		}
		changes["start_date"] = *in.StartDate
	}
	if in.EndType != nil {
		changes["end_type"] = *in.EndType
	}
	if in.EndDate != nil {
		if _, err := dateutil.ParseDate(*in.EndDate); err != nil {
			return nil, fmt.Errorf("bad end date: %w", err)
		}
		changes["end_date"] = *in.EndDate
	}
	if in.EndCount != nil {
		changes["end_count"] = *in.EndCount
	}
	if len(changes) == 0 {
		return tpl, nil
	}

	if err := s.DB.WithContext(ctx).Model(tpl).Updates(changes).Error; err != nil {
		return nil, fmt.Errorf("update recurring task: %w", err)
	}
	return tpl, nil
}

func (s *Service) GetTemplate(ctx context.Context, userID, id uuid.UUID) (*RecurringTask, error) {
	var tpl RecurringTask
	err := s.DB.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&tpl).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTemplateNotFound
	}
	if err != nil {
		return nil, err
	}
	return &tpl, nil
}

func (s *Service) ListTemplates(ctx context.Context, userID uuid.UUID) ([]RecurringTask, error) {
	var tpls []RecurringTask
	err := s.DB.WithContext(ctx).
		Where("user_id = ? AND status <> ?", userID, TemplateArchived).
		Order("created_at").
		Find(&tpls).Error
	if err != nil {
		return nil, err
	}
	return tpls, nil
}

func (s *Service) Pause(ctx context.Context, userID, id uuid.UUID) (*RecurringTask, error) {
	return s.setTemplateStatus(ctx, userID, id, TemplatePaused)
}

// Resume reactivates a paused template and moves the watermark to the first
// occurrence on or after today, skipping the paused gap instead of
// backfilling it.
func (s *Service) Resume(ctx context.Context, userID, id uuid.UUID, today dateutil.Date) (*RecurringTask, error) {
	tpl, err := s.GetTemplate(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	start, err := dateutil.ParseDate(tpl.StartDate)
	if err != nil {
		return nil, fmt.Errorf("bad start date %q: %w", tpl.StartDate, err)
	}
	watermark := today
	if next, ok := recurrence.NextOccurrence(tpl.Rule.Data(), start, today.AddDays(-1)); ok {
		watermark = next
	}

	err = s.DB.WithContext(ctx).Model(tpl).Updates(map[string]any{
		"status":             TemplateActive,
		"next_generate_date": watermark.String(),
	}).Error
	if err != nil {
		return nil, fmt.Errorf("resume recurring task: %w", err)
	}
	return tpl, nil
}

func (s *Service) ArchiveTemplate(ctx context.Context, userID, id uuid.UUID) (*RecurringTask, error) {
	return s.setTemplateStatus(ctx, userID, id, TemplateArchived)
}

// DeleteTemplate removes the template and its incomplete instances. Completed
// instances stay for history.
func (s *Service) DeleteTemplate(ctx context.Context, userID, id uuid.UUID) error {
	tpl, err := s.GetTemplate(ctx, userID, id)
	if err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("recurring_task_id = ? AND is_completed = ?", tpl.ID, false).
			Delete(&Task{}).Error
		if err != nil {
			return err
		}
		return tx.Delete(tpl).Error
	})
}

func (s *Service) setTemplateStatus(ctx context.Context, userID, id uuid.UUID, status TemplateStatus) (*RecurringTask, error) {
	tpl, err := s.GetTemplate(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Model(tpl).Update("status", status).Error; err != nil {
		return nil, err
	}
	return tpl, nil
}

// UpdateInstanceScoped edits a generated instance with series-wide reach.
// "this" keeps the change on the row and marks it an exception so later bulk
// edits leave it alone. "following" and "all" push template-level fields onto
// the template and onto incomplete non-exception instances.
func (s *Service) UpdateInstanceScoped(ctx context.Context, userID, id uuid.UUID, scope Scope, in UpdateInput) (*Task, error) {
	t, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if t.RecurringTaskID == nil {
		return nil, ErrNotPartOfSeries
	}

	switch scope {
	case ScopeThis:
		changes := rowChanges(in, true)
		changes["is_exception"] = true
		if err := s.DB.WithContext(ctx).Model(t).Updates(changes).Error; err != nil {
			return nil, fmt.Errorf("update instance: %w", err)
		}
		return t, nil

	case ScopeFollowing, ScopeAll:
		err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			tplChanges := templateChanges(in)
			if len(tplChanges) > 0 {
				err := tx.Model(&RecurringTask{}).
					Where("id = ?", *t.RecurringTaskID).
					Updates(tplChanges).Error
				if err != nil {
					return fmt.Errorf("update template: %w", err)
				}
			}

			bulk := tx.Model(&Task{}).
				Where("recurring_task_id = ? AND is_completed = ? AND is_exception = ?",
					*t.RecurringTaskID, false, false)
			if scope == ScopeFollowing {
				if t.OriginalDate == nil {
					// Without an anchor date the bulk edit has no lower bound;
					// only the template changes apply.
					return nil
				}
				bulk = bulk.Where("original_date >= ?", *t.OriginalDate)
			}
			changes := rowChanges(in, false)
			if len(changes) == 0 {
				return nil
			}
			if err := bulk.Updates(changes).Error; err != nil {
				return fmt.Errorf("update instances: %w", err)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		return s.Get(ctx, userID, id)

	default:
		return nil, fmt.Errorf("unknown scope %q", scope)
	}
}

// DeleteInstanceScoped removes a generated instance with series-wide reach.
// "following" also freezes the template so the deleted dates never regenerate.
func (s *Service) DeleteInstanceScoped(ctx context.Context, userID, id uuid.UUID, scope Scope) error {
	t, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if t.RecurringTaskID == nil {
		return ErrNotPartOfSeries
	}

	switch scope {
	case ScopeThis:
		return s.DB.WithContext(ctx).Delete(t).Error

	case ScopeFollowing:
		if t.OriginalDate == nil {
			return ErrMissingOriginalDate
		}
		from, err := dateutil.ParseDate(*t.OriginalDate)
		if err != nil {
			return fmt.Errorf("bad original date %q: %w", *t.OriginalDate, err)
		}
		return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			err := tx.Where(
				"recurring_task_id = ? AND is_completed = ? AND original_date >= ?",
				*t.RecurringTaskID, false, from.String()).
				Delete(&Task{}).Error
			if err != nil {
				return err
			}
			endDate := from.AddDays(-1).String()
			return tx.Model(&RecurringTask{}).
				Where("id = ?", *t.RecurringTaskID).
				Updates(map[string]any{
					"end_type": EndOnDate,
					"end_date": endDate,
				}).Error
		})

	case ScopeAll:
		return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			err := tx.Where("recurring_task_id = ? AND is_completed = ?",
				*t.RecurringTaskID, false).
				Delete(&Task{}).Error
			if err != nil {
				return err
			}
			return tx.Model(&RecurringTask{}).
				Where("id = ?", *t.RecurringTaskID).
				Update("status", TemplateArchived).Error
		})

	default:
		return fmt.Errorf("unknown scope %q", scope)
	}
}

// rowChanges maps set fields onto task columns. includeDueDate is false for
// bulk series edits, where each instance keeps its own date.
func rowChanges(in UpdateInput, includeDueDate bool) map[string]any {
	changes := map[string]any{}
	if in.Title != nil {
		changes["title"] = *in.Title
	}
	if in.Description != nil {
		changes["description"] = *in.Description
	}
	if in.CategoryID != nil {
		changes["category_id"] = *in.CategoryID
	}
	if in.Priority != nil {
		changes["priority"] = *in.Priority
	}
	if in.DueTime != nil {
		changes["due_time"] = *in.DueTime
	}
	if in.Status != nil {
		changes["status"] = *in.Status
	}
	if includeDueDate && in.DueDate != nil {
		changes["due_date"] = *in.DueDate
	}
	return changes
}

// templateChanges maps the subset of fields a template tracks.
func templateChanges(in UpdateInput) map[string]any {
	changes := map[string]any{}
	if in.Title != nil {
		changes["title"] = *in.Title
	}
	if in.Description != nil {
		changes["description"] = *in.Description
	}
	if in.CategoryID != nil {
		changes["category_id"] = *in.CategoryID
	}
	if in.Priority != nil {
		changes["priority"] = *in.Priority
	}
	if in.DueTime != nil {
		changes["due_time"] = *in.DueTime
	}
	return changes
}
