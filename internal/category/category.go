// Package category manages user-defined labels shared by tasks and habits.
package category

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"betterr/internal/habit"
	"betterr/internal/task"
)

var ErrNotFound = errors.New("category not found")

type Category struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_categories_user_name,priority:1" json:"user_id"`
	Name   string    `gorm:"not null;uniqueIndex:uq_categories_user_name,priority:2" json:"name"`
	Color  *string   `gorm:"size:7" json:"color,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type Service struct {
	DB *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{DB: db}
}

func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]Category, error) {
	var categories []Category
	err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("name").
		Find(&categories).Error
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (s *Service) Create(ctx context.Context, userID uuid.UUID, name string, color *string) (*Category, error) {
	c := Category{UserID: userID, Name: name, Color: color}
	if err := s.DB.WithContext(ctx).Create(&c).Error; err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return &c, nil
}

// GetOrCreate returns the user's category with the given name, creating it on
// first use. Concurrent first uses converge on the (user_id, name) unique
// index.
func (s *Service) GetOrCreate(ctx context.Context, userID uuid.UUID, name string) (*Category, error) {
	c := Category{UserID: userID, Name: name}
	err := s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&c).Error
	if err != nil {
		return nil, fmt.Errorf("get or create category: %w", err)
	}

	var out Category
	err = s.DB.WithContext(ctx).
		Where("user_id = ? AND name = ?", userID, name).
		First(&out).Error
	if err != nil {
		return nil, fmt.Errorf("load category: %w", err)
	}
	return &out, nil
}

func (s *Service) Update(ctx context.Context, userID, id uuid.UUID, name *string, color *string) (*Category, error) {
	var c Category
	err := s.DB.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	changes := map[string]any{}
	if name != nil {
		changes["name"] = *name
	}
	if color != nil {
		changes["color"] = *color
	}
	if len(changes) > 0 {
		if err := s.DB.WithContext(ctx).Model(&c).Updates(changes).Error; err != nil {
			return nil, fmt.Errorf("update category: %w", err)
		}
	}
	return &c, nil
}

// Delete removes the category and detaches it from tasks, templates, and
// habits rather than cascading into them.
func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&Category{})
		if res.Error != nil {
			return fmt.Errorf("delete category: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}

		for _, model := range []any{&task.Task{}, &task.RecurringTask{}, &habit.Habit{}} {
			err := tx.Model(model).
				Where("user_id = ? AND category_id = ?", userID, id).
				Update("category_id", nil).Error
			if err != nil {
				return fmt.Errorf("detach category: %w", err)
			}
		}
		return nil
	})
}
