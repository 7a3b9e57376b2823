package task

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"betterr/internal/dateutil"
	"betterr/internal/recurrence"
)

// Generator materializes due recurring-task templates into task rows. It is
// safe to run concurrently for the same user: duplicate inserts fall out on
// the (recurring_task_id, original_date) unique index and are not counted.
type Generator struct {
	DB *gorm.DB
}

func NewGenerator(db *gorm.DB) *Generator {
	return &Generator{DB: db}
}

// EnsureInstances brings every active template of userID whose watermark is at
// or before through up to date. A failure on one template is logged and does
// not stop the others.
func (g *Generator) EnsureInstances(ctx context.Context, userID uuid.UUID, through dateutil.Date) error {
	var templates []RecurringTask
	err := g.DB.WithContext(ctx).
		Where("user_id = ? AND status = ? AND next_generate_date <= ?",
			userID, TemplateActive, through.String()).
		Find(&templates).Error
	if err != nil {
		return fmt.Errorf("load due templates: %w", err)
	}

	var firstErr error
	for i := range templates {
		if err := g.generateForTemplate(ctx, &templates[i], through); err != nil {
			log.Printf("generate instances template=%s: %v", templates[i].ID, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (g *Generator) generateForTemplate(ctx context.Context, tpl *RecurringTask, through dateutil.Date) error {
	rangeStart, err := dateutil.ParseDate(tpl.NextGenerateDate)
	if err != nil {
		return fmt.Errorf("bad watermark %q: %w", tpl.NextGenerateDate, err)
	}
	startDate, err := dateutil.ParseDate(tpl.StartDate)
	if err != nil {
		return fmt.Errorf("bad start date %q: %w", tpl.StartDate, err)
	}

	rangeEnd := through
	if tpl.EndType == EndOnDate && tpl.EndDate != nil {
		endDate, err := dateutil.ParseDate(*tpl.EndDate)
		if err != nil {
			return fmt.Errorf("bad end date %q: %w", *tpl.EndDate, err)
		}
		rangeEnd = dateutil.Min(rangeEnd, endDate)
	}

	rule := tpl.Rule.Data()
	occurrences := recurrence.OccurrencesInRange(rule, startDate, rangeStart, rangeEnd)

	if tpl.EndType == EndAfterCount && tpl.EndCount != nil {
		remaining := *tpl.EndCount - tpl.InstancesGenerated
		if remaining <= 0 {
			// Exhausted templates archive without touching the watermark.
			return g.DB.WithContext(ctx).Model(tpl).
				Update("status", TemplateArchived).Error
		}
		if len(occurrences) > remaining {
			occurrences = occurrences[:remaining]
		}
	}

	inserted := 0
	err = g.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		missing, err := missingDates(tx, tpl.ID, occurrences)
		if err != nil {
			return err
		}
		for _, d := range missing {
			date := d.String()
			row := Task{
				UserID:          tpl.UserID,
				Title:           tpl.Title,
				Description:     tpl.Description,
				CategoryID:      tpl.CategoryID,
				Priority:        tpl.Priority,
				DueDate:         &date,
				DueTime:         tpl.DueTime,
				Status:          StatusTodo,
				RecurringTaskID: &tpl.ID,
				OriginalDate:    &date,
			}
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
			if res.Error != nil {
				return fmt.Errorf("insert instance %s: %w", date, res.Error)
			}
			inserted += int(res.RowsAffected)
		}

		// The watermark advances past the whole window even when nothing was
		// inserted, otherwise an empty window is rescanned forever.
		return tx.Model(tpl).Updates(map[string]any{
			"next_generate_date":  through.AddDays(1).String(),
			"instances_generated": gorm.Expr("instances_generated + ?", inserted),
		}).Error
	})
	if err != nil {
		return err
	}

	tpl.InstancesGenerated += inserted
	tpl.NextGenerateDate = through.AddDays(1).String()
	return nil
}

// missingDates filters occurrences down to the ones with no existing instance
// row for the template.
func missingDates(tx *gorm.DB, templateID uuid.UUID, occurrences []dateutil.Date) ([]dateutil.Date, error) {
	if len(occurrences) == 0 {
		return nil, nil
	}

	dates := make([]string, len(occurrences))
	for i, d := range occurrences {
		dates[i] = d.String()
	}

	var existing []string
	err := tx.Model(&Task{}).
		Where("recurring_task_id = ? AND original_date IN ?", templateID, dates).
		Pluck("original_date", &existing).Error
	if err != nil {
		return nil, fmt.Errorf("query existing instances: %w", err)
	}

	seen := make(map[string]struct{}, len(existing))
	for _, d := range existing {
		seen[d] = struct{}{}
	}

	var missing []dateutil.Date
	for _, d := range occurrences {
		if _, ok := seen[d.String()]; !ok {
			missing = append(missing, d)
		}
	}
	return missing, nil
}
