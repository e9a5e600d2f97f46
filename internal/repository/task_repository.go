package repository

import (
	"context"

	"github.com/yukikurage/task-sphere/internal/database"
	"github.com/yukikurage/task-sphere/internal/models"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// CreateAtEnd places the task at max(position)+1 of its bucket, or 0 when the
// bucket is empty. Existing positions are never renumbered.
func (r *GormTaskRepository) CreateAtEnd(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxPosition int
		if err := tx.Model(&models.Task{}).
			Scopes(database.OwnedBy(task.UserID), database.InTimeframe(task.Timeframe)).
			Select("COALESCE(MAX(position), -1)").
			Scan(&maxPosition).Error; err != nil {
			return err
		}

		task.Position = maxPosition + 1
		return tx.Create(task).Error
	})
}

// FindByID finds a task by ID
func (r *GormTaskRepository) FindByID(ctx context.Context, id string) (*models.Task, error) {
	var task models.Task
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// ListByUser lists tasks ordered by position
func (r *GormTaskRepository) ListByUser(ctx context.Context, userID string, timeframe *models.Timeframe) ([]models.Task, error) {
	query := r.db.WithContext(ctx).Model(&models.Task{}).Scopes(database.OwnedBy(userID))
	if timeframe != nil {
		query = query.Scopes(database.InTimeframe(*timeframe))
	}

	tasks := []models.Task{}
	if err := query.Scopes(database.ByPosition).Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// Update writes the mutable fields of a task. Position is owned by
// CreateAtEnd and Reorder and is never written here.
func (r *GormTaskRepository) Update(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Model(task).Select("text", "completed").Updates(task).Error
}

// Delete hard deletes a task
func (r *GormTaskRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Task{}).Error
}

// Reorder verifies that ids are exactly the caller's tasks in timeframe and
// then writes position = index for each of them. The check and every write
// share one transaction, so readers see either the old order or the new one.
func (r *GormTaskRepository) Reorder(ctx context.Context, userID string, timeframe models.Timeframe, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owned int64
		if err := tx.Model(&models.Task{}).
			Scopes(database.OwnedBy(userID), database.InTimeframe(timeframe)).
			Where("id IN ?", ids).
			Count(&owned).Error; err != nil {
			return err
		}

		// IN collapses duplicates, so a repeated id also lands here
		if owned != int64(len(ids)) {
			return ErrOwnershipMismatch
		}

		for i, id := range ids {
			if err := tx.Model(&models.Task{}).
				Where("id = ? AND user_id = ?", id, userID).
				Update("position", i).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return int64(len(ids)), nil
}
