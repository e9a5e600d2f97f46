package database

import (
	"github.com/yukikurage/task-sphere/internal/models"
	"gorm.io/gorm"
)

// OwnedBy restricts a task query to one user.
func OwnedBy(userID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID)
	}
}

// InTimeframe restricts a task query to one bucket.
func InTimeframe(timeframe models.Timeframe) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("timeframe = ?", timeframe)
	}
}

// ByPosition orders tasks by their manual position, oldest first on ties.
func ByPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC").Order("created_at ASC")
}
