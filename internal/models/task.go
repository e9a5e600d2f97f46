package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Timeframe is the bucket a task is grouped into.
type Timeframe string

const (
	TimeframeDaily   Timeframe = "daily"
	TimeframeWeekly  Timeframe = "weekly"
	TimeframeMonthly Timeframe = "monthly"
	TimeframeYearly  Timeframe = "yearly"
)

// Timeframes lists every bucket in display order.
var Timeframes = []Timeframe{
	TimeframeDaily,
	TimeframeWeekly,
	TimeframeMonthly,
	TimeframeYearly,
}

// Valid reports whether t is one of the known buckets.
func (t Timeframe) Valid() bool {
	switch t {
	case TimeframeDaily, TimeframeWeekly, TimeframeMonthly, TimeframeYearly:
		return true
	}
	return false
}

// Task positions are zero-based within (UserID, Timeframe). They are dense
// right after a reorder; creates append at max+1 and deletes leave gaps.
type Task struct {
	ID        string    `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID    string    `gorm:"type:varchar(36);not null" json:"userId"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	Completed bool      `gorm:"not null;default:false" json:"completed"`
	Timeframe Timeframe `gorm:"type:varchar(20);not null" json:"timeframe"`
	Position  int       `gorm:"not null;default:0" json:"position"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
