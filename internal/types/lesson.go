package types

import (
	"time"

	"github.com/google/uuid"
)

// Lesson is the managed-store mirror of authored content. It is an
// independent dataset from the file-based lesson documents; nothing
// synchronizes the two.
type Lesson struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Slug            string    `gorm:"uniqueIndex;not null;column:slug" json:"slug"`
	Title           string    `gorm:"not null;column:title" json:"title"`
	Body            string    `gorm:"column:body" json:"body"`
	Difficulty      string    `gorm:"column:difficulty" json:"difficulty"`
	Track           string    `gorm:"column:track;index" json:"track"`
	Chapter         string    `gorm:"column:chapter" json:"chapter"`
	DurationMinutes int       `gorm:"column:duration_minutes;not null;default:0" json:"duration_minutes"`
	OrderIndex      int       `gorm:"column:order_index;not null;default:0" json:"order_index"`
	CreatedAt       time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null" json:"updated_at"`
}

func (Lesson) TableName() string {
	return "lesson"
}
