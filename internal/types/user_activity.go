package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Known activity event types. Arbitrary strings are still stored as-is;
// these are the values clients are expected to send.
const (
	EventQuizPass        = "quiz_pass"
	EventProjectComplete = "project_complete"
	EventUnitComplete    = "unit_complete"
	EventStreakUpdate    = "streak_update"
)

// UserActivity is an append-only audit row. It is never updated or read
// back into aggregate state; the denormalized character row is the source
// of truth.
type UserActivity struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User      *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	EventType string         `gorm:"column:event_type;not null;index" json:"event_type"`
	UnitID    *string        `gorm:"column:unit_id" json:"unit_id,omitempty"`
	XPDelta   int            `gorm:"column:xp_delta;not null;default:0" json:"xp_delta"`
	Metadata  datatypes.JSON `gorm:"type:jsonb;column:metadata" json:"metadata,omitempty"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
}

func (UserActivity) TableName() string {
	return "user_activity"
}
