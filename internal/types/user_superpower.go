package types

import (
	"time"

	"github.com/google/uuid"
)

// UserSuperpower is one unlocked badge for one learner. Level is never
// clamped against the static superpower catalog; the ledger has no view
// of it.
type UserSuperpower struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index:idx_user_superpower,unique" json:"user_id"`
	User         *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	SuperpowerID string    `gorm:"column:superpower_id;not null;index:idx_user_superpower,unique" json:"superpower_id"`
	Name         string    `gorm:"column:name;not null" json:"name"`
	Icon         string    `gorm:"column:icon" json:"icon"`
	Color        string    `gorm:"column:color" json:"color"`
	Level        int       `gorm:"column:level;not null;default:1" json:"level"`
	UnlockedAt   time.Time `gorm:"column:unlocked_at;not null" json:"unlocked_at"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`
}

func (UserSuperpower) TableName() string {
	return "user_superpower"
}
