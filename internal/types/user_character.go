package types

import (
	"time"

	"github.com/google/uuid"
)

// UserCharacter is the aggregate per-learner progression state. Level is
// denormalized: level == xp/100 + 1, recomputed on every write.
type UserCharacter struct {
	ID                   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID               uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	User                 *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	XP                   int       `gorm:"column:xp;not null;default:0" json:"xp"`
	Level                int       `gorm:"column:level;not null;default:1" json:"level"`
	CurrentStreak        int       `gorm:"column:current_streak;not null;default:0" json:"current_streak"`
	TotalLearningMinutes int       `gorm:"column:total_learning_minutes;not null;default:0" json:"total_learning_minutes"`
	CreatedAt            time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt            time.Time `gorm:"not null" json:"updated_at"`
}

func (UserCharacter) TableName() string {
	return "user_character"
}
