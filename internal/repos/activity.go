package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/synaptiq/synapse-backend/internal/logger"
	"github.com/synaptiq/synapse-backend/internal/types"
)

// ActivityRepo is append-only: there are no update or delete methods.
type ActivityRepo interface {
	Create(ctx context.Context, tx *gorm.DB, activities []*types.UserActivity) ([]*types.UserActivity, error)
	GetRecentByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.UserActivity, error)
	CountByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error)
}

type activityRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewActivityRepo(db *gorm.DB, baseLog *logger.Logger) ActivityRepo {
	repoLog := baseLog.With("repo", "ActivityRepo")
	return &activityRepo{db: db, log: repoLog}
}

func (r *activityRepo) Create(ctx context.Context, tx *gorm.DB, activities []*types.UserActivity) ([]*types.UserActivity, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(activities) == 0 {
		return []*types.UserActivity{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&activities).Error; err != nil {
		return nil, err
	}
	return activities, nil
}

func (r *activityRepo) GetRecentByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.UserActivity, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.UserActivity
	if userID == uuid.Nil {
		return results, nil
	}
	if limit <= 0 {
		limit = 50
	}

	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *activityRepo) CountByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.UserActivity{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
