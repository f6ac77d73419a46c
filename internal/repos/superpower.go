package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/synaptiq/synapse-backend/internal/logger"
	"github.com/synaptiq/synapse-backend/internal/types"
)

type SuperpowerRepo interface {
	Create(ctx context.Context, tx *gorm.DB, superpowers []*types.UserSuperpower) ([]*types.UserSuperpower, error)
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.UserSuperpower, error)
	GetByUserAndSuperpowerID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, superpowerID string) (*types.UserSuperpower, error)
	Save(ctx context.Context, tx *gorm.DB, superpower *types.UserSuperpower) error
}

type superpowerRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSuperpowerRepo(db *gorm.DB, baseLog *logger.Logger) SuperpowerRepo {
	repoLog := baseLog.With("repo", "SuperpowerRepo")
	return &superpowerRepo{db: db, log: repoLog}
}

func (r *superpowerRepo) Create(ctx context.Context, tx *gorm.DB, superpowers []*types.UserSuperpower) ([]*types.UserSuperpower, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(superpowers) == 0 {
		return []*types.UserSuperpower{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&superpowers).Error; err != nil {
		return nil, err
	}
	return superpowers, nil
}

func (r *superpowerRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.UserSuperpower, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.UserSuperpower
	if userID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *superpowerRepo) GetByUserAndSuperpowerID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, superpowerID string) (*types.UserSuperpower, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.UserSuperpower
	err := transaction.WithContext(ctx).
		Where("user_id = ? AND superpower_id = ?", userID, superpowerID).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *superpowerRepo) Save(ctx context.Context, tx *gorm.DB, superpower *types.UserSuperpower) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if superpower == nil {
		return nil
	}

	if err := transaction.WithContext(ctx).Save(superpower).Error; err != nil {
		return err
	}
	return nil
}
