package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/synaptiq/synapse-backend/internal/logger"
	"github.com/synaptiq/synapse-backend/internal/types"
)

type CharacterRepo interface {
	Create(ctx context.Context, tx *gorm.DB, characters []*types.UserCharacter) ([]*types.UserCharacter, error)
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.UserCharacter, error)
	GetByUserIDForUpdate(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.UserCharacter, error)
	Save(ctx context.Context, tx *gorm.DB, character *types.UserCharacter) error
}

type characterRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCharacterRepo(db *gorm.DB, baseLog *logger.Logger) CharacterRepo {
	repoLog := baseLog.With("repo", "CharacterRepo")
	return &characterRepo{db: db, log: repoLog}
}

func (r *characterRepo) Create(ctx context.Context, tx *gorm.DB, characters []*types.UserCharacter) ([]*types.UserCharacter, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(characters) == 0 {
		return []*types.UserCharacter{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&characters).Error; err != nil {
		return nil, err
	}
	return characters, nil
}

func (r *characterRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.UserCharacter, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.UserCharacter
	err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// GetByUserIDForUpdate locks the character row for the duration of the
// surrounding transaction, serializing the read-modify-write of xp/level.
// Sqlite (tests only) has no row locks; its single writer serializes
// instead.
func (r *characterRepo) GetByUserIDForUpdate(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.UserCharacter, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	query := transaction.WithContext(ctx)
	if transaction.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var result types.UserCharacter
	err := query.
		Where("user_id = ?", userID).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *characterRepo) Save(ctx context.Context, tx *gorm.DB, character *types.UserCharacter) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if character == nil {
		return nil
	}

	if err := transaction.WithContext(ctx).Save(character).Error; err != nil {
		return err
	}
	return nil
}
