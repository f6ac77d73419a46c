package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	redisclient "github.com/synaptiq/synapse-backend/internal/clients/redis"
	"github.com/synaptiq/synapse-backend/internal/logger"
	apperrors "github.com/synaptiq/synapse-backend/internal/pkg/errors"
	"github.com/synaptiq/synapse-backend/internal/repos"
	"github.com/synaptiq/synapse-backend/internal/requestdata"
	"github.com/synaptiq/synapse-backend/internal/types"
)

const (
	xpPerLevel          = 100
	recentActivityLimit = 50
)

type SuperpowerInput struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Icon       string     `json:"icon,omitempty"`
	Color      string     `json:"color,omitempty"`
	LevelDelta *int       `json:"levelDelta,omitempty"`
	UnlockedAt *time.Time `json:"unlockedAt,omitempty"`
}

type EventInput struct {
	EventType    string           `json:"eventType"`
	UnitID       string           `json:"unitId,omitempty"`
	XPDelta      int              `json:"xpDelta,omitempty"`
	MinutesDelta int              `json:"minutesDelta,omitempty"`
	Streak       *int             `json:"streak,omitempty"`
	Superpower   *SuperpowerInput `json:"superpower,omitempty"`
}

// ProgressionSnapshot is the aggregate read shape. Character is nil for a
// learner who has never written an event.
type ProgressionSnapshot struct {
	Character   *types.UserCharacter    `json:"character"`
	Superpowers []*types.UserSuperpower `json:"superpowers"`
	Activity    []*types.UserActivity   `json:"activity"`
}

type ProgressionService interface {
	Get(ctx context.Context) (*ProgressionSnapshot, error)
	ApplyEvent(ctx context.Context, input EventInput) error
}

type progressionService struct {
	db             *gorm.DB
	log            *logger.Logger
	characterRepo  repos.CharacterRepo
	superpowerRepo repos.SuperpowerRepo
	activityRepo   repos.ActivityRepo
	cache          redisclient.ProgressionCache
}

// NewProgressionService wires the ledger. cache may be nil; reads then
// always hit the database.
func NewProgressionService(
	db *gorm.DB,
	log *logger.Logger,
	characterRepo repos.CharacterRepo,
	superpowerRepo repos.SuperpowerRepo,
	activityRepo repos.ActivityRepo,
	cache redisclient.ProgressionCache,
) ProgressionService {
	return &progressionService{
		db:             db,
		log:            log.With("service", "ProgressionService"),
		characterRepo:  characterRepo,
		superpowerRepo: superpowerRepo,
		activityRepo:   activityRepo,
		cache:          cache,
	}
}

func levelForXP(xp int) int {
	return xp/xpPerLevel + 1
}

func (s *progressionService) Get(ctx context.Context) (*ProgressionSnapshot, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("not authenticated: %w", apperrors.ErrUnauthorized)
	}

	if s.cache != nil {
		var cached ProgressionSnapshot
		hit, err := s.cache.Get(ctx, rd.UserID, &cached)
		if err != nil {
			s.log.Warn("progression cache read failed", "error", err)
		} else if hit {
			return &cached, nil
		}
	}

	character, err := s.characterRepo.GetByUserID(ctx, nil, rd.UserID)
	if err != nil {
		return nil, fmt.Errorf("Failed to load character: %w", err)
	}
	superpowers, err := s.superpowerRepo.GetByUserID(ctx, nil, rd.UserID)
	if err != nil {
		return nil, fmt.Errorf("Failed to load superpowers: %w", err)
	}
	activity, err := s.activityRepo.GetRecentByUserID(ctx, nil, rd.UserID, recentActivityLimit)
	if err != nil {
		return nil, fmt.Errorf("Failed to load activity: %w", err)
	}
	if superpowers == nil {
		superpowers = []*types.UserSuperpower{}
	}
	if activity == nil {
		activity = []*types.UserActivity{}
	}

	snapshot := &ProgressionSnapshot{
		Character:   character,
		Superpowers: superpowers,
		Activity:    activity,
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, rd.UserID, snapshot); err != nil {
			s.log.Warn("progression cache write failed", "error", err)
		}
	}
	return snapshot, nil
}

// ApplyEvent appends an activity record, then applies the numeric deltas
// and any superpower upsert. The append happens first and outside the
// aggregate transaction so the audit row survives aggregate failures.
// The aggregate steps run under a per-user row lock, so concurrent
// events for the same learner serialize rather than losing updates.
func (s *progressionService) ApplyEvent(ctx context.Context, input EventInput) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return fmt.Errorf("not authenticated: %w", apperrors.ErrUnauthorized)
	}

	eventType := strings.ToLower(strings.TrimSpace(input.EventType))
	if eventType == "" {
		return fmt.Errorf("eventType is required: %w", apperrors.ErrInvalidArgument)
	}

	activity := &types.UserActivity{
		ID:        uuid.New(),
		UserID:    rd.UserID,
		EventType: eventType,
		XPDelta:   input.XPDelta,
	}
	if unitID := strings.TrimSpace(input.UnitID); unitID != "" {
		activity.UnitID = &unitID
	}
	if input.Superpower != nil {
		meta, err := json.Marshal(map[string]any{"superpower": input.Superpower})
		if err != nil {
			return fmt.Errorf("Failed to encode event metadata: %w", err)
		}
		activity.Metadata = datatypes.JSON(meta)
	}
	if _, err := s.activityRepo.Create(ctx, nil, []*types.UserActivity{activity}); err != nil {
		return fmt.Errorf("Failed to append activity: %w", err)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		character, err := s.characterRepo.GetByUserIDForUpdate(ctx, tx, rd.UserID)
		if err != nil {
			return fmt.Errorf("Failed to load character: %w", err)
		}
		if character == nil {
			character = &types.UserCharacter{
				ID:     uuid.New(),
				UserID: rd.UserID,
				XP:     0,
				Level:  1,
			}
			if _, err := s.characterRepo.Create(ctx, tx, []*types.UserCharacter{character}); err != nil {
				return fmt.Errorf("Failed to create character: %w", err)
			}
		}

		character.XP = max(0, character.XP+input.XPDelta)
		character.TotalLearningMinutes = max(0, character.TotalLearningMinutes+input.MinutesDelta)
		character.Level = levelForXP(character.XP)
		if input.Streak != nil {
			character.CurrentStreak = *input.Streak
		}
		if err := s.characterRepo.Save(ctx, tx, character); err != nil {
			return fmt.Errorf("Failed to save character: %w", err)
		}

		if input.Superpower != nil {
			if err := s.upsertSuperpower(ctx, tx, rd.UserID, input.Superpower); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, rd.UserID); err != nil {
			s.log.Warn("progression cache invalidation failed", "error", err)
		}
	}
	return nil
}

func (s *progressionService) upsertSuperpower(ctx context.Context, tx *gorm.DB, userID uuid.UUID, input *SuperpowerInput) error {
	superpowerID := strings.TrimSpace(input.ID)
	if superpowerID == "" {
		return fmt.Errorf("superpower id is required: %w", apperrors.ErrInvalidArgument)
	}

	levelDelta := 1
	if input.LevelDelta != nil {
		levelDelta = *input.LevelDelta
	}

	existing, err := s.superpowerRepo.GetByUserAndSuperpowerID(ctx, tx, userID, superpowerID)
	if err != nil {
		return fmt.Errorf("Failed to look up superpower: %w", err)
	}
	if existing != nil {
		existing.Level = max(1, existing.Level+levelDelta)
		if input.Name != "" {
			existing.Name = input.Name
		}
		if input.Icon != "" {
			existing.Icon = input.Icon
		}
		if input.Color != "" {
			existing.Color = input.Color
		}
		if err := s.superpowerRepo.Save(ctx, tx, existing); err != nil {
			return fmt.Errorf("Failed to update superpower: %w", err)
		}
		return nil
	}

	unlockedAt := time.Now().UTC()
	if input.UnlockedAt != nil && !input.UnlockedAt.IsZero() {
		unlockedAt = input.UnlockedAt.UTC()
	}
	row := &types.UserSuperpower{
		ID:           uuid.New(),
		UserID:       userID,
		SuperpowerID: superpowerID,
		Name:         input.Name,
		Icon:         input.Icon,
		Color:        input.Color,
		Level:        max(1, levelDelta),
		UnlockedAt:   unlockedAt,
	}
	if _, err := s.superpowerRepo.Create(ctx, tx, []*types.UserSuperpower{row}); err != nil {
		return fmt.Errorf("Failed to create superpower: %w", err)
	}
	return nil
}
