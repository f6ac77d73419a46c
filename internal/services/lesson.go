package services

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/synaptiq/synapse-backend/internal/logger"
	apperrors "github.com/synaptiq/synapse-backend/internal/pkg/errors"
	"github.com/synaptiq/synapse-backend/internal/repos"
	"github.com/synaptiq/synapse-backend/internal/types"
)

// LessonService serves the managed-store lesson rows. These are an
// independent dataset from the file-based content documents.
type LessonService interface {
	ListLessons(ctx context.Context) ([]*types.Lesson, error)
	GetLessonBySlug(ctx context.Context, slug string) (*types.Lesson, error)
}

type lessonService struct {
	db         *gorm.DB
	log        *logger.Logger
	lessonRepo repos.LessonRepo
}

func NewLessonService(db *gorm.DB, log *logger.Logger, lessonRepo repos.LessonRepo) LessonService {
	return &lessonService{db: db, log: log.With("service", "LessonService"), lessonRepo: lessonRepo}
}

func (s *lessonService) ListLessons(ctx context.Context) ([]*types.Lesson, error) {
	lessons, err := s.lessonRepo.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("Failed to list lessons: %w", err)
	}
	if lessons == nil {
		lessons = []*types.Lesson{}
	}
	return lessons, nil
}

func (s *lessonService) GetLessonBySlug(ctx context.Context, slug string) (*types.Lesson, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, fmt.Errorf("empty slug: %w", apperrors.ErrNotFound)
	}
	lesson, err := s.lessonRepo.GetBySlug(ctx, nil, slug)
	if err != nil {
		return nil, fmt.Errorf("Failed to fetch lesson: %w", err)
	}
	if lesson == nil {
		return nil, fmt.Errorf("lesson %q: %w", slug, apperrors.ErrNotFound)
	}
	return lesson, nil
}
