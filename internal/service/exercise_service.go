package service

import (
	"context"
	"errors"
	"strings"

	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/logger"
	"alcyxob/workout-tracker/internal/repository"
)

// --- Error Definitions ---
var (
	ErrExerciseNotFound = errors.New("exercise not found")
	ErrValidationFailed = errors.New("validation failed")
)

// Minimum query length before a name search hits the database; shorter
// queries would match most of the catalog.
const minSearchQueryLength = 2

// --- Service Interface ---

// ExerciseService manages the exercise catalog. Users see every system
// exercise plus their own; they can only modify their own. An attempt to
// modify a system exercise or someone else's yields ErrExerciseNotFound,
// indistinguishable from a nonexistent id.
type ExerciseService interface {
	CreateExercise(ctx context.Context, userID uint, name, bodyPart string, modality domain.Modality) (*domain.Exercise, error)
	GetExercise(ctx context.Context, exerciseID, userID uint) (*domain.Exercise, error)
	ListExercises(ctx context.Context, userID uint) ([]domain.Exercise, error)
	SearchExercises(ctx context.Context, userID uint, query string) ([]domain.Exercise, error)
	UpdateExercise(ctx context.Context, exerciseID, userID uint, name, bodyPart string, modality domain.Modality) (*domain.Exercise, error)
	DeleteExercise(ctx context.Context, exerciseID, userID uint) error
}

// --- Service Implementation ---

type exerciseService struct {
	exerciseRepo repository.ExerciseRepository
	log          *logger.Logger
}

// NewExerciseService creates a new instance of exerciseService.
func NewExerciseService(exerciseRepo repository.ExerciseRepository, baseLog *logger.Logger) ExerciseService {
	return &exerciseService{
		exerciseRepo: exerciseRepo,
		log:          baseLog.With("service", "ExerciseService"),
	}
}

func (s *exerciseService) CreateExercise(ctx context.Context, userID uint, name, bodyPart string, modality domain.Modality) (*domain.Exercise, error) {
	name = strings.TrimSpace(name)
	if name == "" || !modality.Valid() {
		return nil, ErrValidationFailed
	}

	exercise := &domain.Exercise{
		Name:            name,
		BodyPart:        bodyPart,
		Modality:        modality,
		IsUserCreated:   true,
		CreatedByUserID: &userID,
	}
	if err := s.exerciseRepo.Create(ctx, nil, exercise); err != nil {
		return nil, err
	}
	return exercise, nil
}

func (s *exerciseService) GetExercise(ctx context.Context, exerciseID, userID uint) (*domain.Exercise, error) {
	exercise, err := s.exerciseRepo.GetByID(ctx, nil, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	// User-created exercises are private to their creator.
	if exercise.IsUserCreated && (exercise.CreatedByUserID == nil || *exercise.CreatedByUserID != userID) {
		return nil, ErrExerciseNotFound
	}
	return exercise, nil
}

func (s *exerciseService) ListExercises(ctx context.Context, userID uint) ([]domain.Exercise, error) {
	return s.exerciseRepo.ListVisible(ctx, nil, userID)
}

func (s *exerciseService) SearchExercises(ctx context.Context, userID uint, query string) ([]domain.Exercise, error) {
	query = strings.TrimSpace(query)
	if len(query) < minSearchQueryLength {
		return []domain.Exercise{}, nil
	}
	return s.exerciseRepo.SearchByName(ctx, nil, userID, query)
}

func (s *exerciseService) UpdateExercise(ctx context.Context, exerciseID, userID uint, name, bodyPart string, modality domain.Modality) (*domain.Exercise, error) {
	name = strings.TrimSpace(name)
	if name == "" || !modality.Valid() {
		return nil, ErrValidationFailed
	}

	exercise := &domain.Exercise{
		ID:              exerciseID,
		Name:            name,
		BodyPart:        bodyPart,
		Modality:        modality,
		CreatedByUserID: &userID,
	}
	if err := s.exerciseRepo.Update(ctx, nil, exercise); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	return s.exerciseRepo.GetByID(ctx, nil, exerciseID)
}

func (s *exerciseService) DeleteExercise(ctx context.Context, exerciseID, userID uint) error {
	err := s.exerciseRepo.Delete(ctx, nil, exerciseID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrExerciseNotFound
	}
	return err
}
