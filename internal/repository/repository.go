package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"alcyxob/workout-tracker/internal/domain"
)

// Error constants for the repository layer.
var (
	ErrNotFound  = RepositoryError("not found")
	ErrDuplicate = RepositoryError("duplicate record")
)

// RepositoryError helps distinguish repository errors.
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// Repositories accept an optional transaction handle as their first database
// argument; when tx is nil they fall back to their base connection. Services
// compose multi-step operations atomically by opening one transaction and
// threading it through every call.

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, tx *gorm.DB, user *domain.User) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*domain.User, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*domain.User, error)
	GetByGoogleSub(ctx context.Context, tx *gorm.DB, sub string) (*domain.User, error)
	Update(ctx context.Context, tx *gorm.DB, user *domain.User) error
}

// ExerciseRepository defines the interface for interacting with the exercise
// catalog. Visibility is always "system exercises plus the caller's own".
type ExerciseRepository interface {
	Create(ctx context.Context, tx *gorm.DB, exercise *domain.Exercise) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*domain.Exercise, error)
	ListVisible(ctx context.Context, tx *gorm.DB, userID uint) ([]domain.Exercise, error)
	SearchByName(ctx context.Context, tx *gorm.DB, userID uint, query string) ([]domain.Exercise, error)
	Update(ctx context.Context, tx *gorm.DB, exercise *domain.Exercise) error
	Delete(ctx context.Context, tx *gorm.DB, id, ownerID uint) error
}

// WorkoutFilter narrows a workout search. Nil fields are ignored.
type WorkoutFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Finished  *bool
}

// WorkoutRepository defines the interface for the workout aggregate:
// workouts, their exercise executions, and the executions' sets.
//
// Every method that takes both a workout ID and a user ID folds the ownership
// check into the query predicate (WHERE id = ? AND created_by_user_id = ?) so
// absence and foreign ownership are indistinguishable to callers.
type WorkoutRepository interface {
	Create(ctx context.Context, tx *gorm.DB, workout *domain.Workout) error
	// GetOwned loads a workout with all executions (ordered by exercise_order)
	// and their sets (in insertion order), eagerly.
	GetOwned(ctx context.Context, tx *gorm.DB, workoutID, userID uint) (*domain.Workout, error)
	Search(ctx context.Context, tx *gorm.DB, userID uint, filter WorkoutFilter, page, pageSize int) ([]domain.Workout, int64, error)
	Save(ctx context.Context, tx *gorm.DB, workout *domain.Workout) error
	Delete(ctx context.Context, tx *gorm.DB, workoutID, userID uint) error

	GetExecution(ctx context.Context, tx *gorm.DB, workoutID, exerciseID uint) (*domain.ExerciseExecution, error)
	ListExecutions(ctx context.Context, tx *gorm.DB, workoutID uint) ([]domain.ExerciseExecution, error)
	CreateExecution(ctx context.Context, tx *gorm.DB, execution *domain.ExerciseExecution) error
	UpdateExecution(ctx context.Context, tx *gorm.DB, workoutID, exerciseID uint, updates map[string]interface{}) error
	DeleteExecution(ctx context.Context, tx *gorm.DB, workoutID, exerciseID uint) error

	// ReplaceSets deletes every existing set under the execution and inserts
	// the given replacement list. Callers must wrap it in a transaction
	// together with the execution update so a failure partway never leaves a
	// mixed old/new set list.
	ReplaceSets(ctx context.Context, tx *gorm.DB, workoutID, exerciseID uint, sets []domain.Set) error
	CreateSet(ctx context.Context, tx *gorm.DB, set *domain.Set) error
	GetSet(ctx context.Context, tx *gorm.DB, workoutID, exerciseID, setID uint) (*domain.Set, error)
	UpdateSet(ctx context.Context, tx *gorm.DB, workoutID, exerciseID, setID uint, updates map[string]interface{}) error
	DeleteSet(ctx context.Context, tx *gorm.DB, workoutID, exerciseID, setID uint) error
}

// VoiceNoteRepository stores metadata for transcribed voice notes.
type VoiceNoteRepository interface {
	Create(ctx context.Context, tx *gorm.DB, note *domain.VoiceNote) error
	ListByUser(ctx context.Context, tx *gorm.DB, userID uint) ([]domain.VoiceNote, error)
}
