package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/logger"
	"alcyxob/workout-tracker/internal/repository"
)

// --- Error Definitions ---
var (
	ErrWorkoutNotFound        = errors.New("workout not found")
	ErrWorkoutFinished        = errors.New("cannot modify finished workout")
	ErrWorkoutAlreadyFinished = errors.New("workout is already finished")
	ErrExecutionNotFound      = errors.New("exercise execution not found")
	ErrSetNotFound            = errors.New("set not found")
)

// ReorderMismatchError reports a reorder request whose exercise id set does
// not exactly match the workout's current executions. Partial reorders are
// rejected outright, never merged.
type ReorderMismatchError struct {
	Missing []uint // present in the workout, absent from the request
	Extra   []uint // present in the request, absent from the workout
}

func (e *ReorderMismatchError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("missing exercise ids %v", e.Missing))
	}
	if len(e.Extra) > 0 {
		parts = append(parts, fmt.Sprintf("unknown exercise ids %v", e.Extra))
	}
	return "reorder request does not match workout executions: " + strings.Join(parts, ", ")
}

// --- Inputs / outputs ---

// SetInput is the payload for creating a set or for each element of a
// full-replace upsert.
type SetInput struct {
	Weight     float64
	CleanReps  int
	ForcedReps int
	NoteText   *string
}

// ExecutionInput is the full-replace payload for an exercise execution: the
// complete desired state, including the entire set list.
type ExecutionInput struct {
	ExerciseOrder int
	NoteText      *string
	Sets          []SetInput
}

// ExecutionMetadataInput is a partial update; nil fields are left untouched
// and the execution's sets are never affected.
type ExecutionMetadataInput struct {
	ExerciseOrder *int
	NoteText      *string
}

// SetUpdateInput is a partial update for a single set.
type SetUpdateInput struct {
	Weight     *float64
	CleanReps  *int
	ForcedReps *int
	NoteText   *string
}

// WorkoutPage is one page of a workout search.
type WorkoutPage struct {
	Items    []domain.Workout
	Total    int64
	Page     int
	PageSize int
}

// --- Service Interface ---

// WorkoutService owns the workout aggregate's lifecycle: the workout itself,
// its exercise executions, and their sets. Every mutating operation runs in a
// single database transaction and re-validates ownership and finished-state.
type WorkoutService interface {
	CreateWorkout(ctx context.Context, userID uint) (*domain.Workout, error)
	GetWorkout(ctx context.Context, workoutID, userID uint) (*domain.Workout, error)
	SearchWorkouts(ctx context.Context, userID uint, filter repository.WorkoutFilter, page, pageSize int) (*WorkoutPage, error)
	FinishWorkout(ctx context.Context, workoutID, userID uint) (*domain.Workout, error)
	DeleteWorkout(ctx context.Context, workoutID, userID uint) error

	GetExerciseExecution(ctx context.Context, workoutID, exerciseID, userID uint) (*domain.ExerciseExecution, error)
	UpsertExerciseExecution(ctx context.Context, workoutID, exerciseID, userID uint, input ExecutionInput) (*domain.ExerciseExecution, error)
	UpdateExerciseExecutionMetadata(ctx context.Context, workoutID, exerciseID, userID uint, input ExecutionMetadataInput) (*domain.ExerciseExecution, error)
	DeleteExerciseExecution(ctx context.Context, workoutID, exerciseID, userID uint) error
	ReorderExerciseExecutions(ctx context.Context, workoutID, userID uint, exerciseIDs []uint) ([]domain.ExerciseExecution, error)

	CreateSet(ctx context.Context, workoutID, exerciseID, userID uint, input SetInput) (*domain.Set, error)
	UpdateSet(ctx context.Context, workoutID, exerciseID, setID, userID uint, input SetUpdateInput) (*domain.Set, error)
	DeleteSet(ctx context.Context, workoutID, exerciseID, setID, userID uint) error
}

// --- Service Implementation ---

type workoutService struct {
	db           *gorm.DB
	workoutRepo  repository.WorkoutRepository
	exerciseRepo repository.ExerciseRepository
	log          *logger.Logger
}

// NewWorkoutService creates a new instance of workoutService.
func NewWorkoutService(db *gorm.DB, workoutRepo repository.WorkoutRepository, exerciseRepo repository.ExerciseRepository, baseLog *logger.Logger) WorkoutService {
	return &workoutService{
		db:           db,
		workoutRepo:  workoutRepo,
		exerciseRepo: exerciseRepo,
		log:          baseLog.With("service", "WorkoutService"),
	}
}

// loadOwnedWorkout maps repository absence to the service-level NotFound.
// Ownership violations surface identically; the repository query never
// distinguishes them.
func (s *workoutService) loadOwnedWorkout(ctx context.Context, tx *gorm.DB, workoutID, userID uint) (*domain.Workout, error) {
	workout, err := s.workoutRepo.GetOwned(ctx, tx, workoutID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}
	return workout, nil
}

// loadMutableWorkout additionally rejects finished workouts.
func (s *workoutService) loadMutableWorkout(ctx context.Context, tx *gorm.DB, workoutID, userID uint) (*domain.Workout, error) {
	workout, err := s.loadOwnedWorkout(ctx, tx, workoutID, userID)
	if err != nil {
		return nil, err
	}
	if workout.IsFinished() {
		return nil, ErrWorkoutFinished
	}
	return workout, nil
}

func executionNotFound(workoutID, exerciseID uint) error {
	return fmt.Errorf("%w for workout %d and exercise %d", ErrExecutionNotFound, workoutID, exerciseID)
}

// === Workout lifecycle ===

func (s *workoutService) CreateWorkout(ctx context.Context, userID uint) (*domain.Workout, error) {
	workout := &domain.Workout{
		CreatedByUserID: userID,
		UpdatedByUserID: userID,
	}
	if err := s.workoutRepo.Create(ctx, nil, workout); err != nil {
		return nil, err
	}
	workout.ExerciseExecutions = []domain.ExerciseExecution{}
	return workout, nil
}

func (s *workoutService) GetWorkout(ctx context.Context, workoutID, userID uint) (*domain.Workout, error) {
	return s.loadOwnedWorkout(ctx, nil, workoutID, userID)
}

func (s *workoutService) SearchWorkouts(ctx context.Context, userID uint, filter repository.WorkoutFilter, page, pageSize int) (*WorkoutPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > 100 {
		pageSize = 100
	}

	items, total, err := s.workoutRepo.Search(ctx, nil, userID, filter, page, pageSize)
	if err != nil {
		return nil, err
	}
	return &WorkoutPage{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}

func (s *workoutService) FinishWorkout(ctx context.Context, workoutID, userID uint) (*domain.Workout, error) {
	var finished *domain.Workout
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		workout, err := s.loadOwnedWorkout(ctx, tx, workoutID, userID)
		if err != nil {
			return err
		}
		if workout.IsFinished() {
			return ErrWorkoutAlreadyFinished
		}

		now := time.Now().UTC()
		workout.FinishedAt = &now
		workout.UpdatedByUserID = userID
		if err := s.workoutRepo.Save(ctx, tx, workout); err != nil {
			return err
		}
		finished = workout
		return nil
	})
	if err != nil {
		return nil, err
	}
	return finished, nil
}

func (s *workoutService) DeleteWorkout(ctx context.Context, workoutID, userID uint) error {
	err := s.workoutRepo.Delete(ctx, nil, workoutID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		// A repeated delete is NotFound, not a silent no-op success.
		return ErrWorkoutNotFound
	}
	return err
}

// === Exercise executions ===

func (s *workoutService) GetExerciseExecution(ctx context.Context, workoutID, exerciseID, userID uint) (*domain.ExerciseExecution, error) {
	if _, err := s.loadOwnedWorkout(ctx, nil, workoutID, userID); err != nil {
		return nil, err
	}
	execution, err := s.workoutRepo.GetExecution(ctx, nil, workoutID, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, executionNotFound(workoutID, exerciseID)
		}
		return nil, err
	}
	return execution, nil
}

// UpsertExerciseExecution applies full-replace semantics: execution metadata
// is created or updated in place, and the execution's entire set list is
// discarded and rebuilt from the payload. The execution's identity
// (workout_id, exercise_id) is stable across upserts; set ids are not.
func (s *workoutService) UpsertExerciseExecution(ctx context.Context, workoutID, exerciseID, userID uint, input ExecutionInput) (*domain.ExerciseExecution, error) {
	if err := validateSetInputs(input.Sets); err != nil {
		return nil, err
	}

	var result *domain.ExerciseExecution
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		workout, err := s.loadMutableWorkout(ctx, tx, workoutID, userID)
		if err != nil {
			return err
		}

		if _, err := s.exerciseRepo.GetByID(ctx, tx, exerciseID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrExerciseNotFound
			}
			return err
		}

		_, err = s.workoutRepo.GetExecution(ctx, tx, workoutID, exerciseID)
		switch {
		case err == nil:
			updates := map[string]interface{}{
				"exercise_order": input.ExerciseOrder,
				"note_text":      input.NoteText,
			}
			if err := s.workoutRepo.UpdateExecution(ctx, tx, workoutID, exerciseID, updates); err != nil {
				return err
			}
		case errors.Is(err, repository.ErrNotFound):
			execution := &domain.ExerciseExecution{
				WorkoutID:     workoutID,
				ExerciseID:    exerciseID,
				ExerciseOrder: input.ExerciseOrder,
				NoteText:      input.NoteText,
			}
			if err := s.workoutRepo.CreateExecution(ctx, tx, execution); err != nil {
				return err
			}
		default:
			return err
		}

		sets := make([]domain.Set, len(input.Sets))
		for i, in := range input.Sets {
			sets[i] = domain.Set{
				Weight:     in.Weight,
				CleanReps:  in.CleanReps,
				ForcedReps: in.ForcedReps,
				NoteText:   in.NoteText,
			}
		}
		if err := s.workoutRepo.ReplaceSets(ctx, tx, workoutID, exerciseID, sets); err != nil {
			return err
		}

		workout.UpdatedByUserID = userID
		if err := s.workoutRepo.Save(ctx, tx, workout); err != nil {
			return err
		}

		result, err = s.workoutRepo.GetExecution(ctx, tx, workoutID, exerciseID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *workoutService) UpdateExerciseExecutionMetadata(ctx context.Context, workoutID, exerciseID, userID uint, input ExecutionMetadataInput) (*domain.ExerciseExecution, error) {
	var result *domain.ExerciseExecution
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.loadMutableWorkout(ctx, tx, workoutID, userID); err != nil {
			return err
		}

		updates := map[string]interface{}{}
		if input.ExerciseOrder != nil {
			updates["exercise_order"] = *input.ExerciseOrder
		}
		if input.NoteText != nil {
			updates["note_text"] = *input.NoteText
		}
		if len(updates) > 0 {
			if err := s.workoutRepo.UpdateExecution(ctx, tx, workoutID, exerciseID, updates); err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return executionNotFound(workoutID, exerciseID)
				}
				return err
			}
		}

		execution, err := s.workoutRepo.GetExecution(ctx, tx, workoutID, exerciseID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return executionNotFound(workoutID, exerciseID)
			}
			return err
		}
		result = execution
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *workoutService) DeleteExerciseExecution(ctx context.Context, workoutID, exerciseID, userID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.loadMutableWorkout(ctx, tx, workoutID, userID); err != nil {
			return err
		}
		// Sets go with the execution via ON DELETE CASCADE.
		if err := s.workoutRepo.DeleteExecution(ctx, tx, workoutID, exerciseID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return executionNotFound(workoutID, exerciseID)
			}
			return err
		}
		return nil
	})
}

// ReorderExerciseExecutions assigns exercise_order 1..N following the given
// id list. The request's id set must exactly equal the workout's current
// execution id set or the whole call fails with ReorderMismatchError.
func (s *workoutService) ReorderExerciseExecutions(ctx context.Context, workoutID, userID uint, exerciseIDs []uint) ([]domain.ExerciseExecution, error) {
	var result []domain.ExerciseExecution
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.loadMutableWorkout(ctx, tx, workoutID, userID); err != nil {
			return err
		}

		executions, err := s.workoutRepo.ListExecutions(ctx, tx, workoutID)
		if err != nil {
			return err
		}

		existing := make(map[uint]bool, len(executions))
		for _, execution := range executions {
			existing[execution.ExerciseID] = true
		}
		requested := make(map[uint]bool, len(exerciseIDs))

		mismatch := &ReorderMismatchError{}
		for _, id := range exerciseIDs {
			if requested[id] {
				// Duplicates can never match the existing set.
				mismatch.Extra = append(mismatch.Extra, id)
				continue
			}
			requested[id] = true
			if !existing[id] {
				mismatch.Extra = append(mismatch.Extra, id)
			}
		}
		for id := range existing {
			if !requested[id] {
				mismatch.Missing = append(mismatch.Missing, id)
			}
		}
		if len(mismatch.Missing) > 0 || len(mismatch.Extra) > 0 {
			sort.Slice(mismatch.Missing, func(i, j int) bool { return mismatch.Missing[i] < mismatch.Missing[j] })
			sort.Slice(mismatch.Extra, func(i, j int) bool { return mismatch.Extra[i] < mismatch.Extra[j] })
			return mismatch
		}

		for position, exerciseID := range exerciseIDs {
			updates := map[string]interface{}{"exercise_order": position + 1}
			if err := s.workoutRepo.UpdateExecution(ctx, tx, workoutID, exerciseID, updates); err != nil {
				return err
			}
		}

		result, err = s.workoutRepo.ListExecutions(ctx, tx, workoutID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// === Sets ===

func (s *workoutService) CreateSet(ctx context.Context, workoutID, exerciseID, userID uint, input SetInput) (*domain.Set, error) {
	if err := validateSetInputs([]SetInput{input}); err != nil {
		return nil, err
	}

	var result *domain.Set
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.loadMutableWorkout(ctx, tx, workoutID, userID); err != nil {
			return err
		}
		if _, err := s.workoutRepo.GetExecution(ctx, tx, workoutID, exerciseID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return executionNotFound(workoutID, exerciseID)
			}
			return err
		}

		set := &domain.Set{
			WorkoutID:  workoutID,
			ExerciseID: exerciseID,
			Weight:     input.Weight,
			CleanReps:  input.CleanReps,
			ForcedReps: input.ForcedReps,
			NoteText:   input.NoteText,
		}
		if err := s.workoutRepo.CreateSet(ctx, tx, set); err != nil {
			return err
		}
		result = set
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *workoutService) UpdateSet(ctx context.Context, workoutID, exerciseID, setID, userID uint, input SetUpdateInput) (*domain.Set, error) {
	if err := validateSetUpdate(input); err != nil {
		return nil, err
	}

	var result *domain.Set
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.loadMutableWorkout(ctx, tx, workoutID, userID); err != nil {
			return err
		}
		if _, err := s.workoutRepo.GetExecution(ctx, tx, workoutID, exerciseID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return executionNotFound(workoutID, exerciseID)
			}
			return err
		}

		updates := map[string]interface{}{}
		if input.Weight != nil {
			updates["weight"] = *input.Weight
		}
		if input.CleanReps != nil {
			updates["clean_reps"] = *input.CleanReps
		}
		if input.ForcedReps != nil {
			updates["forced_reps"] = *input.ForcedReps
		}
		if input.NoteText != nil {
			updates["note_text"] = *input.NoteText
		}
		if len(updates) > 0 {
			if err := s.workoutRepo.UpdateSet(ctx, tx, workoutID, exerciseID, setID, updates); err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return ErrSetNotFound
				}
				return err
			}
		}

		set, err := s.workoutRepo.GetSet(ctx, tx, workoutID, exerciseID, setID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrSetNotFound
			}
			return err
		}
		result = set
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *workoutService) DeleteSet(ctx context.Context, workoutID, exerciseID, setID, userID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.loadMutableWorkout(ctx, tx, workoutID, userID); err != nil {
			return err
		}
		if _, err := s.workoutRepo.GetExecution(ctx, tx, workoutID, exerciseID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return executionNotFound(workoutID, exerciseID)
			}
			return err
		}
		if err := s.workoutRepo.DeleteSet(ctx, tx, workoutID, exerciseID, setID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrSetNotFound
			}
			return err
		}
		return nil
	})
}

// --- Validation helpers ---

func validateSetInputs(sets []SetInput) error {
	for _, set := range sets {
		if set.Weight < 0 || set.CleanReps < 0 || set.ForcedReps < 0 {
			return ErrValidationFailed
		}
	}
	return nil
}

func validateSetUpdate(input SetUpdateInput) error {
	if input.Weight != nil && *input.Weight < 0 {
		return ErrValidationFailed
	}
	if input.CleanReps != nil && *input.CleanReps < 0 {
		return ErrValidationFailed
	}
	if input.ForcedReps != nil && *input.ForcedReps < 0 {
		return ErrValidationFailed
	}
	return nil
}
