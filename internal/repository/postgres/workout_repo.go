package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/logger"
	"alcyxob/workout-tracker/internal/repository"
)

// workoutRepository implements repository.WorkoutRepository on Postgres.
type workoutRepository struct {
	db  *gorm.DB
	log *logger.Logger
}

// NewWorkoutRepository creates a new workout aggregate repository.
func NewWorkoutRepository(db *gorm.DB, baseLog *logger.Logger) repository.WorkoutRepository {
	return &workoutRepository{db: db, log: baseLog.With("repo", "WorkoutRepository")}
}

func (r *workoutRepository) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// === Workouts ===

func (r *workoutRepository) Create(ctx context.Context, tx *gorm.DB, workout *domain.Workout) error {
	return r.conn(tx).WithContext(ctx).Create(workout).Error
}

// GetOwned loads a workout with its executions and sets. The ownership check
// lives in the query predicate so a workout owned by someone else is
// indistinguishable from a nonexistent one.
func (r *workoutRepository) GetOwned(ctx context.Context, tx *gorm.DB, workoutID, userID uint) (*domain.Workout, error) {
	var workout domain.Workout
	err := r.conn(tx).WithContext(ctx).
		Preload("ExerciseExecutions", func(db *gorm.DB) *gorm.DB {
			return db.Order("exercise_executions.exercise_order ASC")
		}).
		Preload("ExerciseExecutions.Exercise").
		Preload("ExerciseExecutions.Sets", func(db *gorm.DB) *gorm.DB {
			return db.Order("sets.id ASC")
		}).
		First(&workout, "id = ? AND created_by_user_id = ?", workoutID, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &workout, nil
}

func (r *workoutRepository) Search(ctx context.Context, tx *gorm.DB, userID uint, filter repository.WorkoutFilter, page, pageSize int) ([]domain.Workout, int64, error) {
	query := r.conn(tx).WithContext(ctx).Model(&domain.Workout{}).
		Where("created_by_user_id = ?", userID)

	if filter.StartDate != nil {
		query = query.Where("created_at >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("created_at <= ?", *filter.EndDate)
	}
	if filter.Finished != nil {
		if *filter.Finished {
			query = query.Where("finished_at IS NOT NULL")
		} else {
			query = query.Where("finished_at IS NULL")
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var workouts []domain.Workout
	err := query.
		Preload("ExerciseExecutions", func(db *gorm.DB) *gorm.DB {
			return db.Order("exercise_executions.exercise_order ASC")
		}).
		Preload("ExerciseExecutions.Exercise").
		Preload("ExerciseExecutions.Sets", func(db *gorm.DB) *gorm.DB {
			return db.Order("sets.id ASC")
		}).
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&workouts).Error
	if err != nil {
		return nil, 0, err
	}
	return workouts, total, nil
}

func (r *workoutRepository) Save(ctx context.Context, tx *gorm.DB, workout *domain.Workout) error {
	result := r.conn(tx).WithContext(ctx).Model(&domain.Workout{}).
		Where("id = ?", workout.ID).
		Updates(map[string]interface{}{
			"finished_at":        workout.FinishedAt,
			"updated_by_user_id": workout.UpdatedByUserID,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *workoutRepository) Delete(ctx context.Context, tx *gorm.DB, workoutID, userID uint) error {
	// Executions and sets go with the workout via ON DELETE CASCADE.
	result := r.conn(tx).WithContext(ctx).
		Where("id = ? AND created_by_user_id = ?", workoutID, userID).
		Delete(&domain.Workout{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// === Exercise executions ===

func (r *workoutRepository) GetExecution(ctx context.Context, tx *gorm.DB, workoutID, exerciseID uint) (*domain.ExerciseExecution, error) {
	var execution domain.ExerciseExecution
	err := r.conn(tx).WithContext(ctx).
		Preload("Exercise").
		Preload("Sets", func(db *gorm.DB) *gorm.DB {
			return db.Order("sets.id ASC")
		}).
		First(&execution, "workout_id = ? AND exercise_id = ?", workoutID, exerciseID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &execution, nil
}

func (r *workoutRepository) ListExecutions(ctx context.Context, tx *gorm.DB, workoutID uint) ([]domain.ExerciseExecution, error) {
	var executions []domain.ExerciseExecution
	err := r.conn(tx).WithContext(ctx).
		Preload("Exercise").
		Where("workout_id = ?", workoutID).
		Order("exercise_order ASC").
		Find(&executions).Error
	if err != nil {
		return nil, err
	}
	return executions, nil
}

func (r *workoutRepository) CreateExecution(ctx context.Context, tx *gorm.DB, execution *domain.ExerciseExecution) error {
	return r.conn(tx).WithContext(ctx).Create(execution).Error
}

func (r *workoutRepository) UpdateExecution(ctx context.Context, tx *gorm.DB, workoutID, exerciseID uint, updates map[string]interface{}) error {
	result := r.conn(tx).WithContext(ctx).Model(&domain.ExerciseExecution{}).
		Where("workout_id = ? AND exercise_id = ?", workoutID, exerciseID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *workoutRepository) DeleteExecution(ctx context.Context, tx *gorm.DB, workoutID, exerciseID uint) error {
	result := r.conn(tx).WithContext(ctx).
		Where("workout_id = ? AND exercise_id = ?", workoutID, exerciseID).
		Delete(&domain.ExerciseExecution{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// === Sets ===

// ReplaceSets drops every set under the execution and inserts the replacement
// list. Must run inside the caller's transaction together with the execution
// upsert; see repository.WorkoutRepository.
func (r *workoutRepository) ReplaceSets(ctx context.Context, tx *gorm.DB, workoutID, exerciseID uint, sets []domain.Set) error {
	conn := r.conn(tx).WithContext(ctx)
	if err := conn.
		Where("workout_id = ? AND exercise_id = ?", workoutID, exerciseID).
		Delete(&domain.Set{}).Error; err != nil {
		return err
	}
	if len(sets) == 0 {
		return nil
	}
	for i := range sets {
		sets[i].ID = 0 // force fresh surrogate ids
		sets[i].WorkoutID = workoutID
		sets[i].ExerciseID = exerciseID
	}
	return conn.Create(&sets).Error
}

func (r *workoutRepository) CreateSet(ctx context.Context, tx *gorm.DB, set *domain.Set) error {
	return r.conn(tx).WithContext(ctx).Create(set).Error
}

func (r *workoutRepository) GetSet(ctx context.Context, tx *gorm.DB, workoutID, exerciseID, setID uint) (*domain.Set, error) {
	var set domain.Set
	err := r.conn(tx).WithContext(ctx).
		First(&set, "id = ? AND workout_id = ? AND exercise_id = ?", setID, workoutID, exerciseID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &set, nil
}

func (r *workoutRepository) UpdateSet(ctx context.Context, tx *gorm.DB, workoutID, exerciseID, setID uint, updates map[string]interface{}) error {
	result := r.conn(tx).WithContext(ctx).Model(&domain.Set{}).
		Where("id = ? AND workout_id = ? AND exercise_id = ?", setID, workoutID, exerciseID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *workoutRepository) DeleteSet(ctx context.Context, tx *gorm.DB, workoutID, exerciseID, setID uint) error {
	result := r.conn(tx).WithContext(ctx).
		Where("id = ? AND workout_id = ? AND exercise_id = ?", setID, workoutID, exerciseID).
		Delete(&domain.Set{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
