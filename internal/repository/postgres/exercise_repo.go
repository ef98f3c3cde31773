package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/logger"
	"alcyxob/workout-tracker/internal/repository"
)

// exerciseRepository implements repository.ExerciseRepository on Postgres.
type exerciseRepository struct {
	db  *gorm.DB
	log *logger.Logger
}

// NewExerciseRepository creates a new exercise catalog repository.
func NewExerciseRepository(db *gorm.DB, baseLog *logger.Logger) repository.ExerciseRepository {
	return &exerciseRepository{db: db, log: baseLog.With("repo", "ExerciseRepository")}
}

func (r *exerciseRepository) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *exerciseRepository) Create(ctx context.Context, tx *gorm.DB, exercise *domain.Exercise) error {
	return r.conn(tx).WithContext(ctx).Create(exercise).Error
}

func (r *exerciseRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*domain.Exercise, error) {
	var exercise domain.Exercise
	err := r.conn(tx).WithContext(ctx).First(&exercise, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &exercise, nil
}

// ListVisible returns system exercises plus the ones created by userID.
func (r *exerciseRepository) ListVisible(ctx context.Context, tx *gorm.DB, userID uint) ([]domain.Exercise, error) {
	var exercises []domain.Exercise
	err := r.conn(tx).WithContext(ctx).
		Where("is_user_created = false OR created_by_user_id = ?", userID).
		Order("name ASC").
		Find(&exercises).Error
	if err != nil {
		return nil, err
	}
	return exercises, nil
}

// SearchByName performs a case-insensitive partial-name match over the
// exercises visible to userID.
func (r *exerciseRepository) SearchByName(ctx context.Context, tx *gorm.DB, userID uint, query string) ([]domain.Exercise, error) {
	var exercises []domain.Exercise
	err := r.conn(tx).WithContext(ctx).
		Where("(is_user_created = false OR created_by_user_id = ?) AND name ILIKE ?", userID, "%"+query+"%").
		Order("name ASC").
		Find(&exercises).Error
	if err != nil {
		return nil, err
	}
	return exercises, nil
}

func (r *exerciseRepository) Update(ctx context.Context, tx *gorm.DB, exercise *domain.Exercise) error {
	// Ownership stays in the predicate: only the creating user can touch a
	// user-created exercise, and system exercises never match.
	result := r.conn(tx).WithContext(ctx).Model(&domain.Exercise{}).
		Where("id = ? AND is_user_created = true AND created_by_user_id = ?", exercise.ID, exercise.CreatedByUserID).
		Updates(map[string]interface{}{
			"name":      exercise.Name,
			"body_part": exercise.BodyPart,
			"modality":  exercise.Modality,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *exerciseRepository) Delete(ctx context.Context, tx *gorm.DB, id, ownerID uint) error {
	result := r.conn(tx).WithContext(ctx).
		Where("id = ? AND is_user_created = true AND created_by_user_id = ?", id, ownerID).
		Delete(&domain.Exercise{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// Absent, system-owned, or owned by someone else; all collapse here.
		return repository.ErrNotFound
	}
	return nil
}
