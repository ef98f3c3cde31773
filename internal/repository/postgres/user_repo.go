package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/logger"
	"alcyxob/workout-tracker/internal/repository"
)

// userRepository implements repository.UserRepository on Postgres.
type userRepository struct {
	db  *gorm.DB
	log *logger.Logger
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *gorm.DB, baseLog *logger.Logger) repository.UserRepository {
	return &userRepository{db: db, log: baseLog.With("repo", "UserRepository")}
}

func (r *userRepository) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *userRepository) Create(ctx context.Context, tx *gorm.DB, user *domain.User) error {
	if err := r.conn(tx).WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return repository.ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*domain.User, error) {
	var user domain.User
	err := r.conn(tx).WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*domain.User, error) {
	var user domain.User
	err := r.conn(tx).WithContext(ctx).First(&user, "email = ?", email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByGoogleSub(ctx context.Context, tx *gorm.DB, sub string) (*domain.User, error) {
	var user domain.User
	err := r.conn(tx).WithContext(ctx).First(&user, "google_sub = ?", sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, tx *gorm.DB, user *domain.User) error {
	result := r.conn(tx).WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]interface{}{
			"name":       user.Name,
			"google_sub": user.GoogleSub,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
