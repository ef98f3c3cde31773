package postgres

import (
	"context"

	"gorm.io/gorm"

	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/logger"
	"alcyxob/workout-tracker/internal/repository"
)

type voiceNoteRepository struct {
	db  *gorm.DB
	log *logger.Logger
}

// NewVoiceNoteRepository creates a new voice note metadata repository.
func NewVoiceNoteRepository(db *gorm.DB, baseLog *logger.Logger) repository.VoiceNoteRepository {
	return &voiceNoteRepository{db: db, log: baseLog.With("repo", "VoiceNoteRepository")}
}

func (r *voiceNoteRepository) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *voiceNoteRepository) Create(ctx context.Context, tx *gorm.DB, note *domain.VoiceNote) error {
	return r.conn(tx).WithContext(ctx).Create(note).Error
}

func (r *voiceNoteRepository) ListByUser(ctx context.Context, tx *gorm.DB, userID uint) ([]domain.VoiceNote, error) {
	var notes []domain.VoiceNote
	err := r.conn(tx).WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&notes).Error
	if err != nil {
		return nil, err
	}
	return notes, nil
}
