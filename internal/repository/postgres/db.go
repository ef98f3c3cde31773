package postgres

import (
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"alcyxob/workout-tracker/internal/domain"
)

// ConnectDB opens a gorm connection against the configured Postgres DSN.
func ConnectDB(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
		// Unique violations must surface as gorm.ErrDuplicatedKey.
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}
	return db, nil
}

// MigrateDB creates or updates the schema for all domain models. Foreign key
// constraints carry ON DELETE CASCADE so deleting a workout removes its
// executions and their sets at the database level.
func MigrateDB(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.Exercise{},
		&domain.Workout{},
		&domain.ExerciseExecution{},
		&domain.Set{},
		&domain.VoiceNote{},
	)
}
