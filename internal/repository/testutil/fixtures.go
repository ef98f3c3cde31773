package testutil

import (
	"testing"

	"gorm.io/gorm"

	"alcyxob/workout-tracker/internal/domain"
)

func SeedUser(tb testing.TB, tx *gorm.DB, email string) *domain.User {
	tb.Helper()
	hash := "not-a-real-hash"
	u := &domain.User{
		Name:         "Test User",
		Email:        email,
		PasswordHash: &hash,
	}
	if err := tx.Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedExercise(tb testing.TB, tx *gorm.DB, name string) *domain.Exercise {
	tb.Helper()
	e := &domain.Exercise{
		Name:     name,
		BodyPart: "Chest",
		Modality: domain.ModalityBarbell,
	}
	if err := tx.Create(e).Error; err != nil {
		tb.Fatalf("seed exercise: %v", err)
	}
	return e
}

func SeedUserExercise(tb testing.TB, tx *gorm.DB, name string, userID uint) *domain.Exercise {
	tb.Helper()
	e := &domain.Exercise{
		Name:            name,
		BodyPart:        "Back",
		Modality:        domain.ModalityDumbbell,
		IsUserCreated:   true,
		CreatedByUserID: &userID,
	}
	if err := tx.Create(e).Error; err != nil {
		tb.Fatalf("seed user exercise: %v", err)
	}
	return e
}

func SeedWorkout(tb testing.TB, tx *gorm.DB, userID uint) *domain.Workout {
	tb.Helper()
	w := &domain.Workout{
		CreatedByUserID: userID,
		UpdatedByUserID: userID,
	}
	if err := tx.Create(w).Error; err != nil {
		tb.Fatalf("seed workout: %v", err)
	}
	return w
}

func PtrString(v string) *string { return &v }

func PtrInt(v int) *int { return &v }

func PtrFloat64(v float64) *float64 { return &v }
