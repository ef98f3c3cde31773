package service

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/repository/postgres"
	"alcyxob/workout-tracker/internal/repository/testutil"
)

func newTestExerciseService(t *testing.T) (ExerciseService, *gorm.DB) {
	t.Helper()
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	return NewExerciseService(postgres.NewExerciseRepository(tx, log), log), tx
}

func TestExerciseVisibility(t *testing.T) {
	svc, tx := newTestExerciseService(t)
	ctx := context.Background()

	alice := testutil.SeedUser(t, tx, "alice@example.com")
	bob := testutil.SeedUser(t, tx, "bob@example.com")
	system := testutil.SeedExercise(t, tx, "Incline Press")

	mine, err := svc.CreateExercise(ctx, alice.ID, "Band Pull Apart", "Shoulders", domain.ModalityBodyweight)
	if err != nil {
		t.Fatalf("CreateExercise: %v", err)
	}
	if !mine.IsUserCreated || mine.CreatedByUserID == nil || *mine.CreatedByUserID != alice.ID {
		t.Fatalf("ownership not recorded: %+v", mine)
	}

	// Everyone sees system exercises; only the creator sees their own.
	if _, err := svc.GetExercise(ctx, system.ID, bob.ID); err != nil {
		t.Fatalf("system exercise should be visible: %v", err)
	}
	if _, err := svc.GetExercise(ctx, mine.ID, alice.ID); err != nil {
		t.Fatalf("own exercise should be visible: %v", err)
	}
	if _, err := svc.GetExercise(ctx, mine.ID, bob.ID); !errors.Is(err, ErrExerciseNotFound) {
		t.Fatalf("foreign exercise: expected ErrExerciseNotFound, got %v", err)
	}

	listed, err := svc.ListExercises(ctx, bob.ID)
	if err != nil {
		t.Fatalf("ListExercises: %v", err)
	}
	for _, e := range listed {
		if e.ID == mine.ID {
			t.Fatalf("another user's exercise leaked into the list")
		}
	}
}

func TestExerciseOwnershipOnMutation(t *testing.T) {
	svc, tx := newTestExerciseService(t)
	ctx := context.Background()

	alice := testutil.SeedUser(t, tx, "alice-mut@example.com")
	bob := testutil.SeedUser(t, tx, "bob-mut@example.com")
	system := testutil.SeedExercise(t, tx, "Leg Press")
	mine := testutil.SeedUserExercise(t, tx, "Face Pull", alice.ID)

	// System exercises and other users' exercises cannot be modified; the
	// failure is indistinguishable from a missing id.
	if _, err := svc.UpdateExercise(ctx, system.ID, alice.ID, "Renamed", "Legs", domain.ModalityMachine); !errors.Is(err, ErrExerciseNotFound) {
		t.Fatalf("update system: expected ErrExerciseNotFound, got %v", err)
	}
	if _, err := svc.UpdateExercise(ctx, mine.ID, bob.ID, "Renamed", "Back", domain.ModalityCable); !errors.Is(err, ErrExerciseNotFound) {
		t.Fatalf("update foreign: expected ErrExerciseNotFound, got %v", err)
	}
	if err := svc.DeleteExercise(ctx, system.ID, alice.ID); !errors.Is(err, ErrExerciseNotFound) {
		t.Fatalf("delete system: expected ErrExerciseNotFound, got %v", err)
	}

	updated, err := svc.UpdateExercise(ctx, mine.ID, alice.ID, "Face Pull (Rope)", "Rear Delts", domain.ModalityCable)
	if err != nil {
		t.Fatalf("UpdateExercise: %v", err)
	}
	if updated.Name != "Face Pull (Rope)" || updated.Modality != domain.ModalityCable {
		t.Fatalf("update not applied: %+v", updated)
	}

	if err := svc.DeleteExercise(ctx, mine.ID, alice.ID); err != nil {
		t.Fatalf("DeleteExercise: %v", err)
	}
	if _, err := svc.GetExercise(ctx, mine.ID, alice.ID); !errors.Is(err, ErrExerciseNotFound) {
		t.Fatalf("get after delete: expected ErrExerciseNotFound, got %v", err)
	}
}

func TestExerciseSearch(t *testing.T) {
	svc, tx := newTestExerciseService(t)
	ctx := context.Background()

	user := testutil.SeedUser(t, tx, "searcher@example.com")
	other := testutil.SeedUser(t, tx, "searcher-other@example.com")
	testutil.SeedExercise(t, tx, "Romanian Deadlift")
	testutil.SeedExercise(t, tx, "Stiff Leg Deadlift")
	testutil.SeedExercise(t, tx, "Bench Press Search")
	testutil.SeedUserExercise(t, tx, "Deficit Deadlift", user.ID)
	testutil.SeedUserExercise(t, tx, "Snatch Grip Deadlift", other.ID)

	// Case-insensitive substring match over visible exercises only.
	results, err := svc.SearchExercises(ctx, user.ID, "deadlift")
	if err != nil {
		t.Fatalf("SearchExercises: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(results))
	}
	for _, e := range results {
		if e.IsUserCreated && (e.CreatedByUserID == nil || *e.CreatedByUserID != user.ID) {
			t.Fatalf("foreign user exercise leaked into search: %+v", e)
		}
	}

	// Queries below the minimum length return nothing rather than scanning.
	results, err = svc.SearchExercises(ctx, user.ID, "d")
	if err != nil {
		t.Fatalf("short query: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected empty result for short query, got %d", len(results))
	}
}

func TestCreateExerciseValidation(t *testing.T) {
	svc, tx := newTestExerciseService(t)
	ctx := context.Background()

	user := testutil.SeedUser(t, tx, "validate@example.com")

	if _, err := svc.CreateExercise(ctx, user.ID, "   ", "Chest", domain.ModalityBarbell); !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("blank name: expected ErrValidationFailed, got %v", err)
	}
	if _, err := svc.CreateExercise(ctx, user.ID, "Thing", "Chest", domain.Modality("KETTLEBELL")); !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("bad modality: expected ErrValidationFailed, got %v", err)
	}
}
