package postgres

import (
	"context"
	"errors"
	"testing"

	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/repository"
	"alcyxob/workout-tracker/internal/repository/testutil"
)

func TestWorkoutRepoAggregateLoading(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewWorkoutRepository(tx, testutil.Logger(t))

	user := testutil.SeedUser(t, tx, "repo-agg@example.com")
	first := testutil.SeedExercise(t, tx, "Repo Bench")
	second := testutil.SeedExercise(t, tx, "Repo Squat")
	workout := testutil.SeedWorkout(t, tx, user.ID)

	// Insert out of order; loading must sort by exercise_order.
	if err := repo.CreateExecution(ctx, tx, &domain.ExerciseExecution{
		WorkoutID: workout.ID, ExerciseID: second.ID, ExerciseOrder: 2,
	}); err != nil {
		t.Fatalf("create execution 2: %v", err)
	}
	if err := repo.CreateExecution(ctx, tx, &domain.ExerciseExecution{
		WorkoutID: workout.ID, ExerciseID: first.ID, ExerciseOrder: 1,
	}); err != nil {
		t.Fatalf("create execution 1: %v", err)
	}
	for _, weight := range []float64{100, 105} {
		if err := repo.CreateSet(ctx, tx, &domain.Set{
			WorkoutID: workout.ID, ExerciseID: first.ID, Weight: weight, CleanReps: 5,
		}); err != nil {
			t.Fatalf("create set: %v", err)
		}
	}

	loaded, err := repo.GetOwned(ctx, tx, workout.ID, user.ID)
	if err != nil {
		t.Fatalf("GetOwned: %v", err)
	}
	if len(loaded.ExerciseExecutions) != 2 {
		t.Fatalf("expected 2 executions, got %d", len(loaded.ExerciseExecutions))
	}
	if loaded.ExerciseExecutions[0].ExerciseID != first.ID {
		t.Fatalf("executions not ordered by exercise_order")
	}
	if loaded.ExerciseExecutions[0].Exercise.Name != "Repo Bench" {
		t.Fatalf("exercise not preloaded: %+v", loaded.ExerciseExecutions[0].Exercise)
	}
	sets := loaded.ExerciseExecutions[0].Sets
	if len(sets) != 2 || sets[0].ID >= sets[1].ID {
		t.Fatalf("sets not ordered by id: %+v", sets)
	}

	// Wrong owner is plain NotFound.
	other := testutil.SeedUser(t, tx, "repo-agg-other@example.com")
	if _, err := repo.GetOwned(ctx, tx, workout.ID, other.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign owner, got %v", err)
	}
}

func TestWorkoutRepoReplaceSets(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewWorkoutRepository(tx, testutil.Logger(t))

	user := testutil.SeedUser(t, tx, "repo-replace@example.com")
	exercise := testutil.SeedExercise(t, tx, "Repo Row")
	workout := testutil.SeedWorkout(t, tx, user.ID)
	if err := repo.CreateExecution(ctx, tx, &domain.ExerciseExecution{
		WorkoutID: workout.ID, ExerciseID: exercise.ID, ExerciseOrder: 1,
	}); err != nil {
		t.Fatalf("create execution: %v", err)
	}

	original := &domain.Set{WorkoutID: workout.ID, ExerciseID: exercise.ID, Weight: 80, CleanReps: 10}
	if err := repo.CreateSet(ctx, tx, original); err != nil {
		t.Fatalf("create set: %v", err)
	}

	// Replacement carrying a stale id must still get a fresh row.
	replacement := []domain.Set{{ID: original.ID, Weight: 90, CleanReps: 8}}
	if err := repo.ReplaceSets(ctx, tx, workout.ID, exercise.ID, replacement); err != nil {
		t.Fatalf("ReplaceSets: %v", err)
	}

	execution, err := repo.GetExecution(ctx, tx, workout.ID, exercise.ID)
	if err != nil {
		t.Fatalf("GetExecution: %v", err)
	}
	if len(execution.Sets) != 1 {
		t.Fatalf("expected 1 set, got %d", len(execution.Sets))
	}
	if execution.Sets[0].ID == original.ID {
		t.Fatalf("replacement reused the old set id")
	}
	if execution.Sets[0].Weight != 90 {
		t.Fatalf("unexpected replacement set: %+v", execution.Sets[0])
	}

	// Replacing with nil clears the list.
	if err := repo.ReplaceSets(ctx, tx, workout.ID, exercise.ID, nil); err != nil {
		t.Fatalf("ReplaceSets nil: %v", err)
	}
	execution, err = repo.GetExecution(ctx, tx, workout.ID, exercise.ID)
	if err != nil {
		t.Fatalf("GetExecution after clear: %v", err)
	}
	if len(execution.Sets) != 0 {
		t.Fatalf("expected 0 sets, got %d", len(execution.Sets))
	}
}

func TestWorkoutRepoRowsAffectedChecks(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewWorkoutRepository(tx, testutil.Logger(t))

	user := testutil.SeedUser(t, tx, "repo-rows@example.com")

	if err := repo.Save(ctx, tx, &domain.Workout{ID: 999999, UpdatedByUserID: user.ID}); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("Save missing: expected ErrNotFound, got %v", err)
	}
	if err := repo.Delete(ctx, tx, 999999, user.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("Delete missing: expected ErrNotFound, got %v", err)
	}
	if err := repo.UpdateExecution(ctx, tx, 999999, 1, map[string]interface{}{"exercise_order": 1}); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("UpdateExecution missing: expected ErrNotFound, got %v", err)
	}
	if err := repo.DeleteSet(ctx, tx, 999999, 1, 1); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("DeleteSet missing: expected ErrNotFound, got %v", err)
	}
}
