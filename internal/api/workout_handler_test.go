package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/logger"
	"alcyxob/workout-tracker/internal/service"
)

// stubWorkoutService overrides only what a test needs; calling anything else
// panics through the embedded nil interface.
type stubWorkoutService struct {
	service.WorkoutService
	getWorkout    func(ctx context.Context, workoutID, userID uint) (*domain.Workout, error)
	deleteWorkout func(ctx context.Context, workoutID, userID uint) error
	finishWorkout func(ctx context.Context, workoutID, userID uint) (*domain.Workout, error)
	reorder       func(ctx context.Context, workoutID, userID uint, exerciseIDs []uint) ([]domain.ExerciseExecution, error)
}

func (s *stubWorkoutService) GetWorkout(ctx context.Context, workoutID, userID uint) (*domain.Workout, error) {
	return s.getWorkout(ctx, workoutID, userID)
}

func (s *stubWorkoutService) DeleteWorkout(ctx context.Context, workoutID, userID uint) error {
	return s.deleteWorkout(ctx, workoutID, userID)
}

func (s *stubWorkoutService) FinishWorkout(ctx context.Context, workoutID, userID uint) (*domain.Workout, error) {
	return s.finishWorkout(ctx, workoutID, userID)
}

func (s *stubWorkoutService) ReorderExerciseExecutions(ctx context.Context, workoutID, userID uint, exerciseIDs []uint) ([]domain.ExerciseExecution, error) {
	return s.reorder(ctx, workoutID, userID, exerciseIDs)
}

func newWorkoutTestRouter(t *testing.T, svc service.WorkoutService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	handler := NewWorkoutHandler(svc, log)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(ContextUserIDKey, uint(1))
	})
	router.PATCH("/workouts/:id/finish", handler.FinishWorkout)
	router.PATCH("/workouts/:id/exercise-executions/reorder", handler.ReorderExerciseExecutions)
	return router
}

func TestFinishEmptyWorkoutDeletesIt(t *testing.T) {
	deleted := false
	svc := &stubWorkoutService{
		getWorkout: func(ctx context.Context, workoutID, userID uint) (*domain.Workout, error) {
			return &domain.Workout{ID: workoutID, CreatedByUserID: userID}, nil
		},
		deleteWorkout: func(ctx context.Context, workoutID, userID uint) error {
			deleted = true
			return nil
		},
		finishWorkout: func(ctx context.Context, workoutID, userID uint) (*domain.Workout, error) {
			t.Fatalf("finish must not be called for an empty workout")
			return nil, nil
		},
	}
	router := newWorkoutTestRouter(t, svc)

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/workouts/5/finish", nil)
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
	if !deleted {
		t.Fatalf("empty workout was not deleted")
	}
	var resp FinishWorkoutResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Deleted || resp.Workout != nil {
		t.Fatalf("expected {deleted: true, no workout}, got %+v", resp)
	}
}

func TestFinishNonEmptyWorkout(t *testing.T) {
	now := time.Now().UTC()
	svc := &stubWorkoutService{
		getWorkout: func(ctx context.Context, workoutID, userID uint) (*domain.Workout, error) {
			return &domain.Workout{
				ID:              workoutID,
				CreatedByUserID: userID,
				ExerciseExecutions: []domain.ExerciseExecution{
					{WorkoutID: workoutID, ExerciseID: 2, ExerciseOrder: 1},
				},
			}, nil
		},
		deleteWorkout: func(ctx context.Context, workoutID, userID uint) error {
			t.Fatalf("delete must not be called for a non-empty workout")
			return nil
		},
		finishWorkout: func(ctx context.Context, workoutID, userID uint) (*domain.Workout, error) {
			return &domain.Workout{ID: workoutID, CreatedByUserID: userID, FinishedAt: &now}, nil
		},
	}
	router := newWorkoutTestRouter(t, svc)

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/workouts/5/finish", nil)
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
	var resp FinishWorkoutResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Deleted || resp.Workout == nil || resp.Workout.FinishedAt == nil {
		t.Fatalf("expected a finished workout, got %+v", resp)
	}
}

func TestFinishWorkoutNotFound(t *testing.T) {
	svc := &stubWorkoutService{
		getWorkout: func(ctx context.Context, workoutID, userID uint) (*domain.Workout, error) {
			return nil, service.ErrWorkoutNotFound
		},
	}
	router := newWorkoutTestRouter(t, svc)

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/workouts/99/finish", nil)
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", recorder.Code)
	}
}

func TestReorderMismatchMapsToBadRequest(t *testing.T) {
	svc := &stubWorkoutService{
		reorder: func(ctx context.Context, workoutID, userID uint, exerciseIDs []uint) ([]domain.ExerciseExecution, error) {
			return nil, &service.ReorderMismatchError{Missing: []uint{3}, Extra: []uint{9}}
		},
	}
	router := newWorkoutTestRouter(t, svc)

	recorder := httptest.NewRecorder()
	body := strings.NewReader(`{"exercise_ids": [1, 9]}`)
	req := httptest.NewRequest(http.MethodPatch, "/workouts/5/exercise-executions/reorder", body)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", recorder.Code, recorder.Body.String())
	}
	if !strings.Contains(recorder.Body.String(), "missing exercise ids") {
		t.Fatalf("mismatch detail missing from body: %s", recorder.Body.String())
	}
}

func TestReorderRejectsEmptyBody(t *testing.T) {
	svc := &stubWorkoutService{
		reorder: func(ctx context.Context, workoutID, userID uint, exerciseIDs []uint) ([]domain.ExerciseExecution, error) {
			t.Fatalf("service must not be called on a validation failure")
			return nil, nil
		},
	}
	router := newWorkoutTestRouter(t, svc)

	recorder := httptest.NewRecorder()
	body := strings.NewReader(`{"exercise_ids": []}`)
	req := httptest.NewRequest(http.MethodPatch, "/workouts/5/exercise-executions/reorder", body)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", recorder.Code, recorder.Body.String())
	}
}
