package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/service"
)

// ExerciseHandler holds the exercise service dependency.
type ExerciseHandler struct {
	exerciseService service.ExerciseService
}

// NewExerciseHandler creates a new ExerciseHandler.
func NewExerciseHandler(exerciseService service.ExerciseService) *ExerciseHandler {
	return &ExerciseHandler{exerciseService: exerciseService}
}

// --- DTOs ---

// CreateExerciseRequest defines the expected JSON for creating an exercise.
type CreateExerciseRequest struct {
	Name     string          `json:"name" binding:"required"`
	BodyPart string          `json:"bodyPart" binding:"required"`
	Modality domain.Modality `json:"modality" binding:"required,oneof=DUMBBELL BARBELL CABLE MACHINE SMITH BODYWEIGHT"`
}

// ExerciseResponse is the DTO for returning exercise details.
type ExerciseResponse struct {
	ID            uint            `json:"id"`
	Name          string          `json:"name"`
	BodyPart      string          `json:"bodyPart"`
	Modality      domain.Modality `json:"modality"`
	IsUserCreated bool            `json:"isUserCreated"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// MapExerciseToResponse converts a domain.Exercise to ExerciseResponse.
func MapExerciseToResponse(exercise *domain.Exercise) ExerciseResponse {
	if exercise == nil {
		return ExerciseResponse{}
	}
	return ExerciseResponse{
		ID:            exercise.ID,
		Name:          exercise.Name,
		BodyPart:      exercise.BodyPart,
		Modality:      exercise.Modality,
		IsUserCreated: exercise.IsUserCreated,
		CreatedAt:     exercise.CreatedAt,
		UpdatedAt:     exercise.UpdatedAt,
	}
}

// MapExercisesToResponse converts a slice of domain.Exercise to DTOs.
func MapExercisesToResponse(exercises []domain.Exercise) []ExerciseResponse {
	responses := make([]ExerciseResponse, len(exercises))
	for i := range exercises {
		responses[i] = MapExerciseToResponse(&exercises[i])
	}
	return responses
}

// --- Handler Methods ---

// CreateExercise creates a user-owned catalog exercise.
func (h *ExerciseHandler) CreateExercise(c *gin.Context) {
	var req CreateExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusUnprocessableEntity, fmt.Sprintf("Validation error: %v", err))
		return
	}

	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	exercise, err := h.exerciseService.CreateExercise(c.Request.Context(), userID, req.Name, req.BodyPart, req.Modality)
	if err != nil {
		if errors.Is(err, service.ErrValidationFailed) {
			abortWithError(c, http.StatusUnprocessableEntity, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to create exercise.")
		}
		return
	}

	c.JSON(http.StatusCreated, MapExerciseToResponse(exercise))
}

// GetExercise returns a single visible exercise.
func (h *ExerciseHandler) GetExercise(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	exerciseID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	exercise, err := h.exerciseService.GetExercise(c.Request.Context(), exerciseID, userID)
	if err != nil {
		if errors.Is(err, service.ErrExerciseNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to retrieve exercise.")
		}
		return
	}

	c.JSON(http.StatusOK, MapExerciseToResponse(exercise))
}

// ListExercises returns system exercises plus the caller's own.
func (h *ExerciseHandler) ListExercises(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	exercises, err := h.exerciseService.ListExercises(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve exercises.")
		return
	}

	c.JSON(http.StatusOK, MapExercisesToResponse(exercises))
}

// SearchExercises performs a partial-name search over visible exercises.
func (h *ExerciseHandler) SearchExercises(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	exercises, err := h.exerciseService.SearchExercises(c.Request.Context(), userID, c.Query("q"))
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to search exercises.")
		return
	}

	c.JSON(http.StatusOK, MapExercisesToResponse(exercises))
}

// UpdateExercise updates an exercise owned by the caller.
func (h *ExerciseHandler) UpdateExercise(c *gin.Context) {
	var req CreateExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusUnprocessableEntity, fmt.Sprintf("Validation error: %v", err))
		return
	}

	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	exerciseID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	exercise, err := h.exerciseService.UpdateExercise(c.Request.Context(), exerciseID, userID, req.Name, req.BodyPart, req.Modality)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExerciseNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrValidationFailed):
			abortWithError(c, http.StatusUnprocessableEntity, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to update exercise.")
		}
		return
	}

	c.JSON(http.StatusOK, MapExerciseToResponse(exercise))
}

// DeleteExercise deletes an exercise owned by the caller.
func (h *ExerciseHandler) DeleteExercise(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	exerciseID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	if err := h.exerciseService.DeleteExercise(c.Request.Context(), exerciseID, userID); err != nil {
		if errors.Is(err, service.ErrExerciseNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to delete exercise.")
		}
		return
	}

	c.Status(http.StatusNoContent)
}
