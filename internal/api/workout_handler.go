package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/logger"
	"alcyxob/workout-tracker/internal/repository"
	"alcyxob/workout-tracker/internal/service"
)

// WorkoutHandler holds the workout service dependency.
type WorkoutHandler struct {
	workoutService service.WorkoutService
	log            *logger.Logger
}

// NewWorkoutHandler creates a new WorkoutHandler.
func NewWorkoutHandler(workoutService service.WorkoutService, baseLog *logger.Logger) *WorkoutHandler {
	return &WorkoutHandler{
		workoutService: workoutService,
		log:            baseLog.With("handler", "WorkoutHandler"),
	}
}

// --- Request DTOs ---

type SetRequest struct {
	Weight     float64 `json:"weight" binding:"gte=0"`
	CleanReps  int     `json:"cleanReps" binding:"gte=0"`
	ForcedReps int     `json:"forcedReps" binding:"gte=0"`
	NoteText   *string `json:"noteText"`
}

// UpsertExecutionRequest carries the complete desired state of one exercise
// execution. The set list fully replaces whatever is stored.
type UpsertExecutionRequest struct {
	ExerciseOrder int          `json:"exerciseOrder" binding:"required,gte=1"`
	NoteText      *string      `json:"noteText"`
	Sets          []SetRequest `json:"sets"`
}

type ExecutionMetadataRequest struct {
	ExerciseOrder *int    `json:"exerciseOrder" binding:"omitempty,gte=1"`
	NoteText      *string `json:"noteText"`
}

type SetUpdateRequest struct {
	Weight     *float64 `json:"weight" binding:"omitempty,gte=0"`
	CleanReps  *int     `json:"cleanReps" binding:"omitempty,gte=0"`
	ForcedReps *int     `json:"forcedReps" binding:"omitempty,gte=0"`
	NoteText   *string  `json:"noteText"`
}

type ReorderRequest struct {
	ExerciseIDs []uint `json:"exercise_ids" binding:"required,min=1"`
}

// --- Response DTOs ---

type SetResponse struct {
	ID         uint    `json:"id"`
	Weight     float64 `json:"weight"`
	CleanReps  int     `json:"cleanReps"`
	ForcedReps int     `json:"forcedReps"`
	NoteText   *string `json:"noteText,omitempty"`
}

type ExecutionResponse struct {
	WorkoutID     uint          `json:"workoutId"`
	ExerciseID    uint          `json:"exerciseId"`
	ExerciseName  string        `json:"exerciseName,omitempty"`
	ExerciseOrder int           `json:"exerciseOrder"`
	NoteText      *string       `json:"noteText,omitempty"`
	Sets          []SetResponse `json:"sets"`
}

type WorkoutResponse struct {
	ID         uint                `json:"id"`
	FinishedAt *time.Time          `json:"finishedAt,omitempty"`
	CreatedAt  time.Time           `json:"createdAt"`
	UpdatedAt  time.Time           `json:"updatedAt"`
	Executions []ExecutionResponse `json:"executions"`
}

type WorkoutPageResponse struct {
	Items    []WorkoutResponse `json:"items"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"pageSize"`
}

// FinishWorkoutResponse distinguishes a normal finish from the empty-workout
// case, where the workout is discarded instead of being kept as a finished
// empty shell.
type FinishWorkoutResponse struct {
	Deleted bool             `json:"deleted"`
	Workout *WorkoutResponse `json:"workout,omitempty"`
}

func MapSetToResponse(set *domain.Set) SetResponse {
	return SetResponse{
		ID:         set.ID,
		Weight:     set.Weight,
		CleanReps:  set.CleanReps,
		ForcedReps: set.ForcedReps,
		NoteText:   set.NoteText,
	}
}

func MapExecutionToResponse(execution *domain.ExerciseExecution) ExecutionResponse {
	sets := make([]SetResponse, len(execution.Sets))
	for i := range execution.Sets {
		sets[i] = MapSetToResponse(&execution.Sets[i])
	}
	return ExecutionResponse{
		WorkoutID:     execution.WorkoutID,
		ExerciseID:    execution.ExerciseID,
		ExerciseName:  execution.Exercise.Name,
		ExerciseOrder: execution.ExerciseOrder,
		NoteText:      execution.NoteText,
		Sets:          sets,
	}
}

func MapExecutionsToResponse(executions []domain.ExerciseExecution) []ExecutionResponse {
	responses := make([]ExecutionResponse, len(executions))
	for i := range executions {
		responses[i] = MapExecutionToResponse(&executions[i])
	}
	return responses
}

func MapWorkoutToResponse(workout *domain.Workout) WorkoutResponse {
	if workout == nil {
		return WorkoutResponse{}
	}
	return WorkoutResponse{
		ID:         workout.ID,
		FinishedAt: workout.FinishedAt,
		CreatedAt:  workout.CreatedAt,
		UpdatedAt:  workout.UpdatedAt,
		Executions: MapExecutionsToResponse(workout.ExerciseExecutions),
	}
}

// --- Error mapping ---

// handleServiceError translates service errors into HTTP responses. Absence
// and ownership violations both arrive as NotFound; business-rule rejections
// are 400; payload validation is 422; everything else is logged and hidden
// behind a generic 500.
func (h *WorkoutHandler) handleServiceError(c *gin.Context, err error) {
	var mismatch *service.ReorderMismatchError
	switch {
	case errors.Is(err, service.ErrWorkoutNotFound),
		errors.Is(err, service.ErrExecutionNotFound),
		errors.Is(err, service.ErrSetNotFound),
		errors.Is(err, service.ErrExerciseNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrWorkoutFinished),
		errors.Is(err, service.ErrWorkoutAlreadyFinished):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.As(err, &mismatch):
		abortWithError(c, http.StatusBadRequest, mismatch.Error())
	case errors.Is(err, service.ErrValidationFailed):
		abortWithError(c, http.StatusUnprocessableEntity, err.Error())
	default:
		h.log.Error("workout operation failed", "path", c.FullPath(), "error", err)
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred.")
	}
}

// --- Workout lifecycle handlers ---

// CreateWorkout starts a new empty workout for the caller.
func (h *WorkoutHandler) CreateWorkout(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	workout, err := h.workoutService.CreateWorkout(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, MapWorkoutToResponse(workout))
}

// GetWorkout returns the full aggregate: workout, executions in order, sets.
func (h *WorkoutHandler) GetWorkout(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	workoutID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	workout, err := h.workoutService.GetWorkout(c.Request.Context(), workoutID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, MapWorkoutToResponse(workout))
}

// SearchWorkouts lists the caller's workouts with optional date range and
// finished filters, paginated newest first.
func (h *WorkoutHandler) SearchWorkouts(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	filter := repository.WorkoutFilter{}
	if raw := c.Query("start_date"); raw != "" {
		t, err := parseDateParam(raw)
		if err != nil {
			abortWithError(c, http.StatusUnprocessableEntity, "start_date must be RFC3339 or YYYY-MM-DD")
			return
		}
		filter.StartDate = &t
	}
	if raw := c.Query("end_date"); raw != "" {
		t, err := parseDateParam(raw)
		if err != nil {
			abortWithError(c, http.StatusUnprocessableEntity, "end_date must be RFC3339 or YYYY-MM-DD")
			return
		}
		filter.EndDate = &t
	}
	if raw := c.Query("finished"); raw != "" {
		finished, err := strconv.ParseBool(raw)
		if err != nil {
			abortWithError(c, http.StatusUnprocessableEntity, "finished must be a boolean")
			return
		}
		filter.Finished = &finished
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	result, err := h.workoutService.SearchWorkouts(c.Request.Context(), userID, filter, page, pageSize)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	items := make([]WorkoutResponse, len(result.Items))
	for i := range result.Items {
		items[i] = MapWorkoutToResponse(&result.Items[i])
	}
	c.JSON(http.StatusOK, WorkoutPageResponse{
		Items:    items,
		Total:    result.Total,
		Page:     result.Page,
		PageSize: result.PageSize,
	})
}

// FinishWorkout closes a workout for edits. Finishing a workout with no
// executions deletes it instead; an empty finished workout is useless.
func (h *WorkoutHandler) FinishWorkout(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	workoutID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	workout, err := h.workoutService.GetWorkout(ctx, workoutID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	if !workout.IsFinished() && len(workout.ExerciseExecutions) == 0 {
		if err := h.workoutService.DeleteWorkout(ctx, workoutID, userID); err != nil {
			h.handleServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, FinishWorkoutResponse{Deleted: true})
		return
	}

	finished, err := h.workoutService.FinishWorkout(ctx, workoutID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	response := MapWorkoutToResponse(finished)
	c.JSON(http.StatusOK, FinishWorkoutResponse{Deleted: false, Workout: &response})
}

// DeleteWorkout removes a workout and everything under it.
func (h *WorkoutHandler) DeleteWorkout(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	workoutID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	if err := h.workoutService.DeleteWorkout(c.Request.Context(), workoutID, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// --- Execution handlers ---

// GetExerciseExecution returns one execution with its sets.
func (h *WorkoutHandler) GetExerciseExecution(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	workoutID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	exerciseID, ok := parseUintParam(c, "exerciseId")
	if !ok {
		return
	}

	execution, err := h.workoutService.GetExerciseExecution(c.Request.Context(), workoutID, exerciseID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, MapExecutionToResponse(execution))
}

// UpsertExerciseExecution creates or fully replaces an execution, set list
// included.
func (h *WorkoutHandler) UpsertExerciseExecution(c *gin.Context) {
	var req UpsertExecutionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusUnprocessableEntity, fmt.Sprintf("Validation error: %v", err))
		return
	}

	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	workoutID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	exerciseID, ok := parseUintParam(c, "exerciseId")
	if !ok {
		return
	}

	input := service.ExecutionInput{
		ExerciseOrder: req.ExerciseOrder,
		NoteText:      req.NoteText,
		Sets:          mapSetRequests(req.Sets),
	}
	execution, err := h.workoutService.UpsertExerciseExecution(c.Request.Context(), workoutID, exerciseID, userID, input)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, MapExecutionToResponse(execution))
}

// UpdateExerciseExecutionMetadata patches order or note without touching sets.
func (h *WorkoutHandler) UpdateExerciseExecutionMetadata(c *gin.Context) {
	var req ExecutionMetadataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusUnprocessableEntity, fmt.Sprintf("Validation error: %v", err))
		return
	}

	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	workoutID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	exerciseID, ok := parseUintParam(c, "exerciseId")
	if !ok {
		return
	}

	input := service.ExecutionMetadataInput{
		ExerciseOrder: req.ExerciseOrder,
		NoteText:      req.NoteText,
	}
	execution, err := h.workoutService.UpdateExerciseExecutionMetadata(c.Request.Context(), workoutID, exerciseID, userID, input)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, MapExecutionToResponse(execution))
}

// DeleteExerciseExecution removes an execution and its sets.
func (h *WorkoutHandler) DeleteExerciseExecution(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	workoutID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	exerciseID, ok := parseUintParam(c, "exerciseId")
	if !ok {
		return
	}

	if err := h.workoutService.DeleteExerciseExecution(c.Request.Context(), workoutID, exerciseID, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ReorderExerciseExecutions applies a complete new ordering. The request must
// list every execution's exercise id exactly once.
func (h *WorkoutHandler) ReorderExerciseExecutions(c *gin.Context) {
	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusUnprocessableEntity, fmt.Sprintf("Validation error: %v", err))
		return
	}

	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	workoutID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	executions, err := h.workoutService.ReorderExerciseExecutions(c.Request.Context(), workoutID, userID, req.ExerciseIDs)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, MapExecutionsToResponse(executions))
}

// --- Set handlers ---

// CreateSet appends a single set to an execution.
func (h *WorkoutHandler) CreateSet(c *gin.Context) {
	var req SetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusUnprocessableEntity, fmt.Sprintf("Validation error: %v", err))
		return
	}

	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	workoutID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	exerciseID, ok := parseUintParam(c, "exerciseId")
	if !ok {
		return
	}

	input := service.SetInput{
		Weight:     req.Weight,
		CleanReps:  req.CleanReps,
		ForcedReps: req.ForcedReps,
		NoteText:   req.NoteText,
	}
	set, err := h.workoutService.CreateSet(c.Request.Context(), workoutID, exerciseID, userID, input)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, MapSetToResponse(set))
}

// UpdateSet patches a single set in place.
func (h *WorkoutHandler) UpdateSet(c *gin.Context) {
	var req SetUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusUnprocessableEntity, fmt.Sprintf("Validation error: %v", err))
		return
	}

	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	workoutID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	exerciseID, ok := parseUintParam(c, "exerciseId")
	if !ok {
		return
	}
	setID, ok := parseUintParam(c, "setId")
	if !ok {
		return
	}

	input := service.SetUpdateInput{
		Weight:     req.Weight,
		CleanReps:  req.CleanReps,
		ForcedReps: req.ForcedReps,
		NoteText:   req.NoteText,
	}
	set, err := h.workoutService.UpdateSet(c.Request.Context(), workoutID, exerciseID, setID, userID, input)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, MapSetToResponse(set))
}

// DeleteSet removes a single set.
func (h *WorkoutHandler) DeleteSet(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	workoutID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	exerciseID, ok := parseUintParam(c, "exerciseId")
	if !ok {
		return
	}
	setID, ok := parseUintParam(c, "setId")
	if !ok {
		return
	}

	if err := h.workoutService.DeleteSet(c.Request.Context(), workoutID, exerciseID, setID, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// --- Helpers ---

func mapSetRequests(reqs []SetRequest) []service.SetInput {
	inputs := make([]service.SetInput, len(reqs))
	for i, r := range reqs {
		inputs[i] = service.SetInput{
			Weight:     r.Weight,
			CleanReps:  r.CleanReps,
			ForcedReps: r.ForcedReps,
			NoteText:   r.NoteText,
		}
	}
	return inputs
}

// parseDateParam accepts RFC3339 timestamps and bare dates.
func parseDateParam(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}
