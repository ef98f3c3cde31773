package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"alcyxob/workout-tracker/internal/logger"
	"alcyxob/workout-tracker/internal/service"
)

// SetupRoutes wires all handlers onto the router. transcriptionService may be
// nil when voice notes are not configured; the routes are then not mounted.
func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	log *logger.Logger,
	authService service.AuthService,
	userService service.UserService,
	exerciseService service.ExerciseService,
	workoutService service.WorkoutService,
	transcriptionService service.TranscriptionService,
) {

	authHandler := NewAuthHandler(authService)
	userHandler := NewUserHandler(userService)
	exerciseHandler := NewExerciseHandler(exerciseService)
	workoutHandler := NewWorkoutHandler(workoutService, log)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.Use(RequestLogger(log))

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/google", authHandler.GoogleLogin)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", userHandler.GetMe)
		protected.PATCH("/me", userHandler.UpdateMe)

		// --- Exercise catalog ---
		exerciseGroup := protected.Group("/exercises")
		{
			exerciseGroup.POST("", exerciseHandler.CreateExercise)
			exerciseGroup.GET("", exerciseHandler.ListExercises)
			exerciseGroup.GET("/search", exerciseHandler.SearchExercises)
			exerciseGroup.GET("/:id", exerciseHandler.GetExercise)
			exerciseGroup.PUT("/:id", exerciseHandler.UpdateExercise)
			exerciseGroup.DELETE("/:id", exerciseHandler.DeleteExercise)
		}

		// --- Workout aggregate ---
		workoutGroup := protected.Group("/workouts")
		{
			workoutGroup.POST("", workoutHandler.CreateWorkout)
			workoutGroup.GET("", workoutHandler.SearchWorkouts)
			workoutGroup.GET("/:id", workoutHandler.GetWorkout)
			workoutGroup.DELETE("/:id", workoutHandler.DeleteWorkout)
			workoutGroup.PATCH("/:id/finish", workoutHandler.FinishWorkout)
			workoutGroup.PATCH("/:id/exercise-executions/reorder", workoutHandler.ReorderExerciseExecutions)

			// Executions are addressed by exercise id; a workout holds at
			// most one execution per exercise.
			workoutGroup.GET("/:id/exercise-executions/:exerciseId", workoutHandler.GetExerciseExecution)
			workoutGroup.PUT("/:id/exercise-executions/:exerciseId", workoutHandler.UpsertExerciseExecution)
			workoutGroup.PATCH("/:id/exercise-executions/:exerciseId", workoutHandler.UpdateExerciseExecutionMetadata)
			workoutGroup.DELETE("/:id/exercise-executions/:exerciseId", workoutHandler.DeleteExerciseExecution)

			workoutGroup.POST("/:id/exercise-executions/:exerciseId/sets", workoutHandler.CreateSet)
			workoutGroup.PATCH("/:id/exercise-executions/:exerciseId/sets/:setId", workoutHandler.UpdateSet)
			workoutGroup.DELETE("/:id/exercise-executions/:exerciseId/sets/:setId", workoutHandler.DeleteSet)
		}

		// --- Voice transcriptions (optional) ---
		if transcriptionService != nil {
			transcriptionHandler := NewTranscriptionHandler(transcriptionService)
			transcriptionGroup := protected.Group("/transcriptions")
			{
				transcriptionGroup.POST("", transcriptionHandler.TranscribeVoiceNote)
				transcriptionGroup.GET("", transcriptionHandler.ListVoiceNotes)
			}
		}
	}
}
