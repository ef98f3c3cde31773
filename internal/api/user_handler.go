package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"alcyxob/workout-tracker/internal/service"
)

// UserHandler holds the user service dependency.
type UserHandler struct {
	userService service.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

type UpdateMeRequest struct {
	Name string `json:"name" binding:"required"`
}

// GetMe returns the authenticated user's profile.
func (h *UserHandler) GetMe(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	user, err := h.userService.GetUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to load profile.")
		}
		return
	}

	c.JSON(http.StatusOK, MapUserToResponse(user))
}

// UpdateMe updates the authenticated user's display name.
func (h *UserHandler) UpdateMe(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	var req UpdateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusUnprocessableEntity, fmt.Sprintf("Validation error: %v", err))
		return
	}

	user, err := h.userService.UpdateUserName(c.Request.Context(), userID, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrValidationFailed):
			abortWithError(c, http.StatusUnprocessableEntity, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to update profile.")
		}
		return
	}

	c.JSON(http.StatusOK, MapUserToResponse(user))
}
