package handlers

import (
	"net/http"
	"todoapi/internal/middleware"

	"github.com/gin-gonic/gin"
)

// APIResponse is the uniform envelope for every domain endpoint. Data is
// always serialized (null on errors) so callers can rely on the field even
// for zero values such as an empty count.
type APIResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data"`
}

func respondSuccess(c *gin.Context, status int, message string, data any) {
	c.JSON(status, APIResponse{Success: true, Message: message, Data: data})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, APIResponse{Success: false, Message: message})
}

// currentUserID returns the caller id resolved by the auth middleware.
// Reaching a protected handler without it is a wiring bug, reported as 401.
func currentUserID(c *gin.Context) (int, bool) {
	value, exists := c.Get(middleware.UserIDContextKey)
	if !exists {
		respondError(c, http.StatusUnauthorized, "Unauthorized")
		return 0, false
	}

	userID, ok := value.(int)
	if !ok || userID <= 0 {
		respondError(c, http.StatusInternalServerError, "Invalid user ID")
		return 0, false
	}
	return userID, true
}

func currentUserRole(c *gin.Context) string {
	value, exists := c.Get(middleware.UserRoleContextKey)
	if !exists {
		return ""
	}
	role, _ := value.(string)
	return role
}
