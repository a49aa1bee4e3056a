package handlers

import (
	"database/sql"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"todoapi/internal/database"
	"todoapi/internal/models"
	"todoapi/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
)

// RegisterUser creates a user without issuing a token. It runs through the
// same creation path as /api/auth/register.
func RegisterUser(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Username and password are required")
		return
	}

	user, err := createUserAccount(req)
	if err != nil {
		var verr validationError
		switch {
		case errors.As(err, &verr):
			respondError(c, http.StatusBadRequest, verr.Error())
		case errors.Is(err, errDuplicateUsername):
			respondError(c, http.StatusConflict, "Username already exists")
		default:
			log.Printf("Error creating user %q: %v", req.Username, err)
			respondError(c, http.StatusInternalServerError, "Error creating user")
		}
		return
	}

	respondSuccess(c, http.StatusCreated, "User registered successfully", user.Summary())
}

func parseUserID(c *gin.Context) (int, bool) {
	userID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil || userID <= 0 {
		respondError(c, http.StatusBadRequest, "Invalid user ID")
		return 0, false
	}
	return userID, true
}

// authorizeUserAccess allows callers to operate on their own record, and
// admins on any record.
func authorizeUserAccess(c *gin.Context, targetID int) bool {
	callerID, ok := currentUserID(c)
	if !ok {
		return false
	}
	if callerID == targetID || currentUserRole(c) == models.RoleAdmin {
		return true
	}
	respondError(c, http.StatusForbidden, "You don't have permission to access this user")
	return false
}

// GetUser returns a user's transfer representation.
func GetUser(c *gin.Context) {
	targetID, ok := parseUserID(c)
	if !ok {
		return
	}
	if !authorizeUserAccess(c, targetID) {
		return
	}

	var user models.User
	query := `SELECT id, username, email, role, enabled, created_at, updated_at FROM users WHERE id = $1`
	err := database.DB.QueryRow(query, targetID).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.Role,
		&user.Enabled,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(c, http.StatusNotFound, "User not found")
			return
		}
		log.Printf("Error retrieving user %d: %v", targetID, err)
		respondError(c, http.StatusInternalServerError, "Error retrieving user")
		return
	}

	respondSuccess(c, http.StatusOK, "", user.Summary())
}

// UpdateUser applies a partial update to a user record. Absent fields keep
// their stored values; a new password is re-hashed before persisting.
func UpdateUser(c *gin.Context) {
	targetID, ok := parseUserID(c)
	if !ok {
		return
	}
	if !authorizeUserAccess(c, targetID) {
		return
	}

	var req models.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Username != nil {
		trimmed := strings.TrimSpace(*req.Username)
		if trimmed == "" {
			respondError(c, http.StatusBadRequest, "Username cannot be blank")
			return
		}
		if len(trimmed) > 50 {
			respondError(c, http.StatusBadRequest, "Username cannot exceed 50 characters")
			return
		}
		req.Username = &trimmed
	}

	if req.Email != nil && strings.TrimSpace(*req.Email) == "" {
		respondError(c, http.StatusBadRequest, "Email cannot be blank")
		return
	}

	var hashedPassword *string
	if req.Password != nil {
		if err := utils.ValidatePassword(*req.Password); err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		hashed, err := utils.HashPassword(*req.Password)
		if err != nil {
			log.Printf("Error hashing password for user %d: %v", targetID, err)
			respondError(c, http.StatusInternalServerError, "Error updating user")
			return
		}
		hashedPassword = &hashed
	}

	var user models.User
	query := `
		UPDATE users
		SET
			username = COALESCE($1, username),
			email = COALESCE($2, email),
			password = COALESCE($3, password),
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $4
		RETURNING id, username, email, role, enabled
	`
	err := database.DB.QueryRow(query, req.Username, req.Email, hashedPassword, targetID).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.Role,
		&user.Enabled,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(c, http.StatusNotFound, "User not found")
			return
		}
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolationCode {
			respondError(c, http.StatusConflict, "Username already exists")
			return
		}
		log.Printf("Error updating user %d: %v", targetID, err)
		respondError(c, http.StatusInternalServerError, "Error updating user")
		return
	}

	respondSuccess(c, http.StatusOK, "User updated successfully", user.Summary())
}

// DeleteUser removes a user record. Owned tasks are removed by the
// ON DELETE CASCADE constraint on tasks.user_id.
func DeleteUser(c *gin.Context) {
	targetID, ok := parseUserID(c)
	if !ok {
		return
	}
	if !authorizeUserAccess(c, targetID) {
		return
	}

	result, err := database.DB.Exec(`DELETE FROM users WHERE id = $1`, targetID)
	if err != nil {
		log.Printf("Error deleting user %d: %v", targetID, err)
		respondError(c, http.StatusInternalServerError, "Error deleting user")
		return
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Printf("Error reading delete result for user %d: %v", targetID, err)
		respondError(c, http.StatusInternalServerError, "Error deleting user")
		return
	}
	if rowsAffected == 0 {
		respondError(c, http.StatusNotFound, "User not found")
		return
	}

	respondSuccess(c, http.StatusOK, "User deleted successfully", nil)
}
