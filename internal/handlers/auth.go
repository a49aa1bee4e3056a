package handlers

import (
	"database/sql"
	"errors"
	"log"
	"net/http"
	"strings"
	"todoapi/internal/database"
	"todoapi/internal/models"
	"todoapi/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
)

const uniqueViolationCode = "23505"

var errDuplicateUsername = errors.New("username already exists")

type validationError struct {
	msg string
}

func (e validationError) Error() string {
	return e.msg
}

// createUserAccount is the single user-creation path shared by
// /api/auth/register and /api/users/register. Both endpoints must apply the
// same duplicate check and password hashing.
func createUserAccount(req models.RegisterRequest) (*models.User, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, validationError{"Username is required"}
	}
	if len(username) > 50 {
		return nil, validationError{"Username cannot exceed 50 characters"}
	}
	if err := utils.ValidatePassword(req.Password); err != nil {
		return nil, validationError{err.Error()}
	}

	email := strings.TrimSpace(req.Email)
	if email == "" {
		email = username + "@example.com"
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username: username,
		Email:    email,
		Role:     models.RoleUser,
		Enabled:  true,
	}

	query := `
		INSERT INTO users (username, email, password, role, enabled)
		VALUES ($1, $2, $3, $4, TRUE)
		RETURNING id, created_at, updated_at
	`
	err = database.DB.QueryRow(query, user.Username, user.Email, hashedPassword, user.Role).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolationCode {
			return nil, errDuplicateUsername
		}
		return nil, err
	}

	return &user, nil
}

// Register handles user registration and issues a token for the new account.
func Register(c *gin.Context) {
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

	token, err := utils.GenerateToken(user.Username)
	if err != nil {
		log.Printf("Error generating token for %q: %v", user.Username, err)
		respondError(c, http.StatusInternalServerError, "Error generating token")
		return
	}

	respondSuccess(c, http.StatusCreated, "User registered successfully", gin.H{
		"token":      token,
		"token_type": "Bearer",
		"user":       user.Summary(),
	})
}

// Login verifies credentials and issues a fresh token. Unknown usernames and
// wrong passwords produce the identical response so usernames cannot be
// enumerated.
func Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Username and password are required")
		return
	}

	var user models.User
	query := `SELECT id, username, email, password, role, enabled FROM users WHERE username = $1`
	err := database.DB.QueryRow(query, strings.TrimSpace(req.Username)).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.Password,
		&user.Role,
		&user.Enabled,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(c, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		log.Printf("Error querying user for login: %v", err)
		respondError(c, http.StatusInternalServerError, "Error logging in")
		return
	}

	if !utils.CheckPasswordHash(req.Password, user.Password) {
		respondError(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	if !user.Enabled {
		respondError(c, http.StatusUnauthorized, "Account is disabled")
		return
	}

	token, err := utils.GenerateToken(user.Username)
	if err != nil {
		log.Printf("Error generating token for %q: %v", user.Username, err)
		respondError(c, http.StatusInternalServerError, "Error generating token")
		return
	}

	respondSuccess(c, http.StatusOK, "Login successful", gin.H{
		"token":      token,
		"token_type": "Bearer",
		"user":       user.Summary(),
	})
}
