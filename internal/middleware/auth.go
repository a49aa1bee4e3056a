package middleware

import (
	"database/sql"
	"errors"
	"log"
	"net/http"
	"strings"
	"todoapi/internal/database"
	"todoapi/internal/utils"

	"github.com/gin-gonic/gin"
)

const (
	// UserIDContextKey holds the resolved numeric id of the caller.
	UserIDContextKey = "user_id"
	// UserRoleContextKey holds the caller's role.
	UserRoleContextKey = "user_role"
)

// AuthMiddleware verifies the bearer token and resolves the caller's identity.
// The token carries only the username; the numeric id is looked up per
// request so tokens issued before a user was deleted stop resolving.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Authorization header is required",
			})
			c.Abort()
			return
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Authorization header must be in the format 'Bearer {token}'",
			})
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(tokenParts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Invalid token",
			})
			c.Abort()
			return
		}

		var (
			userID  int
			role    string
			enabled bool
		)
		err = database.DB.QueryRow(
			`SELECT id, role, enabled FROM users WHERE username = $1`,
			claims.Username,
		).Scan(&userID, &role, &enabled)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				c.JSON(http.StatusNotFound, gin.H{
					"success": false,
					"message": "User not found",
				})
				c.Abort()
				return
			}
			log.Printf("Error resolving token user %q: %v", claims.Username, err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Error resolving user",
			})
			c.Abort()
			return
		}

		if !enabled {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Account is disabled",
			})
			c.Abort()
			return
		}

		c.Set(UserIDContextKey, userID)
		c.Set(UserRoleContextKey, role)
		c.Next()
	}
}
