package handlers

import (
	"net/http"
	"todoapi/internal/database"

	"github.com/gin-gonic/gin"
)

// HealthCheck reports liveness, including database reachability.
func HealthCheck(c *gin.Context) {
	if err := database.DB.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "degraded",
			"db":     "unreachable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "Todo API",
		"version": "0.1.0",
		"status":  "operational",
	})
}
