package handlers

import (
	"net/http"
	"os"
	"strings"
	"time"
	"todoapi/internal/monitoring"

	"github.com/gin-gonic/gin"
)

var monitoringService *monitoring.Service

// SetMonitoringService registers runtime monitoring service for handlers.
func SetMonitoringService(service *monitoring.Service) {
	monitoringService = service
}

func getMonitoringService() *monitoring.Service {
	if monitoringService == nil {
		monitoringService = monitoring.NewService(time.Now())
	}
	return monitoringService
}

func checkMonitoringToken(c *gin.Context) bool {
	expected := strings.TrimSpace(os.Getenv("MONITORING_API_KEY"))
	if expected == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Monitoring API is disabled"})
		return false
	}

	provided := strings.TrimSpace(c.GetHeader("X-Monitoring-Key"))
	if provided == "" || provided != expected {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid monitoring key"})
		return false
	}
	return true
}

func MonitorStatus(c *gin.Context) {
	if !checkMonitoringToken(c) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"text": getMonitoringService().StatusText()})
}

func MonitorConnections(c *gin.Context) {
	if !checkMonitoringToken(c) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"text": getMonitoringService().ConnectionsText()})
}

func MonitorRuntime(c *gin.Context) {
	if !checkMonitoringToken(c) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"text": getMonitoringService().RuntimeText()})
}

func MonitorUsers(c *gin.Context) {
	if !checkMonitoringToken(c) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"text": getMonitoringService().UsersText()})
}

func MonitorAll(c *gin.Context) {
	if !checkMonitoringToken(c) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"text": getMonitoringService().AllText()})
}

func MonitorSnapshot(c *gin.Context) {
	if !checkMonitoringToken(c) {
		return
	}
	c.JSON(http.StatusOK, getMonitoringService().Snapshot())
}

func MonitorHelp(c *gin.Context) {
	if !checkMonitoringToken(c) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"text": getMonitoringService().HelpText()})
}
