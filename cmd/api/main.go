package main

import (
	"log"
	"os"
	"strings"
	"time"
	"todoapi/internal/database"
	"todoapi/internal/handlers"
	"todoapi/internal/middleware"
	"todoapi/internal/monitoring"
	"todoapi/internal/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	if err := utils.EnsureJWTReady(); err != nil {
		log.Fatal("JWT configuration error: ", err)
	}

	database.InitDB()
	defer database.CloseDB()
	database.CreateTables()

	handlers.SetMonitoringService(monitoring.NewService(time.Now()))

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(monitoring.RequestMetricsMiddleware())

	router.GET("/health", handlers.HealthCheck)
	router.GET("/api/status", handlers.Status)

	api := router.Group("/api")

	api.POST("/auth/register", handlers.Register)
	api.POST("/auth/login", handlers.Login)
	api.POST("/users/register", handlers.RegisterUser)

	monitor := api.Group("/monitor")
	monitor.GET("/status", handlers.MonitorStatus)
	monitor.GET("/connections", handlers.MonitorConnections)
	monitor.GET("/runtime", handlers.MonitorRuntime)
	monitor.GET("/users", handlers.MonitorUsers)
	monitor.GET("/all", handlers.MonitorAll)
	monitor.GET("/snapshot", handlers.MonitorSnapshot)
	monitor.GET("/help", handlers.MonitorHelp)

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware())

	tasks := protected.Group("/tasks")
	tasks.POST("", handlers.CreateTask)
	tasks.GET("", handlers.ListTasks)
	tasks.GET("/stats/completed-count", handlers.GetCompletedTasksCount)
	tasks.DELETE("/completed", handlers.DeleteCompletedTasks)
	tasks.GET("/:task_id", handlers.GetTask)
	tasks.PUT("/:task_id", handlers.UpdateTask)
	tasks.DELETE("/:task_id", handlers.DeleteTask)

	users := protected.Group("/users")
	users.GET("/:user_id", handlers.GetUser)
	users.PUT("/:user_id", handlers.UpdateUser)
	users.DELETE("/:user_id", handlers.DeleteUser)

	addr := ":" + serverPort()
	log.Printf("Todo API starting on %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatal("Server failed to start:", err)
	}
}

func serverPort() string {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		return "8080"
	}
	return port
}
