package http

import (
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// SetupRouter creates and configures the Gin router.
func SetupRouter(svc Services) *gin.Engine {
	router := gin.Default()

	// Setup CORS middleware.
	corsConfig := cors.DefaultConfig()

	// Get allowed origins from environment variable.
	// Default to allow all origins if not specified.
	allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
	if allowedOrigins != "" {
		corsConfig.AllowOrigins = strings.Split(allowedOrigins, ",")
	} else {
		corsConfig.AllowAllOrigins = true
	}

	router.Use(cors.New(corsConfig))

	handler := NewHandler(svc)

	// API v1 routes.
	v1 := router.Group("/v1")
	v1.GET("/calendar", handler.GetCalendar)
	v1.GET("/files", handler.GetFiles)
	v1.GET("/coefficients/:name", handler.GetCoefficient)
	v1.GET("/datasets/summary", handler.GetDatasetSummary)
	v1.GET("/grid/nearest", handler.GetNearest)

	// Health check.
	router.GET("/health", handler.HealthCheck)

	return router
}
