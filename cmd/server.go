package cmd

import (
	"log"
	"os"
	"strconv"

	"telefetch/handlers"
	"telefetch/middleware"
	"telefetch/services"
	"telefetch/websocket"

	"github.com/gin-gonic/gin"
)

// StartWebServer starts the status/management API
func StartWebServer(port int, registry services.TaskRegistry, hub websocket.Hub) {
	// Set production mode if not specified
	if mode := os.Getenv("GIN_MODE"); mode != "" {
		gin.SetMode(mode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	library := services.NewLibraryService()

	// Initialize handlers
	downloadHandler := handlers.NewDownloadHandler(registry, hub)
	fileHandler := handlers.NewFileHandler(library)
	healthHandler := handlers.NewHealthHandler()

	// Setup router
	r := gin.New()
	r.Use(gin.Recovery())

	// Apply middleware
	r.Use(middleware.CORS())
	r.Use(middleware.Logging())
	r.Use(middleware.Security())

	// Setup routes
	SetupRoutes(r, downloadHandler, fileHandler, healthHandler)

	// Start server
	portStr := strconv.Itoa(port)
	log.Printf("Telefetch status API starting on port %s", portStr)
	if err := r.Run(":" + portStr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// SetupRoutes configures all the HTTP routes
func SetupRoutes(r *gin.Engine, downloadHandler *handlers.DownloadHandler, fileHandler *handlers.FileHandler, healthHandler *handlers.HealthHandler) {
	// Health check endpoint
	r.GET("/health", healthHandler.HealthCheck)

	// API routes group
	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/status", healthHandler.APIStatus)

		// Download management endpoints
		downloadsGroup := apiGroup.Group("/downloads")
		{
			downloadsGroup.GET("/:userId", downloadHandler.ListDownloads)
			downloadsGroup.POST("/:userId/clear", downloadHandler.ClearCompleted)
			downloadsGroup.POST("/:userId/retry", downloadHandler.RetryFailed)
		}

		// WebSocket endpoints for real-time progress
		wsGroup := apiGroup.Group("/ws")
		{
			// WebSocket endpoint for one user's progress
			wsGroup.GET("/downloads/:userId", downloadHandler.HandleWebSocketConnection)

			// WebSocket endpoint for all download progress
			wsGroup.GET("/downloads", downloadHandler.HandleWebSocketAllConnection)
		}

		// Downloaded file listing and serving
		apiGroup.GET("/files", fileHandler.ListFiles)
		apiGroup.GET("/files/get/*filepath", fileHandler.ServeFile)
	}
}
