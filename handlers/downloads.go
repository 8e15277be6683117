package handlers

import (
	"log"
	"net/http"

	"telefetch/services"
	"telefetch/types"
	"telefetch/websocket"

	"github.com/gin-gonic/gin"
)

// DownloadHandler handles download management endpoints
type DownloadHandler struct {
	registry services.TaskRegistry
	hub      websocket.Hub
}

// NewDownloadHandler creates a new download handler
func NewDownloadHandler(registry services.TaskRegistry, hub websocket.Hub) *DownloadHandler {
	return &DownloadHandler{
		registry: registry,
		hub:      hub,
	}
}

// ListDownloads returns a user's download tasks in queue order plus counters
func (h *DownloadHandler) ListDownloads(c *gin.Context) {
	userID := c.Param("userId")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "user ID is required",
		})
		return
	}

	tasks := h.registry.List(userID)
	downloads := make([]types.TaskInfo, 0, len(tasks))
	for _, task := range tasks {
		downloads = append(downloads, task.Snapshot())
	}

	c.JSON(http.StatusOK, gin.H{
		"downloads": downloads,
		"counts":    h.registry.Counts(userID),
		"total":     len(downloads),
	})
}

// ClearCompleted removes a user's completed downloads
func (h *DownloadHandler) ClearCompleted(c *gin.Context) {
	userID := c.Param("userId")
	cleared := h.registry.ClearCompleted(userID)
	c.JSON(http.StatusOK, gin.H{
		"message": "completed downloads cleared",
		"cleared": cleared,
	})
}

// RetryFailed requeues a user's failed downloads
func (h *DownloadHandler) RetryFailed(c *gin.Context) {
	userID := c.Param("userId")
	retried := h.registry.RetryFailed(userID)
	c.JSON(http.StatusOK, gin.H{
		"message": "failed downloads requeued",
		"retried": retried,
	})
}

// HandleWebSocketConnection handles WebSocket connections for one user's progress
func (h *DownloadHandler) HandleWebSocketConnection(c *gin.Context) {
	userID := c.Param("userId")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user ID is required"})
		return
	}

	upgrader := websocket.GetUpgrader()
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := websocket.NewClient(h.hub, conn, userID)
	h.hub.RegisterClient(client)

	// Start client pumps
	client.StartPumps()
}

// HandleWebSocketAllConnection handles WebSocket connections for all progress
func (h *DownloadHandler) HandleWebSocketAllConnection(c *gin.Context) {
	upgrader := websocket.GetUpgrader()
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := websocket.NewClient(h.hub, conn, "all")
	h.hub.RegisterClient(client)

	// Start client pumps
	client.StartPumps()
}
