package handlers

import (
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"telefetch/config"
	"telefetch/services"

	"github.com/gin-gonic/gin"
)

// FileHandler handles downloaded-file listing and serving endpoints
type FileHandler struct {
	library services.LibraryService
}

// NewFileHandler creates a new file handler
func NewFileHandler(library services.LibraryService) *FileHandler {
	return &FileHandler{
		library: library,
	}
}

// ListFiles returns all files under the download root
func (h *FileHandler) ListFiles(c *gin.Context) {
	downloadLocation := config.GetDownloadLocation()

	files, err := h.library.ScanFiles(downloadLocation)
	if err != nil {
		log.Printf("Error scanning downloaded files: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "failed to scan files",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"files": files,
		"count": len(files),
	})
}

// ServeFile serves a downloaded file from the download root
func (h *FileHandler) ServeFile(c *gin.Context) {
	requestedPath := c.Param("filepath")
	requestedPath = strings.TrimPrefix(requestedPath, "/")

	// Security: Validate file path
	if err := h.library.ValidateFilePath(requestedPath); err != nil {
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "path security violation",
			"details": err.Error(),
		})
		return
	}

	downloadLocation := config.GetDownloadLocation()
	fullPath := filepath.Join(downloadLocation, requestedPath)

	// Security: Ensure resolved path is within download location
	absDownloadPath, err := filepath.Abs(downloadLocation)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "server configuration error",
		})
		return
	}
	absRequestPath, err := filepath.Abs(fullPath)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid file path",
		})
		return
	}
	if !strings.HasPrefix(absRequestPath, absDownloadPath) {
		c.JSON(http.StatusForbidden, gin.H{
			"error": "path traversal not allowed",
		})
		return
	}

	fileInfo, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "file not found",
				"path":  requestedPath,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "file access error",
			"details": err.Error(),
		})
		return
	}
	if fileInfo.IsDir() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "path is a directory, not a file",
		})
		return
	}

	c.Header("Content-Type", h.library.GetContentType(requestedPath))
	c.Header("Content-Length", strconv.FormatInt(fileInfo.Size(), 10))
	c.File(fullPath)
}
