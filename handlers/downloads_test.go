package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"telefetch/services"
	"telefetch/types"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// nopSubmitter feeds the real registry without running anything
type nopSubmitter struct{}

func (nopSubmitter) Submit(task *types.DownloadTask) {}

type testRef struct {
	name string
	size int64
}

func (r testRef) Name() string { return r.name }
func (r testRef) Size() int64  { return r.size }

func setupDownloadRouter(registry services.TaskRegistry) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewDownloadHandler(registry, nil)

	r := gin.New()
	r.GET("/api/downloads/:userId", handler.ListDownloads)
	r.POST("/api/downloads/:userId/clear", handler.ClearCompleted)
	r.POST("/api/downloads/:userId/retry", handler.RetryFailed)
	return r
}

func TestListDownloads(t *testing.T) {
	registry := services.NewTaskRegistry(nopSubmitter{})
	registry.Queue("user1", testRef{name: "a.mp3", size: 100}, "/tmp/a.mp3")
	registry.Queue("user1", testRef{name: "b.mp3", size: 200}, "/tmp/b.mp3").Complete()

	router := setupDownloadRouter(registry)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/downloads/user1", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Downloads []types.TaskInfo   `json:"downloads"`
		Counts    types.StatusCounts `json:"counts"`
		Total     int                `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	assert.Equal(t, 2, response.Total)
	require.Len(t, response.Downloads, 2)
	assert.Equal(t, "a.mp3", response.Downloads[0].FileName)
	assert.Equal(t, types.TaskStatusQueued, response.Downloads[0].Status)
	assert.Equal(t, types.TaskStatusCompleted, response.Downloads[1].Status)
	assert.Equal(t, 1, response.Counts.Queued)
	assert.Equal(t, 1, response.Counts.Completed)
}

func TestListDownloadsUnknownUser(t *testing.T) {
	registry := services.NewTaskRegistry(nopSubmitter{})
	router := setupDownloadRouter(registry)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/downloads/nobody", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, float64(0), response["total"])
	assert.NotNil(t, response["downloads"])
}

func TestClearCompletedEndpoint(t *testing.T) {
	registry := services.NewTaskRegistry(nopSubmitter{})
	registry.Queue("user1", testRef{name: "a"}, "/tmp/a").Complete()
	registry.Queue("user1", testRef{name: "b"}, "/tmp/b")

	router := setupDownloadRouter(registry)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/downloads/user1/clear", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, float64(1), response["cleared"])
	assert.Len(t, registry.List("user1"), 1)
}

func TestRetryFailedEndpoint(t *testing.T) {
	registry := services.NewTaskRegistry(nopSubmitter{})
	task := registry.Queue("user1", testRef{name: "a"}, "/tmp/a")
	task.Fail("boom")

	router := setupDownloadRouter(registry)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/downloads/user1/retry", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, float64(1), response["retried"])
	assert.Equal(t, types.TaskStatusQueued, task.Status())
}
