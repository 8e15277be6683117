package bot

import (
	"fmt"
	"testing"
	"time"

	"telefetch/types"

	"github.com/stretchr/testify/assert"
)

func TestBuildStatusTextCounts(t *testing.T) {
	infos := []types.TaskInfo{
		{FileName: "a.mp3", Status: types.TaskStatusQueued},
		{FileName: "b.mp3", Status: types.TaskStatusCompleted},
		{FileName: "c.mp3", Status: types.TaskStatusFailed, Error: "boom"},
	}
	counts := types.StatusCounts{Queued: 1, Completed: 1, Failed: 1}

	text := buildStatusText(infos, counts)

	assert.Contains(t, text, "📊 Download Manager")
	assert.Contains(t, text, "⏳ Queued: 1")
	assert.Contains(t, text, "📥 Downloading: 0")
	assert.Contains(t, text, "✅ Completed: 1")
	assert.Contains(t, text, "❌ Failed: 1")
	assert.Contains(t, text, "a.mp3 - Waiting in queue")
	// Terminal tasks are not listed as active
	assert.NotContains(t, text, "b.mp3")
	assert.NotContains(t, text, "c.mp3")
}

func TestBuildStatusTextDownloadingDetails(t *testing.T) {
	infos := []types.TaskInfo{
		{
			FileName:   "movie.mp4",
			Status:     types.TaskStatusDownloading,
			Downloaded: 50 * 1024 * 1024,
			Total:      100 * 1024 * 1024,
			Progress:   50.0,
			StartTime:  time.Now().Add(-10 * time.Second),
		},
	}
	counts := types.StatusCounts{Downloading: 1}

	text := buildStatusText(infos, counts)

	assert.Contains(t, text, "📥 movie.mp4")
	assert.Contains(t, text, "Progress: 50.0%")
	assert.Contains(t, text, "Speed:")
	assert.Contains(t, text, "Downloaded: 50.0 MB / 100.0 MB")
	assert.Contains(t, text, "ETA:")
	assert.Contains(t, text, "Overall Progress: 50.0%")
}

func TestBuildStatusTextTruncatesActiveList(t *testing.T) {
	var infos []types.TaskInfo
	for i := 0; i < 8; i++ {
		infos = append(infos, types.TaskInfo{
			FileName: fmt.Sprintf("file%d.mp3", i),
			Status:   types.TaskStatusQueued,
		})
	}
	counts := types.StatusCounts{Queued: 8}

	text := buildStatusText(infos, counts)

	assert.Contains(t, text, "file4.mp3")
	assert.NotContains(t, text, "file5.mp3")
	assert.Contains(t, text, "... and 3 more downloads")
}

func TestBuildStatusTextOverallProgressIgnoresQueued(t *testing.T) {
	infos := []types.TaskInfo{
		{FileName: "a", Status: types.TaskStatusQueued, Total: 1000},
		{FileName: "b", Status: types.TaskStatusDownloading, Downloaded: 250, Total: 1000, StartTime: time.Now()},
	}
	counts := types.StatusCounts{Queued: 1, Downloading: 1}

	text := buildStatusText(infos, counts)
	assert.Contains(t, text, "Overall Progress: 25.0%")
}
