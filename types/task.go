package types

import (
	"path/filepath"
	"sync"
	"time"
)

// TaskStatus represents the current status of a download task
type TaskStatus string

const (
	TaskStatusQueued      TaskStatus = "queued"
	TaskStatusDownloading TaskStatus = "downloading"
	TaskStatusCompleted   TaskStatus = "completed"
	TaskStatusFailed      TaskStatus = "failed"
)

// FileRef describes the remote file a task transfers. Size returns 0 when
// the size is not known up front.
type FileRef interface {
	Name() string
	Size() int64
}

// DownloadTask represents one requested transfer. Progress counters and
// status can be written from the transfer goroutine while being read from
// handlers and the bot, so every mutable field lives behind the task mutex.
type DownloadTask struct {
	ID       string
	UserID   string
	SavePath string
	Ref      FileRef

	mu         sync.Mutex
	status     TaskStatus
	downloaded int64
	total      int64
	err        string
	startTime  time.Time
	lastTick   time.Time
}

// NewDownloadTask creates a task in the queued state
func NewDownloadTask(id, userID string, ref FileRef, savePath string) *DownloadTask {
	return &DownloadTask{
		ID:        id,
		UserID:    userID,
		SavePath:  savePath,
		Ref:       ref,
		status:    TaskStatusQueued,
		startTime: time.Now(),
	}
}

// FileName returns the base name of the save path
func (t *DownloadTask) FileName() string {
	return filepath.Base(t.SavePath)
}

// Status returns the current task status
func (t *DownloadTask) Status() TaskStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Progress returns the downloaded and total byte counters
func (t *DownloadTask) Progress() (downloaded, total int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.downloaded, t.total
}

// Err returns the recorded error message, empty unless the task failed
func (t *DownloadTask) Err() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// StartedAt returns the task start time (reset on retry)
func (t *DownloadTask) StartedAt() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.startTime
}

// MarkDownloading transitions the task out of the queued state
func (t *DownloadTask) MarkDownloading() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = TaskStatusDownloading
}

// SetTotal records the total size once known
func (t *DownloadTask) SetTotal(total int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.total = total
}

// Complete marks the task completed
func (t *DownloadTask) Complete() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = TaskStatusCompleted
}

// Fail marks the task failed with the given error message
func (t *DownloadTask) Fail(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = TaskStatusFailed
	t.err = msg
}

// Update records a progress callback. Both counters are written in one
// critical section so a reader never sees downloaded ahead of a stale total.
// The return value reports whether at least tickInterval has elapsed since
// the last progress notification; when it has, the throttle cursor is
// advanced and the caller should emit a progress tick.
func (t *DownloadTask) Update(downloaded, total int64, tickInterval time.Duration) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.downloaded = downloaded
	t.total = total

	now := time.Now()
	if now.Sub(t.lastTick) >= tickInterval {
		t.lastTick = now
		return true
	}
	return false
}

// ResetForRetry moves a task back to queued: the only backward transition.
// Clears the error, zeroes the downloaded counter and starts a fresh clock.
func (t *DownloadTask) ResetForRetry() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = TaskStatusQueued
	t.downloaded = 0
	t.err = ""
	t.startTime = time.Now()
	t.lastTick = time.Time{}
}

// Snapshot returns a consistent read-only view for handlers and the bot
func (t *DownloadTask) Snapshot() TaskInfo {
	t.mu.Lock()
	defer t.mu.Unlock()

	info := TaskInfo{
		ID:         t.ID,
		UserID:     t.UserID,
		FileName:   filepath.Base(t.SavePath),
		SavePath:   t.SavePath,
		Status:     t.status,
		Downloaded: t.downloaded,
		Total:      t.total,
		Error:      t.err,
		StartTime:  t.startTime,
	}
	if t.total > 0 {
		info.Progress = float64(t.downloaded) / float64(t.total) * 100
	}
	return info
}
