package services

import (
	"sync"

	"telefetch/types"

	"github.com/google/uuid"
)

// TaskSubmitter schedules a task for execution. Implemented by the Dispatcher.
type TaskSubmitter interface {
	Submit(task *types.DownloadTask)
}

// TaskRegistry interface defines the methods for managing download tasks
type TaskRegistry interface {
	Queue(userID string, ref types.FileRef, savePath string) *types.DownloadTask
	List(userID string) []*types.DownloadTask
	Counts(userID string) types.StatusCounts
	ClearCompleted(userID string) int
	RetryFailed(userID string) int
}

// taskRegistry owns the per-user download lists. List mutation (append on
// queue, filter on clear, reset on retry) is serialized by the registry
// mutex so a concurrent queue+clear for the same user cannot lose a task.
type taskRegistry struct {
	tasks      map[string][]*types.DownloadTask
	mu         sync.RWMutex
	dispatcher TaskSubmitter
}

// NewTaskRegistry creates a new task registry
func NewTaskRegistry(dispatcher TaskSubmitter) TaskRegistry {
	return &taskRegistry{
		tasks:      make(map[string][]*types.DownloadTask),
		dispatcher: dispatcher,
	}
}

// Queue appends a new queued task to the user's list and hands it to the
// dispatcher. Never blocks on the transfer itself. Save paths are not
// checked for uniqueness; callers that care pick a unique path up front.
func (r *taskRegistry) Queue(userID string, ref types.FileRef, savePath string) *types.DownloadTask {
	task := types.NewDownloadTask(uuid.New().String(), userID, ref, savePath)

	r.mu.Lock()
	r.tasks[userID] = append(r.tasks[userID], task)
	r.mu.Unlock()

	r.dispatcher.Submit(task)
	return task
}

// List returns the user's tasks in queue order. Empty slice for unknown
// users, never nil.
func (r *taskRegistry) List(userID string) []*types.DownloadTask {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]*types.DownloadTask, len(r.tasks[userID]))
	copy(list, r.tasks[userID])
	return list
}

// Counts returns per-status task counters for a user
func (r *taskRegistry) Counts(userID string) types.StatusCounts {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var counts types.StatusCounts
	for _, task := range r.tasks[userID] {
		switch task.Status() {
		case types.TaskStatusQueued:
			counts.Queued++
		case types.TaskStatusDownloading:
			counts.Downloading++
		case types.TaskStatusCompleted:
			counts.Completed++
		case types.TaskStatusFailed:
			counts.Failed++
		}
	}
	return counts
}

// ClearCompleted removes completed tasks from the user's list, preserving
// the order of the rest, and returns the number removed
func (r *taskRegistry) ClearCompleted(userID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.tasks[userID]
	if len(list) == 0 {
		return 0
	}

	kept := list[:0]
	for _, task := range list {
		if task.Status() != types.TaskStatusCompleted {
			kept = append(kept, task)
		}
	}
	cleared := len(list) - len(kept)
	r.tasks[userID] = kept
	return cleared
}

// RetryFailed resets every failed task back to queued and resubmits it
// through the regular dispatch path, returning the number retried
func (r *taskRegistry) RetryFailed(userID string) int {
	r.mu.Lock()
	var retried []*types.DownloadTask
	for _, task := range r.tasks[userID] {
		if task.Status() == types.TaskStatusFailed {
			task.ResetForRetry()
			retried = append(retried, task)
		}
	}
	r.mu.Unlock()

	// Submit outside the registry lock; a retried task competes for a
	// worker slot like any new task.
	for _, task := range retried {
		r.dispatcher.Submit(task)
	}
	return len(retried)
}
