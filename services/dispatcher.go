package services

import (
	"context"
	"log"

	"telefetch/types"
)

// Dispatcher runs queued tasks on a bounded worker pool
type Dispatcher interface {
	Start()
	Submit(task *types.DownloadTask)
}

// dispatcher feeds submitted tasks to maxWorkers goroutines ranging over a
// buffered channel: first-submitted, first-scheduled when a slot frees.
type dispatcher struct {
	queue      chan *types.DownloadTask
	maxWorkers int
	engine     Engine
}

// NewDispatcher creates a dispatcher sized to maxWorkers concurrent downloads
func NewDispatcher(maxWorkers int, engine Engine) Dispatcher {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &dispatcher{
		queue:      make(chan *types.DownloadTask, 100), // Buffer for 100 tasks
		maxWorkers: maxWorkers,
		engine:     engine,
	}
}

// Start begins processing tasks
func (d *dispatcher) Start() {
	for i := 0; i < d.maxWorkers; i++ {
		go d.worker()
	}
}

// Submit schedules a task to run as soon as a worker is free and never
// blocks the caller. Submissions for the same user are independent and may
// run in parallel up to the worker limit. When the queue buffer is full the
// hand-off moves to a goroutine, so ordering past the buffer is best-effort.
func (d *dispatcher) Submit(task *types.DownloadTask) {
	select {
	case d.queue <- task:
	default:
		log.Printf("Dispatcher queue full, deferring task %s", task.ID)
		go func() { d.queue <- task }()
	}
}

// worker processes tasks from the queue
func (d *dispatcher) worker() {
	for task := range d.queue {
		if task.Status() != types.TaskStatusQueued {
			continue
		}
		d.engine.Run(context.Background(), task)
	}
}
