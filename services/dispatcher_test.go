package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"telefetch/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingEngine holds every task it receives until released, so tests can
// observe how many run at once
type blockingEngine struct {
	mu      sync.Mutex
	running int
	peak    int
	done    int
	release chan struct{}
}

func newBlockingEngine() *blockingEngine {
	return &blockingEngine{release: make(chan struct{})}
}

func (e *blockingEngine) Run(ctx context.Context, task *types.DownloadTask) {
	task.MarkDownloading()

	e.mu.Lock()
	e.running++
	if e.running > e.peak {
		e.peak = e.running
	}
	e.mu.Unlock()

	<-e.release

	task.Complete()
	e.mu.Lock()
	e.running--
	e.done++
	e.mu.Unlock()
}

func (e *blockingEngine) counts() (running, peak, done int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running, e.peak, e.done
}

func TestDispatcherBoundsConcurrency(t *testing.T) {
	const maxWorkers = 3
	engine := newBlockingEngine()
	d := NewDispatcher(maxWorkers, engine)
	d.Start()

	tasks := make([]*types.DownloadTask, 0, maxWorkers+2)
	for i := 0; i < maxWorkers+2; i++ {
		task := types.NewDownloadTask(fmt.Sprintf("t%d", i), "user1", stubRef{name: "f"}, "/tmp/f")
		tasks = append(tasks, task)
		d.Submit(task)
	}

	// Exactly maxWorkers tasks get a slot; the rest wait in the queue
	require.Eventually(t, func() bool {
		running, _, _ := engine.counts()
		return running == maxWorkers
	}, time.Second, 10*time.Millisecond)

	queued := 0
	for _, task := range tasks {
		if task.Status() == types.TaskStatusQueued {
			queued++
		}
	}
	assert.Equal(t, 2, queued)

	close(engine.release)

	require.Eventually(t, func() bool {
		_, _, done := engine.counts()
		return done == maxWorkers+2
	}, time.Second, 10*time.Millisecond)

	_, peak, _ := engine.counts()
	assert.LessOrEqual(t, peak, maxWorkers)
	for _, task := range tasks {
		assert.Equal(t, types.TaskStatusCompleted, task.Status())
	}
}

// countingEngine records which tasks reach it
type countingEngine struct {
	mu  sync.Mutex
	ran []*types.DownloadTask
}

func (e *countingEngine) Run(ctx context.Context, task *types.DownloadTask) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ran = append(e.ran, task)
}

func TestDispatcherSkipsNonQueuedTasks(t *testing.T) {
	engine := &countingEngine{}
	d := NewDispatcher(1, engine)
	d.Start()

	stale := types.NewDownloadTask("stale", "user1", stubRef{}, "/tmp/a")
	stale.Complete()
	fresh := types.NewDownloadTask("fresh", "user1", stubRef{}, "/tmp/b")

	d.Submit(stale)
	d.Submit(fresh)

	require.Eventually(t, func() bool {
		engine.mu.Lock()
		defer engine.mu.Unlock()
		return len(engine.ran) == 1
	}, time.Second, 10*time.Millisecond)

	engine.mu.Lock()
	defer engine.mu.Unlock()
	assert.Equal(t, "fresh", engine.ran[0].ID)
}

func TestSubmitDoesNotBlockWhenQueueIsFull(t *testing.T) {
	engine := &countingEngine{}
	// Not started: nothing drains the queue while we overfill its buffer
	d := NewDispatcher(1, engine)

	const submissions = 150
	done := make(chan struct{})
	go func() {
		for i := 0; i < submissions; i++ {
			d.Submit(types.NewDownloadTask(fmt.Sprintf("t%d", i), "user1", stubRef{}, "/tmp/f"))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Submit blocked on a full queue")
	}

	// Every submission, deferred or not, still reaches a worker
	d.Start()
	require.Eventually(t, func() bool {
		engine.mu.Lock()
		defer engine.mu.Unlock()
		return len(engine.ran) == submissions
	}, 2*time.Second, 10*time.Millisecond)
}

func TestNewDispatcherClampsWorkerCount(t *testing.T) {
	d := NewDispatcher(0, &countingEngine{})
	require.NotNil(t, d)
	d.Start()

	task := types.NewDownloadTask("t1", "user1", stubRef{}, "/tmp/a")
	d.Submit(task) // must not deadlock with a clamped single worker
}
