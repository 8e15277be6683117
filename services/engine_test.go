package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"telefetch/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingNotifier captures every notification the engine emits
type recordingNotifier struct {
	mu   sync.Mutex
	msgs []string
}

func (n *recordingNotifier) Notify(userID, message string, bypassCooldown bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, message)
}

func (n *recordingNotifier) countContaining(substr string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	count := 0
	for _, msg := range n.msgs {
		if strings.Contains(msg, substr) {
			count++
		}
	}
	return count
}

// staticResolver answers every lookup with one chat
type staticResolver struct {
	chatID int64
	known  bool
}

func (r staticResolver) ResolveChat(userID string) (int64, bool) {
	return r.chatID, r.known
}

// scriptedFetcher replays a fixed progress sequence and outcome
type scriptedFetcher struct {
	progress [][2]int64
	path     string
	err      error
	// when set, the fetcher returns destPath instead of path
	echoDest bool
}

func (f *scriptedFetcher) Fetch(ctx context.Context, ref types.FileRef, destPath string, onProgress ProgressFunc) (string, error) {
	for _, p := range f.progress {
		onProgress(p[0], p[1])
	}
	if f.err != nil {
		return "", f.err
	}
	if f.echoDest {
		return destPath, nil
	}
	return f.path, nil
}

func newEngineTask(ref types.FileRef) *types.DownloadTask {
	return types.NewDownloadTask("task1", "user1", ref, "/tmp/song.flac")
}

func TestEngineRunSuccess(t *testing.T) {
	const total = int64(1_000_000)
	fetcher := &scriptedFetcher{
		progress: [][2]int64{{0, total}, {250_000, total}, {500_000, total}, {total, total}},
		echoDest: true,
	}
	notifier := &recordingNotifier{}
	engine := NewDownloadEngine(fetcher, notifier, staticResolver{chatID: 42, known: true}, nil, time.Hour)

	task := newEngineTask(stubRef{name: "song.flac", size: total})
	engine.Run(context.Background(), task)

	assert.Equal(t, types.TaskStatusCompleted, task.Status())
	downloaded, gotTotal := task.Progress()
	assert.Equal(t, total, downloaded)
	assert.Equal(t, total, gotTotal)
	assert.Empty(t, task.Err())

	assert.Equal(t, 1, notifier.countContaining("Download Complete"))
	assert.Equal(t, 1, notifier.countContaining("Download Started"))
	assert.Zero(t, notifier.countContaining("Error"))
}

func TestEngineRunFetchError(t *testing.T) {
	fetcher := &scriptedFetcher{err: errors.New("connection reset by peer")}
	notifier := &recordingNotifier{}
	engine := NewDownloadEngine(fetcher, notifier, staticResolver{chatID: 42, known: true}, nil, time.Hour)

	task := newEngineTask(stubRef{name: "song.flac", size: 100})
	engine.Run(context.Background(), task)

	assert.Equal(t, types.TaskStatusFailed, task.Status())
	assert.Contains(t, task.Err(), "reset")

	assert.Equal(t, 1, notifier.countContaining("Download Error"))
	assert.Zero(t, notifier.countContaining("Download Complete"))
}

func TestEngineRunEmptyPathFails(t *testing.T) {
	fetcher := &scriptedFetcher{path: ""}
	notifier := &recordingNotifier{}
	engine := NewDownloadEngine(fetcher, notifier, staticResolver{chatID: 42, known: true}, nil, time.Hour)

	task := newEngineTask(stubRef{name: "song.flac"})
	engine.Run(context.Background(), task)

	assert.Equal(t, types.TaskStatusFailed, task.Status())
	assert.Equal(t, "Download failed", task.Err())
	assert.Equal(t, 1, notifier.countContaining("Download Failed"))
}

func TestEngineRunNoChatFailsTask(t *testing.T) {
	fetcher := &scriptedFetcher{echoDest: true}
	notifier := &recordingNotifier{}
	engine := NewDownloadEngine(fetcher, notifier, staticResolver{known: false}, nil, time.Hour)

	task := newEngineTask(stubRef{name: "song.flac"})
	engine.Run(context.Background(), task)

	assert.Equal(t, types.TaskStatusFailed, task.Status())
	assert.Equal(t, "no notification target", task.Err())

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	assert.Empty(t, notifier.msgs, "nothing should be sent without a chat")
}

func TestEngineThrottlesProgressTicks(t *testing.T) {
	// 10 rapid callbacks against a one-hour tick interval: only the first
	// one (fresh throttle cursor) may produce a progress notification
	progress := make([][2]int64, 0, 10)
	for i := int64(1); i <= 10; i++ {
		progress = append(progress, [2]int64{i * 100, 1000})
	}
	fetcher := &scriptedFetcher{progress: progress, echoDest: true}
	notifier := &recordingNotifier{}
	engine := NewDownloadEngine(fetcher, notifier, staticResolver{chatID: 42, known: true}, nil, time.Hour)

	task := newEngineTask(stubRef{name: "song.flac", size: 1000})
	engine.Run(context.Background(), task)

	require.Eventually(t, func() bool {
		return notifier.countContaining("Downloading") == 1
	}, time.Second, 10*time.Millisecond)

	// Give stray ticks a chance to land, then confirm none did
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, notifier.countContaining("Downloading"))
}

func TestEngineTicksWhenIntervalElapsed(t *testing.T) {
	progress := [][2]int64{{100, 1000}, {500, 1000}, {1000, 1000}}
	fetcher := &scriptedFetcher{progress: progress, echoDest: true}
	notifier := &recordingNotifier{}
	// Zero interval: every callback is due for a tick
	engine := NewDownloadEngine(fetcher, notifier, staticResolver{chatID: 42, known: true}, nil, 0)

	task := newEngineTask(stubRef{name: "song.flac", size: 1000})
	engine.Run(context.Background(), task)

	require.Eventually(t, func() bool {
		return notifier.countContaining("Downloading") == len(progress)
	}, time.Second, 10*time.Millisecond)
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.0 KB", formatBytes(1024))
	assert.Equal(t, "1.5 MB", formatBytes(3<<20/2))
	assert.Equal(t, "2.0 GB", formatBytes(2<<30))
}

func TestSpeedPerSecond(t *testing.T) {
	assert.Equal(t, int64(100), speedPerSecond(1000, 10*time.Second))
	assert.Zero(t, speedPerSecond(1000, 0))
}
