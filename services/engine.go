package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"telefetch/types"
	"telefetch/websocket"
)

// ProgressFunc reports transfer progress. received must be monotonically
// non-decreasing across calls; total may be 0 when unknown.
type ProgressFunc func(received, total int64)

// Fetcher transfers the referenced file to destPath, invoking onProgress
// zero or more times along the way. It returns the final path of the
// downloaded file; an empty path with a nil error means the transfer
// produced nothing.
type Fetcher interface {
	Fetch(ctx context.Context, ref types.FileRef, destPath string, onProgress ProgressFunc) (string, error)
}

// Engine drives a single task from queued to a terminal state
type Engine interface {
	Run(ctx context.Context, task *types.DownloadTask)
}

// downloadEngine updates the task ledger on every progress callback and
// emits throttled progress ticks plus exactly one terminal notification per
// run. Notifications are best-effort and never change a recorded status.
type downloadEngine struct {
	fetcher      Fetcher
	notifier     Notifier
	resolver     ChatResolver
	hub          websocket.Hub
	tickInterval time.Duration
}

// NewDownloadEngine creates an engine. hub may be nil when the status API
// is not running.
func NewDownloadEngine(fetcher Fetcher, notifier Notifier, resolver ChatResolver, hub websocket.Hub, tickInterval time.Duration) Engine {
	return &downloadEngine{
		fetcher:      fetcher,
		notifier:     notifier,
		resolver:     resolver,
		hub:          hub,
		tickInterval: tickInterval,
	}
}

// Run executes one task to a terminal state. Every exit path records either
// completed or failed; nothing propagates to the caller.
func (e *downloadEngine) Run(ctx context.Context, task *types.DownloadTask) {
	task.MarkDownloading()

	if task.Ref != nil {
		task.SetTotal(task.Ref.Size())
	}

	if _, ok := e.resolver.ResolveChat(task.UserID); !ok {
		// Without an addressable chat there is nowhere to report results,
		// so the run counts as a download failure rather than aborting
		// silently.
		log.Printf("No chat found for user %s, failing task %s", task.UserID, task.ID)
		task.Fail("no notification target")
		e.broadcast(task, "error", "", "no notification target")
		return
	}

	_, total := task.Progress()
	e.notifier.Notify(task.UserID, fmt.Sprintf(
		"📥 Download Started!\n\n📁 File: %s\n📊 Size: %s\n\nUse /status to check download progress.",
		task.FileName(), formatBytes(total)), true)
	e.broadcast(task, "status", "", fmt.Sprintf("Started downloading %s", task.FileName()))

	onProgress := func(received, total int64) {
		if task.Update(received, total, e.tickInterval) {
			// Schedule the tick off the transfer goroutine; the ledger lock
			// is never held across a network call.
			go e.sendProgressTick(task)
		}
	}

	finalPath, err := e.fetcher.Fetch(ctx, task.Ref, task.SavePath, onProgress)

	switch {
	case err != nil:
		task.Fail(err.Error())
		log.Printf("Download failed for %s: %v", task.SavePath, err)
		e.notifier.Notify(task.UserID, fmt.Sprintf(
			"❌ Download Error!\n\n📁 File: %s\n🔍 Error: %s\n\nUse /status to retry failed downloads.",
			task.FileName(), err.Error()), false)
		e.broadcast(task, "error", "", err.Error())

	case finalPath == "":
		task.Fail("Download failed")
		log.Printf("Download produced no file for %s", task.SavePath)
		e.notifier.Notify(task.UserID, fmt.Sprintf(
			"❌ Download Failed!\n\n📁 File: %s\n🔍 Error: Download failed\n\nUse /status to retry failed downloads.",
			task.FileName()), false)
		e.broadcast(task, "error", "", "Download failed")

	default:
		task.Complete()
		downloaded, _ := task.Progress()
		elapsed := time.Since(task.StartedAt())
		avgSpeed := speedPerSecond(downloaded, elapsed)
		log.Printf("Download completed: %s in %.1fs", finalPath, elapsed.Seconds())
		e.notifier.Notify(task.UserID, fmt.Sprintf(
			"🎉 Download Complete!\n\n📁 File: %s\n📂 Location: %s\n⏱️ Time: %.1f seconds\n🚀 Avg Speed: %s/s\n📊 Size: %s",
			task.FileName(), finalPath, elapsed.Seconds(), formatBytes(avgSpeed), formatBytes(downloaded)), false)
		e.broadcast(task, "complete", formatSpeed(avgSpeed), fmt.Sprintf("%s download completed", task.FileName()))
	}
}

// sendProgressTick emits one throttled progress update. The message still
// passes through the notifier cooldown, so it may be dropped there.
func (e *downloadEngine) sendProgressTick(task *types.DownloadTask) {
	downloaded, total := task.Progress()
	elapsed := time.Since(task.StartedAt())
	speed := speedPerSecond(downloaded, elapsed)

	percent := 0.0
	if total > 0 {
		percent = float64(downloaded) / float64(total) * 100
	}

	text := fmt.Sprintf("📥 Downloading...\nFile: %s\nProgress: %.1f%%\nSpeed: %s\nDownloaded: %s / %s",
		task.FileName(), percent, formatSpeed(speed), formatBytes(downloaded), formatBytes(total))
	if speed > 0 && total > 0 {
		etaMinutes := float64(total-downloaded) / float64(speed) / 60
		text += fmt.Sprintf("\nETA: %.1f min", etaMinutes)
	}

	e.notifier.Notify(task.UserID, text, false)
	e.broadcast(task, "progress", formatSpeed(speed), "")
}

// broadcast mirrors a task milestone onto the WebSocket hub when one is wired
func (e *downloadEngine) broadcast(task *types.DownloadTask, msgType, speed, message string) {
	if e.hub == nil {
		return
	}
	info := task.Snapshot()
	e.hub.BroadcastProgress(task.UserID, task.ID, msgType, string(info.Status), info.FileName, speed, message, info.Progress)
}

// speedPerSecond returns average bytes/second over the elapsed window
func speedPerSecond(downloaded int64, elapsed time.Duration) int64 {
	if elapsed <= 0 {
		return 0
	}
	return int64(float64(downloaded) / elapsed.Seconds())
}

// formatBytes renders a byte count in human units
func formatBytes(n int64) string {
	const (
		kb = 1 << 10
		mb = 1 << 20
		gb = 1 << 30
	)
	switch {
	case n >= gb:
		return fmt.Sprintf("%.1f GB", float64(n)/gb)
	case n >= mb:
		return fmt.Sprintf("%.1f MB", float64(n)/mb)
	case n >= kb:
		return fmt.Sprintf("%.1f KB", float64(n)/kb)
	default:
		return fmt.Sprintf("%d B", n)
	}
}

// formatSpeed renders a bytes/second rate
func formatSpeed(bytesPerSec int64) string {
	return formatBytes(bytesPerSec) + "/s"
}
