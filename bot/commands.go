package bot

import (
	"fmt"
	"log"
	"strings"
	"time"

	"telefetch/types"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) handleCommand(message *tgbotapi.Message, userID string) {
	command := message.Command()
	log.Printf("Received /%s command from user %s", command, userID)

	switch command {
	case "start":
		b.state.SetState(userID, StateLoggedIn)
		b.reply(message.Chat.ID, "Forward me a file and I will download it for you.")

	case "help":
		msg := tgbotapi.NewMessage(message.Chat.ID, "🤖 Telefetch - Help Menu\n\nChoose a category below to learn more:")
		msg.ReplyMarkup = helpKeyboard()
		if _, err := b.api.Send(msg); err != nil {
			log.Printf("Failed to send help menu to user %s: %v", userID, err)
		}

	case "status":
		b.sendStatus(message.Chat.ID, userID)

	default:
		b.reply(message.Chat.ID, "Unknown command. Use /help for a list of commands.")
	}
}

// sendStatus sends the download manager overview with management buttons
func (b *Bot) sendStatus(chatID int64, userID string) {
	counts := b.registry.Counts(userID)
	if counts.Total() == 0 {
		msg := tgbotapi.NewMessage(chatID, "📊 Download Manager\n\nNo downloads in queue.\nForward a file to start downloading!")
		msg.ReplyMarkup = refreshKeyboard()
		if _, err := b.api.Send(msg); err != nil {
			log.Printf("Failed to send status to user %s: %v", userID, err)
		}
		return
	}

	infos := make([]types.TaskInfo, 0, counts.Total())
	for _, task := range b.registry.List(userID) {
		infos = append(infos, task.Snapshot())
	}

	msg := tgbotapi.NewMessage(chatID, buildStatusText(infos, counts))
	msg.ReplyMarkup = statusKeyboard(counts)
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Failed to send status to user %s: %v", userID, err)
	}
}

// maxActiveShown caps how many active downloads the status text lists
const maxActiveShown = 5

// buildStatusText renders the download manager overview: overall progress
// across running tasks, per-status counters, and detail lines for the first
// few active downloads.
func buildStatusText(infos []types.TaskInfo, counts types.StatusCounts) string {
	var totalDownloaded, totalSize int64
	for _, info := range infos {
		if info.Status == types.TaskStatusDownloading {
			totalDownloaded += info.Downloaded
			totalSize += info.Total
		}
	}
	overallProgress := 0.0
	if totalSize > 0 {
		overallProgress = float64(totalDownloaded) / float64(totalSize) * 100
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 Download Manager\n\n")
	fmt.Fprintf(&sb, "📈 Overall Progress: %.1f%%\n", overallProgress)
	fmt.Fprintf(&sb, "📦 Queue Status:\n")
	fmt.Fprintf(&sb, "• ⏳ Queued: %d\n", counts.Queued)
	fmt.Fprintf(&sb, "• 📥 Downloading: %d\n", counts.Downloading)
	fmt.Fprintf(&sb, "• ✅ Completed: %d\n", counts.Completed)
	fmt.Fprintf(&sb, "• ❌ Failed: %d\n\n", counts.Failed)
	fmt.Fprintf(&sb, "📋 Active Downloads:\n")

	active := 0
	for _, info := range infos {
		if info.Status != types.TaskStatusQueued && info.Status != types.TaskStatusDownloading {
			continue
		}
		active++
		if active > maxActiveShown {
			continue
		}

		switch info.Status {
		case types.TaskStatusQueued:
			fmt.Fprintf(&sb, "%d. ⏳ %s - Waiting in queue\n", active, info.FileName)
		case types.TaskStatusDownloading:
			downloadedMB := float64(info.Downloaded) / (1024 * 1024)
			totalMB := float64(info.Total) / (1024 * 1024)
			elapsed := time.Since(info.StartTime).Seconds()
			speed := 0.0
			if elapsed > 0 {
				speed = float64(info.Downloaded) / elapsed
			}

			fmt.Fprintf(&sb, "%d. 📥 %s\n", active, info.FileName)
			fmt.Fprintf(&sb, "   Progress: %.1f%%\n", info.Progress)
			fmt.Fprintf(&sb, "   Speed: %.1f MB/s\n", speed/(1024*1024))
			fmt.Fprintf(&sb, "   Downloaded: %.1f MB / %.1f MB\n", downloadedMB, totalMB)
			if speed > 0 && info.Total > 0 {
				etaMinutes := (float64(info.Total-info.Downloaded) / speed) / 60
				fmt.Fprintf(&sb, "   ETA: %.1f min\n", etaMinutes)
			}
		}
	}

	if active > maxActiveShown {
		fmt.Fprintf(&sb, "... and %d more downloads\n", active-maxActiveShown)
	}

	return sb.String()
}
