package bot

import (
	"fmt"
	"log"
	"path/filepath"
	"strconv"
	"strings"

	"telefetch/types"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) handleCallbackQuery(callback *tgbotapi.CallbackQuery) {
	if callback.From == nil || callback.Message == nil {
		return
	}
	userID := strconv.FormatInt(callback.From.ID, 10)

	if !b.isAllowed(userID) {
		b.answerCallback(callback.ID, "You are not allowed to use this bot.")
		return
	}

	b.state.SetChatID(userID, callback.Message.Chat.ID)

	data := callback.Data
	log.Printf("Received callback %q from user %s", data, userID)

	switch {
	case strings.HasPrefix(data, "dir:"):
		b.handleBrowse(callback, userID, strings.TrimPrefix(data, "dir:"))
	case strings.HasPrefix(data, "select:"):
		b.handleSelect(callback, userID, strings.TrimPrefix(data, "select:"))
	case data == "skip_rename":
		b.handleSkipRename(callback, userID)
	case data == "rename_file":
		b.handleRenamePrompt(callback, userID)
	case strings.HasPrefix(data, "create_folder:"):
		b.handleCreateFolderPrompt(callback, userID, strings.TrimPrefix(data, "create_folder:"))
	case data == "cancel":
		b.handleCancel(callback, userID)
	case data == "status_refresh":
		b.handleStatusRefresh(callback, userID)
	case data == "clear_completed":
		b.handleClearCompleted(callback, userID)
	case data == "retry_failed":
		b.handleRetryFailed(callback, userID)
	case data == "pause_all":
		b.answerCallback(callback.ID, "⏸️ Pause functionality coming soon!")
	case data == "resume_all":
		b.answerCallback(callback.ID, "▶️ Resume functionality coming soon!")
	case data == "help_back":
		b.answerCallback(callback.ID, "")
		b.edit(callback.Message.Chat.ID, callback.Message.MessageID,
			"🤖 Telefetch - Help Menu\n\nChoose a category below to learn more:", helpKeyboard())
	case strings.HasPrefix(data, "help_"):
		b.answerCallback(callback.ID, "")
		b.edit(callback.Message.Chat.ID, callback.Message.MessageID,
			helpTopicText(data), backToHelpKeyboard())
	default:
		b.answerCallback(callback.ID, "Unknown action")
	}
}

// handleBrowse re-renders the directory picker at the decoded path
func (b *Bot) handleBrowse(callback *tgbotapi.CallbackQuery, userID, code string) {
	target := b.paths.DecodePath(code)
	b.state.SetBrowsePath(userID, target)
	// Also the Cancel target of the folder prompt, so browsing always
	// restores the picking state
	b.state.SetState(userID, StateSelectingDirectory)

	keyboard, err := directoryKeyboard(b.paths, target)
	if err != nil {
		log.Printf("Failed to list %s for user %s: %v", target, userID, err)
		b.answerCallback(callback.ID, "❌ Could not read that directory")
		return
	}

	b.answerCallback(callback.ID, "")

	pending := b.state.PendingMedia(userID)
	text := "📁 Choose a directory:"
	if pending != nil {
		text = fmt.Sprintf("📁 Choose where to save %s:", pending.FileName)
	}
	b.edit(callback.Message.Chat.ID, callback.Message.MessageID, text, keyboard)
}

// handleSelect records the chosen directory and offers a rename first
func (b *Bot) handleSelect(callback *tgbotapi.CallbackQuery, userID, code string) {
	pending := b.state.PendingMedia(userID)
	if pending == nil {
		b.answerCallback(callback.ID, "❌ No file waiting for a directory")
		return
	}

	dir := b.paths.DecodePath(code)
	b.state.SetSelectedDir(userID, dir)
	b.state.SetState(userID, StateAwaitingFilename)

	b.answerCallback(callback.ID, "")
	b.edit(callback.Message.Chat.ID, callback.Message.MessageID,
		fmt.Sprintf("📁 Directory selected: %s\n\nDo you want to rename %s?", dir, pending.FileName),
		renameKeyboard())
}

// handleSkipRename queues the pending file under its original name
func (b *Bot) handleSkipRename(callback *tgbotapi.CallbackQuery, userID string) {
	savePath, ok := b.queuePending(userID, "")
	if !ok {
		b.answerCallback(callback.ID, "❌ No file waiting for a directory")
		return
	}

	b.answerCallback(callback.ID, "✅ Download queued!")
	edit := tgbotapi.NewEditMessageText(callback.Message.Chat.ID, callback.Message.MessageID,
		fmt.Sprintf("✅ Queued %s\n📁 Saving to: %s\n\nUse /status to watch the progress.",
			filepath.Base(savePath), filepath.Dir(savePath)))
	if _, err := b.api.Send(edit); err != nil {
		log.Printf("Failed to edit confirmation for user %s: %v", userID, err)
	}
}

// handleRenamePrompt asks for the new filename as a text message
func (b *Bot) handleRenamePrompt(callback *tgbotapi.CallbackQuery, userID string) {
	if b.state.PendingMedia(userID) == nil {
		b.answerCallback(callback.ID, "❌ No file waiting for a directory")
		return
	}

	b.state.SetState(userID, StateAwaitingFilename)
	b.answerCallback(callback.ID, "")
	edit := tgbotapi.NewEditMessageText(callback.Message.Chat.ID, callback.Message.MessageID,
		"✏️ Please enter the new filename (including extension):")
	if _, err := b.api.Send(edit); err != nil {
		log.Printf("Failed to edit rename prompt for user %s: %v", userID, err)
	}
}

// handleCreateFolderPrompt asks for the new folder's name as a text message
func (b *Bot) handleCreateFolderPrompt(callback *tgbotapi.CallbackQuery, userID, code string) {
	parent := b.paths.DecodePath(code)
	b.state.SetCreateFolderPath(userID, parent)
	b.state.SetState(userID, StateAwaitingFolderName)

	b.answerCallback(callback.ID, "")
	edit := tgbotapi.NewEditMessageText(callback.Message.Chat.ID, callback.Message.MessageID,
		fmt.Sprintf("📁 Creating new folder in: %s\n\nPlease enter the name for the new folder:", parent))
	keyboard := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⬅️ Cancel", "dir:"+code),
	))
	edit.ReplyMarkup = &keyboard
	if _, err := b.api.Send(edit); err != nil {
		log.Printf("Failed to edit folder prompt for user %s: %v", userID, err)
	}
}

// queuePending queues the stashed attachment into the selected directory,
// optionally under a user-supplied filename. Returns the save path.
func (b *Bot) queuePending(userID, customName string) (string, bool) {
	pending := b.state.PendingMedia(userID)
	if pending == nil {
		return "", false
	}

	dir := b.state.SelectedDir(userID)
	if dir == "" || !b.paths.WithinRoot(dir) {
		dir = b.paths.Root()
	}
	if err := b.paths.EnsureDirectory(dir); err != nil {
		log.Printf("Failed to create %s for user %s: %v", dir, userID, err)
		return "", false
	}

	name := finalFilename(pending.FileName, customName)
	savePath := b.paths.UniqueSavePath(dir, name)
	task := b.registry.Queue(userID, pending, savePath)

	b.state.ClearPendingMedia(userID)
	b.state.SetSelectedDir(userID, "")
	b.state.SetState(userID, StateLoggedIn)

	log.Printf("Queued task %s for user %s -> %s", task.ID, userID, savePath)
	return savePath, true
}

// finalFilename applies a user-supplied rename, falling back to the
// original extension when the new name has none
func finalFilename(original, custom string) string {
	custom = strings.TrimSpace(custom)
	if custom == "" {
		return original
	}
	if filepath.Ext(custom) != "" {
		return custom
	}
	return custom + filepath.Ext(original)
}

func (b *Bot) handleCancel(callback *tgbotapi.CallbackQuery, userID string) {
	b.state.ClearPendingMedia(userID)
	b.state.SetSelectedDir(userID, "")
	b.state.SetState(userID, StateLoggedIn)

	b.answerCallback(callback.ID, "Cancelled")
	edit := tgbotapi.NewEditMessageText(callback.Message.Chat.ID, callback.Message.MessageID,
		"❌ Download cancelled.")
	if _, err := b.api.Send(edit); err != nil {
		log.Printf("Failed to edit cancel message for user %s: %v", userID, err)
	}
}

// handleStatusRefresh redraws the status message in place
func (b *Bot) handleStatusRefresh(callback *tgbotapi.CallbackQuery, userID string) {
	b.answerCallback(callback.ID, "🔄 Refreshed")
	b.editStatus(callback.Message.Chat.ID, callback.Message.MessageID, userID)
}

func (b *Bot) handleClearCompleted(callback *tgbotapi.CallbackQuery, userID string) {
	cleared := b.registry.ClearCompleted(userID)
	if cleared == 0 {
		b.answerCallback(callback.ID, "No downloads to clear.")
		return
	}
	b.answerCallback(callback.ID, fmt.Sprintf("✅ %d completed downloads cleared!", cleared))
	b.editStatus(callback.Message.Chat.ID, callback.Message.MessageID, userID)
}

func (b *Bot) handleRetryFailed(callback *tgbotapi.CallbackQuery, userID string) {
	retried := b.registry.RetryFailed(userID)
	if retried == 0 {
		b.answerCallback(callback.ID, "No failed downloads to retry.")
		return
	}
	b.answerCallback(callback.ID, fmt.Sprintf("🔄 Retrying %d failed downloads...", retried))
	b.editStatus(callback.Message.Chat.ID, callback.Message.MessageID, userID)
}

// editStatus rewrites an existing message with the current status overview
func (b *Bot) editStatus(chatID int64, messageID int, userID string) {
	counts := b.registry.Counts(userID)
	if counts.Total() == 0 {
		b.edit(chatID, messageID,
			"📊 Download Manager\n\nNo downloads in queue.\nForward a file to start downloading!",
			refreshKeyboard())
		return
	}

	infos := make([]types.TaskInfo, 0, counts.Total())
	for _, task := range b.registry.List(userID) {
		infos = append(infos, task.Snapshot())
	}
	b.edit(chatID, messageID, buildStatusText(infos, counts), statusKeyboard(counts))
}
