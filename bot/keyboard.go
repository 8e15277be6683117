package bot

import (
	"fmt"

	"telefetch/services"
	"telefetch/types"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// directoryKeyboard builds the inline keyboard for browsing directories
// under the download root. Callback data carries short path codes because
// Telegram limits callback payloads to 64 bytes.
func directoryKeyboard(paths *services.PathManager, current string) (tgbotapi.InlineKeyboardMarkup, error) {
	dirs, err := paths.ListSubdirectories(current)
	if err != nil {
		return tgbotapi.InlineKeyboardMarkup{}, err
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, dir := range dirs {
		subPath := paths.JoinWithinRoot(current, dir)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📁 "+dir, "dir:"+paths.EncodePath(subPath)),
		))
	}

	var nav []tgbotapi.InlineKeyboardButton
	if current != paths.Root() {
		parent := paths.ParentDirectory(current)
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("⬆️ Back", "dir:"+paths.EncodePath(parent)))
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("🏠 Root", "dir:"+paths.EncodePath(paths.Root())))
	}
	nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("✅ Save Here", "select:"+paths.EncodePath(current)))
	rows = append(rows, nav)

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("📁 Create New Folder", "create_folder:"+paths.EncodePath(current)),
	))
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", "cancel"),
	))

	return tgbotapi.NewInlineKeyboardMarkup(rows...), nil
}

// renameKeyboard asks whether to keep the original filename
func renameKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("✅ Skip", "skip_rename")),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("✏️ Rename", "rename_file")),
	)
}

// statusKeyboard builds the management buttons shown under /status,
// offering only the actions that currently apply
func statusKeyboard(counts types.StatusCounts) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton

	var actions []tgbotapi.InlineKeyboardButton
	if counts.Downloading > 0 {
		actions = append(actions, tgbotapi.NewInlineKeyboardButtonData("⏸️ Pause All", "pause_all"))
	}
	if counts.Queued > 0 {
		actions = append(actions, tgbotapi.NewInlineKeyboardButtonData("▶️ Resume All", "resume_all"))
	}
	if counts.Failed > 0 {
		actions = append(actions, tgbotapi.NewInlineKeyboardButtonData("🔄 Retry Failed", "retry_failed"))
	}
	if len(actions) > 0 {
		rows = append(rows, actions)
	}

	nav := []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("🔄 Refresh", "status_refresh"),
	}
	if counts.Completed > 0 {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("🗑️ Clear Completed", "clear_completed"))
	}
	rows = append(rows, nav)

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// refreshKeyboard is the single-button keyboard shown on management replies
func refreshKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 Refresh", "status_refresh"),
		),
	)
}

// helpKeyboard builds the help topic menu
func helpKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("📋 Commands", "help_commands")),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("📁 File Downloads", "help_files")),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🔄 Navigation", "help_navigation")),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("💡 Tips & Tricks", "help_tips")),
	)
}

// backToHelpKeyboard links a help topic back to the main help menu
func backToHelpKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Back", "help_back"),
		),
	)
}

// helpTopicText returns the body for one help topic
func helpTopicText(topic string) string {
	switch topic {
	case "help_commands":
		return "📋 Commands\n\n" +
			"/start - Register and get started\n" +
			"/help - Show this help menu\n" +
			"/status - Show your download queue with progress, speed and ETA"
	case "help_files":
		return "📁 File Downloads\n\n" +
			"Forward or send me a document, video, audio, voice message or photo. " +
			"I will ask where to save it, then download it in the background and " +
			"notify you when it finishes."
	case "help_navigation":
		return "🔄 Navigation\n\n" +
			"Use the 📁 buttons to move into a folder, ⬆️ Back to go up, " +
			"🏠 Root to jump to the top, and ✅ Save Here to pick the current folder."
	case "help_tips":
		return "💡 Tips & Tricks\n\n" +
			"• Up to a few downloads run at once; the rest wait in the queue\n" +
			"• Progress updates are throttled to avoid notification floods\n" +
			"• Use /status → 🔄 Retry Failed to requeue anything that failed\n" +
			"• 🗑️ Clear Completed tidies up finished downloads"
	default:
		return fmt.Sprintf("Unknown help topic: %s", topic)
	}
}
