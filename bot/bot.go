package bot

import (
	"fmt"
	"log"
	"path/filepath"
	"strconv"
	"strings"

	"telefetch/services"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Bot is the Telegram front end: it routes updates to command, callback and
// media handlers, and enforces the user allow-list.
type Bot struct {
	api      *tgbotapi.BotAPI
	registry services.TaskRegistry
	state    *UserState
	paths    *services.PathManager
	allowed  map[string]bool
}

// New creates the bot front end over an authorized Bot API client
func New(api *tgbotapi.BotAPI, registry services.TaskRegistry, state *UserState, paths *services.PathManager, allowed map[string]bool) *Bot {
	return &Bot{
		api:      api,
		registry: registry,
		state:    state,
		paths:    paths,
		allowed:  allowed,
	}
}

// Start runs the update loop. Blocks until the update channel closes.
func (b *Bot) Start() {
	log.Printf("Authorized on account %s (@%s)", b.api.Self.FirstName, b.api.Self.UserName)
	log.Println("Bot is starting to listen for updates...")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	for update := range updates {
		switch {
		case update.Message != nil:
			b.handleMessage(update.Message)
		case update.CallbackQuery != nil:
			b.handleCallbackQuery(update.CallbackQuery)
		}
	}
}

func (b *Bot) handleMessage(message *tgbotapi.Message) {
	if message.From == nil {
		return
	}
	userID := strconv.FormatInt(message.From.ID, 10)

	if !b.isAllowed(userID) {
		log.Printf("Unauthorized user %s tried to access the bot", userID)
		b.reply(message.Chat.ID, "You are not allowed to use this bot.")
		return
	}

	// Every message refreshes the notification target for this user
	b.state.SetChatID(userID, message.Chat.ID)

	if message.IsCommand() {
		b.handleCommand(message, userID)
		return
	}

	// Text replies continue an in-flight rename or folder-creation prompt
	if text := strings.TrimSpace(message.Text); text != "" {
		switch b.state.State(userID) {
		case StateAwaitingFilename:
			b.handleFilenameInput(message.Chat.ID, userID, text)
			return
		case StateAwaitingFolderName:
			b.handleFolderNameInput(message.Chat.ID, userID, text)
			return
		}
	}

	if ref := MediaRefFromMessage(message); ref != nil {
		b.handleMedia(message, userID, ref)
		return
	}

	log.Printf("User %s sent a non-command, non-media message, ignoring", userID)
}

// handleFilenameInput queues the pending file under the supplied name
func (b *Bot) handleFilenameInput(chatID int64, userID, text string) {
	savePath, ok := b.queuePending(userID, text)
	if !ok {
		b.reply(chatID, "❌ No file waiting for a filename. Please send the file again.")
		b.state.SetState(userID, StateLoggedIn)
		return
	}
	b.reply(chatID, fmt.Sprintf("📥 Queuing download to: %s", savePath))
}

// handleFolderNameInput creates the requested folder and resumes browsing in it
func (b *Bot) handleFolderNameInput(chatID int64, userID, text string) {
	parent := b.state.CreateFolderPath(userID)
	newPath, err := createFolderUnderRoot(b.paths, parent, text)
	if err != nil {
		log.Printf("Failed to create folder for user %s: %v", userID, err)
		b.reply(chatID, fmt.Sprintf("❌ Error creating folder: %v", err))
		b.state.SetState(userID, StateSelectingDirectory)
		return
	}

	b.state.SetState(userID, StateSelectingDirectory)
	b.state.SetBrowsePath(userID, newPath)

	keyboard, err := directoryKeyboard(b.paths, newPath)
	if err != nil {
		log.Printf("Failed to list %s for user %s: %v", newPath, userID, err)
		b.reply(chatID, "❌ Could not read the new folder. Please try again.")
		return
	}

	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("✅ Folder '%s' created successfully!\n\nCurrent location: %s",
		filepath.Base(newPath), newPath))
	msg.ReplyMarkup = keyboard
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Failed to send folder confirmation to user %s: %v", userID, err)
	}
}

// createFolderUnderRoot makes a sanitized subdirectory of parent, clamped to
// the download root
func createFolderUnderRoot(paths *services.PathManager, parent, name string) (string, error) {
	if parent == "" || !paths.WithinRoot(parent) {
		parent = paths.Root()
	}
	newPath := paths.JoinWithinRoot(parent, paths.SanitizeFilename(name))
	if err := paths.EnsureDirectory(newPath); err != nil {
		return "", err
	}
	return newPath, nil
}

// handleMedia stashes the attachment and asks where to save it
func (b *Bot) handleMedia(message *tgbotapi.Message, userID string, ref *MediaRef) {
	log.Printf("User %s sent %s %q (%d bytes)", userID, ref.Kind, ref.FileName, ref.FileSize)

	b.state.SetPendingMedia(userID, ref)
	b.state.SetState(userID, StateSelectingDirectory)
	b.state.SetBrowsePath(userID, b.paths.Root())

	keyboard, err := directoryKeyboard(b.paths, b.paths.Root())
	if err != nil {
		log.Printf("Failed to list directories for user %s: %v", userID, err)
		b.reply(message.Chat.ID, "❌ Could not read the download directory. Please try again.")
		return
	}

	msg := tgbotapi.NewMessage(message.Chat.ID, fmt.Sprintf("📁 Choose where to save %s:", ref.FileName))
	msg.ReplyMarkup = keyboard
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Failed to send directory keyboard to user %s: %v", userID, err)
	}
}

func (b *Bot) isAllowed(userID string) bool {
	if len(b.allowed) == 0 {
		return true
	}
	return b.allowed[userID]
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		log.Printf("Failed to send message to chat %d: %v", chatID, err)
	}
}

func (b *Bot) edit(chatID int64, messageID int, text string, keyboard tgbotapi.InlineKeyboardMarkup) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ReplyMarkup = &keyboard
	if _, err := b.api.Send(edit); err != nil {
		log.Printf("Failed to edit message %d in chat %d: %v", messageID, chatID, err)
	}
}

func (b *Bot) answerCallback(callbackID, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		log.Printf("Failed to answer callback: %v", err)
	}
}
