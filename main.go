package main

import (
	"log"
	"os"

	"telefetch/bot"
	"telefetch/cmd"
	"telefetch/config"
	"telefetch/services"
	"telefetch/websocket"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file if present
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	token := config.GetBotToken()
	if token == "" {
		log.Fatal("BOT_TOKEN environment variable is required")
	}

	downloadRoot := config.GetDownloadLocation()
	if err := os.MkdirAll(downloadRoot, 0755); err != nil {
		log.Fatalf("Failed to create download root %s: %v", downloadRoot, err)
	}
	log.Printf("Saving downloads under %s", downloadRoot)

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		log.Fatalf("Failed to connect to Telegram: %v", err)
	}

	// WebSocket hub for the status API's live progress feed
	hub := websocket.NewHub()
	go hub.Run()

	state := bot.NewUserState()
	notifier := services.NewNotifier(state, bot.NewAPISender(api), config.GetNotificationCooldown())
	fetcher := bot.NewTelegramFetcher(api)
	engine := services.NewDownloadEngine(fetcher, notifier, state, hub, config.GetProgressUpdateInterval())

	dispatcher := services.NewDispatcher(config.GetMaxConcurrentDownloads(), engine)
	dispatcher.Start()

	registry := services.NewTaskRegistry(dispatcher)
	paths := services.NewPathManager(downloadRoot)

	// Status/management API runs alongside the bot
	go cmd.StartWebServer(config.GetServerPort(), registry, hub)

	allowed := config.GetAllowedUsers()
	if len(allowed) == 0 {
		log.Println("ALLOWED_USERS not set, every user is allowed")
	}

	b := bot.New(api, registry, state, paths, allowed)
	b.Start()
}
