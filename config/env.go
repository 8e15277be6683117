package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Defaults for the download engine knobs, kept conservative to stay under
// Telegram's flood limits.
const (
	DefaultMaxConcurrentDownloads = 3
	DefaultProgressUpdateInterval = 5 * time.Second
	DefaultNotificationCooldown   = 30 * time.Second
)

// GetBotToken returns the Telegram bot token
func GetBotToken() string {
	return os.Getenv("BOT_TOKEN")
}

// GetAllowedUsers parses the ALLOWED_USERS comma-separated id list.
// An empty list means every user is allowed.
func GetAllowedUsers() map[string]bool {
	allowed := make(map[string]bool)
	for _, id := range strings.Split(os.Getenv("ALLOWED_USERS"), ",") {
		id = strings.TrimSpace(id)
		if id != "" {
			allowed[id] = true
		}
	}
	return allowed
}

// GetDownloadLocation returns the root directory downloads are saved under
func GetDownloadLocation() string {
	if customPath := os.Getenv("ROOT_DOWNLOAD_PATH"); customPath != "" {
		return customPath
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if can't get home dir
		return filepath.Join(".", "downloads")
	}

	return filepath.Join(homeDir, "Downloads", "Telefetch")
}

// GetMaxConcurrentDownloads returns the download worker pool size
func GetMaxConcurrentDownloads() int {
	if v := os.Getenv("MAX_CONCURRENT_DOWNLOADS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			return n
		}
	}
	return DefaultMaxConcurrentDownloads
}

// GetProgressUpdateInterval returns the minimum spacing between progress
// ticks for a single task
func GetProgressUpdateInterval() time.Duration {
	return secondsEnv("PROGRESS_UPDATE_INTERVAL", DefaultProgressUpdateInterval)
}

// GetNotificationCooldown returns the minimum spacing between non-management
// notifications to the same user
func GetNotificationCooldown() time.Duration {
	return secondsEnv("NOTIFICATION_COOLDOWN", DefaultNotificationCooldown)
}

// GetServerPort returns the status API port
func GetServerPort() int {
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return 8080
}

func secondsEnv(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if secs, err := strconv.ParseFloat(v, 64); err == nil && secs >= 0 {
			return time.Duration(secs * float64(time.Second))
		}
	}
	return fallback
}
