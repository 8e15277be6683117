package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// APISender adapts the Bot API client to services.Sender
type APISender struct {
	api *tgbotapi.BotAPI
}

// NewAPISender creates a sender over the given Bot API client
func NewAPISender(api *tgbotapi.BotAPI) *APISender {
	return &APISender{api: api}
}

// Send delivers a plain-text message to a chat
func (s *APISender) Send(chatID int64, text string) error {
	_, err := s.api.Send(tgbotapi.NewMessage(chatID, text))
	return err
}
