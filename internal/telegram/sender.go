package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// BotSender adapts the bot API to notify.Sender so the dispatcher can be
// constructed without the router.
type BotSender struct {
	bot *tgbotapi.BotAPI
}

// NewSender wraps a bot API client for notification delivery.
func NewSender(bot *tgbotapi.BotAPI) *BotSender {
	return &BotSender{bot: bot}
}

// Send delivers one HTML-formatted message to the given user.
func (s *BotSender) Send(userID int64, text string) error {
	msg := tgbotapi.NewMessage(userID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	_, err := s.bot.Send(msg)
	return err
}
