// Package telegram is the notification dispatcher boundary: it delivers
// rendered alert messages to their chat. Command handling and webhook
// plumbing live outside this service.
package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// NewBot creates new telegram bot
func NewBot(c BotConfig) (*Bot, error) {
	bot, err := tgbotapi.NewBotAPI(c.Token)
	if err != nil {
		return nil, errors.Wrap(err, "could not create telegram bot")
	}

	bot.Debug = c.Debug
	log.Debugf("Authorized on telegram account %s", bot.Self.UserName)

	return &Bot{
		Bot:    bot,
		Config: c,
	}, nil
}

// Send delivers a MarkdownV2 message to a chat. A zero chatID routes to the
// configured system broadcast channel.
func (b *Bot) Send(chatID int64, text string) error {
	if chatID == 0 {
		chatID = b.Config.SystemChatID
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true
	msg.ParseMode = "MarkdownV2"
	_, err := b.Bot.Send(msg)
	return errors.Wrapf(err, "could not send message to chat %d", chatID)
}
