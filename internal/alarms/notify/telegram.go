package notify

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// BotSender is the subset of *tgbotapi.BotAPI used for outgoing messages.
type BotSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramChannel delivers alarm text as Telegram chat messages.
type TelegramChannel struct {
	bot BotSender
}

// NewTelegramChannel constructs a Telegram channel.
func NewTelegramChannel(bot BotSender) (*TelegramChannel, error) {
	if bot == nil {
		return nil, errors.New("telegram channel: nil bot")
	}
	return &TelegramChannel{bot: bot}, nil
}

// Send posts content to chatID. The bot client has no context support, so the
// call runs in its own goroutine and Send returns as soon as ctx is done.
func (c *TelegramChannel) Send(ctx context.Context, chatID int64, content string) error {
	if c == nil || c.bot == nil {
		return errors.New("telegram channel: nil bot")
	}
	done := make(chan error, 1)
	go func() {
		_, err := c.bot.Send(tgbotapi.NewMessage(chatID, content))
		done <- err
	}()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("telegram channel: send to %d: %w", chatID, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("telegram channel: send to %d: %w", chatID, ctx.Err())
	}
}
