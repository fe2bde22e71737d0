package notify

import (
	"context"
	"errors"
	"log"
)

// Channel delivers rendered content to one chat.
type Channel interface {
	Send(ctx context.Context, chatID int64, content string) error
}

// LogChannel writes messages to a logger instead of a messenger.
// It stands in for Telegram when no bot token is configured.
type LogChannel struct {
	logger *log.Logger
}

// NewLogChannel constructs a LogChannel.
func NewLogChannel(logger *log.Logger) *LogChannel {
	if logger == nil {
		logger = log.Default()
	}
	return &LogChannel{logger: logger}
}

// Send logs the message.
func (c *LogChannel) Send(ctx context.Context, chatID int64, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.logger.Printf("telegram out: chat=%d text=%q", chatID, content)
	return nil
}

// MultiChannel sends each message through every configured channel.
type MultiChannel struct {
	channels []Channel
}

// NewMultiChannel constructs a MultiChannel, skipping nil entries.
func NewMultiChannel(channels ...Channel) *MultiChannel {
	out := make([]Channel, 0, len(channels))
	for _, ch := range channels {
		if ch != nil {
			out = append(out, ch)
		}
	}
	return &MultiChannel{channels: out}
}

// Send forwards to all channels and joins their errors.
func (m *MultiChannel) Send(ctx context.Context, chatID int64, content string) error {
	if m == nil {
		return nil
	}
	var errs []error
	for _, ch := range m.channels {
		if err := ch.Send(ctx, chatID, content); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
