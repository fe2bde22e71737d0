package telegram

import (
	"context"
	"errors"
	"log"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	defaultPollTimeout    = 60
	defaultCommandTimeout = 10 * time.Second
)

// BotAPI is the subset of *tgbotapi.BotAPI the poller uses.
type BotAPI interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// PollerOption configures the poller.
type PollerOption func(*Poller)

// WithPollTimeout sets the long-poll timeout in seconds.
func WithPollTimeout(seconds int) PollerOption {
	return func(p *Poller) {
		if seconds > 0 {
			p.pollTimeout = seconds
		}
	}
}

// WithPollerLogger sets the logger.
func WithPollerLogger(logger *log.Logger) PollerOption {
	return func(p *Poller) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// Poller is the single long-lived worker that receives bot updates.
type Poller struct {
	bot         BotAPI
	handler     *CommandHandler
	pollTimeout int
	logger      *log.Logger
}

// NewPoller constructs a poller.
func NewPoller(bot BotAPI, handler *CommandHandler, opts ...PollerOption) (*Poller, error) {
	if bot == nil {
		return nil, errors.New("telegram poller: nil bot")
	}
	if handler == nil {
		return nil, errors.New("telegram poller: nil handler")
	}
	p := &Poller{
		bot:         bot,
		handler:     handler,
		pollTimeout: defaultPollTimeout,
		logger:      log.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Run drains updates until ctx is done or the updates channel closes.
func (p *Poller) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = p.pollTimeout
	updates := p.bot.GetUpdatesChan(cfg)
	defer p.bot.StopReceivingUpdates()

	p.logger.Printf("telegram poller: started")
	for {
		select {
		case <-ctx.Done():
			p.logger.Printf("telegram poller: stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			p.handleUpdate(ctx, update)
		}
	}
}

func (p *Poller) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	cmd, ok := CommandFromMessage(update.Message)
	if !ok {
		return
	}
	cmdCtx, cancel := context.WithTimeout(ctx, defaultCommandTimeout)
	defer cancel()
	reply, ok := p.handler.Handle(cmdCtx, cmd)
	if !ok {
		return
	}
	if _, err := p.bot.Send(NewReplyMessage(reply)); err != nil {
		p.logger.Printf("telegram poller: reply chat=%d error: %v", reply.ChatID, err)
	}
}

// CommandFromMessage extracts a Command from a bot message.
func CommandFromMessage(msg *tgbotapi.Message) (Command, bool) {
	if msg == nil || msg.Chat == nil {
		return Command{}, false
	}
	cmd := Command{
		ChatID:    msg.Chat.ID,
		MessageID: msg.MessageID,
		Text:      msg.Text,
	}
	if msg.From != nil {
		cmd.DisplayName = msg.From.UserName
		if cmd.DisplayName == "" {
			cmd.DisplayName = msg.From.FirstName
		}
	}
	return cmd, true
}

// NewReplyMessage builds the outgoing message with the Start/Stop keyboard.
func NewReplyMessage(reply Reply) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(reply.ChatID, reply.Text)
	msg.ReplyToMessageID = reply.ReplyTo
	msg.ReplyMarkup = Keyboard()
	return msg
}

// Keyboard returns the two-button reply keyboard.
func Keyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(StartButton),
			tgbotapi.NewKeyboardButton(StopButton),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}
