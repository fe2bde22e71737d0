package telegram

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	subscribers "temperature-monitor/internal/subscribers/domain"
)

const (
	StartButton = "🟢 Start"
	StopButton  = "🔴 Stop"
)

// Action is a recognised subscriber command.
type Action int

const (
	ActionNone Action = iota
	ActionStart
	ActionStop
)

// Command is one inbound chat message reduced to what the handler needs.
type Command struct {
	ChatID      int64
	MessageID   int
	DisplayName string
	Text        string
}

// Action classifies the command text.
func (c Command) Action() Action {
	text := strings.TrimSpace(c.Text)
	switch text {
	case StartButton:
		return ActionStart
	case StopButton:
		return ActionStop
	}
	if !strings.HasPrefix(text, "/") {
		return ActionNone
	}
	name := strings.Fields(text)[0]
	if at := strings.IndexByte(name, '@'); at > 0 {
		name = name[:at]
	}
	switch name {
	case "/start":
		return ActionStart
	case "/stop":
		return ActionStop
	default:
		return ActionNone
	}
}

// Reply is the single message sent back for a recognised command.
// Every reply carries the Start/Stop keyboard.
type Reply struct {
	ChatID  int64
	ReplyTo int
	Text    string
}

// SubscriptionService is the subscriber state machine.
type SubscriptionService interface {
	Subscribe(ctx context.Context, chatID int64, displayName string) (subscribers.Outcome, error)
	Unsubscribe(ctx context.Context, chatID int64, displayName string) (subscribers.Outcome, error)
}

// CommandHandler maps chat commands onto the subscription service.
type CommandHandler struct {
	service SubscriptionService
	logger  *log.Logger
}

// NewCommandHandler constructs a command handler.
func NewCommandHandler(service SubscriptionService, logger *log.Logger) (*CommandHandler, error) {
	if service == nil {
		return nil, errors.New("telegram commands: nil service")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &CommandHandler{service: service, logger: logger}, nil
}

// Handle runs a command. The bool is false for text that is not a command;
// such messages get no reply.
func (h *CommandHandler) Handle(ctx context.Context, cmd Command) (Reply, bool) {
	reply := Reply{ChatID: cmd.ChatID, ReplyTo: cmd.MessageID}
	switch cmd.Action() {
	case ActionStart:
		outcome, err := h.service.Subscribe(ctx, cmd.ChatID, cmd.DisplayName)
		if err != nil {
			h.logger.Printf("telegram commands: start chat=%d error: %v", cmd.ChatID, err)
			reply.Text = "Something went wrong while subscribing to alerts. Please try again later."
			return reply, true
		}
		reply.Text = startText(outcome, cmd.DisplayName)
	case ActionStop:
		outcome, err := h.service.Unsubscribe(ctx, cmd.ChatID, cmd.DisplayName)
		if err != nil {
			h.logger.Printf("telegram commands: stop chat=%d error: %v", cmd.ChatID, err)
			reply.Text = "Something went wrong while unsubscribing from alerts. Please try again later."
			return reply, true
		}
		reply.Text = stopText(outcome, cmd.DisplayName)
	default:
		return Reply{}, false
	}
	return reply, true
}

func startText(outcome subscribers.Outcome, name string) string {
	if outcome == subscribers.OutcomeAlreadySubscribed {
		return "You are already subscribed to temperature alerts! 🌡"
	}
	return fmt.Sprintf("Hello, %s! 👋\n"+
		"You are now subscribed to temperature alerts.\n"+
		"You will be notified about critical temperature changes.\n"+
		"To turn notifications off press Stop or send /stop", name)
}

func stopText(outcome subscribers.Outcome, name string) string {
	if outcome == subscribers.OutcomeNotSubscribed {
		return "You were not subscribed to alerts! 🤔"
	}
	return fmt.Sprintf("Goodbye, %s! 👋\n"+
		"You have unsubscribed from temperature alerts.\n"+
		"To subscribe again press Start or send /start", name)
}
