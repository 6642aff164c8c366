package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"github.com/alchrem-sys/botbotbbot/service"
)

// failureReplyText is sent when the store failed mid-operation; it never
// claims the change was applied.
const failureReplyText = "⚠️ Щось пішло не так, спробуй ще раз."

// Config holds bot configuration
type Config struct {
	Token         string
	UpdateTimeout int // long-poll timeout in seconds
}

// Bot is the Telegram transport adapter: it feeds inbound messages to the
// dispatcher and implements the MessageSender contract for outbound pushes.
type Bot struct {
	config     Config
	api        *tgbotapi.BotAPI
	dispatcher *service.Dispatcher
}

// New creates the Telegram session and validates the token. The dispatcher
// is attached separately because it depends on the bot as its message
// sender.
func New(config Config) (*Bot, error) {
	if config.UpdateTimeout <= 0 {
		config.UpdateTimeout = 60
	}

	api, err := tgbotapi.NewBotAPI(config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating telegram session: %w", err)
	}

	log.Infof("Authorized as @%s", api.Self.UserName)

	return &Bot{
		config: config,
		api:    api,
	}, nil
}

// Run consumes long-poll updates until the context is cancelled
func (b *Bot) Run(ctx context.Context, dispatcher *service.Dispatcher) {
	b.dispatcher = dispatcher

	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.config.UpdateTimeout

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			log.Info("Update loop shutting down (context cancelled)")
			return
		case update, ok := <-updates:
			if !ok {
				log.Info("Update channel closed")
				return
			}
			b.handleUpdate(ctx, update)
		}
	}
}

// Close stops the long-poll loop
func (b *Bot) Close() {
	b.api.StopReceivingUpdates()
}

// Send delivers a text message to a user
func (b *Bot) Send(ctx context.Context, userID int64, text string) error {
	msg := tgbotapi.NewMessage(userID, text)
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("delivery to user %d failed: %w", userID, err)
	}
	return nil
}

// handleUpdate adapts one Telegram update into a dispatcher call and replies
// with whatever the dispatcher produced. A dispatcher error means the store
// failed, so the user gets the neutral failure text instead of a success
// reply.
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.Message == nil || update.Message.Text == "" || update.Message.From == nil {
		return
	}

	msg := update.Message
	inbound := service.Inbound{
		UserID:    msg.From.ID,
		Text:      msg.Text,
		IsCommand: msg.IsCommand(),
	}
	if inbound.IsCommand {
		inbound.Command = msg.Command()
		inbound.Args = strings.Fields(msg.CommandArguments())
	}

	reply, err := b.dispatcher.HandleMessage(ctx, inbound)
	if err != nil {
		log.Errorf("Error handling message from user %d: %v", inbound.UserID, err)
		reply = failureReplyText
	}
	if reply == "" {
		return
	}

	if err := b.reply(msg.Chat.ID, reply); err != nil {
		log.Errorf("Error replying to chat %d: %v", msg.Chat.ID, err)
	}
}

func (b *Bot) reply(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := b.api.Send(msg)
	return err
}
