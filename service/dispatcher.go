package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alchrem-sys/botbotbbot/models"
)

// Inbound is one platform-agnostic chat message handed to the dispatcher
type Inbound struct {
	UserID    int64
	Text      string
	IsCommand bool
	Command   string
	Args      []string
}

// Reply texts. The bot speaks Ukrainian.
const (
	startReplyText = "Щоб запустити бота - /start.\n" +
		"Писати лише +1;-10;+107;-2.\n" +
		"Щоб скинути цифри — /reset.\n" +
		"Цифри повинні бути зі знаком.\n\n" +
		"Кожного дня о 20:00 UTC приходить нагадування «прокрути альфу». " +
		"Пиши «прокрутив», якщо не написав — через годину прийде ще раз.\n\n" +
		"Писати лише цифри або «прокрутив» — бот більше нічого не розуміє 😄"

	resetReplyText        = "✅ Цифри скинуто! Починай спочатку 💪"
	entryHintText         = "Пиши лише числа зі знаком! (+10 або -5)"
	ackReplyText          = "🔥 Красава! Альфа прокручена 💪"
	unrecognizedReplyText = "Пиши лише числа або «прокрутив» 😉"
	broadcastDeniedText   = "⛔ Ця команда лише для адміна."
	broadcastUsageText    = "Напиши текст розсилки: /broadcast <текст>"
)

// Dispatcher classifies inbound messages and routes them to the ledger,
// acknowledgment and broadcast services, producing the outbound reply.
type Dispatcher struct {
	ledger    LedgerService
	acks      AckService
	broadcast BroadcastService
	adminID   int64
}

// NewDispatcher creates a new command dispatcher
func NewDispatcher(ledger LedgerService, acks AckService, broadcast BroadcastService, adminID int64) *Dispatcher {
	return &Dispatcher{
		ledger:    ledger,
		acks:      acks,
		broadcast: broadcast,
		adminID:   adminID,
	}
}

// HandleMessage routes one inbound message and returns the reply text.
// User mistakes (bad entries, denied or incomplete commands) come back as
// reply text with a nil error; a non-nil error means the underlying store
// failed and no success reply may be sent.
func (d *Dispatcher) HandleMessage(ctx context.Context, msg Inbound) (string, error) {
	if msg.IsCommand {
		reply, err := d.handleCommand(ctx, msg)
		switch {
		case errors.Is(err, ErrPermissionDenied):
			return broadcastDeniedText, nil
		case errors.Is(err, ErrMissingArgument):
			return broadcastUsageText, nil
		}
		return reply, err
	}

	text := strings.TrimSpace(msg.Text)

	// Classification order matters: the numeric-prefix check wins over the
	// keyword match, which wins over the fallback hint.
	if strings.HasPrefix(text, "+") || strings.HasPrefix(text, "-") {
		return d.handleEntry(ctx, msg.UserID, text)
	}

	if ContainsAck(text) {
		if err := d.acks.Acknowledge(ctx, msg.UserID, time.Now().UTC()); err != nil {
			return "", err
		}
		return ackReplyText, nil
	}

	return unrecognizedReplyText, nil
}

func (d *Dispatcher) handleCommand(ctx context.Context, msg Inbound) (string, error) {
	switch msg.Command {
	case "start":
		if _, err := d.ledger.StartUser(ctx, msg.UserID); err != nil {
			return "", err
		}
		return startReplyText, nil

	case "reset":
		if err := d.ledger.ResetUser(ctx, msg.UserID); err != nil {
			return "", err
		}
		return resetReplyText, nil

	case "broadcast":
		if msg.UserID != d.adminID {
			return "", fmt.Errorf("broadcast from user %d: %w", msg.UserID, ErrPermissionDenied)
		}
		text := strings.TrimSpace(strings.Join(msg.Args, " "))
		if text == "" {
			return "", fmt.Errorf("broadcast: %w", ErrMissingArgument)
		}
		sent, failed := d.broadcast.BroadcastAll(ctx, text)
		return fmt.Sprintf("📣 Розіслано: %d ✅ / %d ⚠️", sent, failed), nil

	default:
		return unrecognizedReplyText, nil
	}
}

func (d *Dispatcher) handleEntry(ctx context.Context, userID int64, text string) (string, error) {
	record, err := d.ledger.RecordEntry(ctx, userID, text)
	if err != nil {
		if IsParseError(err) {
			return entryHintText, nil
		}
		return "", err
	}

	return fmt.Sprintf("✅ Плюс: %s\n❌ Мінус: %s\n💰 Баланс: %s",
		FormatTotal(record.Plus), FormatTotal(record.Minus), FormatTotal(record.Balance)), nil
}

// FormatTotal formats a running total rounded to two decimal places
func FormatTotal(v float64) string {
	return strconv.FormatFloat(models.Round2(v), 'f', -1, 64)
}
