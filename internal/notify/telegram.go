package notify

import (
	"context"
	"fmt"

	tgbot "github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	"gitlab.com/yelinaung/budget-tracker/internal/logger"
)

// MessageSender is the subset of the Telegram client the sink needs.
type MessageSender interface {
	SendMessage(ctx context.Context, params *tgbot.SendMessageParams) (*tgmodels.Message, error)
}

var _ MessageSender = (*tgbot.Bot)(nil)

// TelegramSink mirrors alerts into a single configured chat.
type TelegramSink struct {
	sender MessageSender
	chatID int64
}

// NewTelegramSink creates a bot client for token without polling for updates.
func NewTelegramSink(token string, chatID int64, opts ...tgbot.Option) (*TelegramSink, error) {
	b, err := tgbot.New(token, append([]tgbot.Option{tgbot.WithSkipGetMe()}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	return NewTelegramSinkWithSender(b, chatID), nil
}

// NewTelegramSinkWithSender uses an existing sender.
func NewTelegramSinkWithSender(sender MessageSender, chatID int64) *TelegramSink {
	return &TelegramSink{sender: sender, chatID: chatID}
}

// Name implements Sink.
func (s *TelegramSink) Name() string { return "telegram" }

// Send implements Sink.
func (s *TelegramSink) Send(ctx context.Context, address, message string) error {
	_, err := s.sender.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID: s.chatID,
		Text:   fmt.Sprintf("%s\n\n(for %s)", message, logger.MaskEmail(address)),
	})
	if err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}
