package notify

import (
	"context"
	"errors"
	"testing"

	tgbot "github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	params *tgbot.SendMessageParams
	err    error
}

func (f *fakeSender) SendMessage(_ context.Context, params *tgbot.SendMessageParams) (*tgmodels.Message, error) {
	f.params = params
	if f.err != nil {
		return nil, f.err
	}
	return &tgmodels.Message{ID: 1}, nil
}

func TestTelegramSink_Send(t *testing.T) {
	t.Run("posts to configured chat", func(t *testing.T) {
		sender := &fakeSender{}
		s := NewTelegramSinkWithSender(sender, -100123)

		require.NoError(t, s.Send(context.Background(), "alice@example.com", "ALERT: over budget"))
		require.Equal(t, int64(-100123), sender.params.ChatID)
		require.Contains(t, sender.params.Text, "ALERT: over budget")
		require.Contains(t, sender.params.Text, "a***@example.com")
		require.NotContains(t, sender.params.Text, "alice@example.com")
	})

	t.Run("wraps errors", func(t *testing.T) {
		s := NewTelegramSinkWithSender(&fakeSender{err: errors.New("forbidden")}, 1)
		require.ErrorContains(t, s.Send(context.Background(), "a@example.com", "m"), "forbidden")
	})
}
