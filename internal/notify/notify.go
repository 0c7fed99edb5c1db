// Package notify delivers alert messages to users through pluggable sinks.
package notify

import (
	"context"
	"errors"

	"gitlab.com/yelinaung/budget-tracker/internal/logger"
	"gitlab.com/yelinaung/budget-tracker/internal/models"
)

// Sink is a named delivery channel.
type Sink interface {
	Name() string
	Send(ctx context.Context, address, message string) error
}

// Multi sends every message to each sink in order. One failing sink does not
// stop the others; all failures are joined in the returned error.
type Multi struct {
	sinks []Sink
}

// NewMulti fans out to sinks.
func NewMulti(sinks ...Sink) *Multi {
	return &Multi{sinks: sinks}
}

// Send delivers to every sink.
func (m *Multi) Send(ctx context.Context, address, message string) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Send(ctx, address, message); err != nil {
			errs = append(errs, &models.NotificationError{Sink: s.Name(), Err: err})
		}
	}
	return errors.Join(errs...)
}

// Len is the number of configured sinks.
func (m *Multi) Len() int {
	return len(m.sinks)
}

// LogSink writes alerts to the application log. It never fails.
type LogSink struct{}

// Name implements Sink.
func (LogSink) Name() string { return "log" }

// Send implements Sink.
func (LogSink) Send(_ context.Context, address, message string) error {
	logger.Log.Info().
		Str("to", logger.MaskEmail(address)).
		Str("message", message).
		Msg("Budget alert notification")
	return nil
}
