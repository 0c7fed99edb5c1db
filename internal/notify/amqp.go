package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"gitlab.com/yelinaung/budget-tracker/internal/logger"
)

const publishTimeout = 5 * time.Second

// AlertMessage is the JSON body published for each alert.
type AlertMessage struct {
	ID        string    `json:"id"`
	Address   string    `json:"address"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQPSink publishes alerts to a direct exchange for downstream delivery
// workers.
type AMQPSink struct {
	channel    publisher
	closer     func() error
	exchange   string
	routingKey string
	now        func() time.Time
}

// DialAMQPSink connects to url and declares a durable exchange and queue
// bound by the queue name.
func DialAMQPSink(url, exchange, queue string) (*AMQPSink, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := declare(ch, exchange, queue); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}

	s := newAMQPSink(ch, exchange, queue)
	s.closer = func() error {
		_ = ch.Close()
		return conn.Close()
	}
	return s, nil
}

func newAMQPSink(p publisher, exchange, routingKey string) *AMQPSink {
	return &AMQPSink{
		channel:    p,
		exchange:   exchange,
		routingKey: routingKey,
		now:        time.Now,
	}
}

func declare(ch *amqp.Channel, exchange, queue string) error {
	if err := ch.ExchangeDeclare(exchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	if err := ch.QueueBind(queue, queue, exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

// Name implements Sink.
func (s *AMQPSink) Name() string { return "amqp" }

// Send implements Sink.
func (s *AMQPSink) Send(ctx context.Context, address, message string) error {
	msg := AlertMessage{
		ID:        uuid.NewString(),
		Address:   address,
		Message:   message,
		Timestamp: s.now().UTC(),
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = s.channel.PublishWithContext(ctx, s.exchange, s.routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    msg.ID,
		Timestamp:    msg.Timestamp,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	logger.Log.Debug().
		Str("message_id", msg.ID).
		Str("exchange", s.exchange).
		Msg("Published alert message")
	return nil
}

// Close releases the channel and connection.
func (s *AMQPSink) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}
