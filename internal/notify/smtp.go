package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wneessen/go-mail"
)

const (
	alertSubject = "Budget alert"
	smtpTimeout  = 15 * time.Second
)

type sendFunc func(ctx context.Context, msgs ...*mail.Msg) error

// SMTPSink emails alerts through a relay. STARTTLS is used when the server
// offers it.
type SMTPSink struct {
	from string
	send sendFunc
}

// NewSMTPSink builds a sink for host:port. Authentication is used only when
// a username is configured.
func NewSMTPSink(host string, port int, username, password, from string) (*SMTPSink, error) {
	opts := []mail.Option{
		mail.WithPort(port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
		mail.WithTimeout(smtpTimeout),
	}
	if username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(username),
			mail.WithPassword(password),
		)
	}

	client, err := mail.NewClient(host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create smtp client: %w", err)
	}
	return &SMTPSink{from: from, send: client.DialAndSendWithContext}, nil
}

// Name implements Sink.
func (s *SMTPSink) Name() string { return "smtp" }

// Send implements Sink.
func (s *SMTPSink) Send(ctx context.Context, address, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.ContainsAny(address, "\r\n") {
		return fmt.Errorf("invalid recipient address")
	}

	msg, err := s.compose(address, message)
	if err != nil {
		return err
	}
	if err := s.send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	return nil
}

func (s *SMTPSink) compose(to, body string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return nil, fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(alertSubject)
	msg.SetBodyString(mail.TypeTextPlain, body)
	return msg, nil
}
