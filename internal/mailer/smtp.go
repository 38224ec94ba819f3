package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/wneessen/go-mail"
)

// implicitTLSPort is the SMTPS port; other ports use STARTTLS when offered.
const implicitTLSPort = 465

type SMTP struct {
	host      string
	options   []mail.Option
	fromEmail string
}

func NewSMTP(host string, port int, username, password, fromEmail string) *SMTP {
	options := []mail.Option{
		mail.WithTimeout(30 * time.Second),
	}
	if port == implicitTLSPort {
		options = append(options, mail.WithSSL())
	} else {
		options = append(options, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}
	if username != "" {
		options = append(options,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(username),
			mail.WithPassword(password),
		)
	}
	// Last so no TLS option overrides it
	options = append(options, mail.WithPort(port))

	return &SMTP{
		host:      host,
		options:   options,
		fromEmail: fromEmail,
	}
}

func (m *SMTP) Send(ctx context.Context, to, subject, body string) error {
	msg := mail.NewMsg()
	err := msg.From(m.fromEmail)
	if err != nil {
		return fmt.Errorf("invalid sender %q: %w", m.fromEmail, err)
	}
	err = msg.To(to)
	if err != nil {
		return fmt.Errorf("invalid recipient %q: %w", to, err)
	}
	msg.Subject(subject)
	msg.SetDate()
	msg.SetBodyString(mail.TypeTextPlain, body)

	client, err := mail.NewClient(m.host, m.options...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	err = client.DialAndSendWithContext(ctx, msg)
	if err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	slog.Info("email sent", "provider", "smtp", "to", to)
	return nil
}
