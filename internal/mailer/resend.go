package mailer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"
)

type Resend struct {
	client    *resend.Client
	fromEmail string
}

func NewResend(apiKey, fromEmail string) *Resend {
	return &Resend{
		client:    resend.NewClient(apiKey),
		fromEmail: fromEmail,
	}
}

func (m *Resend) Send(ctx context.Context, to, subject, body string) error {
	params := &resend.SendEmailRequest{
		From:    m.fromEmail,
		To:      []string{to},
		Subject: subject,
		Text:    body,
	}

	sent, err := m.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("resend: %w", err)
	}

	slog.Info("email sent", "provider", "resend", "to", to, "id", sent.Id)
	return nil
}
