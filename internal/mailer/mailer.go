// Package mailer delivers plain-text transactional email.
package mailer

import (
	"context"
	"fmt"

	"github.com/ecosnap/ecosnap/internal/config"
)

// Mailer sends one plain-text message.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// New picks the transport named by MAIL_PROVIDER.
func New(cfg *config.Config) (Mailer, error) {
	switch cfg.MailProvider {
	case "resend":
		if cfg.ResendAPIKey == "" {
			return nil, fmt.Errorf("mail provider resend requires RESEND_API_KEY")
		}
		return NewResend(cfg.ResendAPIKey, cfg.EmailFrom), nil
	case "smtp":
		if cfg.SMTPHost == "" {
			return nil, fmt.Errorf("mail provider smtp requires SMTP_HOST")
		}
		return NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.EmailFrom), nil
	case "log", "":
		return NewLog(nil), nil
	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.MailProvider)
	}
}
