package mailer

import (
	"context"
	"log/slog"
)

// Log prints messages instead of sending them, so local development works
// without a mail provider. The body (and with it any code) is logged.
type Log struct {
	logger *slog.Logger
}

func NewLog(logger *slog.Logger) *Log {
	return &Log{logger: logger}
}

func (m *Log) Send(ctx context.Context, to, subject, body string) error {
	logger := m.logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "email sent (dev mode)", "to", to, "subject", subject, "body", body)
	return nil
}
