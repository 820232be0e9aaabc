package service

import (
	"context"
	"log/slog"
)

// Mailer delivers confirmation codes. A real SMTP sender can be dropped in
// behind the same interface.
type Mailer interface {
	SendConfirmationCode(ctx context.Context, email, username, code string) error
}

// LogMailer writes the code to the application log instead of sending mail.
// Used in development and tests.
type LogMailer struct {
	logger *slog.Logger
	from   string
}

func NewLogMailer(logger *slog.Logger, from string) *LogMailer {
	return &LogMailer{logger: logger, from: from}
}

func (m *LogMailer) SendConfirmationCode(ctx context.Context, email, username, code string) error {
	m.logger.InfoContext(ctx, "confirmation code issued",
		"from", m.from,
		"to", email,
		"username", username,
		"code", code,
	)
	return nil
}
