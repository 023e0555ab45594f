package notify

import (
	"context"

	"github.com/dtroode/voc-auth/internal/logger"
	"github.com/dtroode/voc-auth/internal/model"
)

var _ model.Notifier = (*Log)(nil)

// Log is a development mailer that writes messages to the log instead of sending them.
type Log struct {
	logger *logger.Logger
}

func NewLog(logger *logger.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) Send(ctx context.Context, email model.Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.logger.Info("Mailer: email not sent, SMTP is not configured",
		"to", email.To,
		"subject", email.Subject,
		"body", email.HTML)
	return nil
}
