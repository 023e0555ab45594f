package notify

import (
	"bytes"
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/voc-auth/internal/logger"
	"github.com/dtroode/voc-auth/internal/model"
)

var _ model.Notifier = (*Archive)(nil)

// Archive keeps a copy of every delivered message in object storage.
// Archiving never changes the outcome of Send.
type Archive struct {
	next    model.Notifier
	storage model.Storage
	from    mail.Address
	logger  *logger.Logger
	now     func() time.Time
}

func NewArchive(next model.Notifier, storage model.Storage, from mail.Address, logger *logger.Logger) *Archive {
	return &Archive{
		next:    next,
		storage: storage,
		from:    from,
		logger:  logger,
		now:     time.Now,
	}
}

func (a *Archive) Send(ctx context.Context, email model.Email) error {
	if err := a.next.Send(ctx, email); err != nil {
		return err
	}

	key, err := a.store(ctx, email)
	if err != nil {
		a.logger.Warn("Mail archive: failed to archive message",
			"to", email.To,
			"subject", email.Subject,
			"error", err.Error())
		return nil
	}

	a.logger.Debug("Mail archive: message archived",
		"to", email.To,
		"key", key)
	return nil
}

func (a *Archive) store(ctx context.Context, email model.Email) (string, error) {
	now := a.now().UTC()
	msg, err := buildMessage(a.from, mail.Address{Address: email.To}, email, now)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("%s/%s.eml", now.Format("2006/01/02"), uuid.NewString())
	if err := a.storage.Upload(ctx, key, "message/rfc822", bytes.NewReader(msg), int64(len(msg))); err != nil {
		return "", err
	}
	return key, nil
}
