package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/voc-auth/internal/logger"
	"github.com/dtroode/voc-auth/internal/model"
)

// Notifications exposes the in-app notifications of a user.
type Notifications struct {
	store   model.NotificationStore
	timeout time.Duration
	logger  *logger.Logger
}

func NewNotifications(store model.NotificationStore, timeout time.Duration, logger *logger.Logger) *Notifications {
	return &Notifications{
		store:   store,
		timeout: timeout,
		logger:  logger,
	}
}

// List returns the notifications of userID, newest first.
func (n *Notifications) List(ctx context.Context, userID uuid.UUID) ([]model.Notification, error) {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	list, err := n.store.ListByUser(ctx, userID)
	if err != nil {
		err = storeError(err)
		n.logger.Error("Notification service: failed to list notifications",
			"user_id", userID,
			"error", err.Error())
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return list, nil
}

// MarkRead flags notification id of userID as read.
func (n *Notifications) MarkRead(ctx context.Context, userID uuid.UUID, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	ok, err := n.store.MarkRead(ctx, id, userID)
	if err != nil {
		err = storeError(err)
		n.logger.Error("Notification service: failed to mark notification as read",
			"user_id", userID,
			"notification_id", id,
			"error", err.Error())
		return fmt.Errorf("failed to mark notification as read: %w", err)
	}
	if !ok {
		return model.NewNotFoundError("Notification not found.")
	}
	return nil
}
