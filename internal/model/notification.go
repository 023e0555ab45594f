package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Email is a transactional message with an HTML body.
type Email struct {
	To      string
	Subject string
	HTML    string
}

// Notifier delivers transactional email.
type Notifier interface {
	Send(ctx context.Context, email Email) error
}

// NotificationStore persists in-app notifications.
type NotificationStore interface {
	Create(ctx context.Context, notification Notification) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Notification, error)
	MarkRead(ctx context.Context, id int64, userID uuid.UUID) (bool, error)
}

// Notification is an in-app message shown to a user.
type Notification struct {
	ID        int64     `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}
