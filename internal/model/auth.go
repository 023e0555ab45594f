package model

import (
	"time"

	"github.com/google/uuid"
)

// RegisterInput is the payload of a registration request.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Registration is the result of a successful registration.
// Notified is false when the user was created but the welcome notification did not go through.
type Registration struct {
	User     User
	Notified bool
}

// Session is the result of a successful login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      User
}

// ChangePasswordInput is the payload of an authenticated password change.
// Empty Name or Email keep the stored values.
type ChangePasswordInput struct {
	UserID      uuid.UUID
	OldPassword string
	Name        string
	Email       string
	NewPassword string
}

// Outcome reports whether the follow-up notification of a committed change was delivered.
type Outcome struct {
	Notified bool
}
