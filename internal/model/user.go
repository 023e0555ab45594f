package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserStore defines persistence operations for users.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	Create(ctx context.Context, user User) (User, error)
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, passwordHash string) (bool, error)
	UpdateCredentials(ctx context.Context, id uuid.UUID, name, email, passwordHash string) (bool, error)
	SetResetToken(ctx context.Context, id uuid.UUID, tokenHash string, expiresAt time.Time) (bool, error)
	ClearResetTokenIfMatches(ctx context.Context, email, tokenHash, newPasswordHash string, now time.Time) (bool, error)
	ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error)
}

// User represents a stored account.
// ResetTokenHash and ResetTokenExpiresAt are either both set or both nil.
type User struct {
	ID                  uuid.UUID
	Name                string
	Email               string
	PasswordHash        string
	CreatedAt           time.Time
	UpdatedAt           time.Time
	ResetTokenHash      *string
	ResetTokenExpiresAt *time.Time
}

// PublicUser is the part of User that may leave the service.
type PublicUser struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

func (u User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}
