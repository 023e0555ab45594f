package model

import (
	"time"

	"github.com/google/uuid"
)

// TokenManager issues and validates signed bearer tokens.
type TokenManager interface {
	Issue(user User) (token string, expiresAt time.Time, err error)
	Validate(token string) (Identity, error)
}

// Identity is what a valid bearer token proves.
type Identity struct {
	UserID    uuid.UUID
	Email     string
	Name      string
	TokenID   string
	ExpiresAt time.Time
}

// PasswordHasher hashes and verifies credentials.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
	WellFormed(hash string) bool
}
