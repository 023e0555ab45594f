package hasher

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/dtroode/voc-auth/internal/model"
)

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

var _ model.PasswordHasher = (*Bcrypt)(nil)

// Bcrypt hashes passwords with a fixed work factor. The salt is embedded in the output.
type Bcrypt struct {
	cost int
}

// NewBcrypt creates a hasher with the given cost.
func NewBcrypt(cost int) (*Bcrypt, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &Bcrypt{cost: cost}, nil
}

func (b *Bcrypt) Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), b.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether plaintext matches hash. A malformed hash never matches.
func (b *Bcrypt) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// WellFormed reports whether hash looks like bcrypt output.
func (b *Bcrypt) WellFormed(hash string) bool {
	if len(hash) != 60 || hash[0] != '$' || hash[1] != '2' {
		return false
	}
	_, err := bcrypt.Cost([]byte(hash))
	return err == nil
}
