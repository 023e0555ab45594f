package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dtroode/voc-auth/internal/model"
)

var _ model.UserStore = (*UserRepository)(nil)

const userColumns = `id, name, email, password_hash, created_at, updated_at, reset_token_hash, reset_token_expires_at`

type UserRepository struct {
	db querier
}

func NewUserRepository(db querier) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

func scanUser(row pgx.Row) (model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt,
		&user.ResetTokenHash, &user.ResetTokenExpiresAt,
	)
	return user, err
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (model.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`

	user, err := scanUser(r.db.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, classify(err, "failed to get user by email")
	}

	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, classify(err, "failed to get user by id")
	}

	return user, nil
}

// Create inserts user. The unique index on LOWER(email) turns a concurrent duplicate into a conflict.
func (r *UserRepository) Create(ctx context.Context, user model.User) (model.User, error) {
	const query = `INSERT INTO users (id, name, email, password_hash, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $5)
			  RETURNING ` + userColumns

	saved, err := scanUser(r.db.QueryRow(ctx, query,
		user.ID, user.Name, user.Email, user.PasswordHash, user.CreatedAt,
	))
	if err != nil {
		return model.User{}, classify(err, "failed to create user")
	}

	return saved, nil
}

func (r *UserRepository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, passwordHash string) (bool, error) {
	const query = `UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id, passwordHash)
	if err != nil {
		return false, classify(err, "failed to update password hash")
	}
	return tag.RowsAffected() > 0, nil
}

func (r *UserRepository) UpdateCredentials(ctx context.Context, id uuid.UUID, name, email, passwordHash string) (bool, error) {
	const query = `UPDATE users SET name = $2, email = $3, password_hash = $4, updated_at = NOW() WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id, name, email, passwordHash)
	if err != nil {
		return false, classify(err, "failed to update credentials")
	}
	return tag.RowsAffected() > 0, nil
}

// SetResetToken stores a reset token digest, replacing any previous one.
func (r *UserRepository) SetResetToken(ctx context.Context, id uuid.UUID, tokenHash string, expiresAt time.Time) (bool, error) {
	const query = `UPDATE users
			  SET reset_token_hash = $2, reset_token_expires_at = $3, updated_at = NOW()
			  WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id, tokenHash, expiresAt)
	if err != nil {
		return false, classify(err, "failed to set reset token")
	}
	return tag.RowsAffected() > 0, nil
}

// ClearResetTokenIfMatches sets the new password and drops the reset token in one statement,
// and only while the stored token still matches and has not expired.
func (r *UserRepository) ClearResetTokenIfMatches(ctx context.Context, email, tokenHash, newPasswordHash string, now time.Time) (bool, error) {
	const query = `UPDATE users
			  SET password_hash = $3, reset_token_hash = NULL, reset_token_expires_at = NULL, updated_at = NOW()
			  WHERE LOWER(email) = LOWER($1) AND reset_token_hash = $2 AND reset_token_expires_at > $4`

	tag, err := r.db.Exec(ctx, query, email, tokenHash, newPasswordHash, now)
	if err != nil {
		return false, classify(err, "failed to consume reset token")
	}
	return tag.RowsAffected() > 0, nil
}

func (r *UserRepository) ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	const query = `UPDATE users
			  SET reset_token_hash = NULL, reset_token_expires_at = NULL, updated_at = NOW()
			  WHERE reset_token_expires_at IS NOT NULL AND reset_token_expires_at <= $1`

	tag, err := r.db.Exec(ctx, query, now)
	if err != nil {
		return 0, classify(err, "failed to clear expired reset tokens")
	}
	return tag.RowsAffected(), nil
}
