package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dtroode/voc-auth/internal/model"
)

// UserStore mocks model.UserStore.
type UserStore struct {
	mock.Mock
}

func (m *UserStore) GetByEmail(ctx context.Context, email string) (model.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *UserStore) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *UserStore) Create(ctx context.Context, user model.User) (model.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *UserStore) UpdatePasswordHash(ctx context.Context, id uuid.UUID, passwordHash string) (bool, error) {
	args := m.Called(ctx, id, passwordHash)
	return args.Bool(0), args.Error(1)
}

func (m *UserStore) UpdateCredentials(ctx context.Context, id uuid.UUID, name, email, passwordHash string) (bool, error) {
	args := m.Called(ctx, id, name, email, passwordHash)
	return args.Bool(0), args.Error(1)
}

func (m *UserStore) SetResetToken(ctx context.Context, id uuid.UUID, tokenHash string, expiresAt time.Time) (bool, error) {
	args := m.Called(ctx, id, tokenHash, expiresAt)
	return args.Bool(0), args.Error(1)
}

func (m *UserStore) ClearResetTokenIfMatches(ctx context.Context, email, tokenHash, newPasswordHash string, now time.Time) (bool, error) {
	args := m.Called(ctx, email, tokenHash, newPasswordHash, now)
	return args.Bool(0), args.Error(1)
}

func (m *UserStore) ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

// NotificationStore mocks model.NotificationStore.
type NotificationStore struct {
	mock.Mock
}

func (m *NotificationStore) Create(ctx context.Context, notification model.Notification) error {
	args := m.Called(ctx, notification)
	return args.Error(0)
}

func (m *NotificationStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Notification, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]model.Notification), args.Error(1)
}

func (m *NotificationStore) MarkRead(ctx context.Context, id int64, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, id, userID)
	return args.Bool(0), args.Error(1)
}
