package mocks

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dtroode/voc-auth/internal/model"
)

// PasswordHasher mocks model.PasswordHasher.
type PasswordHasher struct {
	mock.Mock
}

func (m *PasswordHasher) Hash(plaintext string) (string, error) {
	args := m.Called(plaintext)
	return args.String(0), args.Error(1)
}

func (m *PasswordHasher) Verify(plaintext, hash string) bool {
	args := m.Called(plaintext, hash)
	return args.Bool(0)
}

func (m *PasswordHasher) WellFormed(hash string) bool {
	args := m.Called(hash)
	return args.Bool(0)
}

// TokenManager mocks model.TokenManager.
type TokenManager struct {
	mock.Mock
}

func (m *TokenManager) Issue(user model.User) (string, time.Time, error) {
	args := m.Called(user)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *TokenManager) Validate(token string) (model.Identity, error) {
	args := m.Called(token)
	return args.Get(0).(model.Identity), args.Error(1)
}

// Notifier mocks model.Notifier.
type Notifier struct {
	mock.Mock
}

func (m *Notifier) Send(ctx context.Context, email model.Email) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

// Storage mocks model.Storage.
type Storage struct {
	mock.Mock
}

func (m *Storage) Upload(ctx context.Context, key, contentType string, reader io.Reader, size int64) error {
	args := m.Called(ctx, key, contentType, reader, size)
	return args.Error(0)
}

// AuthService mocks the credential operations consumed by the HTTP handlers.
type AuthService struct {
	mock.Mock
}

func (m *AuthService) Register(ctx context.Context, in model.RegisterInput) (model.Registration, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(model.Registration), args.Error(1)
}

func (m *AuthService) Login(ctx context.Context, email, password string) (model.Session, error) {
	args := m.Called(ctx, email, password)
	return args.Get(0).(model.Session), args.Error(1)
}

func (m *AuthService) ForgotPassword(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *AuthService) VerifyResetToken(ctx context.Context, email, token string) (model.ResetTokenCheck, error) {
	args := m.Called(ctx, email, token)
	return args.Get(0).(model.ResetTokenCheck), args.Error(1)
}

func (m *AuthService) ResetPassword(ctx context.Context, email, token, newPassword string) (model.Outcome, error) {
	args := m.Called(ctx, email, token, newPassword)
	return args.Get(0).(model.Outcome), args.Error(1)
}

func (m *AuthService) ChangePassword(ctx context.Context, in model.ChangePasswordInput) (model.Outcome, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(model.Outcome), args.Error(1)
}

func (m *AuthService) Profile(ctx context.Context, id uuid.UUID) (model.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.User), args.Error(1)
}

// NotificationService mocks the in-app notification operations consumed by the HTTP handlers.
type NotificationService struct {
	mock.Mock
}

func (m *NotificationService) List(ctx context.Context, userID uuid.UUID) ([]model.Notification, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]model.Notification), args.Error(1)
}

func (m *NotificationService) MarkRead(ctx context.Context, userID uuid.UUID, id int64) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

// HealthChecker mocks a readiness probe.
type HealthChecker struct {
	mock.Mock
}

func (m *HealthChecker) Check(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
