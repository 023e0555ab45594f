package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/voc-auth/internal/hasher"
	"github.com/dtroode/voc-auth/internal/logger"
	"github.com/dtroode/voc-auth/internal/model"
	"github.com/dtroode/voc-auth/internal/notify"
)

const (
	resetTokenBytes = 32
	dummyPassword   = "voc-auth-unknown-account"
)

// AuthParams tunes the credential lifecycle.
type AuthParams struct {
	MinPasswordLength int
	StoreTimeout      time.Duration
	MailTimeout       time.Duration
	ResetTokenTTL     time.Duration
	ResetURL          string
}

// Auth orchestrates registration, login and the password lifecycle.
type Auth struct {
	users         model.UserStore
	notifications model.NotificationStore
	hasher        model.PasswordHasher
	tokens        model.TokenManager
	mailer        model.Notifier
	params        AuthParams
	logger        *logger.Logger

	now           func() time.Time
	newResetToken func() (string, error)

	dummyOnce sync.Once
	dummyHash string
}

func NewAuth(
	users model.UserStore,
	notifications model.NotificationStore,
	hasher model.PasswordHasher,
	tokens model.TokenManager,
	mailer model.Notifier,
	params AuthParams,
	logger *logger.Logger,
) *Auth {
	return &Auth{
		users:         users,
		notifications: notifications,
		hasher:        hasher,
		tokens:        tokens,
		mailer:        mailer,
		params:        params,
		logger:        logger,
		now:           time.Now,
		newResetToken: randomToken,
	}
}

// Register creates an account and sends a welcome notification.
func (a *Auth) Register(ctx context.Context, in model.RegisterInput) (model.Registration, error) {
	email := normalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)

	a.logger.Debug("Auth service: registering user",
		"email", email)

	if email == "" || in.Password == "" {
		return model.Registration{}, model.NewValidationError("Email and password are required.")
	}
	if err := validateEmail(email); err != nil {
		return model.Registration{}, err
	}
	if err := a.validatePassword(in.Password); err != nil {
		return model.Registration{}, err
	}

	_, err := a.getByEmail(ctx, email)
	switch {
	case err == nil:
		a.logger.Info("Auth service: email already registered",
			"email", email)
		return model.Registration{}, model.NewConflictError("email in use", nil)
	case !errors.Is(err, model.ErrNotFound):
		a.logger.Error("Auth service: failed to get user by email",
			"email", email,
			"error", err.Error())
		return model.Registration{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	passwordHash, err := a.hashPassword(in.Password)
	if err != nil {
		a.logger.Error("Auth service: failed to hash password",
			"email", email,
			"error", err.Error())
		return model.Registration{}, err
	}

	storeCtx, cancel := context.WithTimeout(ctx, a.params.StoreTimeout)
	defer cancel()

	user, err := a.users.Create(storeCtx, model.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    a.now().UTC(),
	})
	if err != nil {
		err = storeError(err)
		a.logger.Error("Auth service: failed to create user",
			"email", email,
			"error", err.Error())
		return model.Registration{}, fmt.Errorf("failed to create user: %w", err)
	}

	notified := a.notify(ctx, user, "Welcome! Your account has been created.", notify.WelcomeEmail)

	a.logger.Info("Auth service: user registered",
		"user_id", user.ID,
		"notified", notified)

	return model.Registration{User: user, Notified: notified}, nil
}

// Login checks credentials and issues a bearer token.
// An unknown email and a wrong password fail with the same error.
func (a *Auth) Login(ctx context.Context, email, password string) (model.Session, error) {
	email = normalizeEmail(email)

	a.logger.Debug("Auth service: logging in",
		"email", email)

	if email == "" || password == "" {
		return model.Session{}, model.NewValidationError("Email and password are required.")
	}

	user, err := a.getByEmail(ctx, email)
	if errors.Is(err, model.ErrNotFound) {
		a.verifyDummy(password)
		a.logger.Info("Auth service: login failed",
			"email", email)
		return model.Session{}, invalidCredentials()
	}
	if err != nil {
		a.logger.Error("Auth service: failed to get user by email",
			"email", email,
			"error", err.Error())
		return model.Session{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	if !a.hasher.Verify(password, user.PasswordHash) {
		a.logger.Info("Auth service: login failed",
			"email", email)
		return model.Session{}, invalidCredentials()
	}

	token, expiresAt, err := a.tokens.Issue(user)
	if err != nil {
		a.logger.Error("Auth service: failed to issue token",
			"user_id", user.ID,
			"error", err.Error())
		return model.Session{}, model.NewInternalError("failed to issue token", err)
	}

	a.logger.Info("Auth service: user logged in",
		"user_id", user.ID)

	return model.Session{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// ForgotPassword stores a fresh reset token and emails the reset link.
// An unknown email is reported as not found.
func (a *Auth) ForgotPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)

	a.logger.Debug("Auth service: password reset requested",
		"email", email)

	if email == "" {
		return model.NewValidationError("Email is required.")
	}

	user, err := a.getByEmail(ctx, email)
	if errors.Is(err, model.ErrNotFound) {
		return model.NewNotFoundError("User not found.")
	}
	if err != nil {
		a.logger.Error("Auth service: failed to get user by email",
			"email", email,
			"error", err.Error())
		return fmt.Errorf("failed to get user by email: %w", err)
	}

	token, err := a.newResetToken()
	if err != nil {
		return model.NewInternalError("failed to generate reset token", err)
	}
	expiresAt := a.now().UTC().Add(a.params.ResetTokenTTL)

	storeCtx, cancel := context.WithTimeout(ctx, a.params.StoreTimeout)
	defer cancel()

	ok, err := a.users.SetResetToken(storeCtx, user.ID, digest(token), expiresAt)
	if err != nil {
		err = storeError(err)
		a.logger.Error("Auth service: failed to store reset token",
			"user_id", user.ID,
			"error", err.Error())
		return fmt.Errorf("failed to store reset token: %w", err)
	}
	if !ok {
		return model.NewNotFoundError("User not found.")
	}

	link, err := notify.ResetLink(a.params.ResetURL, token, user.Email)
	if err != nil {
		return model.NewInternalError("failed to build reset link", err)
	}
	message, err := notify.ResetEmail(user, link, a.params.ResetTokenTTL)
	if err != nil {
		return model.NewInternalError("failed to render reset email", err)
	}

	if err := a.send(ctx, message); err != nil {
		a.logger.Error("Auth service: failed to send reset email",
			"user_id", user.ID,
			"error", err.Error())
		return model.NewDeliveryError("Failed to send the password reset email.", err)
	}

	a.logger.Info("Auth service: reset link sent",
		"user_id", user.ID,
		"expires_at", expiresAt)

	return nil
}

// VerifyResetToken reports whether token may still be used to reset the password of email.
// Bad input never produces an error, only an invalid verdict.
func (a *Auth) VerifyResetToken(ctx context.Context, email, token string) (model.ResetTokenCheck, error) {
	_, check, err := a.checkResetToken(ctx, email, token)
	return check, err
}

// ResetPassword replaces the password using a reset token. The token is consumed exactly once.
func (a *Auth) ResetPassword(ctx context.Context, email, token, newPassword string) (model.Outcome, error) {
	user, check, err := a.checkResetToken(ctx, email, token)
	if err != nil {
		return model.Outcome{}, err
	}
	if !check.Valid() {
		a.logger.Info("Auth service: reset rejected",
			"email", normalizeEmail(email),
			"status", check.Status)
		return model.Outcome{}, model.NewValidationError(check.Message)
	}
	if err := a.validatePassword(newPassword); err != nil {
		return model.Outcome{}, err
	}

	passwordHash, err := a.hashPassword(newPassword)
	if err != nil {
		a.logger.Error("Auth service: failed to hash password",
			"user_id", user.ID,
			"error", err.Error())
		return model.Outcome{}, err
	}

	storeCtx, cancel := context.WithTimeout(ctx, a.params.StoreTimeout)
	defer cancel()

	ok, err := a.users.ClearResetTokenIfMatches(storeCtx, user.Email, digest(token), passwordHash, a.now().UTC())
	if err != nil {
		err = storeError(err)
		a.logger.Error("Auth service: failed to reset password",
			"user_id", user.ID,
			"error", err.Error())
		return model.Outcome{}, fmt.Errorf("failed to reset password: %w", err)
	}
	if !ok {
		a.logger.Info("Auth service: reset token consumed concurrently",
			"user_id", user.ID)
		return model.Outcome{}, model.NewConflictError("Reset token has already been used.", nil)
	}

	notified := a.notify(ctx, user, "Your password has been reset.", notify.PasswordChangedEmail)

	a.logger.Info("Auth service: password reset",
		"user_id", user.ID,
		"notified", notified)

	return model.Outcome{Notified: notified}, nil
}

// ChangePassword replaces the password of an account after checking the old one.
// A differing name or email is written together with the new hash.
func (a *Auth) ChangePassword(ctx context.Context, in model.ChangePasswordInput) (model.Outcome, error) {
	a.logger.Debug("Auth service: changing password",
		"user_id", in.UserID)

	if in.UserID == uuid.Nil {
		return model.Outcome{}, model.NewValidationError("User id is required.")
	}
	if in.OldPassword == "" || in.NewPassword == "" {
		return model.Outcome{}, model.NewValidationError("Old and new password are required.")
	}
	if err := a.validatePassword(in.NewPassword); err != nil {
		return model.Outcome{}, err
	}

	user, err := a.getByID(ctx, in.UserID)
	if errors.Is(err, model.ErrNotFound) {
		return model.Outcome{}, model.NewNotFoundError("User not found.")
	}
	if err != nil {
		a.logger.Error("Auth service: failed to get user by id",
			"user_id", in.UserID,
			"error", err.Error())
		return model.Outcome{}, fmt.Errorf("failed to get user by id: %w", err)
	}

	if !a.hasher.Verify(in.OldPassword, user.PasswordHash) {
		a.logger.Info("Auth service: old password mismatch",
			"user_id", user.ID)
		return model.Outcome{}, model.NewAuthError("old password incorrect")
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = user.Name
	}
	email := normalizeEmail(in.Email)
	if email == "" {
		email = user.Email
	} else if err := validateEmail(email); err != nil {
		return model.Outcome{}, err
	}

	passwordHash, err := a.hashPassword(in.NewPassword)
	if err != nil {
		a.logger.Error("Auth service: failed to hash password",
			"user_id", user.ID,
			"error", err.Error())
		return model.Outcome{}, err
	}

	storeCtx, cancel := context.WithTimeout(ctx, a.params.StoreTimeout)
	defer cancel()

	var ok bool
	if name != user.Name || email != user.Email {
		ok, err = a.users.UpdateCredentials(storeCtx, user.ID, name, email, passwordHash)
	} else {
		ok, err = a.users.UpdatePasswordHash(storeCtx, user.ID, passwordHash)
	}
	if err != nil {
		err = storeError(err)
		a.logger.Error("Auth service: failed to update password",
			"user_id", user.ID,
			"error", err.Error())
		return model.Outcome{}, fmt.Errorf("failed to update password: %w", err)
	}
	if !ok {
		return model.Outcome{}, model.NewNotFoundError("User not found.")
	}

	user.Name, user.Email = name, email
	notified := a.notify(ctx, user, "Your password has been changed.", notify.PasswordChangedEmail)

	a.logger.Info("Auth service: password changed",
		"user_id", user.ID,
		"notified", notified)

	return model.Outcome{Notified: notified}, nil
}

// Profile returns the account behind id.
func (a *Auth) Profile(ctx context.Context, id uuid.UUID) (model.User, error) {
	user, err := a.getByID(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return model.User{}, model.NewNotFoundError("Profile not found.")
	}
	if err != nil {
		return model.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}
	return user, nil
}

func (a *Auth) checkResetToken(ctx context.Context, email, token string) (model.User, model.ResetTokenCheck, error) {
	email = normalizeEmail(email)
	if email == "" || token == "" {
		return model.User{}, invalidToken("Email and token are required."), nil
	}

	user, err := a.getByEmail(ctx, email)
	if errors.Is(err, model.ErrNotFound) {
		return model.User{}, invalidToken("User not found."), nil
	}
	if err != nil {
		a.logger.Error("Auth service: failed to get user by email",
			"email", email,
			"error", err.Error())
		return model.User{}, model.ResetTokenCheck{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	if user.ResetTokenHash == nil || user.ResetTokenExpiresAt == nil {
		return user, invalidToken("No password reset was requested."), nil
	}
	if subtle.ConstantTimeCompare([]byte(*user.ResetTokenHash), []byte(digest(token))) != 1 {
		return user, invalidToken("Invalid token."), nil
	}
	if !user.ResetTokenExpiresAt.After(a.now()) {
		return user, model.ResetTokenCheck{Status: model.ResetTokenExpired, Message: "Token has expired."}, nil
	}

	return user, model.ResetTokenCheck{Status: model.ResetTokenValid, Message: "Token is valid."}, nil
}

// notify records an in-app notification and emails the user. Failures are logged and reported as false.
func (a *Auth) notify(ctx context.Context, user model.User, message string, compose func(model.User) (model.Email, error)) bool {
	notified := true

	storeCtx, cancel := context.WithTimeout(ctx, a.params.StoreTimeout)
	err := a.notifications.Create(storeCtx, model.Notification{
		UserID:    user.ID,
		Message:   message,
		CreatedAt: a.now().UTC(),
	})
	cancel()
	if err != nil {
		a.logger.Warn("Auth service: failed to create notification",
			"user_id", user.ID,
			"error", err.Error())
		notified = false
	}

	email, err := compose(user)
	if err == nil {
		err = a.send(ctx, email)
	}
	if err != nil {
		a.logger.Warn("Auth service: failed to send email",
			"user_id", user.ID,
			"error", err.Error())
		notified = false
	}

	return notified
}

func (a *Auth) send(ctx context.Context, email model.Email) error {
	mailCtx, cancel := context.WithTimeout(ctx, a.params.MailTimeout)
	defer cancel()
	return a.mailer.Send(mailCtx, email)
}

func (a *Auth) getByEmail(ctx context.Context, email string) (model.User, error) {
	storeCtx, cancel := context.WithTimeout(ctx, a.params.StoreTimeout)
	defer cancel()

	user, err := a.users.GetByEmail(storeCtx, email)
	return user, storeError(err)
}

func (a *Auth) getByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	storeCtx, cancel := context.WithTimeout(ctx, a.params.StoreTimeout)
	defer cancel()

	user, err := a.users.GetByID(storeCtx, id)
	return user, storeError(err)
}

func (a *Auth) hashPassword(password string) (string, error) {
	passwordHash, err := a.hasher.Hash(password)
	if err != nil {
		return "", model.NewInternalError("failed to hash password", err)
	}
	if !a.hasher.WellFormed(passwordHash) {
		return "", model.NewInternalError("password hasher produced a malformed hash", nil)
	}
	return passwordHash, nil
}

// verifyDummy runs one hash comparison so an unknown email takes as long as a wrong password.
// The dummy hash is made once with the hasher's own cost.
func (a *Auth) verifyDummy(password string) {
	a.dummyOnce.Do(func() {
		hash, err := a.hasher.Hash(dummyPassword)
		if err != nil {
			a.logger.Warn("Auth service: failed to prepare dummy hash",
				"error", err.Error())
			return
		}
		a.dummyHash = hash
	})
	if a.dummyHash != "" {
		a.hasher.Verify(password, a.dummyHash)
	}
}

func (a *Auth) validatePassword(password string) error {
	if len(password) < a.params.MinPasswordLength {
		return model.NewValidationError(fmt.Sprintf("Password must be at least %d characters long.", a.params.MinPasswordLength))
	}
	if len(password) > hasher.MaxPasswordBytes {
		return model.NewValidationError(fmt.Sprintf("Password must be at most %d bytes long.", hasher.MaxPasswordBytes))
	}
	return nil
}

// storeError marks deadline errors the store did not classify as transient.
func storeError(err error) error {
	if err == nil || errors.Is(err, model.ErrTransient) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return model.NewTransientError("database unavailable", err)
	}
	return err
}

func invalidCredentials() error {
	return model.NewAuthError("invalid credentials")
}

func invalidToken(message string) model.ResetTokenCheck {
	return model.ResetTokenCheck{Status: model.ResetTokenInvalid, Message: message}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return model.NewValidationError("Email is invalid.")
	}
	return nil
}

func randomToken() (string, error) {
	b := make([]byte, resetTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func digest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
