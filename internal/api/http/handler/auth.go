package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/voc-auth/internal/logger"
	"github.com/dtroode/voc-auth/internal/model"
)

// AuthService is the credential lifecycle used by Auth.
type AuthService interface {
	Register(ctx context.Context, in model.RegisterInput) (model.Registration, error)
	Login(ctx context.Context, email, password string) (model.Session, error)
	ForgotPassword(ctx context.Context, email string) error
	VerifyResetToken(ctx context.Context, email, token string) (model.ResetTokenCheck, error)
	ResetPassword(ctx context.Context, email, token, newPassword string) (model.Outcome, error)
	ChangePassword(ctx context.Context, in model.ChangePasswordInput) (model.Outcome, error)
	Profile(ctx context.Context, id uuid.UUID) (model.User, error)
}

// Auth serves the account endpoints.
type Auth struct {
	service        AuthService
	contextManager model.ContextManager
	logger         *logger.Logger
}

func NewAuth(service AuthService, contextManager model.ContextManager, logger *logger.Logger) *Auth {
	return &Auth{
		service:        service,
		contextManager: contextManager,
		logger:         logger,
	}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerResponse struct {
	Message  string           `json:"message"`
	User     model.PublicUser `json:"user"`
	Notified bool             `json:"notified"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Message   string           `json:"message"`
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expiresAt"`
	User      model.PublicUser `json:"user"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetTokenRequest struct {
	Email       string `json:"email"`
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

type verifyResetTokenResponse struct {
	IsValid bool                   `json:"isValid"`
	Status  model.ResetTokenStatus `json:"status"`
	Message string                 `json:"message"`
}

type outcomeResponse struct {
	Message  string `json:"message"`
	Notified bool   `json:"notified"`
}

// updatePasswordRequest carries the old password in PasswordHash.
type updatePasswordRequest struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash"`
	NewPassword  string `json:"newPassword"`
}

// Register handles POST /register.
func (h *Auth) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decode(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	reg, err := h.service.Register(r.Context(), model.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, registerResponse{
		Message:  "User registered successfully.",
		User:     reg.User.Public(),
		Notified: reg.Notified,
	})
}

// Login handles POST /login.
func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	session, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Message:   "Login successful.",
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		User:      session.User.Public(),
	})
}

// ForgotPassword handles POST /forget-password. An unknown email is answered with 400.
func (h *Auth) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := decode(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	err := h.service.ForgotPassword(r.Context(), req.Email)
	if errors.Is(err, model.ErrNotFound) {
		handleError(w, r, h.logger, http.StatusBadRequest, err)
		return
	}
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeMessage(w, http.StatusOK, "Password reset link sent to your email.")
}

// VerifyResetToken handles POST /verify-reset-token. Token problems are reported with 200.
func (h *Auth) VerifyResetToken(w http.ResponseWriter, r *http.Request) {
	var req resetTokenRequest
	if err := decode(w, r, &req); err != nil {
		writeJSON(w, http.StatusOK, verifyResetTokenResponse{
			Status:  model.ResetTokenInvalid,
			Message: err.Error(),
		})
		return
	}

	check, err := h.service.VerifyResetToken(r.Context(), req.Email, req.Token)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, verifyResetTokenResponse{
		IsValid: check.Valid(),
		Status:  check.Status,
		Message: check.Message,
	})
}

// ResetPassword handles POST /reset-password.
func (h *Auth) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetTokenRequest
	if err := decode(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	outcome, err := h.service.ResetPassword(r.Context(), req.Email, req.Token, req.NewPassword)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, outcomeResponse{
		Message:  "Password has been reset successfully.",
		Notified: outcome.Notified,
	})
}

// UpdatePassword handles PUT /update-password. A wrong old password is answered with 400.
func (h *Auth) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	var req updatePasswordRequest
	if err := decode(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Email == "" || req.PasswordHash == "" || req.NewPassword == "" {
		writeMessage(w, http.StatusBadRequest, "Invalid password update data.")
		return
	}
	userID, err := uuid.Parse(req.ID)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid user id.")
		return
	}

	outcome, err := h.service.ChangePassword(r.Context(), model.ChangePasswordInput{
		UserID:      userID,
		OldPassword: req.PasswordHash,
		Name:        req.Name,
		Email:       req.Email,
		NewPassword: req.NewPassword,
	})
	if errors.Is(err, model.ErrAuth) {
		handleError(w, r, h.logger, http.StatusBadRequest, err)
		return
	}
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, outcomeResponse{
		Message:  "Password updated successfully.",
		Notified: outcome.Notified,
	})
}

// Me handles GET /me for the bearer of the request.
func (h *Auth) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.contextManager.GetIdentityFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized.")
		return
	}

	user, err := h.service.Profile(r.Context(), identity.UserID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, user.Public())
}
