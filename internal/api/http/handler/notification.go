package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dtroode/voc-auth/internal/logger"
	"github.com/dtroode/voc-auth/internal/model"
)

// NotificationService lists and acknowledges in-app notifications.
type NotificationService interface {
	List(ctx context.Context, userID uuid.UUID) ([]model.Notification, error)
	MarkRead(ctx context.Context, userID uuid.UUID, id int64) error
}

// Notification serves the notification endpoints of the authenticated user.
type Notification struct {
	service        NotificationService
	contextManager model.ContextManager
	logger         *logger.Logger
}

func NewNotification(service NotificationService, contextManager model.ContextManager, logger *logger.Logger) *Notification {
	return &Notification{
		service:        service,
		contextManager: contextManager,
		logger:         logger,
	}
}

// List handles GET /notifications.
func (h *Notification) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.contextManager.GetIdentityFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized.")
		return
	}

	list, err := h.service.List(r.Context(), identity.UserID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, list)
}

// MarkRead handles POST /notifications/{id}/read.
func (h *Notification) MarkRead(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.contextManager.GetIdentityFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized.")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeMessage(w, http.StatusBadRequest, "Invalid notification id.")
		return
	}

	if err := h.service.MarkRead(r.Context(), identity.UserID, id); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeMessage(w, http.StatusOK, "Notification marked as read.")
}
