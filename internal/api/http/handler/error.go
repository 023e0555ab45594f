package handler

import (
	"errors"
	"net/http"

	"github.com/dtroode/voc-auth/internal/logger"
	"github.com/dtroode/voc-auth/internal/model"
)

const (
	internalMessage    = "An error occurred while processing your request."
	unavailableMessage = "Service is temporarily unavailable, try again later."
)

// statusFor maps an error kind to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, model.ErrDelivery):
		return http.StatusBadGateway
	case errors.Is(err, model.ErrTransient):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// handleError writes err with the given status. Server-side failures never expose their cause.
func handleError(w http.ResponseWriter, r *http.Request, logger *logger.Logger, status int, err error) {
	message := model.PublicMessage(err, internalMessage)
	switch status {
	case http.StatusServiceUnavailable:
		message = unavailableMessage
	case http.StatusInternalServerError:
		message = internalMessage
	}

	if status >= http.StatusInternalServerError {
		logger.Error("HTTP handler: request failed",
			"path", r.URL.Path,
			"status", status,
			"error", err.Error())
	}

	writeMessage(w, status, message)
}

func writeError(w http.ResponseWriter, r *http.Request, logger *logger.Logger, err error) {
	handleError(w, r, logger, statusFor(err), err)
}
