package handler

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dtroode/voc-auth/internal/model"
)

// handleError converts a classified error into a gRPC status.
func handleError(err error) error {
	code := codes.Internal
	switch {
	case errors.Is(err, model.ErrValidation):
		code = codes.InvalidArgument
	case errors.Is(err, model.ErrAuth):
		code = codes.Unauthenticated
	case errors.Is(err, model.ErrNotFound):
		code = codes.NotFound
	case errors.Is(err, model.ErrConflict):
		code = codes.AlreadyExists
	case errors.Is(err, model.ErrTransient), errors.Is(err, model.ErrDelivery):
		code = codes.Unavailable
	}

	if code == codes.Internal {
		return status.Error(code, "internal server error")
	}
	return status.Error(code, model.PublicMessage(err, code.String()))
}
