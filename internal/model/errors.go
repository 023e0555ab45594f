package model

import "errors"

// Error kinds. Every error returned by the service layer matches exactly one of them via errors.Is.
var (
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
	ErrAuth       = errors.New("unauthorized")
	ErrNotFound   = errors.New("not found")
	ErrTransient  = errors.New("temporarily unavailable")
	ErrInternal   = errors.New("internal error")
	ErrDelivery   = errors.New("notification delivery failed")
)

// Error is a classified error with a message that is safe to show to API callers.
type Error struct {
	Kind    error
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap exposes both the kind and the underlying cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

func NewValidationError(msg string) *Error {
	return &Error{Kind: ErrValidation, Message: msg}
}

func NewConflictError(msg string, cause error) *Error {
	return &Error{Kind: ErrConflict, Message: msg, Cause: cause}
}

func NewAuthError(msg string) *Error {
	return &Error{Kind: ErrAuth, Message: msg}
}

func NewNotFoundError(msg string) *Error {
	return &Error{Kind: ErrNotFound, Message: msg}
}

func NewTransientError(msg string, cause error) *Error {
	return &Error{Kind: ErrTransient, Message: msg, Cause: cause}
}

func NewInternalError(msg string, cause error) *Error {
	return &Error{Kind: ErrInternal, Message: msg, Cause: cause}
}

func NewDeliveryError(msg string, cause error) *Error {
	return &Error{Kind: ErrDelivery, Message: msg, Cause: cause}
}

// PublicMessage returns the caller-facing message of err, or fallback when err carries none.
func PublicMessage(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return fallback
}
