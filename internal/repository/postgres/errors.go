package postgres

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dtroode/voc-auth/internal/model"
)

const uniqueViolation = "23505"

// classify maps driver errors to model error kinds and wraps the rest with msg.
func classify(err error, msg string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return model.NewConflictError("email in use", err)
	}

	var connectErr *pgconn.ConnectError
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) || errors.As(err, &connectErr) ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		return model.NewTransientError("database unavailable", err)
	}

	return fmt.Errorf("%s: %w", msg, err)
}
