package model

import (
	"context"
	"io"
)

// Storage keeps opaque objects by key.
type Storage interface {
	Upload(ctx context.Context, key, contentType string, reader io.Reader, size int64) error
}
