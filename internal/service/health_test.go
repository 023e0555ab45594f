package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dtroode/voc-auth/internal/model"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealth_Check(t *testing.T) {
	ok := NewHealth(pingFunc(func(context.Context) error { return nil }), time.Second)
	assert.NoError(t, ok.Check(context.Background()))

	down := NewHealth(pingFunc(func(context.Context) error { return errors.New("refused") }), time.Second)
	assert.ErrorIs(t, down.Check(context.Background()), model.ErrTransient)

	slow := NewHealth(pingFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}), 10*time.Millisecond)
	err := slow.Check(context.Background())
	assert.ErrorIs(t, err, model.ErrTransient)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
