package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/voc-auth/internal/mocks"
	"github.com/dtroode/voc-auth/internal/testutil"
)

func TestNewSweeper_InvalidSchedule(t *testing.T) {
	_, err := NewSweeper(&mocks.UserStore{}, "every now and then", time.Second, testutil.MakeNoopLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid sweep schedule")
}

func TestSweeper_Sweep(t *testing.T) {
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		n       int64
		err     error
		wantErr bool
	}{
		{name: "cleared", n: 3},
		{name: "nothing to clear", n: 0},
		{name: "store failure", err: errors.New("db down"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := &mocks.UserStore{}
			users.On("ClearExpiredResetTokens", mock.Anything, now).Return(tt.n, tt.err)

			s, err := NewSweeper(users, "@every 15m", time.Second, testutil.MakeNoopLogger())
			require.NoError(t, err)
			s.now = func() time.Time { return now }

			n, err := s.Sweep(context.Background())
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "failed to clear expired reset tokens")
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.n, n)
			}
			users.AssertExpectations(t)
		})
	}
}

func TestSweeper_RunsOnSchedule(t *testing.T) {
	swept := make(chan struct{}, 1)
	users := &mocks.UserStore{}
	users.On("ClearExpiredResetTokens", mock.Anything, mock.Anything).
		Return(int64(1), nil).
		Run(func(mock.Arguments) {
			select {
			case swept <- struct{}{}:
			default:
			}
		})

	s, err := NewSweeper(users, "@every 1s", time.Second, testutil.MakeNoopLogger())
	require.NoError(t, err)

	s.Start()
	select {
	case <-swept:
	case <-time.After(5 * time.Second):
		t.Fatal("sweep did not run")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.NoError(t, s.Stop(ctx))
}
