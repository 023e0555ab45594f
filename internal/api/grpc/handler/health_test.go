package handler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/dtroode/voc-auth/internal/mocks"
	"github.com/dtroode/voc-auth/internal/model"
	"github.com/dtroode/voc-auth/internal/testutil"
)

func TestHealth_Check(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		service    string
		checkErr   error
		wantStatus healthpb.HealthCheckResponse_ServingStatus
	}{
		{name: "server serving", wantStatus: healthpb.HealthCheckResponse_SERVING},
		{name: "named service serving", service: ServiceName, wantStatus: healthpb.HealthCheckResponse_SERVING},
		{name: "database down", checkErr: model.NewTransientError("database unavailable", assert.AnError), wantStatus: healthpb.HealthCheckResponse_NOT_SERVING},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			checker := &mocks.HealthChecker{}
			checker.On("Check", mock.Anything).Return(tt.checkErr)

			resp, err := NewHealth(checker, testutil.MakeNoopLogger()).
				Check(context.Background(), &healthpb.HealthCheckRequest{Service: tt.service})

			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.GetStatus())
			checker.AssertExpectations(t)
		})
	}
}

func TestHealth_Check_UnknownService(t *testing.T) {
	t.Parallel()

	checker := &mocks.HealthChecker{}

	_, err := NewHealth(checker, testutil.MakeNoopLogger()).
		Check(context.Background(), &healthpb.HealthCheckRequest{Service: "other.Service"})

	assert.Equal(t, codes.NotFound, status.Code(err))
	checker.AssertNotCalled(t, "Check", mock.Anything)
}
