package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dtroode/voc-auth/internal/logger"
	"github.com/dtroode/voc-auth/internal/model"
)

func TestStatusFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want int
	}{
		{model.NewValidationError("bad"), http.StatusBadRequest},
		{model.NewAuthError("nope"), http.StatusUnauthorized},
		{model.NewNotFoundError("gone"), http.StatusNotFound},
		{model.NewConflictError("taken", nil), http.StatusConflict},
		{model.NewDeliveryError("mail", nil), http.StatusBadGateway},
		{model.NewTransientError("later", nil), http.StatusServiceUnavailable},
		{model.NewInternalError("boom", nil), http.StatusInternalServerError},
		{fmt.Errorf("wrapped: %w", model.NewConflictError("taken", nil)), http.StatusConflict},
		{assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

func TestWriteError_LogsServerFailures(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	lg := logger.NewWithWriter(&buf, 0, "text")

	rec := httptest.NewRecorder()
	writeError(rec, httptest.NewRequest(http.MethodPost, "/login", nil), lg,
		model.NewInternalError("failed to sign token", assert.AnError))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"message":"`+internalMessage+`"}`, rec.Body.String())
	assert.Contains(t, buf.String(), "failed to sign token")

	buf.Reset()
	rec = httptest.NewRecorder()
	writeError(rec, httptest.NewRequest(http.MethodPost, "/login", nil), lg, model.NewAuthError("invalid credentials"))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, buf.String())
}

func TestDecode_RejectsOversizedBody(t *testing.T) {
	t.Parallel()

	body := `{"email":"` + strings.Repeat("a", maxBodyBytes) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
	rec := httptest.NewRecorder()

	var dst loginRequest
	err := decode(rec, req, &dst)

	assert.EqualError(t, err, "request body is too large")
}
