package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genailabs-inc/usecase-portal/pkg/apperrors"
)

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, WriteJSON(rec, http.StatusCreated, map[string]string{"hello": "world"}))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"hello": "world"}`, rec.Body.String())
}

func TestErrorResponse(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, ErrorResponse(rec, http.StatusTeapot, "teapot", "short and stout"))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.JSONEq(t, `{"error": "teapot", "message": "short and stout"}`, rec.Body.String())
}

func TestWriteError_Mapping(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{fmt.Errorf("x: %w", apperrors.ErrNotFound), http.StatusNotFound, "not_found"},
		{fmt.Errorf("x: %w", apperrors.ErrValidation), http.StatusBadRequest, "validation_failed"},
		{fmt.Errorf("x: %w", apperrors.ErrInvalidTransition), http.StatusBadRequest, "invalid_transition"},
		{fmt.Errorf("x: %w", apperrors.ErrUnauthorized), http.StatusForbidden, "forbidden"},
		{fmt.Errorf("x: %w", apperrors.ErrConflict), http.StatusConflict, "conflict"},
		{fmt.Errorf("x: %w", apperrors.ErrStorage), http.StatusInternalServerError, "storage_error"},
		{errors.New("anything else"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		t.Run(tt.wantCode, func(t *testing.T) {
			rec := httptest.NewRecorder()
			require.NoError(t, WriteError(rec, tt.err))
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantCode)
		})
	}
}

func TestWriteError_HidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, WriteError(rec, fmt.Errorf("reading /var/data/usecases.json: %w", apperrors.ErrStorage)))

	assert.NotContains(t, rec.Body.String(), "/var/data", "storage paths stay out of responses")
}
