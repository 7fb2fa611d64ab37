package dto

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/erp/accounting/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeCompanyMissing, http.StatusBadRequest},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		{"INSUFFICIENT_STOCK", http.StatusUnprocessableEntity},
		{"DUPLICATE_REQUEST", http.StatusConflict},
		{"UNKNOWN_CODE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name     string
		err      *shared.DomainError
		expected int
	}{
		{"validation", shared.NewValidationError("UNBALANCED_ENTRY", "x"), http.StatusBadRequest},
		{"not found", shared.ErrNotFound, http.StatusNotFound},
		{"resolution gap", shared.NewResolutionGap("revenue"), http.StatusUnprocessableEntity},
		{"invalid state", shared.NewInvalidStateError("SESSION_CLOSED", "x"), http.StatusUnprocessableEntity},
		{"conflict", shared.NewConflictError("ALREADY_POSTED", "x"), http.StatusConflict},
		{"partial write", shared.ErrPartialWriteFailure, http.StatusInternalServerError},
		{"code overrides kind", shared.ErrInsufficientStock, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StatusFor(tt.err))
		})
	}
}

func TestErrorInfoFor(t *testing.T) {
	t.Run("wrapped domain error keeps its code", func(t *testing.T) {
		err := fmt.Errorf("post sale: %w", shared.NewInvalidStateError("NO_OPEN_SESSION", "No open cash session"))
		info, status := ErrorInfoFor(err)
		assert.Equal(t, http.StatusUnprocessableEntity, status)
		assert.Equal(t, "NO_OPEN_SESSION", info.Code)
		assert.Equal(t, "No open cash session", info.Message)
		assert.Equal(t, string(shared.KindInvalidState), info.Kind)
	})

	t.Run("plain error hides its message", func(t *testing.T) {
		info, status := ErrorInfoFor(errors.New("dial tcp: connection refused"))
		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, ErrCodeInternal, info.Code)
		assert.NotContains(t, info.Message, "dial tcp")
	})
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	resp := NewSuccessResponseWithMeta([]int{1, 2}, 41, 2, 20)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 3, resp.Meta.TotalPages)

	resp = NewSuccessResponseWithMeta(nil, 5, 1, 0)
	assert.Zero(t, resp.Meta.TotalPages)
}

func TestNewPaginatedResponse(t *testing.T) {
	page := shared.NewPaginated([]string{"a"}, 21, 2, 10)
	resp := NewPaginatedResponse(page)
	assert.True(t, resp.Success)
	assert.Equal(t, []string{"a"}, resp.Data)
	assert.Equal(t, 3, resp.Meta.TotalPages)
}

func TestValidationErrorResponseJSON(t *testing.T) {
	resp := NewValidationErrorResponse("Request validation failed", "req-789", []ValidationDetail{
		{Field: "amount", Message: "Must be greater than 0"},
	})

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded Response
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.False(t, decoded.Success)
	require.NotNil(t, decoded.Error)
	assert.Equal(t, ErrCodeValidation, decoded.Error.Code)
	assert.Equal(t, "req-789", decoded.Error.RequestID)
	require.Len(t, decoded.Error.Details, 1)
	assert.Equal(t, "amount", decoded.Error.Details[0].Field)
}
